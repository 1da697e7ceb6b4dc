package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the user identifier under the key "user_id".
func UserID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("user_id", id)
}

// NotificationID records the notification identifier under the key "notification_id".
func NotificationID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("notification_id", id)
}

// ScheduleID records a scheduled notification identifier under the key "schedule_id".
func ScheduleID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("schedule_id", id)
}

// Channel records the delivery channel under the key "channel".
func Channel(name string) slog.Attr {
	return slog.String("channel", name)
}

// Category records the notification category under the key "category".
func Category(c any) slog.Attr {
	return slog.Any("category", c)
}

// Reason records a denial or failure reason under the key "reason".
func Reason(r any) slog.Attr {
	return slog.Any("reason", r)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Attempts records a delivery attempt count under the key "attempts".
func Attempts(n int) slog.Attr {
	return slog.Int("attempts", n)
}

// Duration records a duration under the key "duration".
func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}

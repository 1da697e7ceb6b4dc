package preferences

import (
	"time"

	"github.com/dmitrymomot/pushkit/pkg/notification"
)

// QuietHours defines a local-time window during which non-critical,
// non-security notifications are suppressed. Start and End use "HH:MM"
// in the given IANA timezone; a window with Start > End spans midnight.
type QuietHours struct {
	Enabled  bool   `json:"enabled"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Timezone string `json:"timezone"`
}

// FrequencyLimits caps how many notifications a user receives per
// rolling hour and day.
type FrequencyLimits struct {
	MaxPerHour int `json:"max_per_hour"`
	MaxPerDay  int `json:"max_per_day"`
}

// DeliveryMethods toggles the transports a user accepts.
type DeliveryMethods struct {
	Push  bool `json:"push"`
	Email bool `json:"email"`
	SMS   bool `json:"sms"`
	InApp bool `json:"in_app"`
}

// UserPreferences holds the per-user settings the gate evaluates.
type UserPreferences struct {
	UserID          string                         `json:"user_id"`
	Categories      map[notification.Category]bool `json:"categories"`
	QuietHours      QuietHours                     `json:"quiet_hours"`
	FrequencyLimits FrequencyLimits                `json:"frequency_limits"`
	DeliveryMethods DeliveryMethods                `json:"delivery_methods"`
	MinPriority     notification.Priority          `json:"min_priority"`
	UpdatedAt       time.Time                      `json:"updated_at"`
}

// Default returns the preferences a user gets on first access: all
// categories enabled, no quiet hours, generous frequency limits.
func Default(userID string) UserPreferences {
	return UserPreferences{
		UserID: userID,
		Categories: map[notification.Category]bool{
			notification.CategorySecurity:  true,
			notification.CategoryTrade:     true,
			notification.CategoryAccount:   true,
			notification.CategoryMarketing: true,
			notification.CategorySystem:    true,
		},
		QuietHours: QuietHours{
			Enabled:  false,
			Start:    "22:00",
			End:      "07:00",
			Timezone: "UTC",
		},
		FrequencyLimits: FrequencyLimits{
			MaxPerHour: 20,
			MaxPerDay:  100,
		},
		DeliveryMethods: DeliveryMethods{
			Push:  true,
			Email: true,
			SMS:   false,
			InApp: true,
		},
		MinPriority: notification.PriorityLow,
	}
}

// Update is a partial preferences change. Nil fields keep the current
// value; Categories entries are merged key by key.
type Update struct {
	Categories      map[notification.Category]bool `json:"categories,omitempty"`
	QuietHours      *QuietHours                    `json:"quiet_hours,omitempty"`
	FrequencyLimits *FrequencyLimits               `json:"frequency_limits,omitempty"`
	DeliveryMethods *DeliveryMethods               `json:"delivery_methods,omitempty"`
	MinPriority     *notification.Priority         `json:"min_priority,omitempty"`
}

// Merge applies a partial update and returns the result. The receiver
// is not modified.
func (p UserPreferences) Merge(u Update) UserPreferences {
	out := p

	out.Categories = make(map[notification.Category]bool, len(p.Categories))
	for k, v := range p.Categories {
		out.Categories[k] = v
	}
	for k, v := range u.Categories {
		out.Categories[k] = v
	}

	if u.QuietHours != nil {
		out.QuietHours = *u.QuietHours
	}
	if u.FrequencyLimits != nil {
		out.FrequencyLimits = *u.FrequencyLimits
	}
	if u.DeliveryMethods != nil {
		out.DeliveryMethods = *u.DeliveryMethods
	}
	if u.MinPriority != nil {
		out.MinPriority = *u.MinPriority
	}

	return out
}

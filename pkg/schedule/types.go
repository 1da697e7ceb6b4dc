package schedule

import (
	"fmt"
	"slices"
	"time"

	"github.com/dmitrymomot/pushkit/pkg/notification"
)

// Status tracks the lifecycle of a scheduled notification.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSent      Status = "sent"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// Frequency names the recurrence cadence.
type Frequency string

const (
	FrequencyOnce    Frequency = "once"
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// Recurrence describes how a scheduled notification repeats. Interval
// multiplies the base cadence and defaults to 1. DaysOfWeek restricts
// weekly schedules to specific weekdays (0 is Sunday). DayOfMonth pins
// monthly schedules to a calendar day, clamped to the month's length.
// A non-nil EndDate stops the series after that instant.
type Recurrence struct {
	Frequency  Frequency  `json:"frequency"`
	Interval   int        `json:"interval,omitempty"`
	DaysOfWeek []int      `json:"days_of_week,omitempty"`
	DayOfMonth int        `json:"day_of_month,omitempty"`
	EndDate    *time.Time `json:"end_date,omitempty"`
}

// Validate checks the recurrence rule for well-formedness.
func (r Recurrence) Validate() error {
	switch r.Frequency {
	case FrequencyOnce, FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
	default:
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalidRecurrence, r.Frequency)
	}
	if r.Interval < 0 {
		return fmt.Errorf("%w: negative interval", ErrInvalidRecurrence)
	}
	for _, d := range r.DaysOfWeek {
		if d < 0 || d > 6 {
			return fmt.Errorf("%w: day of week %d out of range", ErrInvalidRecurrence, d)
		}
	}
	if r.DayOfMonth < 0 || r.DayOfMonth > 31 {
		return fmt.Errorf("%w: day of month %d out of range", ErrInvalidRecurrence, r.DayOfMonth)
	}
	if len(r.DaysOfWeek) > 0 && r.Frequency != FrequencyWeekly {
		return fmt.Errorf("%w: days of week require weekly frequency", ErrInvalidRecurrence)
	}
	return nil
}

// Recurring reports whether the rule produces successors.
func (r Recurrence) Recurring() bool {
	return r.Frequency != FrequencyOnce && r.Frequency != ""
}

func (r Recurrence) interval() int {
	if r.Interval > 0 {
		return r.Interval
	}
	return 1
}

func (r Recurrence) sortedDays() []int {
	days := slices.Clone(r.DaysOfWeek)
	slices.Sort(days)
	return slices.Compact(days)
}

// ScheduledNotification is a notification waiting for its send time,
// possibly the head of a recurring series. TemplateID is set when the
// content was rendered from a stored template. FailureReason is set
// only on a failed occurrence.
type ScheduledNotification struct {
	ID            string                    `json:"id"`
	UserID        string                    `json:"user_id"`
	TemplateID    string                    `json:"template_id,omitempty"`
	Notification  notification.Notification `json:"notification"`
	SendAt        time.Time                 `json:"send_at"`
	Recurrence    Recurrence                `json:"recurrence"`
	Status        Status                    `json:"status"`
	SentAt        *time.Time                `json:"sent_at,omitempty"`
	FailureReason string                    `json:"failure_reason,omitempty"`
	CreatedAt     time.Time                 `json:"created_at"`
	UpdatedAt     time.Time                 `json:"updated_at"`
}

package notification

import (
	"fmt"
	"time"
)

// Category groups notifications for per-user preference toggles and
// badge partitioning.
type Category string

const (
	CategorySecurity  Category = "security"
	CategoryTrade     Category = "trade"
	CategoryAccount   Category = "account"
	CategoryMarketing Category = "marketing"
	CategorySystem    Category = "system"
)

// Valid checks if the category is one of the known values.
func (c Category) Valid() bool {
	switch c {
	case CategorySecurity, CategoryTrade, CategoryAccount, CategoryMarketing, CategorySystem:
		return true
	}
	return false
}

// Priority represents notification urgency on an ordered scale.
// Comparison operators are meaningful: PriorityLow < PriorityCritical.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

// Valid checks if the priority is within the known range.
func (p Priority) Valid() bool {
	return p >= PriorityLow && p <= PriorityCritical
}

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	}
	return fmt.Sprintf("priority(%d)", int(p))
}

// ParsePriority converts a string value to a Priority.
func ParsePriority(s string) (Priority, error) {
	switch s {
	case "low":
		return PriorityLow, nil
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	case "critical":
		return PriorityCritical, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPriority, s)
}

// Notification is the core domain model. A record is created when a
// dispatch completes and is mutated only to set ReadAt.
type Notification struct {
	ID                string         `json:"id"`
	UserID            string         `json:"user_id"`
	Title             string         `json:"title"`
	Body              string         `json:"body"`
	Category          Category       `json:"category"`
	Priority          Priority       `json:"priority"`
	Data              map[string]any `json:"data,omitempty"`
	ChannelsAttempted []string       `json:"channels_attempted,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	SentAt            *time.Time     `json:"sent_at,omitempty"`
	ReadAt            *time.Time     `json:"read_at,omitempty"`
}

// IsRead reports whether the notification has been read.
func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}

// MarkAsRead sets the read timestamp. Calling it on an already-read
// notification keeps the original timestamp.
func (n *Notification) MarkAsRead() {
	if n.ReadAt != nil {
		return
	}
	now := time.Now()
	n.ReadAt = &now
}

// BadgeCounts holds per-user unread counts partitioned by category and
// priority, used for UI badge indicators.
type BadgeCounts struct {
	Total      int              `json:"total"`
	ByCategory map[Category]int `json:"by_category"`
	ByPriority map[Priority]int `json:"by_priority"`
}

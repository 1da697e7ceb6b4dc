package dispatch

import (
	"context"

	"github.com/dmitrymomot/pushkit/pkg/notification"
	"github.com/dmitrymomot/pushkit/pkg/subscription"
)

// Outcome classifies a single gateway send attempt.
type Outcome int

const (
	// OutcomeDelivered means the push service accepted the message.
	OutcomeDelivered Outcome = iota
	// OutcomeTransient means the attempt failed but the endpoint may
	// still be valid (network error, 5xx, throttling).
	OutcomeTransient
	// OutcomeGone means the push service confirmed the endpoint is
	// invalid and the subscription should be deactivated.
	OutcomeGone
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDelivered:
		return "delivered"
	case OutcomeTransient:
		return "transient"
	case OutcomeGone:
		return "gone"
	}
	return "unknown"
}

// Payload is the channel-agnostic message handed to gateways. Gateways
// shape it into their wire format.
type Payload struct {
	Title    string                `json:"title"`
	Body     string                `json:"body"`
	Category notification.Category `json:"category"`
	Priority notification.Priority `json:"priority"`
	Data     map[string]any        `json:"data,omitempty"`
}

// BrowserGateway delivers a payload to a browser push subscription.
type BrowserGateway interface {
	Send(ctx context.Context, sub subscription.Subscription, payload Payload) (Outcome, error)
}

// MobileGateway delivers a payload to a mobile device token.
type MobileGateway interface {
	Send(ctx context.Context, sub subscription.Subscription, payload Payload) (Outcome, error)
}

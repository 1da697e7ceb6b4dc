package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/dmitrymomot/pushkit/pkg/notification"
	"github.com/dmitrymomot/pushkit/pkg/subscription"
)

// WebPushConfig carries the VAPID identity of the sender.
type WebPushConfig struct {
	VAPIDPublicKey  string `env:"VAPID_PUBLIC_KEY,required"`
	VAPIDPrivateKey string `env:"VAPID_PRIVATE_KEY,required"`
	Subscriber      string `env:"VAPID_SUBSCRIBER" envDefault:"mailto:push@localhost"`
	TTLSeconds      int    `env:"WEBPUSH_TTL" envDefault:"86400"`
}

// WebPushGateway sends browser push messages using the Web Push
// protocol with VAPID authentication.
type WebPushGateway struct {
	cfg    WebPushConfig
	client *http.Client
}

// NewWebPushGateway creates a browser gateway from the given VAPID config.
func NewWebPushGateway(cfg WebPushConfig) (*WebPushGateway, error) {
	if cfg.VAPIDPublicKey == "" || cfg.VAPIDPrivateKey == "" {
		return nil, ErrVAPIDKeysRequired
	}
	if cfg.TTLSeconds <= 0 {
		cfg.TTLSeconds = 86400
	}
	return &WebPushGateway{cfg: cfg, client: &http.Client{}}, nil
}

func (g *WebPushGateway) Send(ctx context.Context, sub subscription.Subscription, payload Payload) (Outcome, error) {
	if sub.Keys == nil {
		return OutcomeGone, fmt.Errorf("subscription %s has no encryption keys", sub.ID)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return OutcomeTransient, fmt.Errorf("failed to encode payload: %w", err)
	}

	target := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.Keys.P256dh,
			Auth:   sub.Keys.Auth,
		},
	}

	resp, err := webpush.SendNotificationWithContext(ctx, body, target, &webpush.Options{
		HTTPClient:      g.client,
		Subscriber:      g.cfg.Subscriber,
		VAPIDPublicKey:  g.cfg.VAPIDPublicKey,
		VAPIDPrivateKey: g.cfg.VAPIDPrivateKey,
		TTL:             g.cfg.TTLSeconds,
		Urgency:         urgencyFor(payload.Priority),
	})
	if err != nil {
		return OutcomeTransient, fmt.Errorf("web push send failed: %w", err)
	}
	defer resp.Body.Close()

	return classifyStatus(resp.StatusCode), nil
}

// urgencyFor maps notification priority onto Web Push urgency so push
// services can defer low-priority messages on battery-constrained devices.
func urgencyFor(p notification.Priority) webpush.Urgency {
	switch {
	case p >= notification.PriorityHigh:
		return webpush.UrgencyHigh
	case p == notification.PriorityLow:
		return webpush.UrgencyLow
	}
	return webpush.UrgencyNormal
}

// classifyStatus maps a push service HTTP status to an Outcome. 404 and
// 410 are the service telling us the subscription no longer exists.
func classifyStatus(code int) Outcome {
	switch {
	case code == http.StatusNotFound || code == http.StatusGone:
		return OutcomeGone
	case code >= 200 && code < 300:
		return OutcomeDelivered
	default:
		return OutcomeTransient
	}
}

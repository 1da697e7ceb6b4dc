package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrymomot/pushkit/pkg/notification"
	"github.com/dmitrymomot/pushkit/pkg/subscription"
)

// FCMConfig carries the credentials and endpoint of the mobile push service.
type FCMConfig struct {
	Endpoint  string `env:"FCM_ENDPOINT" envDefault:"https://fcm.googleapis.com/fcm/send"`
	ServerKey string `env:"FCM_SERVER_KEY,required"`
}

// FCMGateway delivers mobile push messages over the FCM HTTP API. The
// device token is stored in the subscription's Endpoint field.
type FCMGateway struct {
	cfg    FCMConfig
	client *http.Client
}

// NewFCMGateway creates a mobile gateway from the given config.
func NewFCMGateway(cfg FCMConfig) (*FCMGateway, error) {
	if cfg.ServerKey == "" {
		return nil, ErrServerKeyRequired
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://fcm.googleapis.com/fcm/send"
	}
	return &FCMGateway{cfg: cfg, client: &http.Client{}}, nil
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Sound string `json:"sound,omitempty"`
	Badge string `json:"badge,omitempty"`
}

type fcmMessage struct {
	To           string          `json:"to"`
	Priority     string          `json:"priority"`
	Notification fcmNotification `json:"notification"`
	Data         map[string]any  `json:"data,omitempty"`
}

func (g *FCMGateway) Send(ctx context.Context, sub subscription.Subscription, payload Payload) (Outcome, error) {
	msg := fcmMessage{
		To:       sub.Endpoint,
		Priority: fcmPriority(payload.Priority),
		Notification: fcmNotification{
			Title: payload.Title,
			Body:  payload.Body,
		},
		Data: fcmData(payload),
	}
	// iOS surfaces sound and badge through APNs passthrough fields;
	// Android handles them client side.
	if sub.Platform == subscription.PlatformIOS {
		msg.Notification.Sound = "default"
		msg.Notification.Badge = "1"
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return OutcomeTransient, fmt.Errorf("failed to encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return OutcomeTransient, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+g.cfg.ServerKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return OutcomeTransient, fmt.Errorf("mobile push send failed: %w", err)
	}
	defer resp.Body.Close()

	return classifyStatus(resp.StatusCode), nil
}

// fcmData flattens the payload metadata into the message data block so
// client apps can route taps without parsing the notification body.
func fcmData(payload Payload) map[string]any {
	data := make(map[string]any, len(payload.Data)+2)
	for k, v := range payload.Data {
		data[k] = v
	}
	data["category"] = string(payload.Category)
	data["priority"] = strconv.Itoa(int(payload.Priority))
	return data
}

func fcmPriority(p notification.Priority) string {
	if p >= notification.PriorityHigh {
		return "high"
	}
	return "normal"
}

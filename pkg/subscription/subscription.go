package subscription

import "time"

// Platform identifies the delivery transport a subscription belongs to.
type Platform string

const (
	PlatformBrowser Platform = "browser"
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
)

// Valid checks if the platform is one of the known values.
func (p Platform) Valid() bool {
	switch p {
	case PlatformBrowser, PlatformIOS, PlatformAndroid:
		return true
	}
	return false
}

// Mobile reports whether the platform is served by the mobile push channel.
func (p Platform) Mobile() bool {
	return p == PlatformIOS || p == PlatformAndroid
}

// Keys holds the encryption key material of a browser push subscription.
type Keys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// Subscription is a per-user delivery endpoint: a browser push
// subscription or a mobile device token. Subscriptions are never
// physically removed; a confirmed-invalid gateway response flips
// IsActive to false so re-registration can reactivate the same record
// in place.
type Subscription struct {
	ID         string            `json:"id"`
	UserID     string            `json:"user_id"`
	Platform   Platform          `json:"platform"`
	Endpoint   string            `json:"endpoint"` // push endpoint URL or device token
	Keys       *Keys             `json:"keys,omitempty"`
	DeviceInfo map[string]string `json:"device_info,omitempty"`
	IsActive   bool              `json:"is_active"`
	CreatedAt  time.Time         `json:"created_at"`
	LastUsedAt time.Time         `json:"last_used_at"`
}

package dispatch

import "errors"

var (
	// ErrRegistryNil is returned when a Dispatcher is created without a
	// subscription registry.
	ErrRegistryNil = errors.New("subscription registry is nil")
	// ErrTrackerNil is returned when a Dispatcher is created without a
	// history tracker.
	ErrTrackerNil = errors.New("history tracker is nil")
	// ErrAllChannelsFailed is returned when every attempted channel
	// failed transiently, so the dispatch is safe to retry.
	ErrAllChannelsFailed = errors.New("all delivery channels failed")
	// ErrVAPIDKeysRequired is returned when the browser gateway is
	// created without a VAPID key pair.
	ErrVAPIDKeysRequired = errors.New("VAPID key pair is required")
	// ErrServerKeyRequired is returned when the mobile gateway is
	// created without a server key.
	ErrServerKeyRequired = errors.New("push server key is required")
)

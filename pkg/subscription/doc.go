// Package subscription holds per-user delivery endpoints (browser push
// subscriptions, mobile push tokens) and their liveness state.
//
// The Registry enforces the endpoint lifecycle: registration is
// idempotent on the endpoint or token, deactivation is soft so a dead
// endpoint can be revived by re-registration, and only active
// subscriptions are ever handed to the dispatcher.
//
// Persistence goes through the Storage interface with an in-memory
// implementation for tests and a MongoDB-backed one for production,
// selected at construction time.
package subscription

// Package dispatch fans notifications out to a user's registered
// delivery endpoints.
//
// The Dispatcher resolves active subscriptions, sends to each through
// the browser (Web Push with VAPID) or mobile (FCM HTTP) gateway with
// bounded parallelism, and appends one history record per dispatch.
// Gateways classify each attempt as delivered, transient, or gone; a
// gone endpoint is deactivated in the registry so it is never attempted
// again. A dispatch where every channel failed transiently returns
// ErrAllChannelsFailed without touching history, which makes the retry
// path idempotent.
package dispatch

// Package metrics registers the engine's Prometheus collectors on the
// default registry. Exposing them over HTTP is left to the embedding
// application.
package metrics

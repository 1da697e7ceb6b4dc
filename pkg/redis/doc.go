// Package redis provides connection helpers for the Redis-backed rate
// counter store: env-driven configuration, retrying connect, and a
// ping-based healthcheck.
package redis

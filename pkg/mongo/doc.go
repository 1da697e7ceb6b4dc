// Package mongo provides connection helpers for the MongoDB-backed
// storage implementations: env-driven configuration, retrying connect,
// and a ping-based healthcheck.
package mongo

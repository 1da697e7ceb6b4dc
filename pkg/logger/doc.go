// Package logger provides a slog.Logger factory with environment-aware
// defaults and typed attribute helpers shared across the engine.
//
// The factory defaults to JSON output at INFO level, which suits log
// aggregation systems; WithDevelopment switches to human-readable text
// at DEBUG level. Attribute helpers keep log keys consistent across
// packages (user_id, notification_id, channel, reason, ...).
package logger

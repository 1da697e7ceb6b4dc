// Package history stores the per-user notification log and read state.
//
// Every dispatched notification (and every in-app-only record) is
// appended here exactly once. The Tracker exposes paginated listing,
// idempotent read marking, unread badge counts partitioned by category
// and priority, and retention-based cleanup.
package history

// Package preferences implements the per-user settings store and the
// admission gate that sits in front of the delivery queue.
//
// The Gate evaluates candidate notifications against category toggles,
// a minimum priority threshold, a local-time quiet hours window, and
// rolling hourly/daily frequency limits. Rules run in a fixed order and
// the first match wins; security-category and critical-priority
// notifications bypass every check. A denial is not an error: the
// candidate is silently dropped and only logged by the caller.
//
// Rate accounting goes through the CounterStore interface. The
// in-memory store loses counters on restart (the engine's default);
// the Redis-backed store keeps windows alive across restarts via key
// TTLs.
package preferences

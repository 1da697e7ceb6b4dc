// Package engine is the public facade of the notification system.
//
// A Service wires the subscription registry, preference gate, template
// storage, delivery queue, channel dispatcher, history tracker, and
// scheduler into one API. Product code queues or schedules
// notifications; the engine's background loops gate, deliver, retry,
// and record them. Queue admission is silent-drop: a notification the
// user's preferences reject disappears without an error.
package engine

// Package schedule stores future and recurring notifications and fires
// them into the delivery queue when their send time arrives.
//
// Recurrence math preserves the time of day: daily rules add whole
// days, weekly rules advance to the next allowed weekday (or a whole
// number of weeks without a weekday restriction), and monthly rules pin
// a calendar day, clamping it to short months. Each fired occurrence of
// a recurring series produces a fresh pending successor, so a series is
// always represented by exactly one pending schedule.
package schedule

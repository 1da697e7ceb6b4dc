// Package notification defines the shared domain types of the delivery
// engine: the Notification record, the ordered Priority scale, the
// Category set used for preference toggles, and badge count aggregates.
//
// The package carries no behavior beyond small helpers on those types;
// storage and delivery concerns live in their own packages and depend
// on this one.
package notification

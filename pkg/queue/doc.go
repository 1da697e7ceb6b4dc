// Package queue buffers admitted notifications between the public API
// and the channel dispatcher.
//
// The Worker drains due items in bounded batches on a fixed tick.
// Delivery failures requeue the item with an incremented attempt count;
// once the attempt budget is exhausted the item is dropped and logged
// as dead-lettered. Items with a future ScheduledFor timestamp stay
// invisible until they come due. Queue state is process local.
package queue

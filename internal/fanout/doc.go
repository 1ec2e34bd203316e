// Package fanout turns one completed social action into notification records.
//
// Fan-out happens at write time: every recipient gets a materialized record
// with a message rendered when the action happened. All records produced by
// one action are appended to the notification log as a single atomic batch.
//
// Lookup misses (unknown post, unknown actor) degrade to zero notifications.
// Storage failures are returned as *Error, which matches ErrFanOutFailed, so
// callers can report them without failing the action that triggered them.
package fanout

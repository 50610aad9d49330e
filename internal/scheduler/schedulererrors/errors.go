// Package schedulererrors defines the fatal error kinds the scheduler can
// surface, mirroring the purpose-built error structs in
// internal/common/armadaerrors: each kind carries the context needed to log
// or report it without re-parsing a formatted message.
package schedulererrors

import (
	"fmt"
	"time"
)

// ParseError represents a malformed input line or an unparseable timestamp.
type ParseError struct {
	Line  string
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed input line %q: %s", e.Line, e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// UnknownQueueError represents a job or command addressed to a queue
// outside the fixed {export, url, general} set.
type UnknownQueueError struct {
	Queue string
}

func (e *UnknownQueueError) Error() string {
	return fmt.Sprintf("unknown queue %q", e.Queue)
}

// PlacementFailureError represents a job for which no VM satisfied the
// placement slack condition after the warm-up grace period has elapsed.
type PlacementFailureError struct {
	JobID   string
	Queue   string
	Arrival time.Time
}

func (e *PlacementFailureError) Error() string {
	return fmt.Sprintf("no VM available to place job %s on queue %s at %s", e.JobID, e.Queue, e.Arrival)
}

// Package record holds the Job and Command value types that flow between
// the driver, the scheduler, and the emitter.
package record

import (
	"time"

	"github.com/pkg/errors"

	"github.com/prezi/autoscalesim/internal/scheduler/clock"
	"github.com/prezi/autoscalesim/internal/scheduler/schedulererrors"
)

// QueueName identifies one of the three fixed workload classes. There is no
// cross-queue sharing of VMs.
type QueueName string

const (
	Export  QueueName = "export"
	URL     QueueName = "url"
	General QueueName = "general"
)

// AllQueues returns the fixed set of queue names in a stable order, used
// wherever every queue must be visited (warm-up, shutdown).
func AllQueues() []QueueName {
	return []QueueName{Export, URL, General}
}

// ParseQueueName validates s against the fixed queue set.
func ParseQueueName(s string) (QueueName, error) {
	switch QueueName(s) {
	case Export, URL, General:
		return QueueName(s), nil
	default:
		return "", &schedulererrors.UnknownQueueError{Queue: s}
	}
}

// JobID is an opaque, run-unique token preserved verbatim on echo.
type JobID string

// Job is immutable after construction except for its start time, which may
// be set exactly once by Place.
type Job struct {
	UID     JobID
	Queue   QueueName
	Arrival clock.Timestamp
	// Length is the job's run time. May be fractional.
	Length float64

	startTime clock.Timestamp
	placed    bool
}

// NewJob constructs a Job from its immutable attributes.
func NewJob(uid JobID, queue QueueName, arrival clock.Timestamp, length float64) *Job {
	return &Job{
		UID:     uid,
		Queue:   queue,
		Arrival: arrival,
		Length:  length,
	}
}

// Place sets the job's start time. It may be called exactly once; a second
// call fails, since start_time is a sealed, one-shot attribute.
func (j *Job) Place(at clock.Timestamp) error {
	if j.placed {
		return errors.Errorf("job %s has already been placed at %s", j.UID, j.startTime)
	}
	j.startTime = at
	j.placed = true
	return nil
}

// Placed reports whether Place has been called.
func (j *Job) Placed() bool {
	return j.placed
}

// StartTime returns the job's start time and whether it has been placed.
func (j *Job) StartTime() (clock.Timestamp, bool) {
	return j.startTime, j.placed
}

// CompletionTime returns the time at which the job's work finishes. It
// panics if the job has not yet been placed, since completion is undefined
// before placement.
func (j *Job) CompletionTime() clock.Timestamp {
	if !j.placed {
		panic("CompletionTime called on an unplaced job")
	}
	return j.startTime.Add(durationFromSeconds(j.Length))
}

func durationFromSeconds(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

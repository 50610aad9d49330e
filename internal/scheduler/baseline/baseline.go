// Package baseline implements the naive fixed-fleet strategy used as a
// --dry-run comparison point: launch a fixed number of VMs per queue
// up front, echo every job untouched, then terminate the same fixed count
// at the end. It does no placement and keeps no VM state at all.
package baseline

import (
	"bufio"
	"io"
	"strings"

	"github.com/prezi/autoscalesim/internal/scheduler/clock"
	"github.com/prezi/autoscalesim/internal/scheduler/emitter"
	"github.com/prezi/autoscalesim/internal/scheduler/record"
	"github.com/prezi/autoscalesim/internal/scheduler/schedulererrors"
)

// DefaultFleetSize is the fixed per-queue VM count the reference baseline
// strategy launches and retires.
const DefaultFleetSize = 100

// Run reads job lines from r, launching fleetSize VMs per queue at the
// first job's arrival, echoing every line verbatim, and terminating
// fleetSize VMs per queue at the last job's arrival. An empty input
// produces no output at all.
func Run(r io.Reader, em *emitter.Emitter, fleetSize int) error {
	scanner := bufio.NewScanner(r)

	var lastArrival clock.Timestamp
	seenAny := false

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		job, err := record.ParseJobLine(line)
		if err != nil {
			return &schedulererrors.ParseError{Line: line, Cause: err}
		}

		if !seenAny {
			if err := emitBurst(em, record.Launch, job.Arrival, fleetSize); err != nil {
				return err
			}
			seenAny = true
		}
		lastArrival = job.Arrival

		if err := em.EmitRawLine(line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if !seenAny {
		return nil
	}

	return emitBurst(em, record.Terminate, lastArrival, fleetSize)
}

// emitBurst emits fleetSize commands of kind for every queue, at at.
func emitBurst(em *emitter.Emitter, kind record.CommandKind, at clock.Timestamp, fleetSize int) error {
	for i := 0; i < fleetSize; i++ {
		for _, q := range record.AllQueues() {
			if err := em.Emit(record.Command{Kind: kind, Queue: q, At: at}); err != nil {
				return err
			}
		}
	}
	return nil
}

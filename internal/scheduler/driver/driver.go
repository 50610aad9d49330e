// Package driver implements the top-level read/schedule/echo loop: for each
// input line it parses a job, runs it through the scheduler, and echoes the
// line back verbatim, stopping cleanly on EOF, on an external signal, or on
// the first fatal error.
package driver

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/prezi/autoscalesim/internal/scheduler/clock"
	"github.com/prezi/autoscalesim/internal/scheduler/emitter"
	"github.com/prezi/autoscalesim/internal/scheduler/queuemanager"
	"github.com/prezi/autoscalesim/internal/scheduler/record"
	"github.com/prezi/autoscalesim/internal/scheduler/schedulererrors"
)

// Driver owns the input scanner and wires it to a QueueManager and an
// Emitter.
type Driver struct {
	scanner *bufio.Scanner
	manager *queuemanager.QueueManager
	emitter *emitter.Emitter
}

// New constructs a Driver reading job lines from r.
func New(r io.Reader, manager *queuemanager.QueueManager, em *emitter.Emitter) *Driver {
	return &Driver{
		scanner: bufio.NewScanner(r),
		manager: manager,
		emitter: em,
	}
}

// Run processes input until EOF, a signal cancels ctx, or a fatal error
// occurs. On clean EOF it shuts the scheduler down (retiring every VM still
// standing) at the last job's arrival time and returns nil. On signal
// cancellation it returns nil without shutting down — there is no final
// burst of terminate commands to emit. Any other non-nil return (a
// *schedulererrors.ParseError, a *schedulererrors.PlacementFailureError, a
// *schedulererrors.UnknownQueueError, or a broken-pipe error from the
// emitter) is fatal.
func (d *Driver) Run(ctx context.Context) error {
	var last clock.Timestamp

	for d.scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}

		line := d.scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		job, err := record.ParseJobLine(line)
		if err != nil {
			return &schedulererrors.ParseError{Line: line, Cause: err}
		}
		last = job.Arrival

		if err := d.manager.Schedule(job); err != nil {
			return err
		}
		if err := d.emitter.EmitRawLine(line); err != nil {
			return err
		}

		if ctx.Err() != nil {
			return nil
		}
	}

	if err := d.scanner.Err(); err != nil {
		return err
	}
	return d.manager.Shutdown(last)
}

// Package emitter writes the required stdout wire format: command records
// and echoed job lines, interleaved in the order the driver produces them.
package emitter

import (
	"bufio"
	"io"
	"syscall"

	"github.com/prezi/autoscalesim/internal/scheduler/record"
)

// ErrBrokenPipe is the error a write returns (wrapped, check with
// errors.Is) when the downstream reader has closed its end.
const ErrBrokenPipe = syscall.EPIPE

// Emitter writes command and job records to an io.Writer, flushing after
// every line so output is line-atomic even if the process is interrupted
// mid-stream.
type Emitter struct {
	w *bufio.Writer
}

// New wraps w.
func New(w io.Writer) *Emitter {
	return &Emitter{w: bufio.NewWriter(w)}
}

// Emit implements pool.CommandSink: it writes a launch/terminate command
// line.
func (e *Emitter) Emit(cmd record.Command) error {
	return e.writeLine(cmd.Line())
}

// EmitRawLine writes an already-formatted line verbatim — used to echo a
// job exactly as it was read, preserving its original token formatting.
func (e *Emitter) EmitRawLine(line string) error {
	return e.writeLine(line)
}

func (e *Emitter) writeLine(line string) error {
	if _, err := e.w.WriteString(line); err != nil {
		return err
	}
	if err := e.w.WriteByte('\n'); err != nil {
		return err
	}
	return e.w.Flush()
}

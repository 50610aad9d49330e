// Package sink implements the optional per-tick utilization log: one line
// per scheduled job, describing the pool's size and idle counts. It is
// wholly separate from the emitter's stdout wire format. Rotation, when
// requested, is delegated to gopkg.in/natefinch/lumberjack.v2, the same
// library internal/common/logging/application.go uses for its file sink.
package sink

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/prezi/autoscalesim/internal/scheduler/clock"
	"github.com/prezi/autoscalesim/internal/scheduler/record"
)

// Entry is one utilization sample, emitted after the controller runs for a
// scheduled job.
type Entry struct {
	At           clock.Timestamp
	Queue        record.QueueName
	PoolSize     int
	FreeReal     int
	MinIdleCount int
}

// Sink receives utilization entries and is closed once at end-of-run.
type Sink interface {
	Record(e Entry) error
	Close() error
}

// Rotation configures lumberjack-style log rotation. The zero value
// disables rotation: the file grows unbounded, matching the spec's default
// single-file behavior.
type Rotation struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func (r Rotation) enabled() bool {
	return r.MaxSizeMB > 0
}

// FileSink writes one line per Entry to a file, in the format
// "<date> <time> <queue> <pool_size> <free_real> <min_idle_count>".
type FileSink struct {
	writer io.WriteCloser
}

// NewFileSink opens path for appending, rotating it per rotation if
// rotation.MaxSizeMB is positive.
func NewFileSink(path string, rotation Rotation) (*FileSink, error) {
	if rotation.enabled() {
		return &FileSink{writer: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    rotation.MaxSizeMB,
			MaxBackups: rotation.MaxBackups,
			MaxAge:     rotation.MaxAgeDays,
		}}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &FileSink{writer: f}, nil
}

// Record writes one line for e. Each write is followed by a newline and
// nothing is buffered across calls, keeping the file line-atomic.
func (s *FileSink) Record(e Entry) error {
	date, clockTime := e.At.DateTime()
	line := fmt.Sprintf("%s %s %s %d %d %d\n", date, clockTime, e.Queue, e.PoolSize, e.FreeReal, e.MinIdleCount)
	_, err := s.writer.Write([]byte(line))
	return err
}

// Close closes the underlying file.
func (s *FileSink) Close() error {
	return s.writer.Close()
}

// Noop discards every entry. Used when no log file was requested.
type Noop struct{}

func (Noop) Record(Entry) error { return nil }
func (Noop) Close() error       { return nil }

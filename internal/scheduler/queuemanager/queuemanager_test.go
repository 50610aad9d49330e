package queuemanager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prezi/autoscalesim/internal/scheduler/clock"
	"github.com/prezi/autoscalesim/internal/scheduler/config"
	"github.com/prezi/autoscalesim/internal/scheduler/logging"
	"github.com/prezi/autoscalesim/internal/scheduler/record"
	"github.com/prezi/autoscalesim/internal/scheduler/schedulererrors"
	"github.com/prezi/autoscalesim/internal/scheduler/sink"
)

// recordingSink implements pool.CommandSink, capturing every command it
// sees in emission order.
type recordingSink struct {
	commands []record.Command
}

func (s *recordingSink) Emit(cmd record.Command) error {
	s.commands = append(s.commands, cmd)
	return nil
}

func (s *recordingSink) countByKind(kind record.CommandKind) int {
	n := 0
	for _, c := range s.commands {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

func ts(t *testing.T, date, clockTime string) clock.Timestamp {
	t.Helper()
	v, err := clock.Parse(date, clockTime)
	require.NoError(t, err)
	return v
}

func newManager(cfg config.Config) (*QueueManager, *recordingSink) {
	cs := &recordingSink{}
	m := New(cfg, cs, sink.Noop{}, logging.New(noopWriter{}, 0))
	return m, cs
}

type noopWriter struct{}

func (noopWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestFirstJobWarmsUpAllThreeQueuesToFloor(t *testing.T) {
	cfg := config.Default()
	cfg.Floor = 5
	cfg.BootDelay = 0
	m, cs := newManager(cfg)

	job := record.NewJob("j1", record.Export, ts(t, "2013-03-01", "00:00:00"), 10)
	require.NoError(t, m.Schedule(job))

	assert.Equal(t, 15, cs.countByKind(record.Launch), "warm-up should launch Floor VMs per queue")
	for _, q := range record.AllQueues() {
		assert.GreaterOrEqual(t, m.pools[q].Len(), cfg.Floor)
	}

	start, placed := job.StartTime()
	require.True(t, placed)
	assert.Equal(t, job.Arrival, start, "a just-booted export VM should be free at job arrival")
}

func TestPlacementWithinSlackWindow(t *testing.T) {
	cfg := config.Default()
	cfg.Floor = 2
	cfg.BootDelay = 0
	m, _ := newManager(cfg)

	first := record.NewJob("j1", record.Export, ts(t, "2013-03-01", "00:00:00"), 1000)
	require.NoError(t, m.Schedule(first))

	second := record.NewJob("j2", record.Export, ts(t, "2013-03-01", "00:00:02"), 1)
	require.NoError(t, m.Schedule(second))

	_, placed := second.StartTime()
	assert.True(t, placed, "the second warm-up VM, free since boot delay is within the slack window, should take j2")
}

func TestPlacementFailureAfterWarmupGrace(t *testing.T) {
	cfg := config.Default()
	cfg.Floor = 0
	cfg.MinIdleFraction = 0.0000001
	cfg.WarmupGrace = 0
	m, _ := newManager(cfg)

	first := record.NewJob("j1", record.Export, ts(t, "2013-03-01", "00:00:00"), 10_000_000)
	require.NoError(t, m.Schedule(first))

	second := record.NewJob("j2", record.Export, ts(t, "2013-03-02", "00:00:00"), 1)
	err := m.Schedule(second)
	require.Error(t, err)
	var placementErr *schedulererrors.PlacementFailureError
	assert.ErrorAs(t, err, &placementErr)
}

func TestPoolNeverDropsBelowFloor(t *testing.T) {
	cfg := config.Default()
	cfg.Floor = 3
	cfg.MaxIdleFraction = 0.5
	m, _ := newManager(cfg)

	at := ts(t, "2013-03-01", "00:00:00")
	job := record.NewJob("j1", record.Export, at, 1)
	require.NoError(t, m.Schedule(job))

	assert.GreaterOrEqual(t, m.pools[record.Export].Len(), cfg.Floor)
}

func TestUnknownQueueRejected(t *testing.T) {
	cfg := config.Default()
	m, _ := newManager(cfg)

	job := record.NewJob("j1", record.QueueName("bogus"), ts(t, "2013-03-01", "00:00:00"), 1)
	err := m.Schedule(job)
	require.Error(t, err)
	var unknownErr *schedulererrors.UnknownQueueError
	assert.ErrorAs(t, err, &unknownErr)
}

func TestShutdownRetiresEveryQueue(t *testing.T) {
	cfg := config.Default()
	cfg.Floor = 2
	m, cs := newManager(cfg)

	at := ts(t, "2013-03-01", "00:00:00")
	job := record.NewJob("j1", record.Export, at, 1)
	require.NoError(t, m.Schedule(job))

	launches := cs.countByKind(record.Launch)
	require.NoError(t, m.Shutdown(ts(t, "2013-03-01", "01:00:00")))

	assert.Equal(t, launches, cs.countByKind(record.Terminate), "every launched VM should be terminated exactly once")
	for _, q := range record.AllQueues() {
		assert.Equal(t, 0, m.pools[q].Len())
	}
}

func TestShutdownBeforeAnyJobIsNoop(t *testing.T) {
	cfg := config.Default()
	m, cs := newManager(cfg)

	require.NoError(t, m.Shutdown(ts(t, "2013-03-01", "00:00:00")))
	assert.Empty(t, cs.commands)
}

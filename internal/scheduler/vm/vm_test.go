package vm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prezi/autoscalesim/internal/scheduler/clock"
	"github.com/prezi/autoscalesim/internal/scheduler/record"
)

const bootDelay = 120 * time.Second

func ts(t *testing.T, date, clockTime string) clock.Timestamp {
	parsed, err := clock.Parse(date, clockTime)
	require.NoError(t, err)
	return parsed
}

func TestBootEligibility(t *testing.T) {
	created := ts(t, "2013-03-01", "00:00:00")
	v := New(record.Export, created, bootDelay, 0)

	notYet := created.Add(bootDelay - time.Second)
	assert.False(t, v.FreeNow(notYet, false))
	assert.True(t, v.FreeNow(notYet, true), "ignoring boot, VM is idle")

	justBooted := created.Add(bootDelay)
	assert.True(t, v.FreeNow(justBooted, false))
}

func TestMinutesLeftInHour(t *testing.T) {
	created := ts(t, "2013-03-01", "00:00:00")
	v := New(record.Export, created, bootDelay, 0)

	assert.Equal(t, 60, v.MinutesLeftInHour(created))
	assert.Equal(t, 1, v.MinutesLeftInHour(created.Add(3599*time.Second)))
	assert.Equal(t, 60, v.MinutesLeftInHour(created.Add(3600*time.Second)))
	assert.Equal(t, 59, v.MinutesLeftInHour(created.Add(61*time.Second)))
}

func TestAssignAndLazyCompletion(t *testing.T) {
	created := ts(t, "2013-03-01", "00:00:00")
	v := New(record.Export, created, bootDelay, 0)
	now := created.Add(bootDelay)

	job := record.NewJob("uid1", record.Export, now, 10)
	require.NoError(t, v.Assign(job, now))
	assert.False(t, v.FreeNow(now, false))

	finish := now.Add(10 * time.Second)
	assert.False(t, v.FreeNow(finish.Add(-time.Second), false))
	assert.True(t, v.FreeNow(finish, false), "job must be resolved Idle exactly at completion")
}

func TestZeroLengthJobFreesImmediately(t *testing.T) {
	created := ts(t, "2013-03-01", "00:00:00")
	v := New(record.Export, created, bootDelay, 0)
	now := created.Add(bootDelay)

	job := record.NewJob("uid1", record.Export, now, 0)
	require.NoError(t, v.Assign(job, now))
	assert.True(t, v.FreeNow(now, false))
}

func TestFreeAtBeforeBootComplete(t *testing.T) {
	created := ts(t, "2013-03-01", "00:00:00")
	v := New(record.Export, created, bootDelay, 0)

	early := created.Add(time.Second)
	assert.Equal(t, v.BootCompleteAt(), v.FreeAt(early))
}

func TestFreeAtWhileRunning(t *testing.T) {
	created := ts(t, "2013-03-01", "00:00:00")
	v := New(record.Export, created, bootDelay, 0)
	now := created.Add(bootDelay)

	job := record.NewJob("uid1", record.Export, now, 30)
	require.NoError(t, v.Assign(job, now))

	mid := now.Add(10 * time.Second)
	assert.Equal(t, now.Add(30*time.Second), v.FreeAt(mid))
}

func TestCurrentState(t *testing.T) {
	created := ts(t, "2013-03-01", "00:00:00")
	v := New(record.Export, created, bootDelay, 0)

	assert.Equal(t, Booting, v.CurrentState(created))
	assert.Equal(t, Idle, v.CurrentState(created.Add(bootDelay)))

	job := record.NewJob("uid1", record.Export, created.Add(bootDelay), 5)
	require.NoError(t, v.Assign(job, created.Add(bootDelay)))
	assert.Equal(t, Running, v.CurrentState(created.Add(bootDelay)))

	v.Retire()
	assert.Equal(t, Retired, v.CurrentState(created.Add(bootDelay)))
}

// Package vm implements the per-worker state machine described in the
// scheduler's design: a VM is Booting, then Idle, then Running a job, and
// eventually Retired. Running->Idle transitions are resolved lazily, on
// query, rather than tracked with a timer or event queue — the same choice
// made by the trace this system descends from.
package vm

import (
	"time"

	"github.com/google/uuid"

	"github.com/prezi/autoscalesim/internal/scheduler/clock"
	"github.com/prezi/autoscalesim/internal/scheduler/record"
)

// State is a diagnostic view of a VM's lifecycle stage. It is derived, never
// stored: VM itself keeps its creation time, the current job and a retired
// flag, and CurrentState works the state out from those.
type State int

const (
	Booting State = iota
	Idle
	Running
	Retired
)

func (s State) String() string {
	switch s {
	case Booting:
		return "booting"
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Retired:
		return "retired"
	default:
		return "unknown"
	}
}

// VM is a simulated worker. Its queue and creation time are immutable after
// launch; its current job, if any, changes as jobs are assigned and
// complete.
type VM struct {
	id           string
	queue        record.QueueName
	creationTime clock.Timestamp
	bootComplete clock.Timestamp
	// seq is the VM's position in its pool's launch order. It is used, not
	// the VM's current slice index, to break ties during retirement so that
	// removing earlier VMs never perturbs the FIFO ordering of the rest.
	seq     int64
	job     *record.Job
	retired bool
}

// New constructs a VM launched at createdAt, unable to accept work until
// createdAt+bootDelay.
func New(queue record.QueueName, createdAt clock.Timestamp, bootDelay time.Duration, seq int64) *VM {
	return &VM{
		id:           uuid.NewString(),
		queue:        queue,
		creationTime: createdAt,
		bootComplete: createdAt.Add(bootDelay),
		seq:          seq,
	}
}

func (v *VM) ID() string                      { return v.id }
func (v *VM) Queue() record.QueueName         { return v.queue }
func (v *VM) CreatedAt() clock.Timestamp      { return v.creationTime }
func (v *VM) BootCompleteAt() clock.Timestamp { return v.bootComplete }
func (v *VM) Seq() int64                      { return v.seq }
func (v *VM) Retired() bool                   { return v.retired }

// resolve clears a finished job so that subsequent queries see the VM as
// idle. It is the only place a Running VM transitions back to Idle.
func (v *VM) resolve(now clock.Timestamp) {
	if v.job == nil {
		return
	}
	if !now.Before(v.job.CompletionTime()) {
		v.job = nil
	}
}

// FreeAt returns the earliest time >= now at which this VM can start a new
// job.
func (v *VM) FreeAt(now clock.Timestamp) clock.Timestamp {
	v.resolve(now)
	if v.job != nil {
		return v.job.CompletionTime()
	}
	if now.Before(v.bootComplete) {
		return v.bootComplete
	}
	return now
}

// FreeNow reports whether the VM has no running job at now. With
// ignoreBoot false it additionally requires the VM to be boot-complete.
func (v *VM) FreeNow(now clock.Timestamp, ignoreBoot bool) bool {
	v.resolve(now)
	if v.job != nil {
		return false
	}
	if !ignoreBoot && now.Before(v.bootComplete) {
		return false
	}
	return true
}

// MinutesLeftInHour returns the whole minutes remaining in the VM's current
// billing hour, computed in integer seconds to avoid floating point drift.
// The range is [1, 60]; it is exactly 60 at the creation instant.
func (v *VM) MinutesLeftInHour(now clock.Timestamp) int {
	elapsed := int64(now.Sub(v.creationTime) / time.Second)
	secondsIntoHour := elapsed % 3600
	if secondsIntoHour < 0 {
		secondsIntoHour += 3600
	}
	minutesElapsed := secondsIntoHour / 60
	return 60 - int(minutesElapsed)
}

// Assign places job on this VM at startTime. The caller is responsible for
// having established that the VM is placement-eligible and that startTime
// is the VM's free_at(now); Assign itself only seals the job's start time
// and attaches it.
func (v *VM) Assign(job *record.Job, startTime clock.Timestamp) error {
	if err := job.Place(startTime); err != nil {
		return err
	}
	v.job = job
	return nil
}

// Retire marks the VM terminal. Removing it from its pool is the pool's
// responsibility.
func (v *VM) Retire() {
	v.retired = true
}

// CurrentState reports the VM's derived lifecycle state at now, for
// diagnostics only; nothing in the scheduler branches on it directly.
func (v *VM) CurrentState(now clock.Timestamp) State {
	if v.retired {
		return Retired
	}
	v.resolve(now)
	if v.job != nil {
		return Running
	}
	if now.Before(v.bootComplete) {
		return Booting
	}
	return Idle
}

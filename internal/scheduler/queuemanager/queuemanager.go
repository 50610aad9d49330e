// Package queuemanager implements the scheduler: placement of each
// arriving job onto a VM, and the feedback controller that launches and
// retires VMs to keep each queue's idle fraction within its configured
// band. This is the component the rest of the system exists to support.
package queuemanager

import (
	"math"
	"time"

	"github.com/prezi/autoscalesim/internal/scheduler/clock"
	"github.com/prezi/autoscalesim/internal/scheduler/config"
	"github.com/prezi/autoscalesim/internal/scheduler/logging"
	"github.com/prezi/autoscalesim/internal/scheduler/pool"
	"github.com/prezi/autoscalesim/internal/scheduler/record"
	"github.com/prezi/autoscalesim/internal/scheduler/schedulererrors"
	"github.com/prezi/autoscalesim/internal/scheduler/sink"
	"github.com/prezi/autoscalesim/internal/scheduler/vm"
)

// QueueManager owns the three per-queue pools and implements Schedule and
// Shutdown, the scheduler's only two entry points.
type QueueManager struct {
	cfg     config.Config
	pools   map[record.QueueName]*pool.Pool
	logSink sink.Sink
	log     logging.Logger

	runStart clock.Timestamp
	warmedUp bool
}

// New constructs a QueueManager. commandSink receives every launch/terminate
// command the pools emit; logSink receives one utilization Entry per
// scheduled job (pass sink.Noop{} to disable it).
func New(cfg config.Config, commandSink pool.CommandSink, logSink sink.Sink, log logging.Logger) *QueueManager {
	pools := make(map[record.QueueName]*pool.Pool, len(record.AllQueues()))
	for _, q := range record.AllQueues() {
		pools[q] = pool.New(q, cfg.BootDelay, commandSink)
	}
	return &QueueManager{
		cfg:     cfg,
		pools:   pools,
		logSink: logSink,
		log:     log,
	}
}

// Schedule places job on a VM, or tolerates/fails the miss, then runs the
// launch/retire controller for job's queue.
func (m *QueueManager) Schedule(job *record.Job) error {
	now := job.Arrival

	if !m.warmedUp {
		m.runStart = now
		if err := m.warmUp(now); err != nil {
			return err
		}
		m.warmedUp = true
	}

	p, ok := m.pools[job.Queue]
	if !ok {
		return &schedulererrors.UnknownQueueError{Queue: string(job.Queue)}
	}

	freeIgnoringBoot, freeReal, target := countAndFindTarget(p, now, m.cfg.PlacementSlack)

	if err := m.place(job, target, now); err != nil {
		return err
	}

	sizeAtEntry := p.Len()
	freeIgnoringBoot, err := m.retireSurplus(p, now, freeIgnoringBoot, sizeAtEntry)
	if err != nil {
		return err
	}
	if err := m.raiseToFloor(p, now, &freeIgnoringBoot); err != nil {
		return err
	}
	if err := m.raiseToMinIdle(p, now, freeIgnoringBoot); err != nil {
		return err
	}

	return m.recordUtilization(p, job.Queue, now, freeReal)
}

// warmUp initializes each queue with exactly Floor VMs, launched at `at`.
// It runs once, on the very first call to Schedule.
func (m *QueueManager) warmUp(at clock.Timestamp) error {
	for _, q := range record.AllQueues() {
		for i := 0; i < m.cfg.Floor; i++ {
			if _, err := m.pools[q].Launch(at); err != nil {
				return err
			}
		}
	}
	return nil
}

// countAndFindTarget walks the pool once, computing the two idle counters
// and the first placement-eligible VM, in pool (launch) order.
func countAndFindTarget(p *pool.Pool, now clock.Timestamp, slack time.Duration) (freeIgnoringBoot, freeReal int, target *vm.VM) {
	deadline := now.Add(slack)
	for _, v := range p.VMs() {
		if v.FreeNow(now, true) {
			freeIgnoringBoot++
		}
		if v.FreeNow(now, false) {
			freeReal++
		}
		if target == nil && v.FreeAt(now).Before(deadline) {
			target = v
		}
	}
	return freeIgnoringBoot, freeReal, target
}

// place assigns job to target if one was found; otherwise it tolerates the
// miss during warm-up grace or fails placement permanently.
func (m *QueueManager) place(job *record.Job, target *vm.VM, now clock.Timestamp) error {
	if target != nil {
		startTime := target.FreeAt(now)
		return target.Assign(job, startTime)
	}
	if now.Sub(m.runStart) <= m.cfg.WarmupGrace {
		m.log.Warnf("no VM available to place job %s on queue %s at %s; tolerated during warm-up grace", job.UID, job.Queue, now)
		return nil
	}
	return &schedulererrors.PlacementFailureError{
		JobID:   string(job.UID),
		Queue:   string(job.Queue),
		Arrival: now.Time(),
	}
}

// retireSurplus implements step 4: if the pool has grown too idle, retire
// the excess, but never past the point where free_ignoring_boot would drop
// to or below Floor.
func (m *QueueManager) retireSurplus(p *pool.Pool, now clock.Timestamp, freeIgnoringBoot, sizeAtEntry int) (int, error) {
	if sizeAtEntry == 0 {
		return freeIgnoringBoot, nil
	}
	idleFraction := float64(freeIgnoringBoot) / float64(sizeAtEntry)
	if idleFraction <= m.cfg.MaxIdleFraction {
		return freeIgnoringBoot, nil
	}
	n := int(math.Ceil(float64(freeIgnoringBoot) - m.cfg.MaxIdleFraction*float64(sizeAtEntry)))
	if n <= 0 || freeIgnoringBoot-n <= m.cfg.Floor {
		return freeIgnoringBoot, nil
	}
	retired, err := p.Retire(now, n, m.cfg.Floor, m.cfg.RetireDeadline)
	if err != nil {
		return freeIgnoringBoot, err
	}
	return freeIgnoringBoot - retired, nil
}

// raiseToFloor implements step 5: launch enough VMs that free_ignoring_boot
// reaches Floor.
func (m *QueueManager) raiseToFloor(p *pool.Pool, now clock.Timestamp, freeIgnoringBoot *int) error {
	if *freeIgnoringBoot >= m.cfg.Floor {
		return nil
	}
	toLaunch := m.cfg.Floor - *freeIgnoringBoot
	for i := 0; i < toLaunch; i++ {
		if _, err := p.Launch(now); err != nil {
			return err
		}
	}
	*freeIgnoringBoot = m.cfg.Floor
	return nil
}

// raiseToMinIdle implements step 6: launch enough additional VMs that the
// idle fraction, computed against the pool size after step 5's growth,
// reaches MinIdleFraction.
func (m *QueueManager) raiseToMinIdle(p *pool.Pool, now clock.Timestamp, freeIgnoringBoot int) error {
	size := p.Len()
	if size == 0 {
		return nil
	}
	if float64(freeIgnoringBoot)/float64(size) >= m.cfg.MinIdleFraction {
		return nil
	}
	additional := int(math.Ceil(m.cfg.MinIdleFraction*float64(size) - float64(freeIgnoringBoot)))
	for i := 0; i < additional; i++ {
		if _, err := p.Launch(now); err != nil {
			return err
		}
	}
	return nil
}

// recordUtilization implements step 7, the optional per-tick log line.
// freeReal is the count observed before placement and the controller ran;
// the pool size and the derived min-idle count are taken after the
// controller's launches and retirements for this job.
func (m *QueueManager) recordUtilization(p *pool.Pool, queue record.QueueName, now clock.Timestamp, freeReal int) error {
	size := p.Len()
	minIdleCount := int(math.Floor(m.cfg.MinIdleFraction * float64(size)))
	return m.logSink.Record(sink.Entry{
		At:           now,
		Queue:        queue,
		PoolSize:     size,
		FreeReal:     freeReal,
		MinIdleCount: minIdleCount,
	})
}

// Shutdown retires every remaining VM in every pool, in queue order, at at.
// It is a no-op if the run never warmed up (no jobs were ever scheduled).
func (m *QueueManager) Shutdown(at clock.Timestamp) error {
	if !m.warmedUp {
		return nil
	}
	for _, q := range record.AllQueues() {
		if err := m.pools[q].Shutdown(at); err != nil {
			return err
		}
	}
	return nil
}

// Package pool implements the per-queue ordered collection of VMs: the
// launch, retire, and shutdown operations the scheduler's controller drives.
package pool

import (
	"container/heap"
	"time"

	"github.com/pkg/errors"

	"github.com/prezi/autoscalesim/internal/scheduler/clock"
	"github.com/prezi/autoscalesim/internal/scheduler/record"
	"github.com/prezi/autoscalesim/internal/scheduler/vm"
)

// CommandSink receives the launch/terminate commands a Pool emits as a
// side effect of its operations.
type CommandSink interface {
	Emit(cmd record.Command) error
}

// Pool is the ordered, FIFO-of-launches collection of VMs for one queue.
type Pool struct {
	queue     record.QueueName
	bootDelay time.Duration
	sink      CommandSink
	vms       []*vm.VM
	nextSeq   int64
}

// New constructs an empty pool for queue, whose commands are written to
// sink.
func New(queue record.QueueName, bootDelay time.Duration, sink CommandSink) *Pool {
	return &Pool{
		queue:     queue,
		bootDelay: bootDelay,
		sink:      sink,
	}
}

// Queue returns the queue this pool belongs to.
func (p *Pool) Queue() record.QueueName { return p.queue }

// Len returns the current pool size.
func (p *Pool) Len() int { return len(p.vms) }

// VMs returns the pool's VMs in launch order. Callers must not mutate the
// returned slice.
func (p *Pool) VMs() []*vm.VM { return p.vms }

// Launch constructs a VM with creation_time=at, appends it to the pool, and
// emits a launch command. It fails only if emitting the command fails (e.g.
// a broken downstream pipe).
func (p *Pool) Launch(at clock.Timestamp) (*vm.VM, error) {
	v := vm.New(p.queue, at, p.bootDelay, p.nextSeq)
	p.nextSeq++
	p.vms = append(p.vms, v)
	if err := p.sink.Emit(record.Command{Kind: record.Launch, Queue: p.queue, At: at}); err != nil {
		return nil, err
	}
	return v, nil
}

// Retire retires up to n VMs, never reducing the pool below floor. It
// prefers VMs with the fewest whole minutes remaining in their current
// billing hour, among those with fewer than deadline minutes remaining;
// within a tie it prefers the VM launched earliest. It returns the number
// of VMs actually retired; asking for more than is available to stop is not
// an error.
func (p *Pool) Retire(at clock.Timestamp, n int, floor int, deadline time.Duration) (int, error) {
	stoppable := len(p.vms) - floor
	if stoppable < 0 {
		stoppable = 0
	}
	if n > stoppable {
		n = stoppable
	}
	if n <= 0 {
		return 0, nil
	}

	deadlineMinutes := int(deadline / time.Minute)
	candidates := p.retirementCandidates(at, deadlineMinutes)
	heap.Init(candidates)

	retired := 0
	for retired < n && candidates.Len() > 0 {
		c := heap.Pop(candidates).(candidate)
		if err := p.removeAndRetire(c.vm, at); err != nil {
			return retired, err
		}
		retired++
	}
	return retired, nil
}

// Shutdown retires every remaining VM in the pool, in launch order, emitting
// a terminate command for each. Used at end-of-stream only.
func (p *Pool) Shutdown(at clock.Timestamp) error {
	for _, v := range p.vms {
		v.Retire()
		if err := p.sink.Emit(record.Command{Kind: record.Terminate, Queue: p.queue, At: at}); err != nil {
			return err
		}
	}
	p.vms = nil
	return nil
}

// candidate pairs a VM with its precomputed minutes-left, so the heap
// comparator never has to recompute it.
type candidate struct {
	vm          *vm.VM
	minutesLeft int
}

// candidateHeap orders retirement candidates ascending by minutes left in
// the current billing hour, and within a tie by launch order — the same
// two-key comparison armada's simulator EventLog uses for (time,
// sequenceNumber).
type candidateHeap []candidate

func (h candidateHeap) Len() int { return len(h) }

func (h candidateHeap) Less(i, j int) bool {
	if h[i].minutesLeft != h[j].minutesLeft {
		return h[i].minutesLeft < h[j].minutesLeft
	}
	return h[i].vm.Seq() < h[j].vm.Seq()
}

func (h candidateHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *candidateHeap) Push(x any) { *h = append(*h, x.(candidate)) }

func (h *candidateHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func (p *Pool) retirementCandidates(at clock.Timestamp, deadlineMinutes int) *candidateHeap {
	h := make(candidateHeap, 0, len(p.vms))
	for _, v := range p.vms {
		minutesLeft := v.MinutesLeftInHour(at)
		if minutesLeft < deadlineMinutes {
			h = append(h, candidate{vm: v, minutesLeft: minutesLeft})
		}
	}
	return &h
}

func (p *Pool) removeAndRetire(v *vm.VM, at clock.Timestamp) error {
	idx := -1
	for i, candidate := range p.vms {
		if candidate == v {
			idx = i
			break
		}
	}
	if idx == -1 {
		return errors.Errorf("VM %s is not a member of this pool", v.ID())
	}
	p.vms = append(p.vms[:idx], p.vms[idx+1:]...)
	v.Retire()
	return p.sink.Emit(record.Command{Kind: record.Terminate, Queue: p.queue, At: at})
}

package record

import (
	"fmt"

	"github.com/prezi/autoscalesim/internal/scheduler/clock"
)

// CommandKind distinguishes the two VM lifecycle commands.
type CommandKind int

const (
	Launch CommandKind = iota
	Terminate
)

func (k CommandKind) String() string {
	switch k {
	case Launch:
		return "launch"
	case Terminate:
		return "terminate"
	default:
		return "unknown"
	}
}

// Command is a VM lifecycle instruction: launch or terminate a VM in a
// given queue at a given time.
type Command struct {
	Kind  CommandKind
	Queue QueueName
	At    clock.Timestamp
}

// Line renders the command in the wire format:
// "YYYY-MM-DD HH:MM:SS <launch|terminate> <queue>".
func (c Command) Line() string {
	return fmt.Sprintf("%s %s %s", c.At, c.Kind, c.Queue)
}

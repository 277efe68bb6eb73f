package tendon

import "time"

// EventSink receives a SolveEvent after every Solve call. Set one with
// Armature.SetEventSink to feed metrics or an ECS world.
type EventSink interface {
	EmitEvent(event SolveEvent)
}

// SolveEvent describes one completed Solve call.
type SolveEvent struct {
	ArmatureID          string
	Armature            string
	Start               string // name of the bone solving started from
	Segments            int
	Iterations          int
	StabilizationPasses int
	Error               float64 // Armature.Error after solving
	Duration            time.Duration
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(SolveEvent)

// EmitEvent calls f(event).
func (f EventSinkFunc) EmitEvent(event SolveEvent) {
	f(event)
}

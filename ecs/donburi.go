package ecs

import (
	"github.com/phanxgames/tendon"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"
)

// SolveEventType is the Donburi event type for tendon solve events.
var SolveEventType = events.NewEventType[tendon.SolveEvent]()

// ArmatureData is the component value attached to rigged entities.
type ArmatureData struct {
	Armature *tendon.Armature
	// Disabled entities are skipped by SolveArmatures.
	Disabled bool
}

// ArmatureComponent stores an armature on an entity.
var ArmatureComponent = donburi.NewComponentType[ArmatureData]()

var armatureQuery = donburi.NewQuery(filter.Contains(ArmatureComponent))

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates an EventSink backed by a Donburi world. Solve
// events are published to SolveEventType and can be consumed with
// events.Subscribe and ProcessEvents.
func NewDonburiSink(world donburi.World) tendon.EventSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) EmitEvent(event tendon.SolveEvent) {
	SolveEventType.Publish(s.world, event)
}

// AddArmature creates an entity carrying a, and routes a's solve events
// into world.
func AddArmature(world donburi.World, a *tendon.Armature) donburi.Entity {
	entity := world.Create(ArmatureComponent)
	ArmatureComponent.SetValue(world.Entry(entity), ArmatureData{Armature: a})
	a.SetEventSink(NewDonburiSink(world))
	return entity
}

// SolveArmatures solves every enabled armature in world once and returns
// how many were solved.
func SolveArmatures(world donburi.World) int {
	n := 0
	armatureQuery.Each(world, func(entry *donburi.Entry) {
		data := ArmatureComponent.Get(entry)
		if data.Disabled || data.Armature == nil {
			return
		}
		data.Armature.SolveAll()
		n++
	})
	return n
}

// Package ecs provides ECS adapters for tendon armatures.
//
// [NewDonburiSink] bridges solve events into a [Donburi] world as typed
// events. Subscribe to [SolveEventType] in your ECS systems to receive
// them. [ArmatureComponent] stores an armature on an entity and
// [SolveArmatures] solves every such entity once per call.
//
// Usage:
//
//	entity := ecs.AddArmature(world, armature)
//	...
//	ecs.SolveArmatures(world) // in the update system
//	ecs.SolveEventType.ProcessEvents(world)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs

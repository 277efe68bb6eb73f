// Package tendon is a multi-effector inverse kinematics solver for
// hierarchical skeletal rigs.
//
// Given a tree of rigid bones, some of which carry targets ("pins"),
// tendon computes a rotation per bone that brings the pinned bones as
// close as possible to their targets while keeping every bone inside its
// rotational limits. Bone lengths and the hierarchy never change.
//
// # Quick start
//
//	arm, _ := tendon.NewArmature("arm", tendon.DefaultSolverConfig())
//	shoulder, _ := arm.NewRoot("shoulder", mgl64.Vec3{}, mgl64.QuatIdent(), 10)
//	elbow, _ := shoulder.NewChildAtTip("elbow", mgl64.QuatIdent(), 10)
//	wrist, _ := elbow.NewChildAtTip("wrist", mgl64.QuatIdent(), 10)
//
//	pin := wrist.EnablePin()
//	pin.SetTargetPosition(mgl64.Vec3{15, 10, 0})
//
//	// once per frame:
//	arm.SolveAll()
//	tip := wrist.Tip()
//
// # Frames and bones
//
// Every [Bone] owns a [Frame]: a local rigid transform relative to its
// parent bone's frame (the root's parent is the armature's reference
// frame, see [Armature.Frame]). A bone extends along its local +Y axis;
// its base is the frame origin and its tip is Length units further.
//
// Frames cache their global transform. Mutations mark a frame and all of
// its descendants dirty at once, and [Frame.Global] recomputes lazily.
//
// # Pins
//
// A [Pin] attached to a bone holds a target frame and priority weights for
// position and for each orientation axis. [Bone.EnablePin] creates one at
// the bone's current tip. Targets can be driven directly or animated with
// [TweenPinPosition] and [TweenPinRotation] (via [gween]).
//
// # Constraints
//
// [ConeConstraint] limits swing with an ordered strip of circular limit
// cones and optionally limits twist about the bone axis to an arc.
// [HingeConstraint] allows rotation about one axis between two angles.
// Constraints are expressed relative to the bone's rest rotation.
//
// # Solving
//
// [Armature.Solve] segments the skeleton into chains around pinned bones
// ([Armature.Segments]), then runs a fixed number of damped sweeps. Each
// bone takes the rotation that best aligns all pins below it with their
// targets (a weighted least-squares alignment), clamped to the damping
// angle, and is then projected back into its constraint. Optional
// stabilization passes reject steps that would increase a bone's error.
//
// # Thread safety
//
// An [Armature] and its bones are not safe for concurrent use. Update pins
// between solves on the solving goroutine. Independent armatures can be
// solved in parallel.
//
// [gween]: https://github.com/tanema/gween
package tendon

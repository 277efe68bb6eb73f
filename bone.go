package tendon

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Bone is a rigid segment of the skeleton. It owns its coordinate frame,
// its children, and optionally a Constraint and a Pin.
//
// The frame's origin is the bone's base; the bone extends Length units
// along its local +Y axis to its tip. A bone's frame is always parented to
// its parent bone's frame, or to the armature's reference frame for the
// root.
type Bone struct {
	// Identity
	ID   uint32
	Name string

	// Hierarchy
	armature *Armature
	parent   *Bone
	children []*Bone

	frame  *Frame
	length float64
	rest   mgl64.Quat

	constraint Constraint
	pin        *Pin

	// lastStep is the axis*angle of the solver's previous step on this
	// bone, in world space. Stabilizing passes use it to detect reversals.
	lastStep mgl64.Vec3

	// sweepStart is the local rotation at the start of the current solver
	// iteration. The damping angle bounds the turn away from it.
	sweepStart mgl64.Quat

	disposed bool
}

func newBone(name string, offset mgl64.Vec3, rotation mgl64.Quat, length float64) (*Bone, error) {
	if length < 0 {
		return nil, fmt.Errorf("tendon: new bone %q: %w", name, ErrInvalidLength)
	}
	b := &Bone{
		Name:   name,
		frame:  NewFrame(NewTransform(offset, rotation)),
		length: length,
	}
	b.rest = b.frame.local.Rotation
	return b, nil
}

// NewChild creates a bone attached to b. offset and rotation are the
// child's rest transform relative to b's frame; an offset of
// (0, b.Length(), 0) puts the child's base at b's tip.
func (b *Bone) NewChild(name string, offset mgl64.Vec3, rotation mgl64.Quat, length float64) (*Bone, error) {
	if b.disposed {
		return nil, fmt.Errorf("tendon: new child %q of %q: %w", name, b.Name, ErrDisposed)
	}
	child, err := newBone(name, offset, rotation, length)
	if err != nil {
		return nil, err
	}
	b.attach(child)
	return child, nil
}

// NewChildAtTip creates a child whose base sits at b's tip.
func (b *Bone) NewChildAtTip(name string, rotation mgl64.Quat, length float64) (*Bone, error) {
	return b.NewChild(name, mgl64.Vec3{0, b.length, 0}, rotation, length)
}

// --- Accessors ---

// Armature returns the owning armature, or nil for a detached bone.
func (b *Bone) Armature() *Armature {
	return b.armature
}

// Parent returns the parent bone, or nil for a root or detached bone.
func (b *Bone) Parent() *Bone {
	return b.parent
}

// Children returns the child list in insertion order. The returned slice
// MUST NOT be mutated by the caller.
func (b *Bone) Children() []*Bone {
	return b.children
}

// NumChildren returns the number of children.
func (b *Bone) NumChildren() int {
	return len(b.children)
}

// Frame returns the bone's coordinate frame. Mutate it through the bone's
// rotation methods so constraints are honored.
func (b *Bone) Frame() *Frame {
	return b.frame
}

// Length returns the bone's fixed length.
func (b *Bone) Length() float64 {
	return b.length
}

// RestRotation returns the local rotation constraints are measured from.
func (b *Bone) RestRotation() mgl64.Quat {
	return b.rest
}

// SetRestPose records the current local rotation as the rest rotation.
func (b *Bone) SetRestPose() {
	b.rest = b.frame.local.Rotation
}

// LocalTransform returns the bone's transform relative to its parent.
func (b *Bone) LocalTransform() Transform {
	return b.frame.Local()
}

// LocalRotation returns the bone's rotation relative to its parent.
func (b *Bone) LocalRotation() mgl64.Quat {
	return b.frame.local.Rotation
}

// GlobalTransform returns the bone's frame in world space.
func (b *Bone) GlobalTransform() Transform {
	return b.frame.Global()
}

// Origin returns the world position of the bone's base.
func (b *Bone) Origin() mgl64.Vec3 {
	return b.frame.Global().Translation
}

// Axis returns the world direction the bone points in.
func (b *Bone) Axis() mgl64.Vec3 {
	return b.frame.Global().Axis(Y)
}

// Tip returns the world position of the bone's tip.
func (b *Bone) Tip() mgl64.Vec3 {
	g := b.frame.Global()
	return g.Point(mgl64.Vec3{0, b.length, 0})
}

// TipTransform returns the world transform of the bone's tip: the bone's
// orientation placed at its tip.
func (b *Bone) TipTransform() Transform {
	g := b.frame.Global()
	return Transform{Translation: g.Point(mgl64.Vec3{0, b.length, 0}), Rotation: g.Rotation}
}

// Depth returns the number of ancestors above b.
func (b *Bone) Depth() int {
	d := 0
	for p := b.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// IsDisposed reports whether the bone has been disposed.
func (b *Bone) IsDisposed() bool {
	return b.disposed
}

// Walk visits b and its descendants in pre-order (children in insertion
// order). Returning false from fn skips the visited bone's subtree.
func (b *Bone) Walk(fn func(*Bone) bool) {
	if !fn(b) {
		return
	}
	for _, c := range b.children {
		c.Walk(fn)
	}
}

// --- Rotation ---

// SetLocalRotation replaces the local rotation, then applies the
// constraint.
func (b *Bone) SetLocalRotation(rotation mgl64.Quat) {
	b.setRotation(rotation)
}

// RotateAboutLocalX rotates the bone about its own X axis.
func (b *Bone) RotateAboutLocalX(angle float64) {
	b.rotateAboutLocal(AxisX, angle)
}

// RotateAboutLocalY rotates the bone about its own Y axis (twist).
func (b *Bone) RotateAboutLocalY(angle float64) {
	b.rotateAboutLocal(AxisY, angle)
}

// RotateAboutLocalZ rotates the bone about its own Z axis.
func (b *Bone) RotateAboutLocalZ(angle float64) {
	b.rotateAboutLocal(AxisZ, angle)
}

func (b *Bone) rotateAboutLocal(axis mgl64.Vec3, angle float64) {
	b.setRotation(b.frame.local.Rotation.Mul(mgl64.QuatRotate(angle, axis)))
}

// rotateGlobal applies a world-space rotation about the bone's origin.
// With P the parent's world rotation, the local delta is P⁻¹ R P.
func (b *Bone) rotateGlobal(r mgl64.Quat) {
	p := mgl64.QuatIdent()
	if b.frame.parent != nil {
		p = b.frame.parent.Global().Rotation
	}
	delta := p.Conjugate().Mul(r).Mul(p)
	b.setRotation(delta.Mul(b.frame.local.Rotation))
}

// setRotation stores a local rotation after constraint projection and
// marks the frame dirty.
func (b *Bone) setRotation(rotation mgl64.Quat) {
	rotation = normalizeQuat(rotation)
	if b.constraint != nil && b.constraint.Enabled() {
		delta := b.rest.Conjugate().Mul(rotation)
		rotation = normalizeQuat(b.rest.Mul(b.constraint.Project(delta)))
	}
	b.frame.SetRotation(rotation)
}

// --- Constraint ---

// Constraint returns the attached constraint, or nil.
func (b *Bone) Constraint() Constraint {
	return b.constraint
}

// SetConstraint attaches c, replacing any previous constraint, and snaps
// the current pose into it. A nil c removes the constraint.
func (b *Bone) SetConstraint(c Constraint) {
	b.constraint = c
	if c != nil {
		b.setRotation(b.frame.local.Rotation)
	}
}

// RemoveConstraint detaches the constraint.
func (b *Bone) RemoveConstraint() {
	b.constraint = nil
}

// --- Pin ---

// Pin returns the attached pin, or nil.
func (b *Bone) Pin() *Pin {
	return b.pin
}

// IsPinned reports whether b carries an enabled pin.
func (b *Bone) IsPinned() bool {
	return b.pin != nil && b.pin.enabled
}

// EnablePin attaches a new enabled pin whose target is the bone's current
// tip frame, replacing any previous pin.
func (b *Bone) EnablePin() *Pin {
	p := NewPin(b.TipTransform())
	b.SetPin(p)
	return p
}

// DisablePin disables the attached pin, keeping it and its target.
func (b *Bone) DisablePin() {
	if b.pin != nil {
		b.pin.SetEnabled(false)
	}
}

// SetPin attaches p, replacing any previous pin. A pin attached elsewhere
// is moved to b. A nil p removes the pin.
func (b *Bone) SetPin(p *Pin) {
	if b.pin == p {
		return
	}
	if b.pin != nil {
		b.pin.bone = nil
	}
	if p != nil && p.bone != nil {
		p.bone.pin = nil
		p.bone.invalidate()
	}
	b.pin = p
	if p != nil {
		p.bone = b
	}
	b.invalidate()
}

// RemovePin detaches the pin.
func (b *Bone) RemovePin() {
	b.SetPin(nil)
}

// MostImmediatelyPinnedDescendants returns, for each branch below b, the
// nearest descendant carrying an enabled pin, without descending past it.
// Bones are reported in pre-order of the child lists.
func (b *Bone) MostImmediatelyPinnedDescendants() []*Bone {
	var out []*Bone
	for _, c := range b.children {
		c.collectPinned(&out)
	}
	return out
}

func (b *Bone) collectPinned(out *[]*Bone) {
	if b.IsPinned() {
		*out = append(*out, b)
		return
	}
	for _, c := range b.children {
		c.collectPinned(out)
	}
}

// --- Topology ---

// SetParent moves b (with its subtree) under parent. The local transform
// keeps its values. It fails with ErrBoneCycle if parent is b or one of
// its descendants, and with ErrForeignBone if both bones belong to
// different armatures; the tree is unchanged in both cases.
func (b *Bone) SetParent(parent *Bone) error {
	if parent == nil {
		return fmt.Errorf("tendon: reparent %q: nil parent", b.Name)
	}
	if b.disposed || parent.disposed {
		return fmt.Errorf("tendon: reparent %q: %w", b.Name, ErrDisposed)
	}
	if isAncestor(b, parent) {
		return fmt.Errorf("tendon: reparent %q under %q: %w", b.Name, parent.Name, ErrBoneCycle)
	}
	if b.armature != nil && parent.armature != nil && b.armature != parent.armature {
		return fmt.Errorf("tendon: reparent %q under %q: %w", b.Name, parent.Name, ErrForeignBone)
	}
	if b.parent == parent {
		return nil
	}
	if b.armature != nil && b.armature == parent.armature {
		b.move(parent)
		return nil
	}
	b.detach()
	parent.attach(b)
	return nil
}

// Detach removes b and its subtree from the armature. The detached subtree
// stays usable and can be reattached with SetParent. Detaching the root
// leaves the armature empty.
func (b *Bone) Detach() {
	b.detach()
}

// Dispose detaches b and recursively disposes its subtree.
func (b *Bone) Dispose() {
	if b.disposed {
		return
	}
	b.detach()
	b.dispose()
}

func (b *Bone) dispose() {
	b.disposed = true
	b.ID = 0
	for _, c := range b.children {
		c.parent = nil
		c.dispose()
	}
	b.children = nil
	b.parent = nil
	b.constraint = nil
	if b.pin != nil {
		b.pin.bone = nil
		b.pin = nil
	}
	b.frame.setParent(nil)
}

// attach appends child (detached) to b's children and adopts it into b's
// armature.
func (b *Bone) attach(child *Bone) {
	child.parent = b
	b.children = append(b.children, child)
	child.frame.setParent(b.frame)
	if a := b.armature; a != nil {
		a.adopt(child)
		a.invalidate()
		if a.debug {
			a.debugCheckTreeDepth(child)
			a.debugCheckChildCount(b)
		}
	}
}

// move reparents b within its armature, keeping the subtree's IDs. b is
// not the root, since the root is an ancestor of every bone.
func (b *Bone) move(parent *Bone) {
	b.parent.removeChild(b)
	b.parent = parent
	parent.children = append(parent.children, b)
	b.frame.setParent(parent.frame)
	a := b.armature
	a.invalidate()
	if a.debug {
		a.debugCheckTreeDepth(b)
		a.debugCheckChildCount(parent)
	}
}

// detach unlinks b from its parent (or the armature root slot) and clears
// armature membership for the subtree.
func (b *Bone) detach() {
	a := b.armature
	if b.parent != nil {
		b.parent.removeChild(b)
		b.parent = nil
	}
	if a != nil && a.root == b {
		a.root = nil
	}
	b.frame.setParent(nil)
	if a != nil {
		b.Walk(func(d *Bone) bool {
			d.armature = nil
			return true
		})
		a.invalidate()
	}
}

// removeChild removes child from b.children without clearing
// child.parent.
func (b *Bone) removeChild(child *Bone) {
	for i, c := range b.children {
		if c == child {
			copy(b.children[i:], b.children[i+1:])
			b.children[len(b.children)-1] = nil
			b.children = b.children[:len(b.children)-1]
			return
		}
	}
}

// invalidate drops the owning armature's cached segmentation.
func (b *Bone) invalidate() {
	if b.armature != nil {
		b.armature.invalidate()
	}
}

// isAncestor reports whether candidate is node or one of its ancestors.
func isAncestor(candidate, node *Bone) bool {
	for p := node; p != nil; p = p.parent {
		if p == candidate {
			return true
		}
	}
	return false
}

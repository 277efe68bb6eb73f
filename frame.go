package tendon

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Frame is a coordinate frame: a local transform relative to an optional
// parent frame, with a lazily recomputed global transform.
//
// Mutating a frame marks it and every descendant dirty immediately, so a
// read never walks ancestors to discover staleness. Global recomputes only
// the dirty part of the ancestor chain and caches the result.
//
// A frame never owns its parent. It keeps a list of children only to push
// invalidation down the tree.
type Frame struct {
	local    Transform
	global   Transform
	parent   *Frame
	children []*Frame
	dirty    bool
}

// NewFrame creates a parentless frame with the given local transform.
func NewFrame(local Transform) *Frame {
	return &Frame{
		local: NewTransform(local.Translation, local.Rotation),
		dirty: true,
	}
}

// Local returns the frame's transform relative to its parent.
func (f *Frame) Local() Transform {
	return f.local
}

// SetLocal replaces the local translation and rotation and marks the frame
// dirty.
func (f *Frame) SetLocal(translation mgl64.Vec3, rotation mgl64.Quat) {
	f.local = NewTransform(translation, rotation)
	f.markDirty()
}

// SetTranslation replaces the local translation.
func (f *Frame) SetTranslation(translation mgl64.Vec3) {
	f.local.Translation = translation
	f.markDirty()
}

// SetRotation replaces the local rotation.
func (f *Frame) SetRotation(rotation mgl64.Quat) {
	f.local.Rotation = normalizeQuat(rotation)
	f.markDirty()
}

// Translate moves the frame by delta, expressed in parent space.
func (f *Frame) Translate(delta mgl64.Vec3) {
	f.local.Translation = f.local.Translation.Add(delta)
	f.markDirty()
}

// RotateAboutAxis composes a rotation of angle radians about axis into the
// local orientation. The axis is expressed in the parent's space.
func (f *Frame) RotateAboutAxis(axis mgl64.Vec3, angle float64) {
	f.local.Rotation = normalizeQuat(axisAngleQuat(axis, angle).Mul(f.local.Rotation))
	f.markDirty()
}

// RotateAboutLocalAxis composes a rotation of angle radians about one of
// the frame's own axes.
func (f *Frame) RotateAboutLocalAxis(axis mgl64.Vec3, angle float64) {
	f.local.Rotation = normalizeQuat(f.local.Rotation.Mul(axisAngleQuat(axis, angle)))
	f.markDirty()
}

// Global returns the frame's transform in world space, recomputing it if
// the frame is dirty.
func (f *Frame) Global() Transform {
	if f.dirty {
		if f.parent != nil {
			f.global = f.parent.Global().Mul(f.local)
		} else {
			f.global = f.local
		}
		f.dirty = false
	}
	return f.global
}

// IsDirty reports whether the cached global transform is stale.
func (f *Frame) IsDirty() bool {
	return f.dirty
}

// Parent returns the parent frame, or nil.
func (f *Frame) Parent() *Frame {
	return f.parent
}

// SetParent reattaches the frame under parent (nil detaches it). The
// local transform keeps its numeric values, so the global transform
// generally changes. Parenting a frame to itself or to one of its
// descendants returns ErrFrameCycle and leaves the hierarchy unchanged.
func (f *Frame) SetParent(parent *Frame) error {
	for p := parent; p != nil; p = p.parent {
		if p == f {
			return ErrFrameCycle
		}
	}
	f.setParent(parent)
	return nil
}

// setParent reattaches without the cycle check. Bone topology already
// guarantees acyclicity for bone frames.
func (f *Frame) setParent(parent *Frame) {
	if f.parent == parent {
		f.markDirty()
		return
	}
	if f.parent != nil {
		f.parent.removeChild(f)
	}
	f.parent = parent
	if parent != nil {
		parent.children = append(parent.children, f)
	}
	f.dirty = false // force the walk below to reach every descendant
	f.markDirty()
}

// LocalToGlobal maps a point in the frame's space to world space.
func (f *Frame) LocalToGlobal(p mgl64.Vec3) mgl64.Vec3 {
	return f.Global().Point(p)
}

// GlobalToLocal maps a world-space point into the frame's space.
func (f *Frame) GlobalToLocal(p mgl64.Vec3) mgl64.Vec3 {
	return f.Global().Inverse().Point(p)
}

// markDirty flags this frame and all of its descendants. A dirty frame's
// descendants are always dirty too, so the walk stops early there.
func (f *Frame) markDirty() {
	if f.dirty {
		return
	}
	f.dirty = true
	for _, c := range f.children {
		c.markDirty()
	}
}

// removeChild drops c from the child list without touching c.parent.
func (f *Frame) removeChild(c *Frame) {
	for i, x := range f.children {
		if x == c {
			copy(f.children[i:], f.children[i+1:])
			f.children[len(f.children)-1] = nil
			f.children = f.children[:len(f.children)-1]
			return
		}
	}
}

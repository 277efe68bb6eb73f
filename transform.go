package tendon

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Transform is a rigid transform: a rotation followed by a translation.
// Bones are rigid, so there is no scale or skew.
type Transform struct {
	Translation mgl64.Vec3
	Rotation    mgl64.Quat
}

// IdentityTransform leaves points and directions unchanged.
var IdentityTransform = Transform{Rotation: mgl64.QuatIdent()}

// NewTransform builds a Transform from a translation and a rotation. The
// rotation is normalized; a zero quaternion becomes the identity.
func NewTransform(translation mgl64.Vec3, rotation mgl64.Quat) Transform {
	return Transform{Translation: translation, Rotation: normalizeQuat(rotation)}
}

// Mul composes two transforms: result = t * c, so c is applied first.
func (t Transform) Mul(c Transform) Transform {
	return Transform{
		Translation: t.Translation.Add(t.Rotation.Rotate(c.Translation)),
		Rotation:    normalizeQuat(t.Rotation.Mul(c.Rotation)),
	}
}

// Inverse returns the transform that undoes t.
func (t Transform) Inverse() Transform {
	inv := t.Rotation.Conjugate()
	return Transform{
		Translation: inv.Rotate(t.Translation).Mul(-1),
		Rotation:    inv,
	}
}

// Point maps a point from the transform's local space to its parent space.
func (t Transform) Point(p mgl64.Vec3) mgl64.Vec3 {
	return t.Translation.Add(t.Rotation.Rotate(p))
}

// Direction maps a direction from local to parent space (no translation).
func (t Transform) Direction(d mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(d)
}

// Axis returns one of the transform's basis axes in parent space.
func (t Transform) Axis(a Axis) mgl64.Vec3 {
	return t.Rotation.Rotate(a.Vec())
}

// ApproxEqual reports whether both transforms agree within threshold: no
// translation component differs by more than threshold and the rotations
// differ by at most threshold radians. The rotations are compared as
// orientations, so q and -q are equal.
func (t Transform) ApproxEqual(o Transform, threshold float64) bool {
	if !vecWithin(t.Translation, o.Translation, threshold) {
		return false
	}
	return rotationAngle(t.Rotation.Conjugate().Mul(o.Rotation)) <= threshold
}

// vecWithin compares component-wise with an absolute tolerance.
func vecWithin(a, b mgl64.Vec3, threshold float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > threshold {
			return false
		}
	}
	return true
}

// --- Quaternion helpers ---

// normalizeQuat returns q with unit length, or the identity for a
// zero-length input.
func normalizeQuat(q mgl64.Quat) mgl64.Quat {
	l := q.Len()
	if l < epsilon || math.IsNaN(l) {
		return mgl64.QuatIdent()
	}
	return mgl64.Quat{W: q.W / l, V: q.V.Mul(1 / l)}
}

// axisAngle returns q as a unit rotation axis and an angle in [0, pi].
// A near-identity rotation reports the Y axis and a zero angle.
func axisAngle(q mgl64.Quat) (mgl64.Vec3, float64) {
	q = normalizeQuat(q)
	if q.W < 0 {
		q = mgl64.Quat{W: -q.W, V: q.V.Mul(-1)}
	}
	s := q.V.Len()
	if s < epsilon {
		return AxisY, 0
	}
	return q.V.Mul(1 / s), 2 * math.Atan2(s, q.W)
}

// rotationAngle returns the angle of the rotation q, in [0, pi].
func rotationAngle(q mgl64.Quat) float64 {
	_, angle := axisAngle(q)
	return angle
}

// axisAngleQuat builds a rotation of angle radians about axis. A
// zero-length axis yields the identity.
func axisAngleQuat(axis mgl64.Vec3, angle float64) mgl64.Quat {
	l := axis.Len()
	if l < epsilon {
		return mgl64.QuatIdent()
	}
	return mgl64.QuatRotate(angle, axis.Mul(1/l))
}

// clampRotation limits the angle of q to maxAngle, keeping its axis.
func clampRotation(q mgl64.Quat, maxAngle float64) mgl64.Quat {
	axis, angle := axisAngle(q)
	if angle <= maxAngle {
		return normalizeQuat(q)
	}
	return mgl64.QuatRotate(maxAngle, axis)
}

// scaleRotation returns the rotation about the same axis by f times the
// angle.
func scaleRotation(q mgl64.Quat, f float64) mgl64.Quat {
	axis, angle := axisAngle(q)
	return mgl64.QuatRotate(angle*f, axis)
}

// rotationBetween returns the minimal rotation taking direction from onto
// direction to. Antiparallel inputs rotate by pi about an arbitrary
// perpendicular axis.
func rotationBetween(from, to mgl64.Vec3) mgl64.Quat {
	lf, lt := from.Len(), to.Len()
	if lf < epsilon || lt < epsilon {
		return mgl64.QuatIdent()
	}
	from = from.Mul(1 / lf)
	to = to.Mul(1 / lt)
	cos := from.Dot(to)
	if cos < -1+1e-12 {
		return mgl64.QuatRotate(math.Pi, perpendicular(from))
	}
	axis := from.Cross(to)
	if axis.Len() < epsilon {
		return mgl64.QuatIdent()
	}
	return mgl64.QuatRotate(math.Atan2(axis.Len(), cos), axis.Normalize())
}

// rotateToward rotates unit vector from toward to by angle radians along
// the great circle through both.
func rotateToward(from, to mgl64.Vec3, angle float64) mgl64.Vec3 {
	axis := from.Cross(to)
	if axis.Len() < epsilon {
		axis = perpendicular(from)
	}
	return mgl64.QuatRotate(angle, axis.Normalize()).Rotate(from)
}

// swingTwist splits q into swing * twist, where twist rotates about axis
// and swing carries the axis to q's image of it by the shortest path.
// The twist angle is in (-pi, pi].
func swingTwist(q mgl64.Quat, axis mgl64.Vec3) (swing, twist mgl64.Quat, twistAngle float64) {
	q = normalizeQuat(q)
	proj := axis.Mul(q.V.Dot(axis))
	t := mgl64.Quat{W: q.W, V: proj}
	if t.Len() < epsilon {
		// A half-turn swing: the twist is undefined, call it zero.
		return q, mgl64.QuatIdent(), 0
	}
	twist = normalizeQuat(t)
	swing = normalizeQuat(q.Mul(twist.Conjugate()))
	twistAngle = wrapAngle(2 * math.Atan2(twist.V.Dot(axis), twist.W))
	return swing, twist, twistAngle
}

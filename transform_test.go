package tendon

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const tolerance = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > tolerance {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertVec(t *testing.T, name string, got, want mgl64.Vec3, eps float64) {
	t.Helper()
	if !vecWithin(got, want, eps) {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertSameRotation(t *testing.T, name string, got, want mgl64.Quat, eps float64) {
	t.Helper()
	if a := rotationAngle(got.Conjugate().Mul(want)); a > eps {
		t.Errorf("%s differs by %v rad (got %v, want %v)", name, a, got, want)
	}
}

// --- Transform ---

func TestTransformIdentity(t *testing.T) {
	p := mgl64.Vec3{1, 2, 3}
	assertVec(t, "point", IdentityTransform.Point(p), p, tolerance)
	assertVec(t, "direction", IdentityTransform.Direction(p), p, tolerance)
}

func TestTransformZeroRotationIsIdentity(t *testing.T) {
	tr := NewTransform(mgl64.Vec3{1, 0, 0}, mgl64.Quat{})
	assertSameRotation(t, "rotation", tr.Rotation, mgl64.QuatIdent(), tolerance)
}

func TestTransformMul(t *testing.T) {
	parent := NewTransform(mgl64.Vec3{10, 0, 0}, mgl64.QuatRotate(math.Pi/2, AxisZ))
	child := NewTransform(mgl64.Vec3{0, 5, 0}, mgl64.QuatIdent())
	got := parent.Mul(child)
	// Rz(90°) maps (0,5,0) to (-5,0,0).
	assertVec(t, "translation", got.Translation, mgl64.Vec3{5, 0, 0}, tolerance)
	assertVec(t, "y axis", got.Axis(Y), mgl64.Vec3{-1, 0, 0}, tolerance)
}

func TestTransformInverse(t *testing.T) {
	tr := NewTransform(mgl64.Vec3{3, -2, 7}, mgl64.QuatRotate(0.7, mgl64.Vec3{1, 2, 3}.Normalize()))
	id := tr.Mul(tr.Inverse())
	if !id.ApproxEqual(IdentityTransform, 1e-9) {
		t.Errorf("t * t⁻¹ = %+v, want identity", id)
	}
	p := mgl64.Vec3{1, 1, 1}
	assertVec(t, "round trip", tr.Inverse().Point(tr.Point(p)), p, 1e-9)
}

func TestTransformApproxEqualNearZero(t *testing.T) {
	a := NewTransform(mgl64.Vec3{5, 0, 0}, mgl64.QuatIdent())
	b := NewTransform(mgl64.Vec3{5, 1e-15, 0}, mgl64.QuatIdent())
	if !a.ApproxEqual(b, 1e-9) {
		t.Error("transforms 1e-15 apart should be equal at 1e-9")
	}
	c := NewTransform(mgl64.Vec3{5, 1e-6, 0}, mgl64.QuatIdent())
	if a.ApproxEqual(c, 1e-9) {
		t.Error("transforms 1e-6 apart should differ at 1e-9")
	}
	d := NewTransform(mgl64.Vec3{5, 0, 0}, mgl64.QuatRotate(1e-6, AxisY))
	if a.ApproxEqual(d, 1e-9) {
		t.Error("rotations 1e-6 rad apart should differ at 1e-9")
	}
}

// --- Quaternion helpers ---

func TestAxisAngle(t *testing.T) {
	axis, angle := axisAngle(mgl64.QuatRotate(1.2, AxisZ))
	assertNear(t, "angle", angle, 1.2)
	assertVec(t, "axis", axis, AxisZ, tolerance)

	// -q is the same rotation.
	q := mgl64.QuatRotate(1.2, AxisZ)
	axis, angle = axisAngle(mgl64.Quat{W: -q.W, V: q.V.Mul(-1)})
	assertNear(t, "negated angle", angle, 1.2)
	assertVec(t, "negated axis", axis, AxisZ, tolerance)
}

func TestAxisAngleIdentity(t *testing.T) {
	_, angle := axisAngle(mgl64.QuatIdent())
	assertNear(t, "angle", angle, 0)
}

func TestClampRotation(t *testing.T) {
	q := mgl64.QuatRotate(2.0, AxisX)
	axis, angle := axisAngle(clampRotation(q, 0.5))
	assertNear(t, "clamped angle", angle, 0.5)
	assertVec(t, "axis kept", axis, AxisX, tolerance)

	small := mgl64.QuatRotate(0.2, AxisX)
	assertSameRotation(t, "small unchanged", clampRotation(small, 0.5), small, tolerance)
}

func TestRotationBetween(t *testing.T) {
	from := mgl64.Vec3{0, 1, 0}
	to := mgl64.Vec3{1, 1, 0}.Normalize()
	q := rotationBetween(from, to)
	assertVec(t, "rotated", q.Rotate(from), to, 1e-12)
	assertNear(t, "angle", rotationAngle(q), math.Pi/4)
}

func TestRotationBetweenAntiparallel(t *testing.T) {
	q := rotationBetween(AxisY, AxisY.Mul(-1))
	assertVec(t, "rotated", q.Rotate(AxisY), AxisY.Mul(-1), 1e-12)
}

func TestSwingTwistRecompose(t *testing.T) {
	q := mgl64.QuatRotate(0.8, AxisX).Mul(mgl64.QuatRotate(0.4, AxisY))
	swing, twist, angle := swingTwist(q, AxisY)
	assertNear(t, "twist angle", angle, 0.4)
	assertSameRotation(t, "swing*twist", swing.Mul(twist), q, 1e-12)
	// The swing has no component about the axis.
	assertNear(t, "swing y", swing.V.Y(), 0)
}

func TestWrapAngle(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-5 * math.Pi / 2, -math.Pi / 2},
	}
	for _, tt := range tests {
		assertNear(t, "wrapAngle", wrapAngle(tt.in), tt.want)
	}
}

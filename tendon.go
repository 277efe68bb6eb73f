package tendon

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Unit axes. A bone's rest axis is its local +Y; its tip sits at
// origin + Y*length.
var (
	AxisX = mgl64.Vec3{1, 0, 0}
	AxisY = mgl64.Vec3{0, 1, 0}
	AxisZ = mgl64.Vec3{0, 0, 1}
)

const (
	// epsilon guards normalizations and near-degenerate geometry.
	epsilon = 1e-9

	twoPi = 2 * math.Pi
)

// Axis selects one of a frame's three local axes.
type Axis uint8

const (
	X Axis = iota // local +X
	Y             // local +Y (the bone axis)
	Z             // local +Z
)

// Vec returns the unit vector of the axis.
func (a Axis) Vec() mgl64.Vec3 {
	switch a {
	case X:
		return AxisX
	case Z:
		return AxisZ
	default:
		return AxisY
	}
}

func (a Axis) String() string {
	switch a {
	case X:
		return "x"
	case Y:
		return "y"
	case Z:
		return "z"
	default:
		return "?"
	}
}

// clamp limits v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clamp01 limits a priority weight to [0, 1].
func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return clamp(v, 0, 1)
}

// wrapAngle maps an angle into (-pi, pi].
func wrapAngle(a float64) float64 {
	a = math.Mod(a, twoPi)
	if a <= -math.Pi {
		a += twoPi
	} else if a > math.Pi {
		a -= twoPi
	}
	return a
}

// wrapPositive maps an angle into [0, 2pi).
func wrapPositive(a float64) float64 {
	a = math.Mod(a, twoPi)
	if a < 0 {
		a += twoPi
	}
	return a
}

// perpendicular returns some unit vector orthogonal to v.
func perpendicular(v mgl64.Vec3) mgl64.Vec3 {
	p := v.Cross(AxisX)
	if p.LenSqr() < 1e-6 {
		p = v.Cross(AxisZ)
	}
	return p.Normalize()
}

// angleBetween returns the unsigned angle between two directions.
func angleBetween(a, b mgl64.Vec3) float64 {
	la, lb := a.Len(), b.Len()
	if la < epsilon || lb < epsilon {
		return 0
	}
	return math.Acos(clamp(a.Dot(b)/(la*lb), -1, 1))
}

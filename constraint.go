package tendon

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Constraint limits the orientation a bone may take relative to its rest
// pose. Project receives the bone's rotation relative to its rest rotation
// (the bone axis is +Y in that space) and returns the nearest admissible
// rotation. Projecting an admissible rotation returns it unchanged.
//
// The set of implementations is closed: *ConeConstraint and
// *HingeConstraint.
type Constraint interface {
	Project(delta mgl64.Quat) mgl64.Quat
	Enabled() bool
}

// --- Limit cones ---

// LimitCone is a circular region of allowed swing directions on the unit
// sphere: every direction within HalfAngle radians of Direction.
type LimitCone struct {
	Direction mgl64.Vec3
	HalfAngle float64
}

func (c LimitCone) contains(d mgl64.Vec3) bool {
	return d.Dot(c.Direction) >= math.Cos(c.HalfAngle)-epsilon
}

// closestOnRim returns the point of the cone's rim nearest to d.
func (c LimitCone) closestOnRim(d mgl64.Vec3) mgl64.Vec3 {
	return rotateToward(c.Direction, d, c.HalfAngle)
}

// tangentPair holds the two circles that touch adjacent cones from either
// side of the great circle through their axes. The region between two
// adjacent cones is the spherical triangle cone -> tangent -> next cone,
// minus the tangent circle.
type tangentPair struct {
	valid   bool
	centers [2]mgl64.Vec3 // [0] on the positive side of a x b
	radius  float64
	normal  mgl64.Vec3 // unit a x b
}

// ConeConstraint is a swing/twist limit. Swing is bounded by an ordered
// strip of limit cones: a direction is admissible inside any cone or in
// the connecting region between two adjacent cones. Twist about the bone
// axis is optionally bounded by an arc [min, max].
//
// With no cones the swing is free, which makes a pure twist limit. The
// cone strip must not self-intersect; if it does, projection results are
// unspecified.
type ConeConstraint struct {
	cones    []LimitCone
	tangents []tangentPair

	twistLimited bool
	twistMin     float64
	twistRange   float64

	disabled bool
}

// NewConeConstraint returns an enabled constraint with the given cones and
// no twist limit.
func NewConeConstraint(cones ...LimitCone) *ConeConstraint {
	c := &ConeConstraint{}
	for _, cone := range cones {
		c.AddCone(cone.Direction, cone.HalfAngle)
	}
	return c
}

// AddCone appends a cone to the strip. The direction is normalized and the
// half angle clamped to [0, pi].
func (c *ConeConstraint) AddCone(direction mgl64.Vec3, halfAngle float64) {
	if direction.Len() < epsilon {
		direction = AxisY
	}
	c.cones = append(c.cones, LimitCone{
		Direction: direction.Normalize(),
		HalfAngle: clamp(halfAngle, 0, math.Pi),
	})
	c.updateTangents()
}

// SetCones replaces the whole strip.
func (c *ConeConstraint) SetCones(cones []LimitCone) {
	c.cones = c.cones[:0]
	for _, cone := range cones {
		c.AddCone(cone.Direction, cone.HalfAngle)
	}
	c.updateTangents()
}

// Cones returns the strip. The returned slice MUST NOT be mutated.
func (c *ConeConstraint) Cones() []LimitCone {
	return c.cones
}

// SetTwistLimits bounds twist to the arc from min counter-clockwise to
// max, in radians. The arc may cross the ±pi boundary.
func (c *ConeConstraint) SetTwistLimits(min, max float64) {
	c.twistLimited = true
	c.twistMin = wrapAngle(min)
	c.twistRange = wrapPositive(max - min)
	if max-min >= twoPi {
		c.twistRange = twoPi
	}
}

// ClearTwistLimits removes the twist bound.
func (c *ConeConstraint) ClearTwistLimits() {
	c.twistLimited = false
}

// TwistLimits returns the twist arc and whether one is set. min is in
// (-pi, pi] and max is min plus the arc length, so it may exceed pi.
func (c *ConeConstraint) TwistLimits() (min, max float64, ok bool) {
	return c.twistMin, c.twistMin + c.twistRange, c.twistLimited
}

// SetEnabled turns the constraint on or off. A disabled constraint
// projects every rotation to itself.
func (c *ConeConstraint) SetEnabled(enabled bool) {
	c.disabled = !enabled
}

// Enabled reports whether the constraint is active.
func (c *ConeConstraint) Enabled() bool {
	return !c.disabled
}

// Project returns the admissible rotation nearest to delta.
func (c *ConeConstraint) Project(delta mgl64.Quat) mgl64.Quat {
	if c.disabled {
		return delta
	}
	swing, twist, twistAngle := swingTwist(delta, AxisY)
	changed := false

	if len(c.cones) > 0 {
		dir := swing.Rotate(AxisY)
		if limited, in := c.limitSwing(dir); !in {
			swing = rotationBetween(AxisY, limited)
			changed = true
		}
	}
	if c.twistLimited {
		if clamped := c.clampTwist(twistAngle); clamped != twistAngle {
			twist = mgl64.QuatRotate(clamped, AxisY)
			changed = true
		}
	}
	if !changed {
		return delta
	}
	return normalizeQuat(swing.Mul(twist))
}

// InBounds reports whether a swing direction (in rest space) is admissible.
func (c *ConeConstraint) InBounds(direction mgl64.Vec3) bool {
	if len(c.cones) == 0 || direction.Len() < epsilon {
		return true
	}
	_, in := c.limitSwing(direction.Normalize())
	return in
}

// limitSwing returns d itself and true when d is admissible, otherwise the
// nearest boundary point and false.
func (c *ConeConstraint) limitSwing(d mgl64.Vec3) (mgl64.Vec3, bool) {
	best := d
	bestCos := -2.0
	for _, cone := range c.cones {
		if cone.contains(d) {
			return d, true
		}
		p := cone.closestOnRim(d)
		if cos := p.Dot(d); cos > bestCos {
			best, bestCos = p, cos
		}
	}
	for i := range c.tangents {
		p, hit := c.betweenCones(i, d)
		if !hit {
			continue
		}
		if p == d {
			return d, true
		}
		if cos := p.Dot(d); cos > bestCos {
			best, bestCos = p, cos
		}
	}
	return best, false
}

// betweenCones tests d against the connecting region of cones i and i+1.
// It returns hit=false when d is outside the region's triangle. Inside,
// it returns d unchanged when admissible, or its projection onto the
// tangent circle's rim when d falls within the tangent circle.
func (c *ConeConstraint) betweenCones(i int, d mgl64.Vec3) (mgl64.Vec3, bool) {
	tp := c.tangents[i]
	if !tp.valid {
		return d, false
	}
	a := c.cones[i].Direction
	b := c.cones[i+1].Direction
	side := 0
	if d.Dot(tp.normal) < 0 {
		side = 1
	}
	t := tp.centers[side]
	if !inTriangle(d, a, t, b) {
		return d, false
	}
	if d.Dot(t) > math.Cos(tp.radius) {
		return rotateToward(t, d, tp.radius), true
	}
	return d, true
}

// updateTangents recomputes the tangent circles for each adjacent pair.
//
// A circle of radius r touching cone A (axis a, half angle ra) and cone B
// (axis b, half angle rb) from outside has its centre at angle ra+r from
// a and rb+r from b. Choosing r = (pi - ra - rb)/2 makes those angles sum
// to pi, so the centre is equidistant from a and -b and lies on the plane
// orthogonal to a+b.
func (c *ConeConstraint) updateTangents() {
	c.tangents = c.tangents[:0]
	for i := 0; i+1 < len(c.cones); i++ {
		c.tangents = append(c.tangents, tangentsFor(c.cones[i], c.cones[i+1]))
	}
}

func tangentsFor(ca, cb LimitCone) tangentPair {
	a, b := ca.Direction, cb.Direction
	r := (math.Pi - ca.HalfAngle - cb.HalfAngle) / 2
	sum := a.Add(b)
	cross := a.Cross(b)
	if r <= 0 || sum.Len() < epsilon || cross.Len() < epsilon {
		return tangentPair{}
	}
	u := sum.Normalize()
	n := cross.Normalize()
	m := a.Sub(u.Mul(a.Dot(u)))
	if m.Len() < epsilon {
		return tangentPair{}
	}
	m = m.Normalize()
	lambda := math.Cos(ca.HalfAngle+r) / a.Dot(m)
	lambda = clamp(lambda, -1, 1)
	mu := math.Sqrt(1 - lambda*lambda)
	return tangentPair{
		valid: true,
		centers: [2]mgl64.Vec3{
			m.Mul(lambda).Add(n.Mul(mu)).Normalize(),
			m.Mul(lambda).Sub(n.Mul(mu)).Normalize(),
		},
		radius: r,
		normal: n,
	}
}

// inTriangle reports whether d lies inside (or on the edge of) the
// spherical triangle p0 p1 p2.
func inTriangle(d, p0, p1, p2 mgl64.Vec3) bool {
	return sameSide(d, p0, p1, p2) && sameSide(d, p1, p2, p0) && sameSide(d, p2, p0, p1)
}

// sameSide reports whether d lies on the same side of the great circle
// through p and q as the reference point ref.
func sameSide(d, p, q, ref mgl64.Vec3) bool {
	n := p.Cross(q)
	return d.Dot(n)*ref.Dot(n) >= -epsilon
}

// clampTwist limits a twist angle to the configured arc, snapping to the
// nearer end by shortest angular distance.
func (c *ConeConstraint) clampTwist(angle float64) float64 {
	off := wrapPositive(angle - c.twistMin)
	if off <= c.twistRange+epsilon {
		return angle
	}
	overMax := off - c.twistRange
	underMin := twoPi - off
	if overMax < underMin {
		return wrapAngle(c.twistMin + c.twistRange)
	}
	return c.twistMin
}

// --- Hinge ---

// HingeConstraint allows rotation about a single rest-space axis only,
// with the hinge angle bounded to [Min, Max] radians.
type HingeConstraint struct {
	axis     mgl64.Vec3
	min, max float64
	disabled bool
}

// NewHingeConstraint creates a hinge about axis with limits in radians.
// min and max are swapped if given out of order.
func NewHingeConstraint(axis mgl64.Vec3, min, max float64) *HingeConstraint {
	if axis.Len() < epsilon {
		axis = AxisX
	}
	if min > max {
		min, max = max, min
	}
	return &HingeConstraint{
		axis: axis.Normalize(),
		min:  clamp(min, -math.Pi, math.Pi),
		max:  clamp(max, -math.Pi, math.Pi),
	}
}

// Axis returns the hinge axis in rest space.
func (h *HingeConstraint) Axis() mgl64.Vec3 {
	return h.axis
}

// Limits returns the hinge angle bounds.
func (h *HingeConstraint) Limits() (min, max float64) {
	return h.min, h.max
}

// SetEnabled turns the constraint on or off.
func (h *HingeConstraint) SetEnabled(enabled bool) {
	h.disabled = !enabled
}

// Enabled reports whether the constraint is active.
func (h *HingeConstraint) Enabled() bool {
	return !h.disabled
}

// Project keeps only the component of delta about the hinge axis and
// clamps its angle.
func (h *HingeConstraint) Project(delta mgl64.Quat) mgl64.Quat {
	if h.disabled {
		return delta
	}
	swing, _, angle := swingTwist(delta, h.axis)
	clamped := clamp(angle, h.min, h.max)
	if clamped == angle && rotationAngle(swing) < epsilon {
		return delta
	}
	return mgl64.QuatRotate(clamped, h.axis)
}

package tendon

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Pin is a target attached to a bone. The solver pulls the bone's tip
// toward the target position and the bone's axes toward the target's
// axes, each term scaled by its priority weight in [0, 1]: 0 leaves that
// term unconstrained, 1 honors it fully.
//
// The target frame is owned by the pin and independent of the bone's own
// frame. It is parentless by default, so its local transform is its world
// transform; parent it with TargetFrame().SetParent to make the target
// follow another frame.
type Pin struct {
	bone   *Bone
	target *Frame

	positionWeight     float64
	orientationWeights mgl64.Vec3
	depthFalloff       float64
	enabled            bool
}

// NewPin returns an enabled, unattached pin targeting target. Position
// priority is 1; orientation priorities are 0; depth falloff is 0.
func NewPin(target Transform) *Pin {
	return &Pin{
		target:         NewFrame(target),
		positionWeight: 1,
		enabled:        true,
	}
}

// Bone returns the bone the pin is attached to, or nil.
func (p *Pin) Bone() *Bone {
	return p.bone
}

// Enabled reports whether the pin participates in solving.
func (p *Pin) Enabled() bool {
	return p.enabled
}

// SetEnabled enables or disables the pin. Either change invalidates the
// armature's segmentation.
func (p *Pin) SetEnabled(enabled bool) {
	if p.enabled == enabled {
		return
	}
	p.enabled = enabled
	if p.bone != nil {
		p.bone.invalidate()
	}
}

// --- Target ---

// TargetFrame returns the pin's target frame.
func (p *Pin) TargetFrame() *Frame {
	return p.target
}

// Target returns the target's world transform.
func (p *Pin) Target() Transform {
	return p.target.Global()
}

// SetTarget replaces the target's local transform.
func (p *Pin) SetTarget(t Transform) {
	p.target.SetLocal(t.Translation, t.Rotation)
}

// SetTargetPosition moves the target, keeping its orientation.
func (p *Pin) SetTargetPosition(pos mgl64.Vec3) {
	p.target.SetTranslation(pos)
}

// SetTargetRotation reorients the target, keeping its position.
func (p *Pin) SetTargetRotation(rot mgl64.Quat) {
	p.target.SetRotation(rot)
}

// --- Priorities ---

// PositionWeight returns the position priority.
func (p *Pin) PositionWeight() float64 {
	return p.positionWeight
}

// SetPositionWeight sets the position priority, clamped to [0, 1].
func (p *Pin) SetPositionWeight(w float64) {
	p.positionWeight = clamp01(w)
}

// OrientationWeights returns the X, Y and Z axis priorities.
func (p *Pin) OrientationWeights() mgl64.Vec3 {
	return p.orientationWeights
}

// SetOrientationWeights sets the per-axis orientation priorities, each
// clamped to [0, 1].
func (p *Pin) SetOrientationWeights(x, y, z float64) {
	p.orientationWeights = mgl64.Vec3{clamp01(x), clamp01(y), clamp01(z)}
}

// DepthFalloff returns how strongly pins below this one still pull on
// the bones above it.
func (p *Pin) DepthFalloff() float64 {
	return p.depthFalloff
}

// SetDepthFalloff sets the falloff, clamped to [0, 1]. At 0 the bones
// above this pin only see this pin; at 1 they also see every pin below it
// at full weight.
func (p *Pin) SetDepthFalloff(f float64) {
	f = clamp01(f)
	if f == p.depthFalloff {
		return
	}
	p.depthFalloff = f
	if p.bone != nil {
		p.bone.invalidate()
	}
}

// --- Error ---

// PositionError returns the distance between the bone's tip and the target
// position. It is 0 for an unattached pin.
func (p *Pin) PositionError() float64 {
	if p.bone == nil {
		return 0
	}
	return p.bone.Tip().Sub(p.Target().Translation).Len()
}

// OrientationError returns the angle in radians between the bone's
// orientation and the target orientation.
func (p *Pin) OrientationError() float64 {
	if p.bone == nil {
		return 0
	}
	g := p.bone.GlobalTransform().Rotation
	return rotationAngle(g.Conjugate().Mul(p.Target().Rotation))
}

// weightedSquaredError is the pin's contribution to Armature.Error: the
// squared tip distance and squared axis deviations, each times its
// priority.
func (p *Pin) weightedSquaredError() (sum, weight float64) {
	if p.bone == nil {
		return 0, 0
	}
	g := p.bone.GlobalTransform()
	t := p.Target()
	if p.positionWeight > 0 {
		d := p.bone.Tip().Sub(t.Translation)
		sum += p.positionWeight * d.LenSqr()
		weight += p.positionWeight
	}
	scale := math.Max(p.bone.length, 1)
	for i, a := range [3]Axis{X, Y, Z} {
		w := p.orientationWeights[i]
		if w <= 0 {
			continue
		}
		d := g.Axis(a).Sub(t.Axis(a)).Mul(scale)
		sum += w * d.LenSqr()
		weight += w
	}
	return sum, weight
}

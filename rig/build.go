package rig

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/phanxgames/tendon"
)

// Build creates an armature from def. A nil Solver block means
// tendon.DefaultSolverConfig.
func Build(def *Definition) (*tendon.Armature, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	cfg := tendon.DefaultSolverConfig()
	if def.Solver != nil {
		cfg = *def.Solver
	}
	a, err := tendon.NewArmature(def.Name, cfg)
	if err != nil {
		return nil, fmt.Errorf("rig %q: %w", def.Name, err)
	}

	byName := make(map[string]*tendon.Bone, len(def.Bones))
	for _, bd := range def.Bones {
		rest := quat(bd.Rotation)
		if bd.Rest != nil {
			rest = quat(*bd.Rest)
		}

		var b *tendon.Bone
		if bd.Parent == "" {
			b, err = a.NewRoot(bd.Name, vec(bd.Offset), rest, bd.Length)
		} else {
			b, err = byName[bd.Parent].NewChild(bd.Name, vec(bd.Offset), rest, bd.Length)
		}
		if err != nil {
			return nil, fmt.Errorf("rig %q: %w", def.Name, err)
		}
		byName[bd.Name] = b

		if bd.Constraint != nil {
			b.SetConstraint(buildConstraint(bd.Constraint))
		}
		if bd.Rest != nil {
			b.SetLocalRotation(quat(bd.Rotation))
		}
		if bd.Pin != nil {
			b.SetPin(buildPin(bd.Pin))
		}
	}
	return a, nil
}

func buildConstraint(cd *ConstraintDef) tendon.Constraint {
	enabled := cd.Enabled == nil || *cd.Enabled
	switch cd.Kind {
	case KindHinge:
		h := tendon.NewHingeConstraint(vec(cd.Axis), cd.Min, cd.Max)
		h.SetEnabled(enabled)
		return h
	default:
		c := tendon.NewConeConstraint()
		for _, cone := range cd.Cones {
			c.AddCone(vec(cone.Direction), cone.HalfAngle)
		}
		if cd.Twist != nil {
			c.SetTwistLimits(cd.Twist.Min, cd.Twist.Max)
		}
		c.SetEnabled(enabled)
		return c
	}
}

func buildPin(pd *PinDef) *tendon.Pin {
	p := tendon.NewPin(tendon.NewTransform(vec(pd.Target.Position), quat(pd.Target.Rotation)))
	if pd.PositionWeight != nil {
		p.SetPositionWeight(*pd.PositionWeight)
	}
	w := pd.OrientationWeights
	p.SetOrientationWeights(w[0], w[1], w[2])
	p.SetDepthFalloff(pd.DepthFalloff)
	if pd.Enabled != nil {
		p.SetEnabled(*pd.Enabled)
	}
	return p
}

// Capture records a's current pose, constraints and pins. Building the
// result yields an armature with the same bone transforms.
func Capture(a *tendon.Armature) *Definition {
	cfg := a.Config()
	def := &Definition{Name: a.Name, Solver: &cfg}
	for _, b := range a.Bones() {
		local := b.LocalTransform()
		bd := BoneDef{
			Name:     b.Name,
			Offset:   vecArray(local.Translation),
			Rotation: quatArray(local.Rotation),
			Length:   b.Length(),
		}
		if p := b.Parent(); p != nil {
			bd.Parent = p.Name
		}
		if rest := b.RestRotation(); !sameRotation(rest, local.Rotation) {
			r := quatArray(rest)
			bd.Rest = &r
		}
		if c := b.Constraint(); c != nil {
			bd.Constraint = captureConstraint(c)
		}
		if p := b.Pin(); p != nil {
			bd.Pin = capturePin(p)
		}
		def.Bones = append(def.Bones, bd)
	}
	return def
}

func captureConstraint(c tendon.Constraint) *ConstraintDef {
	var cd ConstraintDef
	switch c := c.(type) {
	case *tendon.HingeConstraint:
		cd.Kind = KindHinge
		cd.Axis = vecArray(c.Axis())
		cd.Min, cd.Max = c.Limits()
	case *tendon.ConeConstraint:
		cd.Kind = KindCones
		for _, cone := range c.Cones() {
			cd.Cones = append(cd.Cones, ConeDef{
				Direction: vecArray(cone.Direction),
				HalfAngle: cone.HalfAngle,
			})
		}
		if lo, hi, ok := c.TwistLimits(); ok {
			cd.Twist = &TwistDef{Min: lo, Max: hi}
		}
	default:
		return nil
	}
	if !c.Enabled() {
		cd.Enabled = boolPtr(false)
	}
	return &cd
}

func capturePin(p *tendon.Pin) *PinDef {
	t := p.Target()
	w := p.PositionWeight()
	pd := &PinDef{
		Target: TargetDef{
			Position: vecArray(t.Translation),
			Rotation: quatArray(t.Rotation),
		},
		PositionWeight:     &w,
		OrientationWeights: vecArray(p.OrientationWeights()),
		DepthFalloff:       p.DepthFalloff(),
	}
	if !p.Enabled() {
		pd.Enabled = boolPtr(false)
	}
	return pd
}

// sameRotation reports whether a and b are the same orientation, allowing
// for q and -q.
func sameRotation(a, b mgl64.Quat) bool {
	return quatNear(a, b) || quatNear(a, b.Scale(-1))
}

func quatNear(a, b mgl64.Quat) bool {
	const eps = 1e-12
	if math.Abs(a.W-b.W) > eps {
		return false
	}
	for i := range a.V {
		if math.Abs(a.V[i]-b.V[i]) > eps {
			return false
		}
	}
	return true
}

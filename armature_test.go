package tendon

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestNewArmatureRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  SolverConfig
		want error
	}{
		{"zero iterations", SolverConfig{Iterations: 0, Damping: 0.1}, ErrInvalidIterations},
		{"zero damping", SolverConfig{Iterations: 1, Damping: 0}, ErrInvalidDamping},
		{"damping pi", SolverConfig{Iterations: 1, Damping: math.Pi}, ErrInvalidDamping},
		{"nan damping", SolverConfig{Iterations: 1, Damping: math.NaN()}, ErrInvalidDamping},
		{"negative passes", SolverConfig{Iterations: 1, Damping: 0.1, StabilizationPasses: -1}, ErrInvalidStabilization},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewArmature("x", tt.cfg); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSettersKeepPreviousOnError(t *testing.T) {
	a, _ := newChain(t, 1)
	if err := a.SetIterations(0); !errors.Is(err, ErrInvalidIterations) {
		t.Errorf("SetIterations(0) = %v", err)
	}
	if err := a.SetDamping(-1); !errors.Is(err, ErrInvalidDamping) {
		t.Errorf("SetDamping(-1) = %v", err)
	}
	if err := a.SetStabilizationPasses(-2); !errors.Is(err, ErrInvalidStabilization) {
		t.Errorf("SetStabilizationPasses(-2) = %v", err)
	}
	if got := a.Config(); got != DefaultSolverConfig() {
		t.Errorf("Config = %+v, want defaults", got)
	}

	if err := a.SetDamping(0.25); err != nil {
		t.Fatal(err)
	}
	if a.Config().Damping != 0.25 {
		t.Errorf("Damping = %v, want 0.25", a.Config().Damping)
	}
}

func TestNewRootTwice(t *testing.T) {
	a, _ := newChain(t, 1)
	if _, err := a.NewRoot("again", mgl64.Vec3{}, mgl64.QuatIdent(), 1); !errors.Is(err, ErrRootExists) {
		t.Errorf("err = %v, want ErrRootExists", err)
	}
}

func TestArmatureFrameMovesRig(t *testing.T) {
	a, bones := newChain(t, 5, 5)
	a.Frame().SetTranslation(mgl64.Vec3{100, 0, 0})
	assertVec(t, "tip", bones[1].Tip(), mgl64.Vec3{100, 10, 0}, tolerance)
}

func TestArmatureLookup(t *testing.T) {
	a, bones := newChain(t, 1, 1, 1)
	if got := a.Bone("b2"); got != bones[2] {
		t.Errorf("Bone(b2) = %v", got)
	}
	if got := a.Bone("missing"); got != nil {
		t.Errorf("Bone(missing) = %v, want nil", got)
	}
	bones[1].EnablePin()
	if pins := a.Pins(); len(pins) != 1 || pins[0].Bone() != bones[1] {
		t.Errorf("Pins = %v", pins)
	}
	if a.ID == "" {
		t.Error("armature has no ID")
	}
}

func TestArmatureError(t *testing.T) {
	a, bones := newChain(t, 10)
	assertNear(t, "no pins", a.Error(), 0)

	p := bones[0].EnablePin()
	p.SetTargetPosition(mgl64.Vec3{0, 13, 4})
	assertNear(t, "position only", a.Error(), 5)

	// Orientation terms are scaled by the bone length.
	p.SetTargetPosition(bones[0].Tip())
	p.SetOrientationWeights(0, 1, 0)
	p.SetPositionWeight(0)
	p.SetTargetRotation(mgl64.QuatRotate(math.Pi/2, AxisZ))
	// Y axis (0,1,0) vs (-1,0,0): |d| = sqrt(2), times 10.
	assertNear(t, "orientation only", a.Error(), 10*math.Sqrt2)
}

func TestPinWeightsClamped(t *testing.T) {
	p := NewPin(IdentityTransform)
	p.SetPositionWeight(3)
	p.SetOrientationWeights(-1, 0.5, math.NaN())
	p.SetDepthFalloff(2)
	if p.PositionWeight() != 1 {
		t.Errorf("PositionWeight = %v", p.PositionWeight())
	}
	if p.OrientationWeights() != (mgl64.Vec3{0, 0.5, 0}) {
		t.Errorf("OrientationWeights = %v", p.OrientationWeights())
	}
	if p.DepthFalloff() != 1 {
		t.Errorf("DepthFalloff = %v", p.DepthFalloff())
	}
}

func TestPinMovesBetweenBones(t *testing.T) {
	_, bones := newChain(t, 1, 1)
	p := bones[0].EnablePin()
	bones[1].SetPin(p)
	if bones[0].Pin() != nil || bones[1].Pin() != p || p.Bone() != bones[1] {
		t.Error("pin not moved")
	}
	bones[1].RemovePin()
	if p.Bone() != nil || bones[1].IsPinned() {
		t.Error("pin not removed")
	}
	assertNear(t, "detached pin error", p.PositionError(), 0)
}

func TestPinTargetFollowsParentFrame(t *testing.T) {
	_, bones := newChain(t, 1)
	p := bones[0].EnablePin()
	anchor := NewFrame(NewTransform(mgl64.Vec3{5, 0, 0}, mgl64.QuatIdent()))
	if err := p.TargetFrame().SetParent(anchor); err != nil {
		t.Fatal(err)
	}
	p.SetTargetPosition(mgl64.Vec3{0, 1, 0})
	anchor.Translate(mgl64.Vec3{0, 0, 2})
	assertVec(t, "target", p.Target().Translation, mgl64.Vec3{5, 1, 2}, tolerance)
}

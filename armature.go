package tendon

import (
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// SolverConfig holds an armature's default solve parameters.
type SolverConfig struct {
	// Iterations is the number of ordinary solver sweeps per Solve call.
	Iterations int `yaml:"iterations" json:"iterations"`
	// Damping is the largest rotation, in radians, any bone may take in a
	// single sweep.
	Damping float64 `yaml:"damping" json:"damping"`
	// StabilizationPasses is the number of extra, error-checked sweeps run
	// after the ordinary ones.
	StabilizationPasses int `yaml:"stabilization_passes" json:"stabilization_passes"`
}

// DefaultSolverConfig returns 10 iterations, 0.1 rad damping and no
// stabilization passes.
func DefaultSolverConfig() SolverConfig {
	return SolverConfig{
		Iterations:          10,
		Damping:             0.1,
		StabilizationPasses: 0,
	}
}

// Validate reports the first invalid field.
func (c SolverConfig) Validate() error {
	if c.Iterations <= 0 {
		return fmt.Errorf("tendon: iterations %d: %w", c.Iterations, ErrInvalidIterations)
	}
	if !(c.Damping > 0 && c.Damping < math.Pi) {
		return fmt.Errorf("tendon: damping %v: %w", c.Damping, ErrInvalidDamping)
	}
	if c.StabilizationPasses < 0 {
		return fmt.Errorf("tendon: stabilization passes %d: %w", c.StabilizationPasses, ErrInvalidStabilization)
	}
	return nil
}

// Armature owns a bone tree, its solve parameters and the cached
// segmentation of the tree around its pinned bones.
//
// An Armature is not safe for concurrent use. Mutate pins and topology
// between Solve calls from the goroutine that solves. Distinct armatures
// share no state and can be solved in parallel.
type Armature struct {
	ID   string
	Name string

	frame *Frame
	root  *Bone
	cfg   SolverConfig

	segments      *Segment
	segmentOf     map[*Bone]*Segment
	segmentsDirty bool

	nextBoneID uint32
	pairs      []pointPair

	logger *slog.Logger
	sink   EventSink
	debug  bool
}

// NewArmature creates an empty armature. It fails if cfg is invalid.
func NewArmature(name string, cfg SolverConfig) (*Armature, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Armature{
		ID:            uuid.NewString(),
		Name:          name,
		frame:         NewFrame(IdentityTransform),
		cfg:           cfg,
		segmentsDirty: true,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// NewRoot creates the root bone. offset and rotation place it relative to
// the armature's reference frame. It fails with ErrRootExists if the
// armature already has a root.
func (a *Armature) NewRoot(name string, offset mgl64.Vec3, rotation mgl64.Quat, length float64) (*Bone, error) {
	if a.root != nil {
		return nil, fmt.Errorf("tendon: new root %q: %w", name, ErrRootExists)
	}
	b, err := newBone(name, offset, rotation, length)
	if err != nil {
		return nil, err
	}
	a.SetRoot(b)
	return b, nil
}

// SetRoot installs a detached bone (and its subtree) as the root. It is a
// no-op if the armature already has a root or b is attached elsewhere.
func (a *Armature) SetRoot(b *Bone) {
	if a.root != nil || b == nil || b.parent != nil || b.armature != nil || b.disposed {
		return
	}
	a.root = b
	b.frame.setParent(a.frame)
	a.adopt(b)
	a.invalidate()
}

// Root returns the root bone, or nil.
func (a *Armature) Root() *Bone {
	return a.root
}

// Frame returns the armature's reference frame, the parent of the root
// bone's frame. Moving it moves the whole rig.
func (a *Armature) Frame() *Frame {
	return a.frame
}

// Bone returns the first bone named name in pre-order, or nil.
func (a *Armature) Bone(name string) *Bone {
	var found *Bone
	if a.root == nil {
		return nil
	}
	a.root.Walk(func(b *Bone) bool {
		if found != nil {
			return false
		}
		if b.Name == name {
			found = b
			return false
		}
		return true
	})
	return found
}

// Bones returns every bone in pre-order.
func (a *Armature) Bones() []*Bone {
	var out []*Bone
	if a.root == nil {
		return out
	}
	a.root.Walk(func(b *Bone) bool {
		out = append(out, b)
		return true
	})
	return out
}

// Pins returns the enabled pins in pre-order of their bones.
func (a *Armature) Pins() []*Pin {
	var out []*Pin
	for _, b := range a.Bones() {
		if b.IsPinned() {
			out = append(out, b.pin)
		}
	}
	return out
}

// --- Configuration ---

// Config returns the current solve parameters.
func (a *Armature) Config() SolverConfig {
	return a.cfg
}

// SetConfig replaces all solve parameters. An invalid cfg is rejected and
// the previous parameters are kept.
func (a *Armature) SetConfig(cfg SolverConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// SetIterations sets the default iteration count. n <= 0 is rejected with
// ErrInvalidIterations.
func (a *Armature) SetIterations(n int) error {
	cfg := a.cfg
	cfg.Iterations = n
	return a.SetConfig(cfg)
}

// SetDamping sets the maximum per-iteration bone rotation in radians.
// Values outside (0, pi) are rejected with ErrInvalidDamping.
func (a *Armature) SetDamping(angle float64) error {
	cfg := a.cfg
	cfg.Damping = angle
	return a.SetConfig(cfg)
}

// SetStabilizationPasses sets the number of stabilizing passes. n < 0 is
// rejected with ErrInvalidStabilization.
func (a *Armature) SetStabilizationPasses(n int) error {
	cfg := a.cfg
	cfg.StabilizationPasses = n
	return a.SetConfig(cfg)
}

// SetLogger sets the logger used for debug output. nil restores the
// discarding default.
func (a *Armature) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	a.logger = l
}

// SetEventSink sets the optional receiver of solve events.
func (a *Armature) SetEventSink(sink EventSink) {
	a.sink = sink
}

// SetDebugMode enables or disables debug mode. When enabled, tree shape
// warnings and per-solve statistics are logged.
func (a *Armature) SetDebugMode(enabled bool) {
	a.debug = enabled
}

// --- Error ---

// Error returns the weighted RMS error over all enabled pins: tip distance
// for position priorities and scaled axis deviation for orientation
// priorities. It is 0 when nothing is pinned.
func (a *Armature) Error() float64 {
	var sum, weight float64
	for _, p := range a.Pins() {
		s, w := p.weightedSquaredError()
		sum += s
		weight += w
	}
	if weight == 0 {
		return 0
	}
	return math.Sqrt(sum / weight)
}

// --- Internal ---

// adopt assigns armature membership and fresh IDs to a subtree.
func (a *Armature) adopt(b *Bone) {
	b.Walk(func(d *Bone) bool {
		d.armature = a
		a.nextBoneID++
		d.ID = a.nextBoneID
		return true
	})
}

// invalidate marks the segmentation stale.
func (a *Armature) invalidate() {
	a.segmentsDirty = true
}

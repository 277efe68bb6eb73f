package rig

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/tanema/gween/ease"
	"gopkg.in/yaml.v3"

	"github.com/phanxgames/tendon"
)

// Script actions.
const (
	ActionTarget     = "target"     // set a pin target, pinning the bone if needed
	ActionTween      = "tween"      // animate a pin target over Duration seconds
	ActionEnable     = "enable"     // enable the bone's pin
	ActionDisable    = "disable"    // disable the bone's pin
	ActionWait       = "wait"       // idle for Frames frames
	ActionScreenshot = "screenshot" // call Runner.OnScreenshot with Label
)

var (
	ErrEmptyScript   = errors.New("script has no steps")
	ErrUnknownAction = errors.New("unknown script action")
	ErrUnknownBone   = errors.New("no such bone")
	ErrUnknownEase   = errors.New("unknown easing")
)

// eases maps the names accepted in a step's ease field.
var eases = map[string]ease.TweenFunc{
	"":             ease.InOutQuad,
	"linear":       ease.Linear,
	"in-quad":      ease.InQuad,
	"out-quad":     ease.OutQuad,
	"in-out-quad":  ease.InOutQuad,
	"in-out-cubic": ease.InOutCubic,
	"in-out-sine":  ease.InOutSine,
	"out-bounce":   ease.OutBounce,
	"out-elastic":  ease.OutElastic,
}

// Step is one scripted action. Position and Rotation apply to target and
// tween steps; a tween with neither is rejected.
type Step struct {
	Action   string      `yaml:"action" json:"action"`
	Bone     string      `yaml:"bone,omitempty" json:"bone,omitempty"`
	Position *[3]float64 `yaml:"position,omitempty,flow" json:"position,omitempty"`
	Rotation *[4]float64 `yaml:"rotation,omitempty,flow" json:"rotation,omitempty"`
	Duration float32     `yaml:"duration,omitempty" json:"duration,omitempty"`
	Ease     string      `yaml:"ease,omitempty" json:"ease,omitempty"`
	Frames   int         `yaml:"frames,omitempty" json:"frames,omitempty"`
	Label    string      `yaml:"label,omitempty" json:"label,omitempty"`
}

// Script is a sequence of steps that animates an armature's pins frame by
// frame, for demos and reproducible solver runs:
//
//	steps:
//	  - action: tween
//	    bone: wrist
//	    position: [8, 4, 6]
//	    duration: 1.5
//	    ease: in-out-sine
//	  - action: wait
//	    frames: 90
//	  - action: screenshot
//	    label: reached
type Script struct {
	Steps []Step `yaml:"steps" json:"steps"`
}

// DecodeScript reads a Script. Unknown fields are rejected.
func DecodeScript(r io.Reader) (*Script, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var s Script
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("script: decode: %w", err)
	}
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("script: %w", ErrEmptyScript)
	}
	return &s, nil
}

// Runner plays a Script against an armature, one step per frame.
type Runner struct {
	// OnScreenshot is called for screenshot steps. Nil ignores them.
	OnScreenshot func(label string)

	// Logger reports steps skipped because their bone left the armature
	// after NewRunner checked it. Nil discards them.
	Logger *slog.Logger

	arm       *tendon.Armature
	steps     []Step
	cursor    int
	waitCount int
	tweens    []*tendon.TweenGroup
	done      bool
}

// NewRunner checks every step against a and returns a runner positioned
// at the first step.
func NewRunner(s *Script, a *tendon.Armature) (*Runner, error) {
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("script: %w", ErrEmptyScript)
	}
	for i, st := range s.Steps {
		if err := checkStep(st, a); err != nil {
			return nil, fmt.Errorf("script: step %d (%s): %w", i+1, st.Action, err)
		}
	}
	return &Runner{arm: a, steps: s.Steps}, nil
}

func checkStep(st Step, a *tendon.Armature) error {
	switch st.Action {
	case ActionWait, ActionScreenshot:
		return nil
	case ActionTarget, ActionTween:
		if st.Position == nil && st.Rotation == nil {
			return errors.New("needs a position or a rotation")
		}
		if _, ok := eases[st.Ease]; !ok {
			return fmt.Errorf("%q: %w", st.Ease, ErrUnknownEase)
		}
	case ActionEnable, ActionDisable:
	default:
		return fmt.Errorf("%q: %w", st.Action, ErrUnknownAction)
	}
	if a.Bone(st.Bone) == nil {
		return fmt.Errorf("%q: %w", st.Bone, ErrUnknownBone)
	}
	return nil
}

// Done reports whether every step ran and every tween finished.
func (r *Runner) Done() bool {
	return r.done
}

// Step advances the runner by one frame of dt seconds: running tweens are
// updated, then at most one step executes. Solve after calling Step.
func (r *Runner) Step(dt float32) {
	if r.done {
		return
	}

	live := r.tweens[:0]
	for _, tw := range r.tweens {
		tw.Update(dt)
		if !tw.Done {
			live = append(live, tw)
		}
	}
	r.tweens = live

	if r.waitCount > 0 {
		r.waitCount--
	} else if r.cursor < len(r.steps) {
		st := r.steps[r.cursor]
		r.cursor++
		r.exec(st)
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(r.tweens) == 0 {
		r.done = true
	}
}

func (r *Runner) exec(st Step) {
	switch st.Action {
	case ActionWait:
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	case ActionScreenshot:
		if r.OnScreenshot != nil {
			r.OnScreenshot(st.Label)
		}
	case ActionEnable:
		r.pin(st)
	case ActionDisable:
		if b := r.bone(st); b != nil {
			b.DisablePin()
		}
	case ActionTarget:
		p := r.pin(st)
		if p == nil {
			return
		}
		if st.Position != nil {
			p.SetTargetPosition(vec(*st.Position))
		}
		if st.Rotation != nil {
			p.SetTargetRotation(quat(*st.Rotation))
		}
	case ActionTween:
		p := r.pin(st)
		if p == nil {
			return
		}
		fn := eases[st.Ease]
		if st.Position != nil {
			r.tweens = append(r.tweens, tendon.TweenPinPosition(p, vec(*st.Position), st.Duration, fn))
		}
		if st.Rotation != nil {
			r.tweens = append(r.tweens, tendon.TweenPinRotation(p, quat(*st.Rotation), st.Duration, fn))
		}
	}
}

// bone looks up the step's bone, logging and returning nil when it is no
// longer in the armature.
func (r *Runner) bone(st Step) *tendon.Bone {
	b := r.arm.Bone(st.Bone)
	if b == nil && r.Logger != nil {
		r.Logger.Warn("script step skipped", "step", r.cursor, "action", st.Action, "bone", st.Bone)
	}
	return b
}

// pin returns the bone's enabled pin, creating one at the tip if needed.
// It returns nil when the bone is gone.
func (r *Runner) pin(st Step) *tendon.Pin {
	b := r.bone(st)
	if b == nil {
		return nil
	}
	if p := b.Pin(); p != nil {
		p.SetEnabled(true)
		return p
	}
	return b.EnablePin()
}

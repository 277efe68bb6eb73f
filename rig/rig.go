// Package rig reads and writes tendon armatures as plain records.
//
// A rig file is YAML (JSON documents are accepted too, being valid YAML):
//
//	name: arm
//	solver:
//	  iterations: 10
//	  damping: 0.1
//	bones:
//	  - name: shoulder
//	    length: 10
//	  - name: elbow
//	    parent: shoulder
//	    offset: [0, 10, 0]
//	    length: 10
//	    constraint:
//	      kind: hinge
//	      axis: [1, 0, 0]
//	      min: 0
//	      max: 2.5
//	  - name: wrist
//	    parent: elbow
//	    offset: [0, 10, 0]
//	    length: 5
//	    pin:
//	      target:
//	        position: [8, 12, 0]
//
// Rotations are quaternions written as [w, x, y, z]; an all-zero rotation
// means identity. Bones must be listed parents first.
package rig

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/phanxgames/tendon"
)

var (
	ErrNoBones           = errors.New("rig has no bones")
	ErrDuplicateBone     = errors.New("duplicate bone name")
	ErrUnknownParent     = errors.New("parent must be listed before its children")
	ErrMultipleRoots     = errors.New("only one bone may omit its parent")
	ErrUnknownConstraint = errors.New("unknown constraint kind")
)

// Constraint kinds.
const (
	KindCones = "cones"
	KindHinge = "hinge"
)

// Definition is the record form of an armature.
type Definition struct {
	Name   string               `yaml:"name" json:"name"`
	Solver *tendon.SolverConfig `yaml:"solver,omitempty" json:"solver,omitempty"`
	Bones  []BoneDef            `yaml:"bones" json:"bones"`
}

// BoneDef describes one bone. Offset and Rotation are relative to the
// parent bone's frame (the armature frame for the root). Rest, when set,
// is the rotation constraints are measured from; otherwise Rotation is
// the rest rotation.
type BoneDef struct {
	Name       string         `yaml:"name" json:"name"`
	Parent     string         `yaml:"parent,omitempty" json:"parent,omitempty"`
	Offset     [3]float64     `yaml:"offset,flow" json:"offset"`
	Rotation   [4]float64     `yaml:"rotation,flow" json:"rotation"`
	Rest       *[4]float64    `yaml:"rest,omitempty,flow" json:"rest,omitempty"`
	Length     float64        `yaml:"length" json:"length"`
	Constraint *ConstraintDef `yaml:"constraint,omitempty" json:"constraint,omitempty"`
	Pin        *PinDef        `yaml:"pin,omitempty" json:"pin,omitempty"`
}

// ConstraintDef describes a cone or hinge constraint. Cones and Twist
// apply to KindCones; Axis, Min and Max to KindHinge.
type ConstraintDef struct {
	Kind    string     `yaml:"kind" json:"kind"`
	Enabled *bool      `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Cones   []ConeDef  `yaml:"cones,omitempty" json:"cones,omitempty"`
	Twist   *TwistDef  `yaml:"twist,omitempty" json:"twist,omitempty"`
	Axis    [3]float64 `yaml:"axis,flow" json:"axis"`
	Min     float64    `yaml:"min" json:"min"`
	Max     float64    `yaml:"max" json:"max"`
}

// ConeDef is one limit cone.
type ConeDef struct {
	Direction [3]float64 `yaml:"direction,flow" json:"direction"`
	HalfAngle float64    `yaml:"half_angle" json:"half_angle"`
}

// TwistDef is a twist arc in radians.
type TwistDef struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// PinDef describes a pin. A nil PositionWeight means 1; a nil Enabled
// means enabled.
type PinDef struct {
	Enabled            *bool      `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Target             TargetDef  `yaml:"target" json:"target"`
	PositionWeight     *float64   `yaml:"position_weight,omitempty" json:"position_weight,omitempty"`
	OrientationWeights [3]float64 `yaml:"orientation_weights,flow" json:"orientation_weights"`
	DepthFalloff       float64    `yaml:"depth_falloff" json:"depth_falloff"`
}

// TargetDef is a pin target in world space.
type TargetDef struct {
	Position [3]float64 `yaml:"position,flow" json:"position"`
	Rotation [4]float64 `yaml:"rotation,flow" json:"rotation"`
}

// Decode reads a Definition. Unknown fields are rejected.
func Decode(r io.Reader) (*Definition, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var def Definition
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("rig: decode: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Encode writes def as YAML.
func Encode(w io.Writer, def *Definition) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(def); err != nil {
		return fmt.Errorf("rig: encode: %w", err)
	}
	return enc.Close()
}

// Validate checks bone names and ordering and the constraint kinds.
func (d *Definition) Validate() error {
	if len(d.Bones) == 0 {
		return fmt.Errorf("rig %q: %w", d.Name, ErrNoBones)
	}
	seen := make(map[string]bool, len(d.Bones))
	roots := 0
	for _, b := range d.Bones {
		if seen[b.Name] {
			return fmt.Errorf("rig %q: bone %q: %w", d.Name, b.Name, ErrDuplicateBone)
		}
		if b.Parent == "" {
			roots++
			if roots > 1 {
				return fmt.Errorf("rig %q: bone %q: %w", d.Name, b.Name, ErrMultipleRoots)
			}
		} else if !seen[b.Parent] {
			return fmt.Errorf("rig %q: bone %q: parent %q: %w", d.Name, b.Name, b.Parent, ErrUnknownParent)
		}
		if c := b.Constraint; c != nil && c.Kind != KindCones && c.Kind != KindHinge {
			return fmt.Errorf("rig %q: bone %q: %q: %w", d.Name, b.Name, c.Kind, ErrUnknownConstraint)
		}
		seen[b.Name] = true
	}
	if roots == 0 {
		return fmt.Errorf("rig %q: %w", d.Name, ErrUnknownParent)
	}
	return nil
}

// --- conversions ---

func vec(a [3]float64) mgl64.Vec3 {
	return mgl64.Vec3{a[0], a[1], a[2]}
}

func vecArray(v mgl64.Vec3) [3]float64 {
	return [3]float64{v[0], v[1], v[2]}
}

// quat reads [w, x, y, z]; all zeros is the identity.
func quat(a [4]float64) mgl64.Quat {
	if a == ([4]float64{}) {
		return mgl64.QuatIdent()
	}
	return mgl64.Quat{W: a[0], V: mgl64.Vec3{a[1], a[2], a[3]}}.Normalize()
}

// quatArray writes q as [w, x, y, z] with a non-negative w.
func quatArray(q mgl64.Quat) [4]float64 {
	if q.W < 0 {
		q = q.Scale(-1)
	}
	return [4]float64{q.W, q.V[0], q.V[1], q.V[2]}
}

func boolPtr(v bool) *bool {
	return &v
}

package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/phanxgames/tendon"
)

var (
	colorAccent = lipgloss.Color("#2CD7C7")
	colorBorder = lipgloss.Color("#16858E")
	colorMuted  = lipgloss.Color("#5C7A84")
	colorError  = lipgloss.Color("#E74C3C")
)

var styles = struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Header    lipgloss.Style
	Cell      lipgloss.Style
	Muted     lipgloss.Style
	Highlight lipgloss.Style
	Error     lipgloss.Style
}{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
	Subtitle:  lipgloss.NewStyle().Foreground(colorAccent),
	Header:    lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Padding(0, 1),
	Cell:      lipgloss.NewStyle().Padding(0, 1),
	Muted:     lipgloss.NewStyle().Foreground(colorMuted),
	Highlight: lipgloss.NewStyle().Bold(true),
	Error:     lipgloss.NewStyle().Foreground(colorError),
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.Header
			}
			return styles.Cell
		}).
		Headers(headers...)
}

// poseTable lists every bone's world origin and tip.
func poseTable(a *tendon.Armature) string {
	t := newTable("bone", "origin", "tip")
	for _, b := range a.Bones() {
		t.Row(b.Name, formatVec(b.Origin()), formatVec(b.Tip()))
	}
	return t.Render()
}

// pinTable lists each pin's target and remaining errors.
func pinTable(pins []*tendon.Pin) string {
	t := newTable("pin", "target", "position error", "orientation error")
	for _, p := range pins {
		t.Row(p.Bone().Name, formatVec(p.Target().Translation),
			formatFloat(p.PositionError()), formatFloat(p.OrientationError()))
	}
	return t.Render()
}

// boneTable lists the bone tree with constraint and pin details.
func boneTable(a *tendon.Armature) string {
	t := newTable("bone", "parent", "length", "constraint", "pin")
	for _, b := range a.Bones() {
		parent := "-"
		if p := b.Parent(); p != nil {
			parent = p.Name
		}
		pin := "-"
		if p := b.Pin(); p != nil {
			pin = "disabled"
			if p.Enabled() {
				pin = formatVec(p.Target().Translation)
			}
		}
		t.Row(b.Name, parent, formatFloat(b.Length()), describeConstraint(b.Constraint()), pin)
	}
	return t.Render()
}

func describeConstraint(c tendon.Constraint) string {
	var s string
	switch c := c.(type) {
	case nil:
		return "-"
	case *tendon.HingeConstraint:
		lo, hi := c.Limits()
		s = fmt.Sprintf("hinge %s [%s, %s]", formatVec(c.Axis()), formatFloat(lo), formatFloat(hi))
	case *tendon.ConeConstraint:
		s = fmt.Sprintf("%d cones", len(c.Cones()))
		if lo, hi, ok := c.TwistLimits(); ok {
			s += fmt.Sprintf(", twist [%s, %s]", formatFloat(lo), formatFloat(hi))
		}
	default:
		s = fmt.Sprintf("%T", c)
	}
	if !c.Enabled() {
		s += " (off)"
	}
	return s
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 3, 64)
}

func formatVec(v mgl64.Vec3) string {
	return fmt.Sprintf("(%s, %s, %s)", formatFloat(v[0]), formatFloat(v[1]), formatFloat(v[2]))
}

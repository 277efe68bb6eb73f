package viewer

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/phanxgames/tendon"
)

// Style selects the colors and sizes DrawArmature uses.
type Style struct {
	Bone      color.Color
	Joint     color.Color
	Pin       color.Color
	PinOff    color.Color
	Target    color.Color
	Axes      bool // draw the target's orientation axes for orientation pins
	BoneWidth float32
	JointSize float32
}

// DefaultStyle returns light bones on a dark background with orange pins.
func DefaultStyle() Style {
	return Style{
		Bone:      color.RGBA{R: 0xd8, G: 0xe0, B: 0xe8, A: 0xff},
		Joint:     color.RGBA{R: 0x2c, G: 0xd7, B: 0xc7, A: 0xff},
		Pin:       color.RGBA{R: 0xff, G: 0x99, B: 0x33, A: 0xff},
		PinOff:    color.RGBA{R: 0x66, G: 0x55, B: 0x44, A: 0xff},
		Target:    color.RGBA{R: 0xff, G: 0x66, B: 0x33, A: 0x99},
		Axes:      true,
		BoneWidth: 3,
		JointSize: 4,
	}
}

var axisColors = [3]color.Color{
	color.RGBA{R: 0xe7, G: 0x4c, B: 0x3c, A: 0xff},
	color.RGBA{R: 0x2e, G: 0xcc, B: 0x71, A: 0xff},
	color.RGBA{R: 0x34, G: 0x98, B: 0xdb, A: 0xff},
}

// DrawArmature draws every bone of a as a line from origin to tip, and
// every pin as a circle at its target joined to the pinned bone's tip.
// Disabled pins are drawn as a hollow circle.
func DrawArmature(dst *ebiten.Image, cam *Camera, a *tendon.Armature, st Style) {
	bones := a.Bones()
	for _, b := range bones {
		ox, oy := cam.WorldToScreen(b.Origin())
		tx, ty := cam.WorldToScreen(b.Tip())
		vector.StrokeLine(dst, float32(ox), float32(oy), float32(tx), float32(ty), st.BoneWidth, st.Bone, true)
		vector.DrawFilledCircle(dst, float32(ox), float32(oy), st.JointSize, st.Joint, true)
	}
	for _, p := range allPins(bones) {
		drawPin(dst, cam, p, st)
	}
}

// allPins returns the attached pins of bones, disabled ones included.
func allPins(bones []*tendon.Bone) []*tendon.Pin {
	var out []*tendon.Pin
	for _, b := range bones {
		if p := b.Pin(); p != nil {
			out = append(out, p)
		}
	}
	return out
}

func drawPin(dst *ebiten.Image, cam *Camera, p *tendon.Pin, st Style) {
	target := p.Target()
	px, py := cam.WorldToScreen(target.Translation)
	if !p.Enabled() {
		vector.StrokeCircle(dst, float32(px), float32(py), st.JointSize*2, 1, st.PinOff, true)
		return
	}
	bx, by := cam.WorldToScreen(p.Bone().Tip())
	vector.StrokeLine(dst, float32(bx), float32(by), float32(px), float32(py), 1, st.Target, true)
	vector.DrawFilledCircle(dst, float32(px), float32(py), st.JointSize*1.5, st.Pin, true)

	w := p.OrientationWeights()
	if !st.Axes || w == (mgl64.Vec3{}) {
		return
	}
	size := float64(st.JointSize) * 6 / cam.Zoom
	axes := [3]mgl64.Vec3{tendon.AxisX, tendon.AxisY, tendon.AxisZ}
	for i, axis := range axes {
		if w[i] == 0 {
			continue
		}
		end := target.Translation.Add(target.Rotation.Rotate(axis).Mul(size))
		ex, ey := cam.WorldToScreen(end)
		vector.StrokeLine(dst, float32(px), float32(py), float32(ex), float32(ey), 2, axisColors[i], true)
	}
}

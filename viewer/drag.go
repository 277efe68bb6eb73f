package viewer

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/tendon"
)

const (
	defaultDragDeadZone = 4.0  // pixels
	defaultPickRadius   = 12.0 // pixels
	orbitSpeed          = 0.01 // radians per pixel
)

// PinDragger turns pointer input into pin target moves. Pressing near a
// pin's target and dragging moves the target on the plane through it that
// faces the camera. Dragging empty space orbits the camera.
type PinDragger struct {
	// DeadZone is the movement in pixels before a press becomes a drag.
	DeadZone float64
	// PickRadius is the distance in pixels within which a press grabs a pin.
	PickRadius float64

	// OnDragEnd, when set, is called with the pin that was released.
	OnDragEnd func(*tendon.Pin)

	down     bool
	dragging bool
	startX   float64
	startY   float64
	lastX    float64
	lastY    float64
	hit      *tendon.Pin
}

// NewPinDragger returns a dragger with the default dead zone and pick
// radius.
func NewPinDragger() *PinDragger {
	return &PinDragger{DeadZone: defaultDragDeadZone, PickRadius: defaultPickRadius}
}

// Dragging returns the pin being dragged, or nil.
func (d *PinDragger) Dragging() *tendon.Pin {
	if d.dragging {
		return d.hit
	}
	return nil
}

// UpdateFromInput reads the mouse and feeds it to Update.
func (d *PinDragger) UpdateFromInput(cam *Camera, pins []*tendon.Pin) {
	mx, my := ebiten.CursorPosition()
	pressed := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	d.Update(cam, pins, float64(mx), float64(my), pressed)
}

// Update runs the pointer state machine for one frame with the pointer
// at (sx, sy) in screen coordinates.
func (d *PinDragger) Update(cam *Camera, pins []*tendon.Pin, sx, sy float64, pressed bool) {
	switch {
	case pressed && !d.down:
		d.down = true
		d.dragging = false
		d.startX, d.startY = sx, sy
		d.lastX, d.lastY = sx, sy
		d.hit = pick(cam, pins, sx, sy, d.PickRadius)

	case !pressed && d.down:
		if d.dragging && d.hit != nil && d.OnDragEnd != nil {
			d.OnDragEnd(d.hit)
		}
		d.down = false
		d.dragging = false
		d.hit = nil

	case pressed && d.down:
		if sx == d.lastX && sy == d.lastY {
			return
		}
		if !d.dragging && math.Hypot(sx-d.startX, sy-d.startY) > d.DeadZone {
			d.dragging = true
		}
		if d.dragging {
			if d.hit != nil {
				target := d.hit.Target().Translation
				d.hit.SetTargetPosition(cam.ScreenToWorld(sx, sy, target))
			} else {
				cam.Orbit((sx-d.lastX)*orbitSpeed, (sy-d.lastY)*orbitSpeed)
			}
		}
		d.lastX, d.lastY = sx, sy
	}
}

// pick returns the enabled pin whose target is nearest to (sx, sy) on
// screen, if it lies within radius.
func pick(cam *Camera, pins []*tendon.Pin, sx, sy, radius float64) *tendon.Pin {
	var best *tendon.Pin
	bestDist := radius
	for _, p := range pins {
		if !p.Enabled() {
			continue
		}
		px, py := cam.WorldToScreen(p.Target().Translation)
		if dist := math.Hypot(px-sx, py-sy); dist <= bestDist {
			best, bestDist = p, dist
		}
	}
	return best
}

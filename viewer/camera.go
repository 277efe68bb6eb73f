package viewer

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/phanxgames/tendon"
)

// maxPitch keeps the camera off the poles, where yaw stops mattering.
const maxPitch = math.Pi/2 - 0.01

// Rect is a screen-space rectangle.
type Rect struct {
	X, Y, Width, Height float64
}

// scrollAnim holds active scroll-to tweens for the camera target.
type scrollAnim struct {
	tweens [3]*gween.Tween
	done   [3]bool
}

// Camera is an orthographic orbit camera. It looks at Target from the
// direction given by Yaw and Pitch, with world +Y pointing up on screen.
type Camera struct {
	// Target is the world-space point at the viewport's centre.
	Target mgl64.Vec3
	// Yaw turns the view about world +Y, in radians.
	Yaw float64
	// Pitch tilts the view about the camera's horizontal axis, in radians.
	// Update clamps it to just under a quarter turn either way.
	Pitch float64
	// Zoom is the number of pixels per world unit.
	Zoom float64
	// Viewport is the screen-space rectangle the camera renders into.
	Viewport Rect

	followBone *tendon.Bone
	followLerp float64

	view, inv mgl64.Mat4
	last      [6]float64 // yaw, pitch, zoom and target the matrices were built from
	viewport  Rect
	dirty     bool

	scroll *scrollAnim
}

// NewCamera creates a camera looking down -Z at the origin.
func NewCamera(viewport Rect) *Camera {
	return &Camera{
		Zoom:     1,
		Viewport: viewport,
		dirty:    true,
	}
}

// Follow makes the camera track the tip of b. A lerp of 1 snaps
// immediately; lower values give smoother following.
func (c *Camera) Follow(b *tendon.Bone, lerp float64) {
	c.followBone = b
	c.followLerp = lerp
}

// Unfollow stops tracking.
func (c *Camera) Unfollow() {
	c.followBone = nil
}

// ScrollTo animates the target to p over duration seconds.
func (c *Camera) ScrollTo(p mgl64.Vec3, duration float32, fn ease.TweenFunc) {
	s := &scrollAnim{}
	for i := range s.tweens {
		s.tweens[i] = gween.New(float32(c.Target[i]), float32(p[i]), duration, fn)
	}
	c.scroll = s
}

// Orbit turns the camera by the given yaw and pitch deltas.
func (c *Camera) Orbit(dyaw, dpitch float64) {
	c.Yaw += dyaw
	c.Pitch = math.Max(-maxPitch, math.Min(c.Pitch+dpitch, maxPitch))
}

// Update advances following and scrolling by dt seconds.
func (c *Camera) Update(dt float32) {
	if c.followBone != nil && !c.followBone.IsDisposed() {
		tip := c.followBone.Tip()
		c.Target = c.Target.Add(tip.Sub(c.Target).Mul(c.followLerp))
	}

	if s := c.scroll; s != nil {
		finished := true
		for i := range s.tweens {
			if s.done[i] {
				continue
			}
			val, done := s.tweens[i].Update(dt)
			c.Target[i] = float64(val)
			s.done[i] = done
			finished = finished && done
		}
		if finished {
			c.scroll = nil
		}
	}

	c.Pitch = math.Max(-maxPitch, math.Min(c.Pitch, maxPitch))
}

// MarkDirty forces a recomputation of the view matrix.
func (c *Camera) MarkDirty() {
	c.dirty = true
}

// computeView rebuilds the cached view matrix when any input changed.
//
// view = Translate(cx, cy) * Scale(zoom, -zoom, zoom) * Rx(pitch) * Ry(-yaw) * Translate(-target)
func (c *Camera) computeView() {
	state := [6]float64{c.Yaw, c.Pitch, c.Zoom, c.Target[0], c.Target[1], c.Target[2]}
	if !c.dirty && state == c.last && c.Viewport == c.viewport {
		return
	}
	c.dirty = false
	c.last = state
	c.viewport = c.Viewport

	cx := c.Viewport.X + c.Viewport.Width/2
	cy := c.Viewport.Y + c.Viewport.Height/2
	c.view = mgl64.Translate3D(cx, cy, 0).
		Mul4(mgl64.Scale3D(c.Zoom, -c.Zoom, c.Zoom)).
		Mul4(mgl64.HomogRotate3DX(c.Pitch)).
		Mul4(mgl64.HomogRotate3DY(-c.Yaw)).
		Mul4(mgl64.Translate3D(-c.Target[0], -c.Target[1], -c.Target[2]))
	c.inv = c.view.Inv()
}

// WorldToScreen projects a world point to screen coordinates.
func (c *Camera) WorldToScreen(p mgl64.Vec3) (sx, sy float64) {
	c.computeView()
	v := c.view.Mul4x1(p.Vec4(1))
	return v[0], v[1]
}

// ScreenToWorld returns the world point under (sx, sy) that lies at the
// same depth as ref, on the plane through ref facing the camera.
func (c *Camera) ScreenToWorld(sx, sy float64, ref mgl64.Vec3) mgl64.Vec3 {
	c.computeView()
	depth := c.view.Mul4x1(ref.Vec4(1))[2]
	return c.inv.Mul4x1(mgl64.Vec4{sx, sy, depth, 1}).Vec3()
}

// Fit centres the camera on the armature's bones and picks a zoom that
// keeps them inside the viewport with the given margin in pixels.
func (c *Camera) Fit(a *tendon.Armature, margin float64) {
	bones := a.Bones()
	if len(bones) == 0 {
		return
	}
	lo, hi := bones[0].Origin(), bones[0].Origin()
	for _, b := range bones {
		for _, p := range [2]mgl64.Vec3{b.Origin(), b.Tip()} {
			for i := 0; i < 3; i++ {
				lo[i] = math.Min(lo[i], p[i])
				hi[i] = math.Max(hi[i], p[i])
			}
		}
	}
	c.Target = lo.Add(hi).Mul(0.5)
	radius := hi.Sub(lo).Len() / 2
	if radius == 0 {
		return
	}
	avail := math.Min(c.Viewport.Width, c.Viewport.Height)/2 - margin
	if avail > 0 {
		c.Zoom = avail / radius
	}
}

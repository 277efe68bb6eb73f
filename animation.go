package tendon

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates a pin's target. Create one via TweenPinPosition or
// TweenPinRotation and call Update(dt) each frame before solving. If the
// pin is detached from its bone, the group stops immediately.
//
// There is no global animation manager; callers run Update themselves.
type TweenGroup struct {
	tweens [3]*gween.Tween
	count  int
	apply  func(vals [3]float64)
	target *Pin
	Done   bool
}

// Update advances all tweens by dt seconds and writes the result into the
// pin's target.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	if g.target.bone == nil || g.target.bone.disposed {
		g.Done = true
		return
	}

	var vals [3]float64
	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		vals[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.apply(vals)
	g.Done = allDone
}

// TweenPinPosition creates a TweenGroup that moves the pin's target
// position to `to` over duration seconds using the easing function.
func TweenPinPosition(pin *Pin, to mgl64.Vec3, duration float32, fn ease.TweenFunc) *TweenGroup {
	from := pin.target.local.Translation
	g := &TweenGroup{count: 3, target: pin}
	for i := 0; i < 3; i++ {
		g.tweens[i] = gween.New(float32(from[i]), float32(to[i]), duration, fn)
	}
	g.apply = func(vals [3]float64) {
		pin.SetTargetPosition(mgl64.Vec3{vals[0], vals[1], vals[2]})
	}
	return g
}

// TweenPinRotation creates a TweenGroup that turns the pin's target
// orientation to `to` along the shortest arc.
func TweenPinRotation(pin *Pin, to mgl64.Quat, duration float32, fn ease.TweenFunc) *TweenGroup {
	from := pin.target.local.Rotation
	to = normalizeQuat(to)
	if from.Dot(to) < 0 {
		to = to.Scale(-1)
	}
	g := &TweenGroup{count: 1, target: pin}
	g.tweens[0] = gween.New(0, 1, duration, fn)
	g.apply = func(vals [3]float64) {
		pin.SetTargetRotation(mgl64.QuatSlerp(from, to, clamp(vals[0], 0, 1)))
	}
	return g
}

package viewer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/phanxgames/tendon"
)

func dragFixture(t *testing.T) (*Camera, *tendon.Pin) {
	t.Helper()
	a, err := tendon.NewArmature("arm", tendon.DefaultSolverConfig())
	if err != nil {
		t.Fatal(err)
	}
	b, err := a.NewRoot("root", mgl64.Vec3{}, mgl64.QuatIdent(), 10)
	if err != nil {
		t.Fatal(err)
	}
	p := b.EnablePin()
	p.SetTargetPosition(mgl64.Vec3{10, 0, 0})
	return NewCamera(Rect{Width: 200, Height: 200}), p
}

func TestPinDraggerMovesTarget(t *testing.T) {
	cam, p := dragFixture(t)
	d := NewPinDragger()
	var released *tendon.Pin
	d.OnDragEnd = func(p *tendon.Pin) { released = p }
	pins := []*tendon.Pin{p}

	// The target sits at (110, 100) on screen.
	d.Update(cam, pins, 111, 100, true)
	d.Update(cam, pins, 113, 100, true)
	if d.Dragging() != nil {
		t.Fatal("movement inside the dead zone should not start a drag")
	}
	if got := p.Target().Translation; got != (mgl64.Vec3{10, 0, 0}) {
		t.Fatalf("target moved inside the dead zone: %v", got)
	}

	d.Update(cam, pins, 130, 80, true)
	if d.Dragging() != p {
		t.Fatal("expected the pin to be dragged")
	}
	want := mgl64.Vec3{30, 20, 0}
	if got := p.Target().Translation; !vecNear(got, want, 1e-9) {
		t.Errorf("target = %v, want %v", got, want)
	}

	d.Update(cam, pins, 130, 80, false)
	if released != p {
		t.Error("OnDragEnd not called with the dragged pin")
	}
	if d.Dragging() != nil {
		t.Error("drag should end on release")
	}
}

func TestPinDraggerOrbitsOnMiss(t *testing.T) {
	cam, p := dragFixture(t)
	d := NewPinDragger()
	pins := []*tendon.Pin{p}

	d.Update(cam, pins, 0, 0, true)
	d.Update(cam, pins, 50, 0, true)
	if !approxEqual(cam.Yaw, 50*orbitSpeed, epsilon) {
		t.Errorf("Yaw = %f, want %f", cam.Yaw, 50*orbitSpeed)
	}
	if got := p.Target().Translation; got != (mgl64.Vec3{10, 0, 0}) {
		t.Errorf("orbiting moved the pin: %v", got)
	}
}

func TestPickSkipsDisabledPins(t *testing.T) {
	cam, p := dragFixture(t)
	if pick(cam, []*tendon.Pin{p}, 110, 100, 5) != p {
		t.Fatal("expected the pin under the pointer")
	}
	if pick(cam, []*tendon.Pin{p}, 140, 100, 5) != nil {
		t.Error("a pin outside the radius should not be picked")
	}
	p.SetEnabled(false)
	if pick(cam, []*tendon.Pin{p}, 110, 100, 5) != nil {
		t.Error("a disabled pin should not be picked")
	}
}

// Package viewer draws tendon armatures with Ebitengine and lets the
// user drag pin targets with the mouse.
//
// It is a small toolkit for the interactive examples, not a renderer:
// bones are drawn as lines through an orthographic orbit [Camera], pins
// as circles, and a [HUD] prints frame and solver statistics.
//
//	cam := viewer.NewCamera(viewer.Rect{Width: 800, Height: 600})
//	drag := viewer.NewPinDragger()
//
//	// Update:
//	drag.UpdateFromInput(cam, arm.Pins())
//	cam.Update(dt)
//	arm.SolveAll()
//
//	// Draw:
//	viewer.DrawArmature(screen, cam, arm, viewer.DefaultStyle())
package viewer

package viewer

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/phanxgames/tendon"
)

// hudRefresh is how often the HUD text is rebuilt, in seconds.
const hudRefresh = 0.5

// HUD prints frame rate and solver statistics in a corner of the screen.
// The text is refreshed every half second so it stays readable.
type HUD struct {
	// Lines are appended after the statistics, for key help and the like.
	Lines []string

	img   *ebiten.Image
	text  string
	since float64
	last  tendon.SolveEvent
}

// NewHUD creates a HUD. Set it as an armature's event sink (or call
// EmitEvent from one) to show solve statistics.
func NewHUD() *HUD {
	return &HUD{since: hudRefresh}
}

// EmitEvent records the latest solve.
func (h *HUD) EmitEvent(ev tendon.SolveEvent) {
	h.last = ev
}

// Update advances the refresh timer by dt seconds.
func (h *HUD) Update(dt float64) {
	h.since += dt
	if h.since < hudRefresh {
		return
	}
	h.since = 0
	h.text = fmt.Sprintf("FPS: %.1f  TPS: %.1f\nsolve: %d segments, error %.3f, %s",
		ebiten.ActualFPS(), ebiten.ActualTPS(),
		h.last.Segments, h.last.Error, h.last.Duration.Round(time.Microsecond))
	for _, l := range h.Lines {
		h.text += "\n" + l
	}
}

// Draw renders the HUD at the top-left of dst.
func (h *HUD) Draw(dst *ebiten.Image) {
	if h.text == "" {
		return
	}
	if h.img == nil {
		// 320x96 fits the statistics plus a few help lines.
		h.img = ebiten.NewImage(320, 96)
	}
	h.img.Clear()
	// Semi-transparent background for readability
	h.img.Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(h.img, h.text)
	dst.DrawImage(h.img, nil)
}

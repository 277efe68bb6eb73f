package viewer

import (
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Recorder captures labeled screenshots at the end of a Draw call.
type Recorder struct {
	// Dir is where PNG files are written. It is created on demand.
	Dir string
	// Logger receives write failures. Nil discards them.
	Logger *slog.Logger

	queue []string
}

// NewRecorder returns a recorder writing into dir.
func NewRecorder(dir string) *Recorder {
	return &Recorder{Dir: dir}
}

// Screenshot queues a labeled screenshot to be captured by the next
// Flush. Safe to call from Update or Draw.
func (r *Recorder) Screenshot(label string) {
	r.queue = append(r.queue, label)
}

// Pending reports how many screenshots are queued.
func (r *Recorder) Pending() int {
	return len(r.queue)
}

// Flush captures screen once for every queued label and writes each as a
// timestamped PNG file. Call it at the end of Draw.
func (r *Recorder) Flush(screen *ebiten.Image) {
	if len(r.queue) == 0 {
		return
	}
	defer func() { r.queue = r.queue[:0] }()

	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		r.logError("screenshot: mkdir", err)
		return
	}

	bounds := screen.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pixels := make([]byte, 4*w*h)
	screen.ReadPixels(pixels)
	img := unpremultiply(pixels, w, h)

	stamp := time.Now().Format("20060102_150405")
	for _, label := range r.queue {
		path := filepath.Join(r.Dir, fmt.Sprintf("%s_%s.png", stamp, sanitizeLabel(label)))
		if err := writePNG(path, img); err != nil {
			r.logError("screenshot", err)
		}
	}
}

func (r *Recorder) logError(msg string, err error) {
	if r.Logger != nil {
		r.Logger.Error(msg, "dir", r.Dir, "err", err)
	}
}

// unpremultiply converts premultiplied RGBA pixels to straight-alpha NRGBA.
func unpremultiply(pixels []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i+3 < len(pixels) && i+3 < len(img.Pix); i += 4 {
		r, g, b, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = a
	}
	return img
}

// writePNG encodes an image to a PNG file at the given path.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

package viewer

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "unlabeled"},
		{"   ", "unlabeled"},
		{"reach", "reach"},
		{"arm pose/1", "arm_pose_1"},
		{"v1.2-final", "v1.2-final"},
		{" padded ", "padded"},
	}
	for _, tt := range tests {
		if got := sanitizeLabel(tt.in); got != tt.want {
			t.Errorf("sanitizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRecorderQueue(t *testing.T) {
	r := NewRecorder(t.TempDir())
	r.Screenshot("a")
	r.Screenshot("b")
	if r.Pending() != 2 {
		t.Errorf("Pending = %d, want 2", r.Pending())
	}
}

func TestUnpremultiply(t *testing.T) {
	// One opaque, one half transparent, one fully transparent pixel.
	pixels := []byte{
		200, 100, 50, 255,
		64, 32, 0, 128,
		0, 0, 0, 0,
	}
	img := unpremultiply(pixels, 3, 1)
	want := []byte{
		200, 100, 50, 255,
		127, 63, 0, 128,
		0, 0, 0, 0,
	}
	for i := range want {
		if img.Pix[i] != want[i] {
			t.Fatalf("Pix = %v, want %v", img.Pix, want)
		}
	}
}

func TestWritePNG(t *testing.T) {
	img := unpremultiply([]byte{1, 2, 3, 255, 4, 5, 6, 255}, 2, 1)
	path := filepath.Join(t.TempDir(), "out.png")
	if err := writePNG(path, img); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	got, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := got.Bounds(); b.Dx() != 2 || b.Dy() != 1 {
		t.Errorf("bounds = %v, want 2x1", b)
	}
}

func TestWritePNGBadDir(t *testing.T) {
	img := unpremultiply(nil, 0, 0)
	if err := writePNG(filepath.Join(t.TempDir(), "missing", "out.png"), img); err == nil {
		t.Error("expected an error for a missing directory")
	}
}

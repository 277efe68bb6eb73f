package tendon

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// ---- Debug mode tests ------------------------------------------------------

func debugArmature(t *testing.T, debug bool) (*Armature, []*Bone, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	a, bones := newChain(t, 10, 10)
	a.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	a.SetDebugMode(debug)
	return a, bones, &buf
}

func TestDebugMode_LogsSolve(t *testing.T) {
	a, bones, buf := debugArmature(t, true)
	bones[1].EnablePin().SetTargetPosition(mgl64.Vec3{5, 5, 0})
	a.SolveAll()

	out := buf.String()
	if !strings.Contains(out, "msg=solve") {
		t.Errorf("missing solve record in %q", out)
	}
	if !strings.Contains(out, "armature=chain") {
		t.Errorf("missing armature attribute in %q", out)
	}
	if !strings.Contains(out, "segmentation rebuilt") {
		t.Errorf("missing segmentation record in %q", out)
	}
}

func TestDebugMode_OffIsSilent(t *testing.T) {
	a, bones, buf := debugArmature(t, false)
	bones[1].EnablePin().SetTargetPosition(mgl64.Vec3{5, 5, 0})
	a.SolveAll()
	if buf.Len() != 0 {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestDebugMode_WarnsOnDeepTree(t *testing.T) {
	a, bones, buf := debugArmature(t, true)
	b := bones[len(bones)-1]
	for i := 0; i < debugMaxTreeDepth; i++ {
		next, err := b.NewChildAtTip("deep", mgl64.QuatIdent(), 1)
		if err != nil {
			t.Fatal(err)
		}
		b = next
	}
	if !strings.Contains(buf.String(), "bone tree is deep") {
		t.Errorf("expected depth warning, got %q", buf.String())
	}
	if got := len(a.Bones()); got != 2+debugMaxTreeDepth {
		t.Errorf("bones = %d", got)
	}
}

func TestDebugMode_NoWarningsForShallowTree(t *testing.T) {
	_, bones, buf := debugArmature(t, true)
	if _, err := bones[1].NewChildAtTip("c", mgl64.QuatIdent(), 1); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "level=WARN") {
		t.Errorf("unexpected warning %q", buf.String())
	}
}

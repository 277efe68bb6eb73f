package tendon

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// humanoid builds
//
//	root -> spine -> armL -> handL -> fingerL
//	              -> armR -> handR
//	              -> head
//
// with handL, fingerL and handR pinned.
func humanoid(t *testing.T) (*Armature, map[string]*Bone) {
	t.Helper()
	a, err := NewArmature("humanoid", DefaultSolverConfig())
	if err != nil {
		t.Fatal(err)
	}
	bones := map[string]*Bone{}
	add := func(name, parent string, rot mgl64.Quat) {
		var b *Bone
		var err error
		if parent == "" {
			b, err = a.NewRoot(name, mgl64.Vec3{}, rot, 2)
		} else {
			b, err = bones[parent].NewChildAtTip(name, rot, 2)
		}
		if err != nil {
			t.Fatal(err)
		}
		bones[name] = b
	}
	add("root", "", mgl64.QuatIdent())
	add("spine", "root", mgl64.QuatIdent())
	add("armL", "spine", mgl64.QuatRotate(1.2, AxisZ))
	add("handL", "armL", mgl64.QuatIdent())
	add("fingerL", "handL", mgl64.QuatIdent())
	add("armR", "spine", mgl64.QuatRotate(-1.2, AxisZ))
	add("handR", "armR", mgl64.QuatIdent())
	add("head", "spine", mgl64.QuatIdent())

	bones["handL"].EnablePin()
	bones["fingerL"].EnablePin()
	bones["handR"].EnablePin()
	return a, bones
}

func segmentBoneNames(s *Segment) []string {
	return boneNames(s.Bones())
}

func equalNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSegmentationShape(t *testing.T) {
	a, bones := humanoid(t)
	top := a.Segments()
	if top == nil {
		t.Fatal("no segmentation")
	}
	if top.Root() != bones["root"] || top.Parent() != nil || top.Pin() != nil {
		t.Error("unexpected top segment root")
	}
	if got, want := segmentBoneNames(top), []string{"root", "spine", "armL", "armR"}; !equalNames(got, want) {
		t.Errorf("top bones = %v, want %v", got, want)
	}
	if got := boneNames(top.Tips()); !equalNames(got, []string{"handL", "handR"}) {
		t.Errorf("top tips = %v", got)
	}

	children := top.Children()
	if len(children) != 2 {
		t.Fatalf("top has %d children, want 2", len(children))
	}
	left, right := children[0], children[1]
	if left.Root() != bones["handL"] || left.Parent() != top || left.Pin() != bones["handL"].Pin() {
		t.Error("unexpected left segment")
	}
	if got := segmentBoneNames(left); !equalNames(got, []string{"handL"}) {
		t.Errorf("left bones = %v", got)
	}
	if len(left.Children()) != 1 || left.Children()[0].Root() != bones["fingerL"] {
		t.Error("fingerL should root a grandchild segment")
	}
	if got := segmentBoneNames(right); !equalNames(got, []string{"handR"}) {
		t.Errorf("right bones = %v", got)
	}
}

func TestSegmentationCoversPathsOnce(t *testing.T) {
	a, bones := humanoid(t)
	count := map[*Bone]int{}
	pinRoots := map[*Bone]int{}
	a.Segments().Walk(func(s *Segment) {
		for _, b := range s.Bones() {
			count[b]++
		}
		if s.Pin() != nil {
			pinRoots[s.Root()]++
		}
	})

	for _, name := range []string{"root", "spine", "armL", "handL", "fingerL", "armR", "handR"} {
		if count[bones[name]] != 1 {
			t.Errorf("%s appears in %d segments, want 1", name, count[bones[name]])
		}
	}
	if count[bones["head"]] != 0 {
		t.Error("head is not on a path to a pin and should not be in any segment")
	}
	for _, p := range a.Pins() {
		if pinRoots[p.Bone()] != 1 {
			t.Errorf("pin on %s roots %d segments, want 1", p.Bone().Name, pinRoots[p.Bone()])
		}
	}
}

func TestSegmentForUnsegmentedBoneUsesAncestor(t *testing.T) {
	a, bones := humanoid(t)
	if got := a.segmentFor(bones["head"]); got != a.Segments() {
		t.Error("head should resolve to the top segment")
	}
	if got := a.segmentFor(bones["fingerL"]); got.Root() != bones["fingerL"] {
		t.Error("fingerL should resolve to its own segment")
	}
}

func TestSegmentationInvalidation(t *testing.T) {
	a, bones := humanoid(t)
	first := a.Segments()
	if a.Segments() != first {
		t.Error("segmentation rebuilt without a change")
	}

	bones["handR"].DisablePin()
	second := a.Segments()
	if second == first {
		t.Fatal("disabling a pin should rebuild the segmentation")
	}
	if len(second.Children()) != 1 {
		t.Errorf("top has %d children after disabling handR, want 1", len(second.Children()))
	}
	if got := segmentBoneNames(second); !equalNames(got, []string{"root", "spine", "armL"}) {
		t.Errorf("top bones = %v", got)
	}

	bones["armR"].Detach()
	if a.Segments() == second {
		t.Error("detaching a bone should rebuild the segmentation")
	}
}

func TestSegmentationWithoutPins(t *testing.T) {
	a, _ := newChain(t, 1, 1)
	if a.Segments() != nil {
		t.Error("an armature without pins has no segmentation")
	}
}

func TestPinnedRootSegment(t *testing.T) {
	a, bones := newChain(t, 1, 1, 1)
	bones[0].EnablePin()
	top := a.Segments()
	if top.Pin() != bones[0].Pin() {
		t.Error("pinned root should carry its pin")
	}
	if got := segmentBoneNames(top); !equalNames(got, []string{"b0"}) {
		t.Errorf("bones = %v, want [b0]", got)
	}
	if len(top.Children()) != 0 {
		t.Error("no pins below the root")
	}
}

func TestEffectorsWithDepthFalloff(t *testing.T) {
	a, bones := humanoid(t)
	armL := func() segmentBone {
		for _, sb := range a.Segments().bones {
			if sb.bone == bones["armL"] {
				return sb
			}
		}
		t.Fatal("armL not in top segment")
		return segmentBone{}
	}

	if got := armL().effectors; len(got) != 1 || got[0].pin != bones["handL"].Pin() {
		t.Errorf("falloff 0: effectors = %v", got)
	}

	bones["handL"].Pin().SetDepthFalloff(0.5)
	got := armL().effectors
	if len(got) != 2 {
		t.Fatalf("falloff 0.5: %d effectors, want 2", len(got))
	}
	if got[1].pin != bones["fingerL"].Pin() {
		t.Error("second effector should be fingerL's pin")
	}
	assertNear(t, "direct falloff", got[0].falloff, 1)
	assertNear(t, "inherited falloff", got[1].falloff, 0.5)

	// The pinned bone itself sees its own pin and the pin below it.
	left := a.Segments().Children()[0].bones[0]
	if len(left.effectors) != 2 || left.effectors[0].pin != bones["handL"].Pin() {
		t.Errorf("handL effectors = %v", left.effectors)
	}
}

package tendon

import (
	"fmt"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// setupBenchChain creates an armature with a single chain of n bones and a
// pin on the last one.
func setupBenchChain(b *testing.B, n int) (*Armature, *Pin) {
	a, bones := setupBenchChainBones(b, n)
	p := bones[n-1].EnablePin()
	p.SetTargetPosition(mgl64.Vec3{float64(n) / 2, float64(n) / 2, 0})
	return a, p
}

// setupBenchTentacles creates a root with arms tentacles of n bones each,
// every tentacle pinned at its tip.
func setupBenchTentacles(b *testing.B, arms, n int) (*Armature, []*Pin) {
	a, err := NewArmature("tentacles", DefaultSolverConfig())
	if err != nil {
		b.Fatal(err)
	}
	root, _ := a.NewRoot("root", mgl64.Vec3{}, mgl64.QuatIdent(), 1)
	var pins []*Pin
	for arm := 0; arm < arms; arm++ {
		angle := 2 * math.Pi * float64(arm) / float64(arms)
		bone, _ := root.NewChildAtTip(fmt.Sprintf("arm%d_0", arm), mgl64.QuatRotate(angle, AxisX), 1)
		for i := 1; i < n; i++ {
			bone, _ = bone.NewChildAtTip(fmt.Sprintf("arm%d_%d", arm, i), mgl64.QuatIdent(), 1)
		}
		p := bone.EnablePin()
		p.SetTargetPosition(bone.Tip().Add(mgl64.Vec3{2, 0, 0}))
		pins = append(pins, p)
	}
	return a, pins
}

// --- Solve Benchmarks ---

func BenchmarkSolve_Chain10(b *testing.B) {
	a, _ := setupBenchChain(b, 10)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.SolveAll()
	}
}

func BenchmarkSolve_Chain100(b *testing.B) {
	a, _ := setupBenchChain(b, 100)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.SolveAll()
	}
}

func BenchmarkSolve_Chain10_Stabilized(b *testing.B) {
	a, _ := setupBenchChain(b, 10)
	_ = a.SetStabilizationPasses(2)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.SolveAll()
	}
}

func BenchmarkSolve_Tentacles8x12(b *testing.B) {
	a, pins := setupBenchTentacles(b, 8, 12)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		// Move one target per frame, like an animated rig.
		p := pins[i%len(pins)]
		p.SetTargetPosition(p.Target().Translation.Add(mgl64.Vec3{0, 0.01, 0}))
		a.SolveAll()
	}
}

// --- Segmentation Benchmarks ---

func BenchmarkSegments_Rebuild(b *testing.B) {
	a, pins := setupBenchTentacles(b, 8, 12)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pins[0].SetEnabled(i%2 == 0)
		a.Segments()
	}
}

// --- Transform Benchmarks ---

func BenchmarkFrame_GlobalDirty(b *testing.B) {
	_, bones := setupBenchChainBones(b, 100)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bones[0].RotateAboutLocalZ(0.001)
		_ = bones[len(bones)-1].Tip()
	}
}

func BenchmarkFrame_GlobalClean(b *testing.B) {
	_, bones := setupBenchChainBones(b, 100)
	_ = bones[len(bones)-1].Tip()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = bones[len(bones)-1].Tip()
	}
}

func setupBenchChainBones(b *testing.B, n int) (*Armature, []*Bone) {
	lengths := make([]float64, n)
	for i := range lengths {
		lengths[i] = 1
	}
	return newChain(b, lengths...)
}

// --- Alignment Benchmarks ---

func BenchmarkAlignRotation_8Pairs(b *testing.B) {
	r := mgl64.QuatRotate(0.3, mgl64.Vec3{1, 1, 0}.Normalize())
	pairs := make([]pointPair, 8)
	for i := range pairs {
		p := mgl64.Vec3{float64(i), float64(i % 3), 1}
		pairs[i] = pointPair{p: p, q: r.Rotate(p), w: 1}
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = alignRotation(pairs)
	}
}

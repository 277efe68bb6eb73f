package tendon

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

const (
	// anchorWeight is the relative weight of the identity anchor added to
	// every alignment. It makes the rotation unique when the point pairs
	// are degenerate (a single pair leaves the twist about it free) by
	// preferring the smallest rotation.
	anchorWeight = 1e-4

	// maxStabilizeHalvings bounds how often a stabilizing pass halves a
	// step that increases a bone's error before discarding it.
	maxStabilizeHalvings = 3

	// maxDampingHalvings bounds how often a step is halved when constraint
	// projection turns the bone past the damping angle.
	maxDampingHalvings = 8
)

// pointPair is one weighted correspondence for the alignment step. Both
// points are relative to the bone's origin, so only rotation is solved.
type pointPair struct {
	p, q mgl64.Vec3
	w    float64
}

// Solve poses the armature so that pinned bones approach their targets.
// It solves the segment containing start (or its nearest ancestor's
// segment) and every segment below it; a nil start solves from the root.
//
// Each ordinary iteration sweeps up the segment tree, children first and
// bones from the tips toward each segment root, then back down, parents
// first and bones from each segment root toward the tips. Stabilization
// passes then repeat the sweep with error-checked steps. There is no
// early exit: the configured iteration budget always runs. Solving an
// armature without enabled pins does nothing.
func (a *Armature) Solve(start *Bone) {
	if start == nil {
		start = a.root
	}
	if start == nil || start.armature != a {
		return
	}
	seg := a.segmentFor(start)
	if seg == nil {
		return
	}

	var t0 time.Time
	if a.debug || a.sink != nil {
		t0 = time.Now()
	}

	order := seg.postOrder(nil)
	for i := 0; i < a.cfg.Iterations; i++ {
		a.sweep(order, false)
	}
	for i := 0; i < a.cfg.StabilizationPasses; i++ {
		a.sweep(order, true)
	}

	if a.debug || a.sink != nil {
		ev := SolveEvent{
			ArmatureID:          a.ID,
			Armature:            a.Name,
			Start:               start.Name,
			Segments:            len(order),
			Iterations:          a.cfg.Iterations,
			StabilizationPasses: a.cfg.StabilizationPasses,
			Error:               a.Error(),
			Duration:            time.Since(t0),
		}
		a.debugLogSolve(ev)
		if a.sink != nil {
			a.sink.EmitEvent(ev)
		}
	}
}

// SolveAll solves the whole armature from its root.
func (a *Armature) SolveAll() {
	a.Solve(nil)
}

// sweep runs one iteration over the segments in order (a post-order
// list): up the tree, then back down. A bone may move in both halves, but
// its net turn over the iteration stays within the damping angle.
func (a *Armature) sweep(order []*Segment, stabilizing bool) {
	for _, s := range order {
		for i := range s.bones {
			b := s.bones[i].bone
			b.sweepStart = b.frame.local.Rotation
		}
	}
	for _, s := range order {
		for i := len(s.bones) - 1; i >= 0; i-- {
			a.solveBone(&s.bones[i], stabilizing)
		}
	}
	for j := len(order) - 1; j >= 0; j-- {
		s := order[j]
		for i := range s.bones {
			a.solveBone(&s.bones[i], stabilizing)
		}
	}
}

// dampingLeft is how far b may still turn in the current iteration.
func (a *Armature) dampingLeft(b *Bone) float64 {
	return a.cfg.Damping - rotationAngle(b.sweepStart.Conjugate().Mul(b.frame.local.Rotation))
}

// solveBone rotates one bone about its origin to best align its
// effectors with their targets, limited by the damping angle.
func (a *Armature) solveBone(sb *segmentBone, stabilizing bool) {
	if len(sb.effectors) == 0 {
		return
	}
	b := sb.bone
	limit := a.dampingLeft(b)
	if limit <= epsilon {
		return
	}
	origin := b.Origin()
	a.pairs = gatherPairs(a.pairs[:0], sb.effectors, origin)
	if len(a.pairs) == 0 {
		return
	}
	step := clampRotation(alignRotation(a.pairs), limit)

	if !stabilizing {
		b.lastStep = stepVector(a.rotateDamped(b, step, limit))
		return
	}
	a.stabilizedStep(sb, step, limit)
}

// rotateDamped applies step to b. Constraint projection runs after the
// step, so the bone can turn further than the step itself; while its turn
// exceeds limit the step is halved and reapplied. It returns the step
// that was kept, or the identity if the bone was left unchanged.
func (a *Armature) rotateDamped(b *Bone, step mgl64.Quat, limit float64) mgl64.Quat {
	saved := b.frame.local.Rotation
	for i := 0; i <= maxDampingHalvings; i++ {
		b.rotateGlobal(step)
		if rotationAngle(saved.Conjugate().Mul(b.frame.local.Rotation)) <= limit+epsilon {
			return step
		}
		b.frame.SetRotation(saved)
		step = scaleRotation(step, 0.5)
	}
	return mgl64.QuatIdent()
}

// stabilizedStep applies step unless it reverses the bone's previous step
// or increases the bone's effector error. Reversing steps are halved
// first; error-increasing steps are halved up to maxStabilizeHalvings
// times and otherwise discarded.
func (a *Armature) stabilizedStep(sb *segmentBone, step mgl64.Quat, limit float64) {
	b := sb.bone
	if v := stepVector(step); v.Dot(b.lastStep) < 0 {
		step = scaleRotation(step, 0.5)
	}
	before := pairError(a.pairs)
	saved := b.frame.local.Rotation

	for i := 0; i <= maxStabilizeHalvings; i++ {
		applied := a.rotateDamped(b, step, limit)
		a.pairs = gatherPairs(a.pairs[:0], sb.effectors, b.Origin())
		if pairError(a.pairs) <= before*(1+1e-12)+1e-15 {
			b.lastStep = stepVector(applied)
			return
		}
		b.frame.SetRotation(saved)
		step = scaleRotation(step, 0.5)
	}
	b.lastStep = mgl64.Vec3{}
}

// gatherPairs appends the weighted correspondences of every effector:
// the tip position against the target position, and each prioritized
// axis against the target's axis, all relative to origin. Axis pairs are
// scaled by the tip's distance from origin so they weigh comparably with
// the position pair.
func gatherPairs(out []pointPair, effectors []effector, origin mgl64.Vec3) []pointPair {
	for _, e := range effectors {
		p := e.pin
		pb := p.bone
		if pb == nil || !p.enabled {
			continue
		}
		g := pb.GlobalTransform()
		tip := g.Point(mgl64.Vec3{0, pb.length, 0})
		t := p.Target()

		if w := p.positionWeight * e.falloff; w > 0 {
			out = append(out, pointPair{
				p: tip.Sub(origin),
				q: t.Translation.Sub(origin),
				w: w,
			})
		}
		scale := math.Max(tip.Sub(origin).Len(), 1)
		for i, ax := range [3]Axis{X, Y, Z} {
			w := p.orientationWeights[i] * e.falloff
			if w <= 0 {
				continue
			}
			out = append(out, pointPair{
				p: g.Axis(ax).Mul(scale),
				q: t.Axis(ax).Mul(scale),
				w: w,
			})
		}
	}
	return out
}

// pairError is the weighted sum of squared distances between the pairs.
func pairError(pairs []pointPair) float64 {
	var sum float64
	for _, pr := range pairs {
		sum += pr.w * pr.p.Sub(pr.q).LenSqr()
	}
	return sum
}

// alignRotation returns the rotation R minimizing Σ w|R p − q|² (the
// weighted Kabsch problem). With H = Σ w p qᵀ = U S Vᵀ the optimum is
// R = V diag(1, 1, d) Uᵀ, d correcting a reflection. A small multiple of
// the identity is added to H, which favors the smallest rotation among
// equally good ones.
func alignRotation(pairs []pointPair) mgl64.Quat {
	var h [9]float64
	var scale float64
	for _, pr := range pairs {
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				h[i*3+j] += pr.w * pr.p[i] * pr.q[j]
			}
		}
		scale += pr.w * (pr.p.LenSqr() + pr.q.LenSqr()) / 2
	}
	if scale < epsilon {
		return mgl64.QuatIdent()
	}
	anchor := anchorWeight * scale
	h[0] += anchor
	h[4] += anchor
	h[8] += anchor

	var svd mat.SVD
	if !svd.Factorize(mat.NewDense(3, 3, h[:]), mat.SVDFull) {
		return mgl64.QuatIdent()
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	var r mat.Dense
	r.Mul(&v, u.T())
	if mat.Det(&r) < 0 {
		var vd mat.Dense
		vd.Mul(&v, mat.NewDiagDense(3, []float64{1, 1, -1}))
		r.Reset()
		r.Mul(&vd, u.T())
	}

	var m mgl64.Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m.Set(i, j, r.At(i, j))
		}
	}
	return normalizeQuat(mgl64.Mat4ToQuat(m.Mat4()))
}

// stepVector encodes a rotation as axis * angle.
func stepVector(q mgl64.Quat) mgl64.Vec3 {
	axis, angle := axisAngle(q)
	return axis.Mul(angle)
}

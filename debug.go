package tendon

// debugLogSolve logs solve statistics. Only called when debug mode or an
// event sink is active.
func (a *Armature) debugLogSolve(ev SolveEvent) {
	if !a.debug {
		return
	}
	a.logger.Debug("solve",
		"armature", ev.Armature,
		"start", ev.Start,
		"segments", ev.Segments,
		"iterations", ev.Iterations,
		"stabilization", ev.StabilizationPasses,
		"error", ev.Error,
		"duration", ev.Duration,
	)
}

// debugCheckTreeDepth warns if a bone sits deeper than the threshold.
const debugMaxTreeDepth = 32

func (a *Armature) debugCheckTreeDepth(b *Bone) {
	if depth := b.Depth() + 1; depth > debugMaxTreeDepth {
		a.logger.Warn("bone tree is deep",
			"armature", a.Name, "bone", b.Name, "depth", depth, "threshold", debugMaxTreeDepth)
	}
}

// debugCheckChildCount warns if a bone has more than 1000 children.
const debugMaxChildCount = 1000

func (a *Armature) debugCheckChildCount(b *Bone) {
	if n := len(b.children); n > debugMaxChildCount {
		a.logger.Warn("bone has many children",
			"armature", a.Name, "bone", b.Name, "children", n, "threshold", debugMaxChildCount)
	}
}

package tendon

// Segment is one chain of the armature's segmentation. It is rooted at the
// armature's root or at a pinned bone and holds the bones from its root
// down to, but not including, the nearest pinned descendants, keeping only
// bones that lie on a path toward a pin. Each nearest pinned descendant
// roots a child segment, so the segments form a tree mirroring the tree of
// pins.
type Segment struct {
	root     *Bone
	parent   *Segment
	children []*Segment
	bones    []segmentBone
	tips     []*Bone
}

// segmentBone is a bone of a segment with the pins that pull on it.
type segmentBone struct {
	bone      *Bone
	effectors []effector
}

// effector is a pin seen from a bone, weighted by the depth falloff of the
// pinned bones between them.
type effector struct {
	pin     *Pin
	falloff float64
}

// Root returns the segment's root bone.
func (s *Segment) Root() *Bone {
	return s.root
}

// Parent returns the enclosing segment, or nil for the top segment.
func (s *Segment) Parent() *Segment {
	return s.parent
}

// Children returns the child segments in pin discovery order. The
// returned slice MUST NOT be mutated.
func (s *Segment) Children() []*Segment {
	return s.children
}

// Bones returns the segment's bones root first, in pre-order.
func (s *Segment) Bones() []*Bone {
	out := make([]*Bone, len(s.bones))
	for i, sb := range s.bones {
		out[i] = sb.bone
	}
	return out
}

// Tips returns the pinned bones that terminate this segment.
func (s *Segment) Tips() []*Bone {
	return s.tips
}

// Pin returns the root bone's pin when the root is pinned, or nil.
func (s *Segment) Pin() *Pin {
	if s.root.IsPinned() {
		return s.root.pin
	}
	return nil
}

// Walk visits s and its descendants in pre-order.
func (s *Segment) Walk(fn func(*Segment)) {
	fn(s)
	for _, c := range s.children {
		c.Walk(fn)
	}
}

// postOrder appends the segment tree below s, children before parents.
func (s *Segment) postOrder(out []*Segment) []*Segment {
	for _, c := range s.children {
		out = c.postOrder(out)
	}
	return append(out, s)
}

// Segments returns the top segment of the armature's segmentation,
// rebuilding it if the tree or its pins changed. It returns nil when no
// bone is pinned.
func (a *Armature) Segments() *Segment {
	if a.segmentsDirty {
		a.rebuildSegments()
	}
	return a.segments
}

// segmentFor returns the segment containing b, or the segment of its
// nearest ancestor that belongs to one.
func (a *Armature) segmentFor(b *Bone) *Segment {
	if a.Segments() == nil {
		return nil
	}
	for p := b; p != nil; p = p.parent {
		if s, ok := a.segmentOf[p]; ok {
			return s
		}
	}
	return nil
}

func (a *Armature) rebuildSegments() {
	a.segments = nil
	a.segmentOf = make(map[*Bone]*Segment)
	a.segmentsDirty = false
	if a.root == nil {
		return
	}
	if !a.root.IsPinned() && len(a.root.MostImmediatelyPinnedDescendants()) == 0 {
		return
	}
	a.segments = a.buildSegment(a.root, nil)
	if a.debug {
		count := 0
		a.segments.Walk(func(*Segment) { count++ })
		a.logger.Debug("segmentation rebuilt", "armature", a.Name, "segments", count)
	}
}

func (a *Armature) buildSegment(root *Bone, parent *Segment) *Segment {
	s := &Segment{root: root, parent: parent}
	s.tips = root.MostImmediatelyPinnedDescendants()

	onPath := make(map[*Bone]bool)
	for _, tip := range s.tips {
		for b := tip.parent; b != nil && b != root; b = b.parent {
			onPath[b] = true
		}
	}

	var collect func(b *Bone)
	collect = func(b *Bone) {
		s.bones = append(s.bones, segmentBone{bone: b, effectors: effectorsOf(b)})
		a.segmentOf[b] = s
		for _, c := range b.children {
			if onPath[c] {
				collect(c)
			}
		}
	}
	collect(root)

	for _, tip := range s.tips {
		s.children = append(s.children, a.buildSegment(tip, s))
	}
	return s
}

// effectorsOf lists the pins that pull on b: its own enabled pin, the pins
// of its most immediately pinned descendants, and pins further down
// weighted by the product of the depth falloffs of the pins in between.
func effectorsOf(b *Bone) []effector {
	var out []effector
	if b.IsPinned() {
		out = append(out, effector{pin: b.pin, falloff: 1})
	}
	var descend func(from *Bone, falloff float64)
	descend = func(from *Bone, falloff float64) {
		for _, d := range from.MostImmediatelyPinnedDescendants() {
			out = append(out, effector{pin: d.pin, falloff: falloff})
			if next := falloff * d.pin.depthFalloff; next > 0 {
				descend(d, next)
			}
		}
	}
	descend(b, 1)
	return out
}

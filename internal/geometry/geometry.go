// Package geometry derives spatial relationships between sibling layers.
//
// Analyze repairs malformed boxes, resolves stacked duplicates, checks the
// group-bounds post-condition and tags every visible group with the
// arrangement of its children. It never touches its input: the result is an
// annotated copy.
package geometry

import (
	"sort"

	"github.com/dgallion1/designmark/internal/doctree"
	"github.com/dgallion1/designmark/internal/errs"
)

// Options tunes the analyzer.
type Options struct {
	// Epsilon absorbs sub-pixel misalignment when comparing edges.
	Epsilon float64 `toml:"epsilon"`
	// OverlapThreshold is the intersection/smaller-area ratio above which two
	// siblings of comparable size are treated as stacked variants.
	OverlapThreshold float64 `toml:"overlap_threshold"`
	// MinSizeRatio is the smaller/larger area ratio two partly overlapping
	// siblings need to count as variants. A small layer over a large one is
	// decoration, not a variant.
	MinSizeRatio float64 `toml:"min_size_ratio"`
	// DuplicateRatio is the size ratio a sibling lying inside another needs
	// to count as a duplicate of it. Below it the pair is containment.
	DuplicateRatio float64 `toml:"duplicate_ratio"`
}

// DefaultOptions returns the standard tolerances.
func DefaultOptions() Options {
	return Options{
		Epsilon:          2,
		OverlapThreshold: 0.5,
		MinSizeRatio:     0.5,
		DuplicateRatio:   0.9,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Epsilon <= 0 {
		o.Epsilon = d.Epsilon
	}
	if o.OverlapThreshold <= 0 || o.OverlapThreshold > 1 {
		o.OverlapThreshold = d.OverlapThreshold
	}
	if o.MinSizeRatio <= 0 || o.MinSizeRatio > 1 {
		o.MinSizeRatio = d.MinSizeRatio
	}
	if o.DuplicateRatio <= 0 || o.DuplicateRatio > 1 {
		o.DuplicateRatio = d.DuplicateRatio
	}
	return o
}

// Analyze validates doc and returns an annotated copy.
func Analyze(doc *doctree.Document, opts Options, lim doctree.Limits) (*doctree.Document, error) {
	if err := doctree.Validate(doc, lim); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	out := doc.Clone()

	if out.Root.BBox.Empty() {
		out.Root.BBox = out.Canvas()
	}

	// Pre-order over the visible part of the tree: repair boxes and remember
	// the order so the second pass can run children before parents.
	var active []*doctree.Node
	err := doctree.Walk(out.Root, lim, func(v doctree.Visit) error {
		n := v.Node
		if !n.Visible {
			return doctree.SkipChildren
		}
		if n.BBox.Malformed() {
			raw := n.BBox
			n.BBox = raw.Clamped()
			if v.Parent != nil {
				n.Degenerate = true
			}
			out.Warn(n.ID, errs.CodeMalformedGeometry,
				"bbox (%g,%g,%g,%g) clamped to (%g,%g,%g,%g)",
				raw.X, raw.Y, raw.Width, raw.Height,
				n.BBox.X, n.BBox.Y, n.BBox.Width, n.BBox.Height)
		}
		active = append(active, n)
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := len(active) - 1; i >= 0; i-- {
		n := active[i]
		if !n.IsGroup() {
			continue
		}
		resolveStacking(out, n, opts)
		kids := n.Participants()
		n.Relations = relations(kids, opts.Epsilon)
		if !n.Degenerate {
			coverChildren(out, n, kids, opts.Epsilon)
		}
		n.Arrangement = Arrange(kids, opts.Epsilon)
	}
	return out, nil
}

// resolveStacking excludes the earlier of any two siblings that are stacked
// variants of each other. Later children sit higher in z-order and win.
func resolveStacking(doc *doctree.Document, n *doctree.Node, opts Options) {
	kids := n.Children
	for i, a := range kids {
		if !a.Participates() {
			continue
		}
		for _, b := range kids[i+1:] {
			if !b.Participates() {
				continue
			}
			if r, ok := stacked(a.BBox, b.BBox, opts); ok {
				a.Excluded = true
				doc.Warn(a.ID, errs.CodeStackedVariant,
					"overlaps %q by %.0f%%; %q kept", b.ID, r*100, b.ID)
				break
			}
		}
	}
}

// stacked reports whether a and b are variants of one layer, with their
// overlap ratio. Boxes must overlap past the threshold and be of comparable
// size; when one lies inside the other they must be near duplicates.
func stacked(a, b doctree.Rect, opts Options) (float64, bool) {
	r := a.OverlapRatio(b)
	if r <= opts.OverlapThreshold {
		return r, false
	}
	size := a.SizeRatio(b)
	if a.Contains(b, opts.Epsilon) || b.Contains(a, opts.Epsilon) {
		return r, size >= opts.DuplicateRatio
	}
	return r, size >= opts.MinSizeRatio
}

// coverChildren enforces that a group's box covers its participating
// children. An absent box is computed; a box too small is widened.
func coverChildren(doc *doctree.Document, n *doctree.Node, kids []*doctree.Node, eps float64) {
	if len(kids) == 0 {
		return
	}
	var union doctree.Rect
	for _, c := range kids {
		union = union.Union(c.BBox)
	}
	switch {
	case n.BBox.Width == 0 && n.BBox.Height == 0:
		n.BBox = union
	case !n.BBox.Contains(union, eps):
		doc.Warn(n.ID, errs.CodeBBoxMismatch,
			"declared bbox (%g,%g,%g,%g) does not cover children (%g,%g,%g,%g)",
			n.BBox.X, n.BBox.Y, n.BBox.Width, n.BBox.Height,
			union.X, union.Y, union.Width, union.Height)
		n.BBox = n.BBox.Union(union)
	}
}

// Arrange classifies the reading direction of nodes. Fewer than two nodes
// read as a vertical stack. Horizontal is tested first, so a diagonal
// staircase reads as a row.
func Arrange(nodes []*doctree.Node, eps float64) doctree.Arrangement {
	if len(nodes) < 2 {
		return doctree.ArrangeVertical
	}
	if sequential(nodes, eps, horizontal) {
		return doctree.ArrangeHorizontal
	}
	if sequential(nodes, eps, vertical) {
		return doctree.ArrangeVertical
	}
	return doctree.ArrangeIrregular
}

type axis int

const (
	horizontal axis = iota
	vertical
)

// span returns the start and end of r along a, plus its start on the cross axis.
func span(r doctree.Rect, a axis) (start, end, cross float64) {
	if a == horizontal {
		return r.X, r.Right(), r.Y
	}
	return r.Y, r.Bottom(), r.X
}

// sequential reports whether the ranges of nodes along a are increasing
// and pairwise disjoint, up to eps.
func sequential(nodes []*doctree.Node, eps float64, a axis) bool {
	sorted := append([]*doctree.Node(nil), nodes...)
	sort.SliceStable(sorted, func(i, j int) bool {
		si, _, ci := span(sorted[i].BBox, a)
		sj, _, cj := span(sorted[j].BBox, a)
		if si != sj {
			return si < sj
		}
		return ci < cj
	})
	for i := 1; i < len(sorted); i++ {
		_, prevEnd, _ := span(sorted[i-1].BBox, a)
		start, _, _ := span(sorted[i].BBox, a)
		if start < prevEnd-eps {
			return false
		}
	}
	return true
}

// FlowOrder returns nodes sorted for their parent's arrangement:
// left-to-right for rows, top-to-bottom for columns, and rows-then-columns
// (with eps tolerance on row membership) for irregular groups. Ties keep
// child order.
func FlowOrder(nodes []*doctree.Node, arr doctree.Arrangement, eps float64) []*doctree.Node {
	out := append([]*doctree.Node(nil), nodes...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].BBox, out[j].BBox
		switch arr {
		case doctree.ArrangeHorizontal:
			return a.X < b.X-eps
		case doctree.ArrangeVertical:
			return a.Y < b.Y-eps
		default:
			if a.Y < b.Y-eps || a.Y > b.Y+eps {
				return a.Y < b.Y
			}
			return a.X < b.X-eps
		}
	})
	return out
}

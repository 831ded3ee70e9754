package geometry

import (
	"math"

	"github.com/dgallion1/designmark/internal/doctree"
)

// relations lists containment, adjacency and overlap facts for every pair of
// nodes, in child order.
func relations(nodes []*doctree.Node, eps float64) []doctree.Relation {
	var out []doctree.Relation
	for i, a := range nodes {
		for _, b := range nodes[i+1:] {
			if rel, ok := relate(a, b, eps); ok {
				out = append(out, rel)
			}
		}
	}
	return out
}

func relate(a, b *doctree.Node, eps float64) (doctree.Relation, bool) {
	rel := doctree.Relation{A: a.ID, B: b.ID}
	ra, rb := a.BBox, b.BBox
	switch {
	case ra.Contains(rb, eps) && !rb.Empty():
		rel.Kind = doctree.RelContains
	case rb.Contains(ra, eps) && !ra.Empty():
		rel.Kind = doctree.RelInside
	case Adjacent(ra, rb, eps):
		rel.Kind = doctree.RelAdjacent
	default:
		r := ra.OverlapRatio(rb)
		if r == 0 {
			return rel, false
		}
		rel.Kind = doctree.RelOverlaps
		rel.Overlap = r
	}
	return rel, true
}

// Adjacent reports whether a and b share an edge within eps: one box ends
// where the other begins on one axis while their ranges meet on the other.
func Adjacent(a, b doctree.Rect, eps float64) bool {
	overlapsY := a.Y < b.Bottom() && b.Y < a.Bottom()
	overlapsX := a.X < b.Right() && b.X < a.Right()
	if overlapsY && (near(a.Right(), b.X, eps) || near(b.Right(), a.X, eps)) {
		return true
	}
	if overlapsX && (near(a.Bottom(), b.Y, eps) || near(b.Bottom(), a.Y, eps)) {
		return true
	}
	return false
}

func near(p, q, eps float64) bool {
	return math.Abs(p-q) <= eps
}

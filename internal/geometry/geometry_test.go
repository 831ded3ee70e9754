package geometry

import (
	"testing"

	"github.com/dgallion1/designmark/internal/doctree"
	"github.com/dgallion1/designmark/internal/errs"
)

func analyze(t *testing.T, doc *doctree.Document) *doctree.Document {
	t.Helper()
	out, err := Analyze(doc, DefaultOptions(), doctree.DefaultLimits())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	return out
}

func hasWarning(doc *doctree.Document, id string, code errs.Code) bool {
	for _, w := range doc.Warnings {
		if w.NodeID == id && w.Code == code {
			return true
		}
	}
	return false
}

func TestArrangement(t *testing.T) {
	tests := []struct {
		name string
		kids []*doctree.Node
		want doctree.Arrangement
	}{
		{
			name: "row",
			kids: []*doctree.Node{
				doctree.Leaf("a", "a", doctree.R(0, 0, 100, 40)),
				doctree.Leaf("b", "b", doctree.R(100, 0, 100, 40)),
				doctree.Leaf("c", "c", doctree.R(210, 0, 100, 40)),
			},
			want: doctree.ArrangeHorizontal,
		},
		{
			name: "row out of child order with jitter",
			kids: []*doctree.Node{
				doctree.Leaf("c", "c", doctree.R(400, 1, 100, 40)),
				doctree.Leaf("a", "a", doctree.R(0, 0, 100, 40)),
				doctree.Leaf("b", "b", doctree.R(201, 0, 100, 40)),
			},
			want: doctree.ArrangeHorizontal,
		},
		{
			name: "column",
			kids: []*doctree.Node{
				doctree.Leaf("a", "a", doctree.R(0, 0, 300, 50)),
				doctree.Leaf("b", "b", doctree.R(0, 51, 300, 50)),
			},
			want: doctree.ArrangeVertical,
		},
		{
			name: "edges touch within epsilon",
			kids: []*doctree.Node{
				doctree.Leaf("a", "a", doctree.R(0, 0, 100, 40)),
				doctree.Leaf("b", "b", doctree.R(99, 0, 100, 40)),
			},
			want: doctree.ArrangeHorizontal,
		},
		{
			name: "grid of four",
			kids: []*doctree.Node{
				doctree.Leaf("a", "a", doctree.R(0, 0, 100, 100)),
				doctree.Leaf("b", "b", doctree.R(110, 0, 100, 100)),
				doctree.Leaf("c", "c", doctree.R(0, 110, 100, 100)),
				doctree.Leaf("d", "d", doctree.R(110, 110, 100, 100)),
			},
			want: doctree.ArrangeIrregular,
		},
		{
			name: "diagonal staircase reads as a row",
			kids: []*doctree.Node{
				doctree.Leaf("a", "a", doctree.R(0, 0, 100, 100)),
				doctree.Leaf("b", "b", doctree.R(100, 100, 100, 100)),
				doctree.Leaf("c", "c", doctree.R(200, 200, 100, 100)),
			},
			want: doctree.ArrangeHorizontal,
		},
		{
			name: "single child",
			kids: []*doctree.Node{doctree.Leaf("a", "a", doctree.R(0, 0, 10, 10))},
			want: doctree.ArrangeVertical,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Arrange(tc.kids, 2); got != tc.want {
				t.Errorf("Arrange = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestAnalyzeTagsGroups(t *testing.T) {
	doc := doctree.New("page", 1200, 800,
		doctree.Group("top", "Top Bar", doctree.R(0, 0, 1200, 80),
			doctree.Leaf("l1", "Home", doctree.R(0, 0, 100, 80)),
			doctree.Leaf("l2", "About", doctree.R(100, 0, 100, 80)),
			doctree.Leaf("l3", "Contact", doctree.R(200, 0, 100, 80)),
		),
		doctree.Group("body", "Content", doctree.R(0, 80, 1200, 720)),
	)
	out := analyze(t, doc)

	if got := out.Root.Arrangement; got != doctree.ArrangeVertical {
		t.Errorf("root arrangement = %q", got)
	}
	if got := out.Root.Children[0].Arrangement; got != doctree.ArrangeHorizontal {
		t.Errorf("top bar arrangement = %q", got)
	}
	if len(out.Warnings) != 0 {
		t.Errorf("unexpected warnings: %+v", out.Warnings)
	}
	// The input stays untouched.
	if doc.Root.Children[0].Arrangement != doctree.ArrangeUnset {
		t.Error("Analyze mutated its input")
	}
}

func TestAnalyzeClampsDegenerateBBox(t *testing.T) {
	doc := doctree.New("page", 100, 100,
		doctree.Leaf("bad", "Broken", doctree.R(10, 20, -5, 10)),
		doctree.Leaf("ok", "Fine", doctree.R(0, 50, 100, 50)),
	)
	out := analyze(t, doc)

	bad := out.Root.Children[0]
	if bad.BBox.Width != 0 || bad.BBox.Height != 10 {
		t.Errorf("clamped bbox = %+v", bad.BBox)
	}
	if !bad.Degenerate {
		t.Error("expected node marked degenerate")
	}
	if !hasWarning(out, "bad", errs.CodeMalformedGeometry) {
		t.Errorf("expected MALFORMED_GEOMETRY warning, got %+v", out.Warnings)
	}
	if doc.Root.Children[0].BBox.Width != -5 {
		t.Error("raw document must keep the malformed box")
	}
}

func TestAnalyzeResolvesStackedVariants(t *testing.T) {
	doc := doctree.New("page", 400, 400,
		doctree.Leaf("under", "Button", doctree.R(0, 0, 100, 40)),
		doctree.Leaf("over", "Button hover", doctree.R(10, 0, 100, 40)),
		doctree.Leaf("apart", "Other", doctree.R(0, 200, 100, 40)),
	)
	out := analyze(t, doc)

	under, over := out.Root.Children[0], out.Root.Children[1]
	if !under.Excluded {
		t.Error("earlier sibling should be excluded")
	}
	if over.Excluded {
		t.Error("later sibling should stay primary")
	}
	if !hasWarning(out, "under", errs.CodeStackedVariant) {
		t.Error("expected STACKED_VARIANT warning")
	}
	if len(out.Root.Children) != 3 {
		t.Error("excluded node must be retained")
	}
}

func TestAnalyzeLightOverlapKeepsBoth(t *testing.T) {
	doc := doctree.New("page", 400, 400,
		doctree.Leaf("a", "a", doctree.R(0, 0, 100, 100)),
		doctree.Leaf("b", "b", doctree.R(60, 0, 100, 100)),
	)
	out := analyze(t, doc)
	for _, c := range out.Root.Children {
		if c.Excluded {
			t.Errorf("%s excluded at 40%% overlap", c.ID)
		}
	}
	rels := out.Root.Relations
	if len(rels) != 1 || rels[0].Kind != doctree.RelOverlaps {
		t.Fatalf("relations = %+v", rels)
	}
	if rels[0].Overlap != 0.4 {
		t.Errorf("overlap = %v, want 0.4", rels[0].Overlap)
	}
}

func TestAnalyzeRelations(t *testing.T) {
	doc := doctree.New("page", 400, 400,
		doctree.Leaf("frame", "Frame", doctree.R(0, 0, 400, 200)),
		doctree.Leaf("side", "Side", doctree.R(0, 200, 100, 100)),
		doctree.Leaf("next", "Next", doctree.R(100, 200, 100, 100)),
	)
	out := analyze(t, doc)

	want := map[[2]string]doctree.RelationKind{
		{"frame", "side"}: doctree.RelAdjacent,
		{"frame", "next"}: doctree.RelAdjacent,
		{"side", "next"}:  doctree.RelAdjacent,
	}
	got := make(map[[2]string]doctree.RelationKind)
	for _, r := range out.Root.Relations {
		got[[2]string{r.A, r.B}] = r.Kind
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("relation %v = %q, want %q", k, got[k], v)
		}
	}
}

func TestAnalyzeKeepsLayersOverBackground(t *testing.T) {
	card := doctree.Group("card", "Card", doctree.R(0, 0, 400, 300),
		doctree.Leaf("bg", "Background", doctree.R(0, 0, 400, 300)),
		doctree.Leaf("title", "Title", doctree.R(20, 20, 360, 40)),
		doctree.Leaf("body", "Body", doctree.R(20, 80, 360, 180)),
		doctree.Leaf("badge", "Badge", doctree.R(350, 10, 40, 40)),
	)
	out := analyze(t, doctree.New("page", 800, 600, card))

	got := out.Root.Children[0]
	for _, c := range got.Children {
		if c.Excluded {
			t.Errorf("%s excluded", c.ID)
		}
	}
	if hasWarning(out, "bg", errs.CodeStackedVariant) {
		t.Error("a background is not a stacked variant of what it frames")
	}

	kinds := make(map[[2]string]doctree.RelationKind)
	for _, r := range got.Relations {
		kinds[[2]string{r.A, r.B}] = r.Kind
	}
	for _, id := range []string{"title", "body", "badge"} {
		if kinds[[2]string{"bg", id}] != doctree.RelContains {
			t.Errorf("relation bg/%s = %q, want contains", id, kinds[[2]string{"bg", id}])
		}
	}
}

func TestAnalyzeBadgeOverRegionKeepsRegion(t *testing.T) {
	doc := doctree.New("page", 1200, 800,
		doctree.Group("top", "Top Bar", doctree.R(0, 0, 1200, 80)),
		doctree.Group("content", "Content", doctree.R(0, 80, 1200, 640)),
		doctree.Group("bottom", "Bottom", doctree.R(0, 720, 1200, 80)),
		doctree.Leaf("badge", "Badge", doctree.R(1100, 100, 50, 50)),
	)
	out := analyze(t, doc)

	content := out.Root.Children[1]
	if content.Excluded {
		t.Fatal("content region excluded by a badge drawn over it")
	}
	found := false
	for _, r := range out.Root.Relations {
		if r.A == "content" && r.B == "badge" && r.Kind == doctree.RelContains {
			found = true
		}
	}
	if !found {
		t.Errorf("missing content/badge containment: %+v", out.Root.Relations)
	}
}

func TestAnalyzeExcludesNearDuplicate(t *testing.T) {
	doc := doctree.New("page", 400, 400,
		doctree.Leaf("old", "Hero", doctree.R(0, 0, 200, 100)),
		doctree.Leaf("new", "Hero copy", doctree.R(2, 2, 196, 96)),
	)
	out := analyze(t, doc)
	if !out.Root.Children[0].Excluded || out.Root.Children[1].Excluded {
		t.Error("the earlier of two near-identical layers should be excluded")
	}
}

func TestStacked(t *testing.T) {
	opts := DefaultOptions()
	tests := []struct {
		name string
		a, b doctree.Rect
		want bool
	}{
		{"shifted same size", doctree.R(0, 0, 100, 40), doctree.R(10, 0, 100, 40), true},
		{"identical", doctree.R(0, 0, 100, 40), doctree.R(0, 0, 100, 40), true},
		{"small inside large", doctree.R(0, 0, 400, 300), doctree.R(20, 20, 50, 50), false},
		{"large over small", doctree.R(20, 20, 50, 50), doctree.R(0, 0, 400, 300), false},
		{"partial overlap, very different sizes", doctree.R(0, 0, 400, 300), doctree.R(320, 220, 100, 100), false},
		{"light overlap", doctree.R(0, 0, 100, 100), doctree.R(60, 0, 100, 100), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, got := stacked(tc.a, tc.b, opts); got != tc.want {
				t.Errorf("stacked = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRelateContainment(t *testing.T) {
	outer := doctree.Leaf("o", "o", doctree.R(0, 0, 100, 100))
	inner := doctree.Leaf("i", "i", doctree.R(10, 10, 20, 20))

	rel, ok := relate(outer, inner, 2)
	if !ok || rel.Kind != doctree.RelContains {
		t.Errorf("relate(outer, inner) = %+v, %v", rel, ok)
	}
	rel, ok = relate(inner, outer, 2)
	if !ok || rel.Kind != doctree.RelInside {
		t.Errorf("relate(inner, outer) = %+v, %v", rel, ok)
	}
}

func TestAnalyzeGroupBBoxPostCondition(t *testing.T) {
	empty := doctree.Group("auto", "Auto", doctree.Rect{},
		doctree.Leaf("a", "a", doctree.R(10, 10, 50, 50)),
		doctree.Leaf("b", "b", doctree.R(70, 10, 50, 50)),
	)
	small := doctree.Group("small", "Small", doctree.R(0, 100, 20, 20),
		doctree.Leaf("c", "c", doctree.R(0, 100, 80, 30)),
	)
	out := analyze(t, doctree.New("page", 200, 200, empty, small))

	if got := out.Root.Children[0].BBox; got != doctree.R(10, 10, 110, 50) {
		t.Errorf("computed bbox = %+v", got)
	}
	if got := out.Root.Children[1].BBox; got != doctree.R(0, 100, 80, 30) {
		t.Errorf("expanded bbox = %+v", got)
	}
	if !hasWarning(out, "small", errs.CodeBBoxMismatch) {
		t.Error("expected BBOX_MISMATCH warning")
	}
	if hasWarning(out, "auto", errs.CodeBBoxMismatch) {
		t.Error("computed bbox must not warn")
	}
}

func TestAnalyzeSkipsInvisibleSubtrees(t *testing.T) {
	hidden := doctree.Group("h", "Hidden", doctree.R(0, 0, 10, 10),
		doctree.Leaf("hx", "x", doctree.R(0, 0, -1, 5)),
	)
	hidden.Visible = false
	out := analyze(t, doctree.New("page", 100, 100, hidden))

	if len(out.Warnings) != 0 {
		t.Errorf("invisible subtree produced warnings: %+v", out.Warnings)
	}
	if out.Root.Children[0].Children[0].Degenerate {
		t.Error("invisible nodes are not annotated")
	}
}

func TestAnalyzeRejectsCycles(t *testing.T) {
	doc := doctree.New("page", 100, 100)
	g := doctree.Group("g", "g", doctree.R(0, 0, 10, 10))
	g.Children = []*doctree.Node{g}
	doc.Root.Children = []*doctree.Node{g}

	_, err := Analyze(doc, DefaultOptions(), doctree.DefaultLimits())
	if !errs.Is(err, errs.CodeCyclicStructure) {
		t.Fatalf("expected CYCLIC_STRUCTURE, got %v", err)
	}
}

func TestFlowOrderIrregular(t *testing.T) {
	nodes := []*doctree.Node{
		doctree.Leaf("d", "d", doctree.R(110, 111, 100, 100)),
		doctree.Leaf("b", "b", doctree.R(110, 0, 100, 100)),
		doctree.Leaf("c", "c", doctree.R(0, 110, 100, 100)),
		doctree.Leaf("a", "a", doctree.R(0, 1, 100, 100)),
	}
	got := FlowOrder(nodes, doctree.ArrangeIrregular, 2)
	want := []string{"a", "b", "c", "d"}
	for i, n := range got {
		if n.ID != want[i] {
			t.Fatalf("order[%d] = %s, want %s", i, n.ID, want[i])
		}
	}
}

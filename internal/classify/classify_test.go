package classify

import (
	"testing"

	"github.com/dgallion1/designmark/internal/doctree"
	"github.com/dgallion1/designmark/internal/errs"
	"github.com/dgallion1/designmark/internal/geometry"
)

func run(t *testing.T, doc *doctree.Document) *doctree.Document {
	t.Helper()
	lim := doctree.DefaultLimits()
	analyzed, err := geometry.Analyze(doc, geometry.DefaultOptions(), lim)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	out, err := Classify(analyzed, DefaultOptions(), lim)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	return out
}

func roles(doc *doctree.Document) map[string]doctree.Role {
	idx := doctree.Index(doc)
	out := make(map[string]doctree.Role, len(idx))
	for id, n := range idx {
		out[id] = n.Role
	}
	return out
}

func landingPage() *doctree.Document {
	return doctree.New("landing", 1200, 800,
		doctree.Group("top", "Top Bar", doctree.R(0, 0, 1200, 80),
			doctree.Leaf("home", "Home", doctree.R(0, 0, 100, 80)),
			doctree.Leaf("about", "About", doctree.R(120, 0, 100, 80)),
			doctree.Leaf("contact", "Contact", doctree.R(240, 0, 100, 80)),
		),
		doctree.Group("content", "Content", doctree.R(0, 80, 1200, 640),
			doctree.Group("features", "Features", doctree.R(0, 80, 1200, 320),
				doctree.Group("f1", "Feature 1", doctree.R(0, 80, 600, 320),
					doctree.Leaf("f1t", "Fast", doctree.R(0, 80, 600, 100)),
				),
				doctree.Group("f2", "Feature 2", doctree.R(600, 80, 600, 320),
					doctree.Leaf("f2t", "Simple", doctree.R(600, 80, 600, 100)),
				),
			),
			doctree.Group("story", "Story", doctree.R(0, 400, 1200, 320),
				doctree.Leaf("s1", "Title", doctree.R(0, 400, 1200, 60)),
				doctree.Leaf("s2", "Body", doctree.R(0, 460, 1200, 200)),
				doctree.Leaf("s3", "Photo", doctree.R(0, 660, 1200, 60)),
			),
		),
		doctree.Group("bottom", "Bottom", doctree.R(0, 720, 1200, 80),
			doctree.Leaf("copy", "Copyright", doctree.R(0, 720, 600, 80)),
			doctree.Leaf("links", "Links", doctree.R(600, 720, 600, 80)),
		),
	)
}

func TestClassifyLandingPage(t *testing.T) {
	got := roles(run(t, landingPage()))
	want := map[string]doctree.Role{
		doctree.RootID: doctree.RoleGeneric,
		"top":          doctree.RoleHeader,
		"content":      doctree.RoleMain,
		"features":     doctree.RoleSection,
		"story":        doctree.RoleArticle,
		"bottom":       doctree.RoleFooter,
		"f1":           doctree.RoleGeneric,
		"home":         doctree.RoleGeneric,
	}
	for id, r := range want {
		if got[id] != r {
			t.Errorf("role[%s] = %q, want %q", id, got[id], r)
		}
	}
}

func TestClassifyBadgeOverContent(t *testing.T) {
	doc := landingPage()
	doc.Root.Children = append(doc.Root.Children, doctree.Leaf("badge", "Badge", doctree.R(1100, 100, 50, 50)))
	out := run(t, doc)

	got := roles(out)
	if got["content"] != doctree.RoleMain {
		t.Errorf("content = %q, want main", got["content"])
	}
	if got["bottom"] != doctree.RoleFooter {
		t.Errorf("bottom = %q, want footer", got["bottom"])
	}
	if idx := doctree.Index(out); idx["content"].Excluded {
		t.Error("content excluded")
	}
	for _, w := range out.Warnings {
		if w.Code == errs.CodeStackedVariant {
			t.Errorf("unexpected warning: %s", w.Message)
		}
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	a := roles(run(t, landingPage()))
	for i := 0; i < 5; i++ {
		b := roles(run(t, landingPage()))
		for id, r := range a {
			if b[id] != r {
				t.Fatalf("run %d: role[%s] = %q, want %q", i, id, b[id], r)
			}
		}
	}
}

func TestClassifyNavUnderHeader(t *testing.T) {
	doc := doctree.New("page", 1000, 1000,
		doctree.Group("brand", "Brand", doctree.R(0, 0, 1000, 60),
			doctree.Leaf("logo", "Logo", doctree.R(0, 0, 200, 60)),
		),
		doctree.Group("links", "Links", doctree.R(0, 70, 1000, 40),
			doctree.Leaf("a", "A", doctree.R(0, 70, 100, 40)),
			doctree.Leaf("b", "B", doctree.R(120, 70, 100, 40)),
			doctree.Leaf("c", "C", doctree.R(240, 70, 100, 40)),
		),
		doctree.Group("body", "Body", doctree.R(0, 120, 1000, 700)),
	)
	got := roles(run(t, doc))
	if got["brand"] != doctree.RoleHeader {
		t.Errorf("brand = %q, want header", got["brand"])
	}
	if got["links"] != doctree.RoleNav {
		t.Errorf("links = %q, want nav", got["links"])
	}
	if got["body"] != doctree.RoleMain {
		t.Errorf("body = %q, want main", got["body"])
	}
}

func TestClassifyHorizontalChildOfHeaderIsNav(t *testing.T) {
	doc := doctree.New("page", 1000, 800,
		doctree.Group("head", "Top", doctree.R(0, 0, 1000, 80),
			doctree.Leaf("logo", "Logo", doctree.R(0, 0, 200, 80)),
			doctree.Group("menu", "Menu", doctree.R(400, 0, 600, 80),
				doctree.Leaf("m1", "One", doctree.R(400, 0, 200, 80)),
				doctree.Leaf("m2", "Two", doctree.R(600, 0, 200, 80)),
			),
		),
	)
	got := roles(run(t, doc))
	if got["menu"] != doctree.RoleNav {
		t.Errorf("menu = %q, want nav", got["menu"])
	}
}

func TestClassifyNameOverride(t *testing.T) {
	doc := doctree.New("page", 1000, 800,
		// Positionally a header, but named as a footer.
		doctree.Group("a", "Site FOOTER", doctree.R(0, 0, 1000, 60)),
		doctree.Group("b", "Hero", doctree.R(0, 60, 1000, 600)),
		doctree.Group("c", "Legal", doctree.R(0, 740, 1000, 60)),
		doctree.Leaf("d", "Main image", doctree.R(0, 660, 100, 80)),
	)
	got := roles(run(t, doc))
	if got["a"] != doctree.RoleFooter {
		t.Errorf("a = %q, want footer", got["a"])
	}
	if got["c"] == doctree.RoleFooter {
		t.Error("positional footer must yield to the named one")
	}
	if got["d"] != doctree.RoleMain {
		t.Errorf("named leaf d = %q, want main", got["d"])
	}
	if got["b"] == doctree.RoleMain {
		t.Error("positional main must yield to the named one")
	}
}

func TestRoleFromNamePrecedence(t *testing.T) {
	tests := []struct {
		name string
		want doctree.Role
		ok   bool
	}{
		{"Header Nav", doctree.RoleHeader, true},
		{"navbar", doctree.RoleNav, true},
		{"Article Section", doctree.RoleSection, true},
		{"Layer 3", doctree.RoleUnset, false},
	}
	for _, tc := range tests {
		got, ok := RoleFromName(tc.name)
		if got != tc.want || ok != tc.ok {
			t.Errorf("RoleFromName(%q) = %q, %v", tc.name, got, ok)
		}
	}
}

func TestClassifyFallsBackToGeneric(t *testing.T) {
	doc := doctree.New("page", 1000, 1000,
		doctree.Group("big", "Big", doctree.R(0, 300, 1000, 400)),
		doctree.Group("side", "Side", doctree.R(0, 720, 100, 100)),
	)
	out := run(t, doc)
	got := roles(out)
	if got["big"] != doctree.RoleMain {
		t.Errorf("big = %q, want main", got["big"])
	}
	if got["side"] != doctree.RoleGeneric {
		t.Errorf("side = %q, want generic", got["side"])
	}
	found := false
	for _, w := range out.Warnings {
		if w.NodeID == "side" && w.Code == errs.CodeClassificationAmbiguity {
			found = true
		}
	}
	if !found {
		t.Errorf("expected CLASSIFICATION_AMBIGUITY warning, got %+v", out.Warnings)
	}
}

func TestClassifyLeavesInvisibleUnset(t *testing.T) {
	hidden := doctree.Group("h", "Header", doctree.R(0, 0, 1000, 50))
	hidden.Visible = false
	got := roles(run(t, doctree.New("page", 1000, 1000, hidden)))
	if got["h"] != doctree.RoleUnset {
		t.Errorf("invisible node role = %q, want unset", got["h"])
	}
}

package parser

import (
	"fmt"
	"math"
	"strings"

	"github.com/dgallion1/designmark/internal/doctree"
	"github.com/dgallion1/designmark/internal/errs"
)

// rawFile is the layer export shape shared by the JSON and YAML readers:
// {"document": {"name", "width", "height", "children": [layer...]}}.
type rawFile struct {
	Document *rawDocument `json:"document" yaml:"document"`
}

type rawDocument struct {
	Name     string     `json:"name" yaml:"name"`
	Width    float64    `json:"width" yaml:"width"`
	Height   float64    `json:"height" yaml:"height"`
	Children []rawLayer `json:"children" yaml:"children"`
}

type rawLayer struct {
	ID       string     `json:"id" yaml:"id"`
	Name     string     `json:"name" yaml:"name"`
	Visible  *bool      `json:"visible" yaml:"visible"`
	BBox     any        `json:"bbox" yaml:"bbox"`
	Type     string     `json:"type" yaml:"type"`
	Kind     string     `json:"kind" yaml:"kind"`
	Text     string     `json:"text" yaml:"text"`
	Children []rawLayer `json:"children" yaml:"children"`
}

// buildDocument converts a decoded export into a document tree. The walk uses
// an explicit stack bounded by lim.
func buildDocument(f *rawFile, title string, lim doctree.Limits) (*doctree.Document, error) {
	if f.Document == nil {
		return nil, errs.New(errs.CodeInvalidInput, "missing top-level \"document\" object")
	}
	if lim.MaxDepth <= 0 || lim.MaxNodes <= 0 {
		lim = doctree.DefaultLimits()
	}
	if f.Document.Name != "" {
		title = f.Document.Name
	}
	if f.Document.Width < 0 || f.Document.Height < 0 {
		return nil, errs.New(errs.CodeInvalidInput, "negative canvas %gx%g", f.Document.Width, f.Document.Height)
	}

	ids := newIDSet()
	ids.reserve(doctree.RootID)

	type frame struct {
		raw    *rawLayer
		parent *doctree.Node
		path   string
		depth  int
	}
	root := doctree.Group(doctree.RootID, title, doctree.Rect{})
	var stack []frame
	pushChildren := func(kids []rawLayer, parent *doctree.Node, path string, depth int) {
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, frame{&kids[i], parent, fmt.Sprintf("%s/%d", path, i), depth})
		}
	}
	pushChildren(f.Document.Children, root, "document", 1)

	// Missing ids are filled in pre-order once every explicit id is known.
	var order []*doctree.Node
	count := 1
	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		count++
		if count > lim.MaxNodes {
			return nil, errs.New(errs.CodeLimitExceeded, "export exceeds %d layers", lim.MaxNodes)
		}
		if fr.depth > lim.MaxDepth {
			return nil, errs.New(errs.CodeLimitExceeded, "layer %s nested deeper than %d", fr.path, lim.MaxDepth)
		}

		n, err := convertLayer(fr.raw, fr.path)
		if err != nil {
			return nil, err
		}
		if n.ID != "" {
			if !ids.reserve(n.ID) {
				return nil, errs.New(errs.CodeInvalidInput, "duplicate layer id %q at %s", n.ID, fr.path)
			}
		}
		fr.parent.Children = append(fr.parent.Children, n)
		order = append(order, n)
		if n.IsGroup() {
			pushChildren(fr.raw.Children, n, fr.path, fr.depth+1)
		}
	}

	for _, n := range order {
		if n.ID == "" {
			n.ID = ids.next()
		}
	}

	doc := &doctree.Document{
		Title:  title,
		Width:  f.Document.Width,
		Height: f.Document.Height,
		Root:   root,
	}
	fitCanvas(doc)
	return doc, nil
}

// convertLayer maps one export layer to a node without its children.
func convertLayer(l *rawLayer, path string) (*doctree.Node, error) {
	var kind doctree.Kind
	switch strings.ToUpper(strings.TrimSpace(l.Type)) {
	case "FRAME", "GROUP":
		kind = doctree.KindGroup
	case "LAYER":
		kind = doctree.KindLeaf
	case "":
		return nil, errs.New(errs.CodeInvalidInput, "layer %s (%q) has no type", path, l.Name)
	default:
		return nil, errs.New(errs.CodeInvalidInput, "layer %s (%q) has unknown type %q", path, l.Name, l.Type)
	}
	if kind == doctree.KindLeaf && len(l.Children) > 0 {
		return nil, errs.New(errs.CodeInvalidInput, "leaf layer %s (%q) has children", path, l.Name)
	}
	if l.BBox == nil {
		return nil, errs.New(errs.CodeInvalidInput, "layer %s (%q) has no bbox", path, l.Name)
	}
	box, err := toRect(l.BBox)
	if err != nil {
		return nil, errs.Wrap(errs.CodeInvalidInput, err, "layer %s (%q)", path, l.Name)
	}
	visible := true
	if l.Visible != nil {
		visible = *l.Visible
	}
	return &doctree.Node{
		ID:        strings.TrimSpace(l.ID),
		Name:      l.Name,
		Kind:      kind,
		Visible:   visible,
		BBox:      box,
		Text:      l.Text,
		LayerKind: strings.ToLower(l.Kind),
	}, nil
}

// toRect accepts a [left, top, right, bottom] array or an
// {x, y, width, height} object. Malformed sizes pass through untouched for
// the geometry analyzer to repair.
func toRect(v any) (doctree.Rect, error) {
	switch b := v.(type) {
	case []any:
		if len(b) != 4 {
			return doctree.Rect{}, fmt.Errorf("bbox array has %d values, want 4", len(b))
		}
		var ltrb [4]float64
		for i, x := range b {
			f, ok := toFloat(x)
			if !ok {
				return doctree.Rect{}, fmt.Errorf("bbox value %v is not a number", x)
			}
			ltrb[i] = f
		}
		return doctree.Rect{X: ltrb[0], Y: ltrb[1], Width: ltrb[2] - ltrb[0], Height: ltrb[3] - ltrb[1]}, nil
	case map[string]any:
		var out [4]float64
		for i, key := range [...]string{"x", "y", "width", "height"} {
			x, ok := b[key]
			if !ok {
				return doctree.Rect{}, fmt.Errorf("bbox object missing %q", key)
			}
			f, ok := toFloat(x)
			if !ok {
				return doctree.Rect{}, fmt.Errorf("bbox %s %v is not a number", key, x)
			}
			out[i] = f
		}
		return doctree.Rect{X: out[0], Y: out[1], Width: out[2], Height: out[3]}, nil
	default:
		return doctree.Rect{}, fmt.Errorf("bbox has unsupported shape %T", v)
	}
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	case int32:
		return float64(x), true
	case uint32:
		return float64(x), true
	}
	return 0, false
}

// fitCanvas fills a missing canvas size from the extent of the top-level
// layers, and gives the root the canvas box.
func fitCanvas(doc *doctree.Document) {
	if doc.Width <= 0 || doc.Height <= 0 {
		var w, h float64
		for _, c := range doc.Root.Children {
			b := c.BBox
			if b.Malformed() {
				continue
			}
			w = math.Max(w, b.Right())
			h = math.Max(h, b.Bottom())
		}
		if doc.Width <= 0 {
			doc.Width = w
		}
		if doc.Height <= 0 {
			doc.Height = h
		}
	}
	doc.Root.BBox = doc.Canvas()
}

// idSet hands out unique node ids.
type idSet struct {
	used map[string]bool
	seq  int
}

func newIDSet() *idSet { return &idSet{used: make(map[string]bool)} }

// reserve claims id, reporting false if it was taken.
func (s *idSet) reserve(id string) bool {
	if s.used[id] {
		return false
	}
	s.used[id] = true
	return true
}

// next returns the first free id of the form n1, n2, ...
func (s *idSet) next() string {
	for {
		s.seq++
		id := fmt.Sprintf("n%d", s.seq)
		if s.reserve(id) {
			return id
		}
	}
}

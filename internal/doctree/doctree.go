package doctree

import (
	"fmt"

	"github.com/dgallion1/designmark/internal/errs"
)

// Kind distinguishes containers from atomic layers.
type Kind int

const (
	KindGroup Kind = iota
	KindLeaf
)

func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindLeaf:
		return "leaf"
	default:
		return "unknown"
	}
}

// MarshalText lets Kind serialize by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Role is the semantic tag assigned by the classifier.
type Role string

const (
	RoleUnset   Role = ""
	RoleHeader  Role = "header"
	RoleNav     Role = "nav"
	RoleMain    Role = "main"
	RoleSection Role = "section"
	RoleArticle Role = "article"
	RoleFooter  Role = "footer"
	RoleGeneric Role = "generic"
)

// Tag returns the markup element name for the role.
func (r Role) Tag() string {
	switch r {
	case RoleHeader, RoleNav, RoleMain, RoleSection, RoleArticle, RoleFooter:
		return string(r)
	default:
		return "div"
	}
}

// Arrangement is the geometric reading of a group's children.
type Arrangement string

const (
	ArrangeUnset      Arrangement = ""
	ArrangeHorizontal Arrangement = "horizontal"
	ArrangeVertical   Arrangement = "vertical"
	ArrangeIrregular  Arrangement = "irregular"
)

// LayoutKind is the flow strategy chosen for a group.
type LayoutKind string

const (
	LayoutRow    LayoutKind = "row"
	LayoutColumn LayoutKind = "column"
	LayoutGrid   LayoutKind = "grid"
)

// Layout is a synthesizer decision. Columns is only set for grids.
type Layout struct {
	Kind    LayoutKind `json:"kind"`
	Columns int        `json:"columns,omitempty"`
}

func (l Layout) String() string {
	if l.Kind == LayoutGrid {
		return fmt.Sprintf("grid(%d)", l.Columns)
	}
	return string(l.Kind)
}

// RelationKind describes a geometric fact about a sibling pair.
type RelationKind string

const (
	RelContains RelationKind = "contains" // A fully contains B
	RelInside   RelationKind = "inside"   // A lies fully inside B
	RelAdjacent RelationKind = "adjacent" // A and B share an edge within tolerance
	RelOverlaps RelationKind = "overlaps" // A and B intersect without containment
)

// Relation records one fact about siblings A and B (A precedes B in child order).
type Relation struct {
	A       string       `json:"a"`
	B       string       `json:"b"`
	Kind    RelationKind `json:"kind"`
	Overlap float64      `json:"overlap,omitempty"` // intersection / smaller area
}

// ContentKind selects what a leaf renders as.
type ContentKind string

const (
	ContentText  ContentKind = "text"
	ContentImage ContentKind = "image"
	ContentEmpty ContentKind = "empty"
)

// ContentSource records where a text leaf's copy came from.
type ContentSource string

const (
	SourceLiteral      ContentSource = "literal"
	SourceCollaborator ContentSource = "collaborator"
	SourceName         ContentSource = "name"
)

// Content is the synthesized payload of a leaf.
type Content struct {
	Kind   ContentKind   `json:"kind"`
	Text   string        `json:"text,omitempty"`
	Src    string        `json:"src,omitempty"`
	Source ContentSource `json:"source,omitempty"`
}

// Sizing is the per-child policy a parent's layout imposes.
type Sizing struct {
	FlexGrow  float64 `json:"flex_grow,omitempty"`  // share of a row's width
	MinHeight float64 `json:"min_height,omitempty"` // floor inside a column
}

// Node is one element of the design tree. The fields after Children are
// annotations: they stay zero on a raw tree and are filled in on the copies
// produced by each pipeline stage.
type Node struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Kind      Kind    `json:"kind"`
	Visible   bool    `json:"visible"`
	BBox      Rect    `json:"bbox"`
	Text      string  `json:"text,omitempty"`       // literal text from a text layer
	LayerKind string  `json:"layer_kind,omitempty"` // source hint: type, pixel, shape, smartobject
	Children  []*Node `json:"children,omitempty"`

	Arrangement Arrangement `json:"arrangement,omitempty"`
	Relations   []Relation  `json:"relations,omitempty"`
	Excluded    bool        `json:"excluded,omitempty"`
	Degenerate  bool        `json:"degenerate,omitempty"`
	Role        Role        `json:"role,omitempty"`
	Layout      *Layout     `json:"layout,omitempty"`
	Breakpoint  float64     `json:"breakpoint,omitempty"`
	Sizing      Sizing      `json:"sizing,omitempty"`
	Content     *Content    `json:"content,omitempty"`
}

// IsGroup reports whether n is a container.
func (n *Node) IsGroup() bool { return n.Kind == KindGroup }

// IsLeaf reports whether n is an atomic layer.
func (n *Node) IsLeaf() bool { return n.Kind == KindLeaf }

// Participates reports whether n takes part in layout decisions.
func (n *Node) Participates() bool {
	return n.Visible && !n.Excluded && !n.Degenerate
}

// Participants returns the children of n that take part in layout decisions,
// in child order.
func (n *Node) Participants() []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Participates() {
			out = append(out, c)
		}
	}
	return out
}

// Warning is a recovered anomaly attached to a node.
type Warning struct {
	NodeID  string    `json:"node_id"`
	Code    errs.Code `json:"code"`
	Message string    `json:"message"`
}

// Document is the root aggregate of a design file.
type Document struct {
	Title    string    `json:"title"`
	Width    float64   `json:"width"`
	Height   float64   `json:"height"`
	Root     *Node     `json:"root"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// Canvas returns the document's canvas as a rectangle at the origin.
func (d *Document) Canvas() Rect {
	return Rect{Width: d.Width, Height: d.Height}
}

// Warn records a recovered anomaly.
func (d *Document) Warn(nodeID string, code errs.Code, format string, args ...any) {
	d.Warnings = append(d.Warnings, Warning{
		NodeID:  nodeID,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	})
}

// Clone returns a deep copy of d. The copy shares nothing with d, so a stage
// can annotate it freely. d must already have passed Validate.
func (d *Document) Clone() *Document {
	out := &Document{
		Title:  d.Title,
		Width:  d.Width,
		Height: d.Height,
	}
	if len(d.Warnings) > 0 {
		out.Warnings = append([]Warning(nil), d.Warnings...)
	}
	if d.Root == nil {
		return out
	}

	type pair struct{ src, dst *Node }
	out.Root = cloneNode(d.Root)
	stack := []pair{{d.Root, out.Root}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if len(p.src.Children) == 0 {
			continue
		}
		p.dst.Children = make([]*Node, len(p.src.Children))
		for i, c := range p.src.Children {
			cc := cloneNode(c)
			p.dst.Children[i] = cc
			stack = append(stack, pair{c, cc})
		}
	}
	return out
}

func cloneNode(n *Node) *Node {
	c := *n
	c.Children = nil
	if n.Relations != nil {
		c.Relations = append([]Relation(nil), n.Relations...)
	}
	if n.Layout != nil {
		l := *n.Layout
		c.Layout = &l
	}
	if n.Content != nil {
		ct := *n.Content
		c.Content = &ct
	}
	return &c
}

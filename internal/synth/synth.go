// Package synth chooses a flow layout for every group of a classified tree
// and decides what each leaf renders as.
package synth

import (
	"math"
	"sort"

	"github.com/dgallion1/designmark/internal/doctree"
	"github.com/dgallion1/designmark/internal/geometry"
)

// Options tunes the layout heuristics.
type Options struct {
	Epsilon             float64 `toml:"epsilon"`
	GridMinChildren     int     `toml:"grid_min_children"`     // row children needed before a row becomes a grid
	GridMaxColumns      int     `toml:"grid_max_columns"`      // column cap for grids built from rows
	IrregularMaxColumns int     `toml:"irregular_max_columns"` // column cap for irregular groups
	EqualWidthTolerance float64 `toml:"equal_width_tolerance"` // max deviation from the mean width, as a share
	BreakpointRatio     float64 `toml:"breakpoint_ratio"`      // collapse threshold as a share of the group width
	Placeholder         string  `toml:"placeholder"`           // image placeholder reference
}

// DefaultOptions returns the standard heuristics.
func DefaultOptions() Options {
	return Options{
		Epsilon:             2,
		GridMinChildren:     4,
		GridMaxColumns:      4,
		IrregularMaxColumns: 6,
		EqualWidthTolerance: 0.10,
		BreakpointRatio:     0.5,
		Placeholder:         "placeholder.png",
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Epsilon <= 0 {
		o.Epsilon = d.Epsilon
	}
	if o.GridMinChildren <= 1 {
		o.GridMinChildren = d.GridMinChildren
	}
	if o.GridMaxColumns <= 0 {
		o.GridMaxColumns = d.GridMaxColumns
	}
	if o.IrregularMaxColumns <= 0 {
		o.IrregularMaxColumns = d.IrregularMaxColumns
	}
	if o.EqualWidthTolerance <= 0 {
		o.EqualWidthTolerance = d.EqualWidthTolerance
	}
	if o.BreakpointRatio <= 0 || o.BreakpointRatio >= 1 {
		o.BreakpointRatio = d.BreakpointRatio
	}
	if o.Placeholder == "" {
		o.Placeholder = d.Placeholder
	}
	return o
}

// Synthesize returns a copy of doc with a layout on every participating
// group, a sizing policy on their children, and content on every leaf.
// Children of laid-out groups are reordered into flow order.
func Synthesize(doc *doctree.Document, opts Options, lim doctree.Limits) (*doctree.Document, error) {
	if err := doctree.Validate(doc, lim); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	out := doc.Clone()

	// Nodes below an excluded or degenerate ancestor are emitted but never
	// laid out.
	inert := make(map[*doctree.Node]bool)

	err := doctree.Walk(out.Root, lim, func(v doctree.Visit) error {
		n := v.Node
		if !n.Visible {
			return doctree.SkipChildren
		}
		if v.Parent != nil && (inert[v.Parent] || !n.Participates()) {
			inert[n] = true
		}
		if n.IsLeaf() {
			if n.Degenerate {
				n.Content = &doctree.Content{Kind: doctree.ContentEmpty}
			} else {
				n.Content = LeafContent(n, opts.Placeholder)
			}
			return nil
		}
		if inert[n] {
			return nil
		}
		layoutGroup(n, opts)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// layoutGroup decides n's layout, sizes its participating children and puts
// its children in flow order.
func layoutGroup(n *doctree.Node, opts Options) {
	kids := n.Participants()
	arr := n.Arrangement
	if arr == doctree.ArrangeUnset {
		arr = geometry.Arrange(kids, opts.Epsilon)
	}
	n.Children = geometry.FlowOrder(n.Children, arr, opts.Epsilon)

	width := n.BBox.Width
	if len(kids) == 0 || width <= 0 {
		n.Layout = &doctree.Layout{Kind: doctree.LayoutColumn}
		return
	}

	switch arr {
	case doctree.ArrangeHorizontal:
		if len(kids) >= opts.GridMinChildren && equalWidths(kids, opts.EqualWidthTolerance) {
			n.Layout = &doctree.Layout{Kind: doctree.LayoutGrid, Columns: min(len(kids), opts.GridMaxColumns)}
		} else {
			n.Layout = &doctree.Layout{Kind: doctree.LayoutRow}
			flexWeights(kids)
		}
	case doctree.ArrangeIrregular:
		n.Layout = &doctree.Layout{Kind: doctree.LayoutGrid, Columns: gridColumns(kids, width, opts.IrregularMaxColumns)}
	default:
		n.Layout = &doctree.Layout{Kind: doctree.LayoutColumn}
		for _, c := range kids {
			c.Sizing.MinHeight = c.BBox.Height
		}
	}

	if n.Layout.Kind != doctree.LayoutColumn {
		n.Breakpoint = opts.BreakpointRatio * width
	}
}

// flexWeights gives each child of a row a grow factor proportional to its
// share of the row's total width.
func flexWeights(kids []*doctree.Node) {
	var total float64
	for _, c := range kids {
		total += c.BBox.Width
	}
	for _, c := range kids {
		if total > 0 {
			c.Sizing.FlexGrow = c.BBox.Width / total
		} else {
			c.Sizing.FlexGrow = 1 / float64(len(kids))
		}
	}
}

// equalWidths reports whether every width lies within tol of the mean.
func equalWidths(kids []*doctree.Node, tol float64) bool {
	var sum float64
	for _, c := range kids {
		sum += c.BBox.Width
	}
	mean := sum / float64(len(kids))
	if mean <= 0 {
		return false
	}
	for _, c := range kids {
		if math.Abs(c.BBox.Width-mean) > tol*mean {
			return false
		}
	}
	return true
}

// gridColumns estimates how many median-width children fit across width.
func gridColumns(kids []*doctree.Node, width float64, maxCols int) int {
	widths := make([]float64, len(kids))
	for i, c := range kids {
		widths[i] = c.BBox.Width
	}
	sort.Float64s(widths)
	var median float64
	if m := len(widths) / 2; len(widths)%2 == 1 {
		median = widths[m]
	} else {
		median = (widths[m-1] + widths[m]) / 2
	}
	if median <= 0 {
		return 1
	}
	cols := int(math.Round(width / median))
	return max(1, min(cols, maxCols))
}

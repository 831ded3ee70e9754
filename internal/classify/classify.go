// Package classify assigns semantic roles to an analyzed design tree.
//
// Top-level regions are matched positionally (header band, nav strip under
// the header, largest remaining region as main, footer band), their
// descendants by parentage, and any node whose name carries a role keyword
// takes that role regardless of position. The result depends only on boxes,
// names, arrangements and sibling order.
package classify

import (
	"strings"

	"github.com/dgallion1/designmark/internal/doctree"
)

// Options holds the positional thresholds, as fractions of the canvas.
type Options struct {
	HeaderBand   float64 `toml:"header_band"`    // header top edge within this share of canvas height
	FooterBand   float64 `toml:"footer_band"`    // footer bottom edge within this share of canvas height
	MinSpan      float64 `toml:"min_span"`       // header/footer width as a share of canvas width
	NavGap       float64 `toml:"nav_gap"`        // max distance below the header, share of canvas height
	NavMinLeaves int     `toml:"nav_min_leaves"` // leaf children a nav strip needs
	Epsilon      float64 `toml:"epsilon"`
}

// DefaultOptions returns the standard thresholds.
func DefaultOptions() Options {
	return Options{
		HeaderBand:   0.10,
		FooterBand:   0.10,
		MinSpan:      0.60,
		NavGap:       0.10,
		NavMinLeaves: 3,
		Epsilon:      2,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.HeaderBand <= 0 {
		o.HeaderBand = d.HeaderBand
	}
	if o.FooterBand <= 0 {
		o.FooterBand = d.FooterBand
	}
	if o.MinSpan <= 0 {
		o.MinSpan = d.MinSpan
	}
	if o.NavGap <= 0 {
		o.NavGap = d.NavGap
	}
	if o.NavMinLeaves <= 0 {
		o.NavMinLeaves = d.NavMinLeaves
	}
	if o.Epsilon <= 0 {
		o.Epsilon = d.Epsilon
	}
	return o
}

// keywords in precedence order: the first one found in a name wins.
var keywords = []doctree.Role{
	doctree.RoleHeader,
	doctree.RoleNav,
	doctree.RoleFooter,
	doctree.RoleMain,
	doctree.RoleSection,
	doctree.RoleArticle,
}

// RoleFromName returns the role whose keyword name contains, ignoring case.
func RoleFromName(name string) (doctree.Role, bool) {
	lower := strings.ToLower(name)
	for _, r := range keywords {
		if strings.Contains(lower, string(r)) {
			return r, true
		}
	}
	return doctree.RoleUnset, false
}

// Classify returns a copy of doc with a role on every visible node.
// doc should come from geometry.Analyze so arrangements are known.
func Classify(doc *doctree.Document, opts Options, lim doctree.Limits) (*doctree.Document, error) {
	if err := doctree.Validate(doc, lim); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	out := doc.Clone()

	top := classifyRegions(out, opts)

	err := doctree.Walk(out.Root, lim, func(v doctree.Visit) error {
		n := v.Node
		if !n.Visible {
			return doctree.SkipChildren
		}
		switch {
		case v.Parent == nil:
			n.Role = doctree.RoleGeneric
		case !n.Participates():
			n.Role = doctree.RoleGeneric
		case v.Parent == out.Root:
			n.Role = top[n]
		default:
			n.Role = nested(n, v.Parent)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// nested classifies a node below the top level.
func nested(n, parent *doctree.Node) doctree.Role {
	if r, ok := RoleFromName(n.Name); ok {
		return r
	}
	if !n.IsGroup() {
		return doctree.RoleGeneric
	}
	switch parent.Role {
	case doctree.RoleHeader:
		if n.Arrangement == doctree.ArrangeHorizontal {
			return doctree.RoleNav
		}
	case doctree.RoleMain:
		return sectionOrArticle(n)
	}
	return doctree.RoleGeneric
}

// sectionOrArticle splits main's children: groups holding further groups are
// sections, groups made mostly of leaves are articles.
func sectionOrArticle(n *doctree.Node) doctree.Role {
	kids := n.Participants()
	leaves, groups := 0, 0
	for _, c := range kids {
		if c.IsGroup() {
			groups++
		} else {
			leaves++
		}
	}
	switch {
	case groups > 0 && leaves*2 <= len(kids):
		return doctree.RoleSection
	case leaves*2 > len(kids):
		return doctree.RoleArticle
	}
	return doctree.RoleGeneric
}

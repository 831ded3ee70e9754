package classify

import (
	"github.com/dgallion1/designmark/internal/doctree"
	"github.com/dgallion1/designmark/internal/errs"
)

// classifyRegions decides the roles of the root's direct children. Named
// regions come first; the positional rules then fill header, nav, main and
// footer in that order, each only if no node claimed the role by name.
func classifyRegions(doc *doctree.Document, opts Options) map[*doctree.Node]doctree.Role {
	roles := make(map[*doctree.Node]doctree.Role)
	kids := doc.Root.Participants()

	canvas := doc.Canvas()
	if canvas.Empty() {
		canvas = doc.Root.BBox
	}
	W, H := canvas.Width, canvas.Height

	named := make(map[doctree.Role]bool)
	for _, c := range kids {
		if r, ok := RoleFromName(c.Name); ok {
			roles[c] = r
			named[r] = true
		}
	}

	open := func(c *doctree.Node) bool {
		_, taken := roles[c]
		return !taken && c.IsGroup()
	}

	var header *doctree.Node
	if named[doctree.RoleHeader] {
		header = firstWithRole(kids, roles, doctree.RoleHeader)
	} else {
		for _, c := range kids {
			if !open(c) || c.BBox.Y > opts.HeaderBand*H || c.BBox.Width < opts.MinSpan*W {
				continue
			}
			if header == nil || c.BBox.Y < header.BBox.Y {
				header = c
			}
		}
		if header != nil {
			roles[header] = doctree.RoleHeader
		}
	}

	if header != nil && !named[doctree.RoleNav] {
		var nav *doctree.Node
		for _, c := range kids {
			if !open(c) || !navStrip(c, header, H, opts) {
				continue
			}
			if nav == nil || c.BBox.Y < nav.BBox.Y {
				nav = c
			}
		}
		if nav != nil {
			roles[nav] = doctree.RoleNav
		}
	}

	if !named[doctree.RoleMain] {
		var main *doctree.Node
		for _, c := range kids {
			if !open(c) {
				continue
			}
			if main == nil || c.BBox.Area() > main.BBox.Area() {
				main = c
			}
		}
		if main != nil {
			roles[main] = doctree.RoleMain
		}
	}

	if !named[doctree.RoleFooter] {
		var footer *doctree.Node
		for _, c := range kids {
			if !open(c) || c.BBox.Bottom() < H-opts.FooterBand*H || c.BBox.Width < opts.MinSpan*W {
				continue
			}
			if footer == nil || c.BBox.Bottom() >= footer.BBox.Bottom() {
				footer = c
			}
		}
		if footer != nil {
			roles[footer] = doctree.RoleFooter
		}
	}

	for _, c := range kids {
		if _, ok := roles[c]; ok {
			continue
		}
		roles[c] = doctree.RoleGeneric
		if c.IsGroup() {
			doc.Warn(c.ID, errs.CodeClassificationAmbiguity,
				"top-level region %q matched no role", c.Name)
		}
	}
	return roles
}

// navStrip reports whether c is a horizontal strip of links sitting directly
// below the header.
func navStrip(c, header *doctree.Node, H float64, opts Options) bool {
	if c.Arrangement != doctree.ArrangeHorizontal {
		return false
	}
	gap := c.BBox.Y - header.BBox.Bottom()
	if gap < -opts.Epsilon || gap > opts.NavGap*H {
		return false
	}
	leaves := 0
	for _, k := range c.Participants() {
		if k.IsLeaf() {
			leaves++
		}
	}
	return leaves >= opts.NavMinLeaves
}

func firstWithRole(kids []*doctree.Node, roles map[*doctree.Node]doctree.Role, r doctree.Role) *doctree.Node {
	for _, c := range kids {
		if roles[c] == r {
			return c
		}
	}
	return nil
}

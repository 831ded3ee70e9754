package emit

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dgallion1/designmark/internal/doctree"
)

// Rule is the layout directive set for one node. Group fields are set on laid
// out groups, sizing fields on the children those groups size.
type Rule struct {
	NodeID     string             `json:"node_id"`
	Layout     doctree.LayoutKind `json:"layout,omitempty"`
	Columns    int                `json:"columns,omitempty"`
	Breakpoint float64            `json:"breakpoint,omitempty"`
	FlexGrow   float64            `json:"flex_grow,omitempty"`
	MinHeight  float64            `json:"min_height,omitempty"`
}

// Rules collects the layout directives of doc in document order.
func Rules(doc *doctree.Document, lim doctree.Limits) ([]Rule, error) {
	rules := []Rule{}
	err := doctree.Walk(doc.Root, lim, func(v doctree.Visit) error {
		n := v.Node
		if !n.Visible {
			return doctree.SkipChildren
		}
		r := Rule{
			NodeID:    n.ID,
			FlexGrow:  round(n.Sizing.FlexGrow),
			MinHeight: round(n.Sizing.MinHeight),
		}
		if n.Layout != nil {
			r.Layout = n.Layout.Kind
			r.Columns = n.Layout.Columns
			r.Breakpoint = round(n.Breakpoint)
		}
		if r.Layout != "" || r.FlexGrow > 0 || r.MinHeight > 0 {
			rules = append(rules, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rules, nil
}

const base = `*, *::before, *::after { box-sizing: border-box; }
body { margin: 0; }
img { display: block; max-width: 100%; height: auto; }
[hidden] { display: none !important; }
`

// Stylesheet renders rules as CSS. Row and grid rules collapse to a single
// column under their breakpoint.
func Stylesheet(rules []Rule) string {
	var sb strings.Builder
	sb.WriteString(base)

	for _, r := range rules {
		var decls []string
		switch r.Layout {
		case doctree.LayoutRow:
			decls = append(decls, "display: flex", "flex-direction: row")
		case doctree.LayoutColumn:
			decls = append(decls, "display: flex", "flex-direction: column")
		case doctree.LayoutGrid:
			decls = append(decls, "display: grid",
				fmt.Sprintf("grid-template-columns: repeat(%d, minmax(0, 1fr))", max(r.Columns, 1)))
		}
		if r.FlexGrow > 0 {
			decls = append(decls, "flex: "+num(r.FlexGrow)+" 1 0")
		}
		if r.MinHeight > 0 {
			decls = append(decls, "min-height: "+num(r.MinHeight)+"px")
		}
		writeBlock(&sb, "", selector(r.NodeID), decls)
	}

	for _, r := range rules {
		if r.Breakpoint <= 0 {
			continue
		}
		var decls []string
		switch r.Layout {
		case doctree.LayoutRow:
			decls = []string{"flex-direction: column"}
		case doctree.LayoutGrid:
			decls = []string{"grid-template-columns: minmax(0, 1fr)"}
		default:
			continue
		}
		fmt.Fprintf(&sb, "@media (max-width: %spx) {\n", num(r.Breakpoint))
		writeBlock(&sb, "  ", selector(r.NodeID), decls)
		sb.WriteString("}\n")
	}
	return sb.String()
}

func writeBlock(sb *strings.Builder, indent, sel string, decls []string) {
	if len(decls) == 0 {
		return
	}
	sb.WriteString(indent + sel + " {\n")
	for _, d := range decls {
		sb.WriteString(indent + "  " + d + ";\n")
	}
	sb.WriteString(indent + "}\n")
}

var selectorEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "<", `\3c `, "\n", `\a `)

func selector(id string) string {
	return `[data-node="` + selectorEscaper.Replace(id) + `"]`
}

func round(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

package parser

import (
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dgallion1/designmark/internal/doctree"
	"github.com/dgallion1/designmark/internal/errs"
)

// HTMLParser reads absolutely-positioned HTML exports. Every element with
// inline left/top/width/height becomes a layer; elements without geometry are
// transparent and their positioned descendants attach to the nearest
// positioned ancestor.
type HTMLParser struct {
	Limits doctree.Limits
}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	page, err := html.Parse(r)
	if err != nil {
		return nil, errs.Wrap(errs.CodeInvalidInput, err, "parse html")
	}
	lim := p.Limits
	if lim.MaxDepth <= 0 || lim.MaxNodes <= 0 {
		lim = doctree.DefaultLimits()
	}

	title := baseTitle(filename)
	if t := findTitle(page); t != "" {
		title = t
	}
	doc := &doctree.Document{
		Title: title,
		Root:  doctree.Group(doctree.RootID, title, doctree.Rect{}),
	}

	body := findBody(page)
	if body == nil {
		body = page
	}
	if st := parseStyle(attrValue(body, "style")); st != nil {
		doc.Width, _ = parsePx(st["width"])
		doc.Height, _ = parsePx(st["height"])
	}

	type frame struct {
		el     *html.Node
		parent *doctree.Node
		ox, oy float64 // absolute origin of parent
		depth  int
		hidden bool
	}
	var stack []frame
	pushChildren := func(el *html.Node, f frame) {
		var kids []*html.Node
		for c := el.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				kids = append(kids, c)
			}
		}
		for i := len(kids) - 1; i >= 0; i-- {
			f.el = kids[i]
			stack = append(stack, f)
		}
	}
	pushChildren(body, frame{parent: doc.Root, depth: 1})

	ids := newIDSet()
	ids.reserve(doctree.RootID)
	source := make(map[*doctree.Node]*html.Node)
	var order []*doctree.Node
	count := 1

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch f.el.DataAtom {
		case atom.Script, atom.Style, atom.Template, atom.Noscript:
			continue
		}
		st := parseStyle(attrValue(f.el, "style"))
		hidden := f.hidden || st["display"] == "none" || st["visibility"] == "hidden"

		box, positioned := styleBox(st)
		if !positioned {
			f.hidden = hidden
			pushChildren(f.el, f)
			continue
		}

		count++
		if count > lim.MaxNodes {
			return nil, errs.New(errs.CodeLimitExceeded, "export exceeds %d layers", lim.MaxNodes)
		}
		if f.depth > lim.MaxDepth {
			return nil, errs.New(errs.CodeLimitExceeded, "element <%s> nested deeper than %d", f.el.Data, lim.MaxDepth)
		}

		box.X += f.ox
		box.Y += f.oy
		n := &doctree.Node{
			ID:      strings.TrimSpace(attrValue(f.el, "data-id")),
			Name:    elementName(f.el),
			Kind:    doctree.KindLeaf,
			Visible: !hidden,
			BBox:    box,
		}
		if n.ID != "" && !ids.reserve(n.ID) {
			return nil, errs.New(errs.CodeInvalidInput, "duplicate layer id %q", n.ID)
		}
		if f.el.DataAtom == atom.Img {
			n.LayerKind = "pixel"
		}

		// A positioned child turns its parent into a group.
		if f.parent.Kind != doctree.KindGroup {
			f.parent.Kind = doctree.KindGroup
			f.parent.LayerKind = ""
		}
		f.parent.Children = append(f.parent.Children, n)
		source[n] = f.el
		order = append(order, n)

		if f.el.DataAtom != atom.Img {
			pushChildren(f.el, frame{parent: n, ox: box.X, oy: box.Y, depth: f.depth + 1, hidden: hidden})
		}
	}

	for _, n := range order {
		if n.ID == "" {
			n.ID = ids.next()
		}
		if n.IsLeaf() && n.LayerKind == "" {
			if t := textContent(source[n]); t != "" {
				n.Text = t
				n.LayerKind = "type"
			} else {
				n.LayerKind = "shape"
			}
		}
	}

	fitCanvas(doc)
	return doc, nil
}

// elementName picks the layer name an exporter most likely wrote.
func elementName(n *html.Node) string {
	for _, key := range [...]string{"data-name", "aria-label", "id", "class"} {
		if v := strings.TrimSpace(attrValue(n, key)); v != "" {
			return v
		}
	}
	if n.DataAtom == atom.Img {
		return strings.TrimSpace(attrValue(n, "alt"))
	}
	return ""
}

// styleBox reads a box from left/top/width/height. width and height are
// required; a missing offset counts as zero.
func styleBox(st map[string]string) (doctree.Rect, bool) {
	w, okW := parsePx(st["width"])
	h, okH := parsePx(st["height"])
	if !okW || !okH {
		return doctree.Rect{}, false
	}
	x, _ := parsePx(st["left"])
	y, _ := parsePx(st["top"])
	return doctree.Rect{X: x, Y: y, Width: w, Height: h}, true
}

// parseStyle splits an inline style attribute into lowercased properties.
func parseStyle(s string) map[string]string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	out := make(map[string]string)
	for _, decl := range strings.Split(s, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "!important")))
		if k != "" {
			out[k] = v
		}
	}
	return out
}

// parsePx accepts "12px", "12" and "12.5px". Other units are not geometry.
func parsePx(v string) (float64, bool) {
	v = strings.TrimSpace(strings.TrimSuffix(v, "px"))
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// textContent returns the whitespace-collapsed text under n.
func textContent(n *html.Node) string {
	var buf strings.Builder
	stack := []*html.Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.Type == html.TextNode {
			buf.WriteString(cur.Data)
			buf.WriteByte(' ')
			continue
		}
		if cur.Type == html.ElementNode {
			switch cur.DataAtom {
			case atom.Script, atom.Style:
				continue
			}
		}
		var kids []*html.Node
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			kids = append(kids, c)
		}
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	return strings.Join(strings.Fields(buf.String()), " ")
}

func findTitle(n *html.Node) string {
	if el := findElement(n, atom.Title); el != nil {
		return textContent(el)
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	return findElement(n, atom.Body)
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	stack := []*html.Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.Type == html.ElementNode && cur.DataAtom == a {
			return cur
		}
		for c := cur.LastChild; c != nil; c = c.PrevSibling {
			stack = append(stack, c)
		}
	}
	return nil
}

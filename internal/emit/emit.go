// Package emit renders a synthesized design tree as a semantic HTML page
// and a stylesheet of layout rules keyed by node id.
package emit

import (
	"bytes"
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dgallion1/designmark/internal/doctree"
)

// Options controls page serialization.
type Options struct {
	// InlineCSS embeds the stylesheet in a <style> element. Otherwise the
	// page links to StylesheetHref and the caller ships Output.CSS alongside.
	InlineCSS      bool   `toml:"inline_css"`
	StylesheetHref string `toml:"stylesheet_href"`
	Lang           string `toml:"lang"`
}

// DefaultOptions returns options for a self-contained page.
func DefaultOptions() Options {
	return Options{
		InlineCSS:      true,
		StylesheetHref: "styles.css",
		Lang:           "en",
	}
}

// Output is the result of an emission.
type Output struct {
	HTML     string            `json:"html"`
	CSS      string            `json:"css"`
	Rules    []Rule            `json:"rules"`
	Warnings []doctree.Warning `json:"warnings"`
}

// Emit renders doc. Invisible subtrees are omitted; excluded nodes are kept
// with the hidden attribute so no container of the source is lost. The same
// document always yields byte-identical output.
func Emit(doc *doctree.Document, opts Options, lim doctree.Limits) (*Output, error) {
	if err := doctree.Validate(doc, lim); err != nil {
		return nil, err
	}
	if opts.StylesheetHref == "" {
		opts.StylesheetHref = DefaultOptions().StylesheetHref
	}
	if opts.Lang == "" {
		opts.Lang = DefaultOptions().Lang
	}

	rules, err := Rules(doc, lim)
	if err != nil {
		return nil, err
	}
	css := Stylesheet(rules)

	body := element(atom.Body)
	elems := make(map[*doctree.Node]*html.Node)
	err = doctree.Walk(doc.Root, lim, func(v doctree.Visit) error {
		n := v.Node
		if !n.Visible {
			return doctree.SkipChildren
		}
		el := nodeElement(n)
		elems[n] = el
		if v.Parent == nil {
			body.AppendChild(el)
		} else {
			elems[v.Parent].AppendChild(el)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	page := &html.Node{Type: html.DocumentNode}
	page.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	root := element(atom.Html, attr("lang", opts.Lang))
	page.AppendChild(root)
	root.AppendChild(head(doc, css, opts))
	root.AppendChild(body)

	var buf bytes.Buffer
	if err := html.Render(&buf, page); err != nil {
		return nil, fmt.Errorf("render markup: %w", err)
	}
	buf.WriteByte('\n')

	warnings := doc.Warnings
	if warnings == nil {
		warnings = []doctree.Warning{}
	}
	return &Output{
		HTML:     buf.String(),
		CSS:      css,
		Rules:    rules,
		Warnings: warnings,
	}, nil
}

func head(doc *doctree.Document, css string, opts Options) *html.Node {
	h := element(atom.Head)
	h.AppendChild(element(atom.Meta, attr("charset", "utf-8")))
	h.AppendChild(element(atom.Meta,
		attr("name", "viewport"),
		attr("content", "width=device-width, initial-scale=1")))

	title := doc.Title
	if title == "" {
		title = "Untitled"
	}
	t := element(atom.Title)
	t.AppendChild(&html.Node{Type: html.TextNode, Data: title})
	h.AppendChild(t)

	if opts.InlineCSS {
		s := element(atom.Style)
		s.AppendChild(&html.Node{Type: html.TextNode, Data: "\n" + css})
		h.AppendChild(s)
	} else {
		h.AppendChild(element(atom.Link,
			attr("rel", "stylesheet"),
			attr("href", opts.StylesheetHref)))
	}
	return h
}

// nodeElement builds the element for one node, without its children.
func nodeElement(n *doctree.Node) *html.Node {
	attrs := []html.Attribute{
		attr("data-node", n.ID),
		attr("data-kind", n.Kind.String()),
	}
	if n.Excluded {
		attrs = append(attrs, attr("hidden", ""))
	}

	if n.IsGroup() {
		return element(tagAtom(n.Role), attrs...)
	}

	content := n.Content
	if content == nil {
		content = &doctree.Content{Kind: doctree.ContentEmpty}
	}
	body := contentElement(n, content)

	// A leaf named after a landmark keeps the landmark element and nests its
	// content inside.
	if a := tagAtom(n.Role); a != atom.Div {
		el := element(a, attrs...)
		if body != nil {
			el.AppendChild(body)
		}
		return el
	}
	if body == nil {
		return element(atom.Div, attrs...)
	}
	body.Attr = append(attrs, body.Attr...)
	return body
}

// contentElement returns the element carrying a leaf's payload, or nil for
// empty content.
func contentElement(n *doctree.Node, c *doctree.Content) *html.Node {
	switch c.Kind {
	case doctree.ContentImage:
		return element(atom.Img, attr("src", c.Src), attr("alt", n.Name))
	case doctree.ContentText:
		p := element(atom.P)
		p.AppendChild(&html.Node{Type: html.TextNode, Data: c.Text})
		return p
	default:
		return nil
	}
}

func tagAtom(r doctree.Role) atom.Atom {
	switch r {
	case doctree.RoleHeader:
		return atom.Header
	case doctree.RoleNav:
		return atom.Nav
	case doctree.RoleMain:
		return atom.Main
	case doctree.RoleSection:
		return atom.Section
	case doctree.RoleArticle:
		return atom.Article
	case doctree.RoleFooter:
		return atom.Footer
	default:
		return atom.Div
	}
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

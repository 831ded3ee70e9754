package textgen

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// PlainText flattens a Markdown reply into plain text: emphasis, links,
// headings and list markers are dropped and blocks are joined by blank lines.
func PlainText(src string) string {
	b := []byte(src)
	doc := goldmark.New().Parser().Parse(text.NewReader(b))

	var blocks []string
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		collectBlocks(n, b, &blocks)
	}
	return strings.Join(blocks, "\n\n")
}

func collectBlocks(n ast.Node, src []byte, out *[]string) {
	switch n.Kind() {
	case ast.KindList, ast.KindListItem, ast.KindBlockquote:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			collectBlocks(c, src, out)
		}
		return
	case ast.KindThematicBreak, ast.KindHTMLBlock:
		return
	}
	if t := extractText(n, src); t != "" {
		*out = append(*out, t)
	}
}

// extractText gets the text content of a goldmark AST node.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && !n.HasChildren() {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.Text:
			buf.Write(c.Value(src))
			if c.HardLineBreak() || c.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(c.Value)
		case *ast.RawHTML:
		default:
			buf.WriteString(extractText(c, src))
		}
	}
	return strings.Join(strings.Fields(buf.String()), " ")
}

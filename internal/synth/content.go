package synth

import (
	"regexp"
	"strings"

	"github.com/dgallion1/designmark/internal/doctree"
)

var imageKeywords = []string{"image", "img", "photo"}

// autoName matches the names design tools give layers nobody renamed.
var autoName = regexp.MustCompile(`(?i)^(layer|rectangle|ellipse|shape|vector|path|polygon|line)(\s+\d+)?(\s+copy(\s+\d+)?)?$`)

// IsImage reports whether a leaf stands for imagery rather than copy.
func IsImage(n *doctree.Node) bool {
	if strings.TrimSpace(n.Text) != "" {
		return false
	}
	switch n.LayerKind {
	case "pixel", "smartobject":
		return true
	}
	name := strings.ToLower(n.Name)
	for _, kw := range imageKeywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	name = strings.TrimSpace(name)
	return name == "" || autoName.MatchString(name)
}

// LeafContent returns the payload for a leaf: an image placeholder, the
// layer's literal text, or its name as stand-in copy.
func LeafContent(n *doctree.Node, placeholder string) *doctree.Content {
	switch {
	case IsImage(n):
		return &doctree.Content{Kind: doctree.ContentImage, Src: placeholder}
	case strings.TrimSpace(n.Text) != "":
		return &doctree.Content{Kind: doctree.ContentText, Text: n.Text, Source: doctree.SourceLiteral}
	default:
		return &doctree.Content{Kind: doctree.ContentText, Text: n.Name, Source: doctree.SourceName}
	}
}

// NeedsCopy reports whether a leaf only has its name as text, so richer copy
// from a collaborator would improve it.
func NeedsCopy(n *doctree.Node) bool {
	return n.IsLeaf() && n.Participates() && n.Content != nil &&
		n.Content.Kind == doctree.ContentText && n.Content.Source == doctree.SourceName
}

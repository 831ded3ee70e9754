// Package textgen talks to the hosted text-completion service that phrases
// placeholder copy for text layers, and cleans what it sends back.
package textgen

import (
	"fmt"
	"strings"

	"github.com/dgallion1/designmark/internal/doctree"
)

// SystemPrompt frames every completion request.
const SystemPrompt = `You write short placeholder copy for web page mockups.

Rules:
- Reply with the copy only: no quotes, no markup, no explanations
- Match the purpose suggested by the layer name and its place on the page
- Stay within the requested word count
- Navigation items and buttons are one to three words
- Never mention that the text is a placeholder`

// Request describes the layer copy is wanted for.
type Request struct {
	NodeID   string
	Name     string
	Role     doctree.Role
	Title    string   // document title
	Context  []string // ancestors, outermost first, as "role: name"
	MaxWords int
}

// BuildPrompt renders the user message for req.
func BuildPrompt(req Request) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Page: %q\n", req.Title))
	if len(req.Context) > 0 {
		sb.WriteString("Location: ")
		sb.WriteString(strings.Join(req.Context, " > "))
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("Layer: %q", req.Name))
	if req.Role != doctree.RoleUnset && req.Role != doctree.RoleGeneric {
		sb.WriteString(fmt.Sprintf(" (%s)", req.Role))
	}
	sb.WriteString("\n")
	if req.MaxWords > 0 {
		sb.WriteString(fmt.Sprintf("Write at most %d words.\n", req.MaxWords))
	}
	return sb.String()
}

package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/designmark/internal/doctree"
	"github.com/dgallion1/designmark/internal/pipeline"
)

func newInspectCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print the annotated layer tree",
		Long: `Inspect runs the analysis stages on a design file and prints every
node with the role, arrangement and layout decided for it, followed by the
recovered warnings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := loadHeuristics(configPath)
			if err != nil {
				return err
			}
			res, err := convertFile(cmd.Context(), args[0], h, pipeline.RunOptions{})
			if err != nil {
				return err
			}
			return writeTree(cmd.OutOrStdout(), res.Document, h.Limits)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "heuristics TOML file")
	return cmd
}

// writeTree prints doc one node per line, indented by depth.
func writeTree(w io.Writer, doc *doctree.Document, lim doctree.Limits) error {
	fmt.Fprintf(w, "%s %s\n", StyleTitle.Render(doc.Title),
		StyleDim.Render(fmt.Sprintf("%s×%s", num(doc.Width), num(doc.Height))))

	err := doctree.Walk(doc.Root, lim, func(v doctree.Visit) error {
		fmt.Fprintln(w, strings.Repeat("  ", v.Depth)+nodeLine(v.Node))
		return nil
	})
	if err != nil {
		return err
	}

	if len(doc.Warnings) > 0 {
		fmt.Fprintln(w)
		for _, wn := range doc.Warnings {
			printWarning(w, "%s %s: %s", wn.Code, wn.NodeID, wn.Message)
		}
	}
	return nil
}

func nodeLine(n *doctree.Node) string {
	parts := []string{StyleHighlight.Render(n.ID)}
	if n.Name != "" {
		parts = append(parts, StyleValue.Render(strconv.Quote(n.Name)))
	}
	if n.Role != doctree.RoleUnset {
		parts = append(parts, StyleRole.Render(string(n.Role)))
	}

	var facts []string
	if n.IsGroup() {
		if n.Arrangement != doctree.ArrangeUnset {
			facts = append(facts, string(n.Arrangement))
		}
		if n.Layout != nil {
			facts = append(facts, n.Layout.String())
		}
		if n.Breakpoint > 0 {
			facts = append(facts, "bp "+num(n.Breakpoint))
		}
	} else if n.Content != nil {
		c := string(n.Content.Kind)
		if n.Content.Source != "" {
			c += "/" + string(n.Content.Source)
		}
		facts = append(facts, c)
	}
	if len(facts) > 0 {
		parts = append(parts, StyleDim.Render(strings.Join(facts, " ")))
	}

	switch {
	case !n.Visible:
		parts = append(parts, StyleWarning.Render("hidden"))
	case n.Excluded:
		parts = append(parts, StyleWarning.Render("excluded"))
	case n.Degenerate:
		parts = append(parts, StyleWarning.Render("degenerate"))
	}
	return strings.Join(parts, " ")
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

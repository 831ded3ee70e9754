package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/dgallion1/designmark/internal/pipeline"
)

func newDiffCmd() *cobra.Command {
	var base, against string

	cmd := &cobra.Command{
		Use:   "diff <file>",
		Short: "Compare the markup two heuristics files produce",
		Long: `Diff converts a design file twice, once with --config (or the defaults)
and once with --against, and prints the lines of the page that differ.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if against == "" {
				return errors.New("--against is required")
			}
			return runDiff(cmd.Context(), cmd.OutOrStdout(), args[0], base, against)
		},
	}

	cmd.Flags().StringVar(&base, "config", "", "baseline heuristics TOML file (default built-in)")
	cmd.Flags().StringVar(&against, "against", "", "heuristics TOML file to compare with")
	return cmd
}

func runDiff(ctx context.Context, w io.Writer, path, base, against string) error {
	render := func(configPath string) (string, error) {
		h, err := loadHeuristics(configPath)
		if err != nil {
			return "", err
		}
		res, err := convertFile(ctx, path, h, pipeline.RunOptions{})
		if err != nil {
			return "", err
		}
		return splitTags(res.HTML), nil
	}

	a, err := render(base)
	if err != nil {
		return err
	}
	b, err := render(against)
	if err != nil {
		return err
	}

	lines := lineDiff(a, b)
	if len(lines) == 0 {
		printSuccess(w, "no differences")
		return nil
	}
	for _, l := range lines {
		switch l.op {
		case diffpatch.DiffDelete:
			fmt.Fprintln(w, styleDelete.Render("- "+l.text))
		case diffpatch.DiffInsert:
			fmt.Fprintln(w, styleInsert.Render("+ "+l.text))
		}
	}
	return nil
}

// diffLine is one inserted or deleted line.
type diffLine struct {
	op   diffpatch.Operation
	text string
}

// lineDiff compares a and b line by line and returns the changed lines in
// order. Equal lines are dropped.
func lineDiff(a, b string) []diffLine {
	dmp := diffpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	var out []diffLine
	for _, d := range diffs {
		if d.Type == diffpatch.DiffEqual {
			continue
		}
		for _, text := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			out = append(out, diffLine{op: d.Type, text: text})
		}
	}
	return out
}

// splitTags puts every tag of a rendered page on its own line so that a
// line diff can localize changes.
func splitTags(page string) string {
	return strings.ReplaceAll(page, "><", ">\n<")
}

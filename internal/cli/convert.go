package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgallion1/designmark/internal/pipeline"
)

// convertOpts holds the command-line flags for the convert command.
type convertOpts struct {
	output string // page path; stdout when empty
	css    string // stylesheet path; inlined when empty
	config string // heuristics TOML file
	enrich bool   // ask the collaborator for copy
}

func newConvertCmd() *cobra.Command {
	var opts convertOpts

	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert a layer-tree export into an HTML page",
		Long: `Convert reads a layer-tree export (.json, .yaml, .html) and writes a
responsive HTML page. With --css the stylesheet goes to its own file and the
page links to it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output page path (default stdout)")
	cmd.Flags().StringVar(&opts.css, "css", "", "write the stylesheet to this path and link it")
	cmd.Flags().StringVar(&opts.config, "config", "", "heuristics TOML file")
	cmd.Flags().BoolVar(&opts.enrich, "enrich", false, "fill copy through the text-completion service")

	return cmd
}

func runConvert(ctx context.Context, stdout, stderr io.Writer, path string, opts convertOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	h, err := loadHeuristics(opts.config)
	if err != nil {
		return err
	}
	run := pipeline.RunOptions{
		Enrich:   opts.enrich,
		LinkCSS:  opts.css != "",
		Progress: func(stage string) { logger.Debug("stage", "name", stage) },
	}
	if run.LinkCSS {
		h.Emit.StylesheetHref = filepath.Base(opts.css)
	}

	res, err := convertFile(ctx, path, h, run)
	if err != nil {
		return err
	}

	if opts.output == "" {
		if _, err := io.WriteString(stdout, res.HTML); err != nil {
			return err
		}
	} else if err := writeFile(opts.output, res.HTML); err != nil {
		return err
	}
	if run.LinkCSS {
		if err := writeFile(opts.css, res.CSS); err != nil {
			return err
		}
	}

	for _, w := range res.Warnings {
		printWarning(stderr, "%s %s: %s", w.Code, w.NodeID, w.Message)
	}
	prog.done(fmt.Sprintf("Converted %s: %d nodes, %d warnings", filepath.Base(path), res.Stats.Nodes, res.Stats.Warnings))
	if opts.output != "" {
		printFile(stderr, opts.output)
	}
	if run.LinkCSS {
		printFile(stderr, opts.css)
	}
	return nil
}

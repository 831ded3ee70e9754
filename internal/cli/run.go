package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgallion1/designmark/internal/config"
	"github.com/dgallion1/designmark/internal/doctree"
	"github.com/dgallion1/designmark/internal/parser"
	"github.com/dgallion1/designmark/internal/pipeline"
	"github.com/dgallion1/designmark/internal/textgen"
)

var errNoCollaborator = errors.New("--enrich needs TEXTGEN_API_KEY or TEXTGEN_ENDPOINT")

// loadHeuristics returns the defaults, or the TOML file at path over them.
func loadHeuristics(path string) (config.Heuristics, error) {
	if path == "" {
		return config.DefaultHeuristics(), nil
	}
	return config.LoadHeuristics(path)
}

// readDocument parses the design file at path with the reader its
// extension selects.
func readDocument(path string, lim doctree.Limits) (*doctree.Document, error) {
	p, err := parser.ForFile(path, lim)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return p.Parse(f, filepath.Base(path))
}

// convertFile reads and converts one design file. With enrich, the
// collaborator is configured from the TEXTGEN_* environment, as the server
// does it.
func convertFile(ctx context.Context, path string, h config.Heuristics, opts pipeline.RunOptions) (*pipeline.Result, error) {
	log := slogFromContext(ctx)

	var completer textgen.Completer
	ec := pipeline.EnrichConfig{}
	if opts.Enrich {
		cfg := config.Load()
		if !cfg.EnrichEnabled() {
			return nil, errNoCollaborator
		}
		tg, err := textgen.NewClient(textgen.Config{
			Provider: cfg.TextgenProvider,
			Endpoint: cfg.TextgenEndpoint,
			APIKey:   cfg.TextgenAPIKey,
			Model:    cfg.TextgenModel,
			Timeout:  cfg.TextgenTimeout,
		})
		if err != nil {
			return nil, err
		}
		defer tg.Close()
		completer = tg
		ec.Concurrency = cfg.TextgenConcurrency
		ec.Timeout = cfg.TextgenTimeout
	}

	doc, err := readDocument(path, h.Limits)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	log.Debug("parsed design file", "path", path, "title", doc.Title)

	conv := pipeline.NewConverter(h, completer, ec, log)
	return conv.Convert(ctx, doc, opts)
}

package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/dgallion1/designmark/internal/classify"
	"github.com/dgallion1/designmark/internal/config"
	"github.com/dgallion1/designmark/internal/doctree"
	"github.com/dgallion1/designmark/internal/emit"
	"github.com/dgallion1/designmark/internal/geometry"
	"github.com/dgallion1/designmark/internal/synth"
	"github.com/dgallion1/designmark/internal/textgen"
)

// Stage names reported through RunOptions.Progress.
const (
	StageAnalyzing = "analyzing"
	StageEnriching = "enriching"
	StageRendering = "rendering"
)

// RunOptions are per-conversion switches.
type RunOptions struct {
	// Enrich asks the collaborator for copy. It is ignored when the
	// converter has no collaborator.
	Enrich bool
	// LinkCSS links the stylesheet instead of inlining it.
	LinkCSS bool
	// Progress, when set, is called as each stage starts.
	Progress func(stage string)
}

// Result is a finished conversion.
type Result struct {
	*emit.Output
	Stats Stats `json:"stats"`

	// Document is the fully annotated tree the markup was rendered from.
	Document *doctree.Document `json:"-"`
}

// Stats summarizes one conversion.
type Stats struct {
	Nodes           int   `json:"nodes"`
	Groups          int   `json:"groups"`
	Leaves          int   `json:"leaves"`
	Warnings        int   `json:"warnings"`
	CopyRequested   int   `json:"copy_requested"`
	CopyFilled      int   `json:"copy_filled"`
	TokensEstimated int   `json:"tokens_estimated"`
	DurationMS      int64 `json:"duration_ms"`
}

// Converter runs the four conversion stages, with optional copy enrichment
// between synthesis and emission.
type Converter struct {
	h        config.Heuristics
	enricher *Enricher
	log      *slog.Logger
}

// NewConverter creates a converter. tg may be nil, which disables
// enrichment.
func NewConverter(h config.Heuristics, tg textgen.Completer, ec EnrichConfig, log *slog.Logger) *Converter {
	c := &Converter{h: h, log: log}
	if tg != nil {
		ec.Copyfit = h.Copyfit
		ec.Limits = h.Limits
		c.enricher = NewEnricher(tg, ec, log)
	}
	return c
}

// Heuristics returns the thresholds the converter runs with.
func (c *Converter) Heuristics() config.Heuristics { return c.h }

// CanEnrich reports whether a collaborator is attached.
func (c *Converter) CanEnrich() bool { return c.enricher != nil }

// Convert turns a raw document into markup. Hard failures (cycles, limits,
// invalid input) abort; everything else is recovered and reported in the
// result's warnings.
func (c *Converter) Convert(ctx context.Context, doc *doctree.Document, opts RunOptions) (*Result, error) {
	start := time.Now()
	progress := func(stage string) {
		if opts.Progress != nil {
			opts.Progress(stage)
		}
	}
	lim := c.h.Limits

	progress(StageAnalyzing)
	analyzed, err := geometry.Analyze(doc, c.h.Geometry, lim)
	if err != nil {
		return nil, err
	}
	classified, err := classify.Classify(analyzed, c.h.Classify, lim)
	if err != nil {
		return nil, err
	}
	synthesized, err := synth.Synthesize(classified, c.h.Synth, lim)
	if err != nil {
		return nil, err
	}

	var es EnrichStats
	if opts.Enrich && c.enricher != nil {
		progress(StageEnriching)
		synthesized, es, err = c.enricher.Enrich(ctx, synthesized)
		if err != nil {
			return nil, err
		}
	}

	progress(StageRendering)
	emitOpts := c.h.Emit
	if opts.LinkCSS {
		emitOpts.InlineCSS = false
	}
	out, err := emit.Emit(synthesized, emitOpts, lim)
	if err != nil {
		return nil, err
	}

	stats := countNodes(synthesized, lim)
	stats.Warnings = len(out.Warnings)
	stats.CopyRequested = es.Requested
	stats.CopyFilled = es.Filled
	stats.TokensEstimated = es.Tokens
	stats.DurationMS = time.Since(start).Milliseconds()

	c.log.Info("conversion complete",
		"title", synthesized.Title,
		"nodes", stats.Nodes,
		"warnings", stats.Warnings,
		"copy_filled", stats.CopyFilled,
		"duration_ms", stats.DurationMS,
	)
	return &Result{Output: out, Stats: stats, Document: synthesized}, nil
}

func countNodes(doc *doctree.Document, lim doctree.Limits) Stats {
	var s Stats
	_ = doctree.Walk(doc.Root, lim, func(v doctree.Visit) error {
		s.Nodes++
		if v.Node.IsGroup() {
			s.Groups++
		} else {
			s.Leaves++
		}
		return nil
	})
	return s
}

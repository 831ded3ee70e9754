package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/designmark/internal/copyfit"
	"github.com/dgallion1/designmark/internal/doctree"
	"github.com/dgallion1/designmark/internal/errs"
	"github.com/dgallion1/designmark/internal/synth"
	"github.com/dgallion1/designmark/internal/textgen"
)

// EnrichConfig bounds copy enrichment.
type EnrichConfig struct {
	Concurrency int           // in-flight collaborator calls
	Timeout     time.Duration // per attempt
	Copyfit     copyfit.Config
	Limits      doctree.Limits
}

// EnrichStats counts what one enrichment pass did.
type EnrichStats struct {
	Requested int
	Filled    int
	Tokens    int
}

// Enricher replaces name-only text with collaborator copy. A leaf whose call
// fails keeps its name and gets a warning; no failure aborts the pass.
type Enricher struct {
	tg      textgen.Completer
	cfg     EnrichConfig
	log     *slog.Logger
	backoff func(attempt int) time.Duration
}

func NewEnricher(tg textgen.Completer, cfg EnrichConfig, log *slog.Logger) *Enricher {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &Enricher{tg: tg, cfg: cfg, log: log, backoff: Backoff}
}

type copyTarget struct {
	node *doctree.Node
	req  textgen.Request
}

type copyOutcome struct {
	text string
	err  error
}

// Enrich returns a copy of the synthesized tree doc with collaborator copy
// filled in. doc is left untouched. Warnings are attached in tree order
// whatever order the calls finish in.
func (e *Enricher) Enrich(ctx context.Context, doc *doctree.Document) (*doctree.Document, EnrichStats, error) {
	doc = doc.Clone()
	targets, err := e.collect(doc)
	if err != nil {
		return nil, EnrichStats{}, err
	}
	stats := EnrichStats{Requested: len(targets)}
	if len(targets) == 0 {
		return doc, stats, nil
	}

	results := make([]copyOutcome, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Concurrency)
	for i, t := range targets {
		g.Go(func() error {
			results[i] = e.fill(gctx, t)
			return nil
		})
	}
	_ = g.Wait()

	for i, t := range targets {
		r := results[i]
		if r.err == nil && r.text == "" {
			r.err = fmt.Errorf("%w: nothing left after fitting", textgen.ErrRejected)
		}
		if r.err != nil {
			code := errs.CodeCollaboratorFailed
			if isTimeout(r.err) {
				code = errs.CodeCollaboratorTimeout
			}
			doc.Warn(t.node.ID, code, "copy for %q: %v; kept layer name", t.node.Name, r.err)
			e.log.Warn("copy enrichment failed", "node_id", t.node.ID, "code", code, "error", r.err)
			continue
		}
		t.node.Content = &doctree.Content{
			Kind:   doctree.ContentText,
			Text:   r.text,
			Source: doctree.SourceCollaborator,
		}
		stats.Filled++
		stats.Tokens += copyfit.EstimateTokens(r.text)
	}

	e.log.Info("copy enrichment complete",
		"requested", stats.Requested,
		"filled", stats.Filled,
		"tokens_estimated", stats.Tokens,
	)
	return doc, stats, nil
}

// collect finds the leaves that only carry their name, with the chain of
// ancestors that locates them on the page.
func (e *Enricher) collect(doc *doctree.Document) ([]copyTarget, error) {
	var targets []copyTarget
	trail := make(map[*doctree.Node][]string)
	err := doctree.Walk(doc.Root, e.cfg.Limits, func(v doctree.Visit) error {
		n := v.Node
		if !n.Participates() {
			return doctree.SkipChildren
		}
		var path []string
		if v.Parent != nil {
			path = trail[v.Parent]
			if v.Parent != doc.Root {
				path = append(slices.Clip(path), locationLabel(v.Parent))
			}
		}
		if n.IsGroup() {
			trail[n] = path
			return nil
		}
		if synth.NeedsCopy(n) {
			targets = append(targets, copyTarget{
				node: n,
				req: textgen.Request{
					NodeID:   n.ID,
					Name:     n.Name,
					Role:     n.Role,
					Title:    doc.Title,
					Context:  path,
					MaxWords: copyfit.WordBudget(n.BBox, e.cfg.Copyfit),
				},
			})
		}
		return nil
	})
	return targets, err
}

func locationLabel(n *doctree.Node) string {
	if n.Role == doctree.RoleUnset || n.Role == doctree.RoleGeneric {
		return n.Name
	}
	return fmt.Sprintf("%s: %s", n.Role, n.Name)
}

// fill asks for copy for one leaf, retrying transient failures.
func (e *Enricher) fill(ctx context.Context, t copyTarget) copyOutcome {
	var raw string
	var err error
	for attempt := range MaxRetries {
		callCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
		raw, err = e.tg.Complete(callCtx, t.req)
		cancel()
		if err == nil || !IsRetryable(err) || attempt == MaxRetries-1 {
			break
		}
		e.log.Warn("retryable completion error", "node_id", t.node.ID, "attempt", attempt, "error", err)
		select {
		case <-time.After(e.backoff(attempt)):
		case <-ctx.Done():
			return copyOutcome{err: ctx.Err()}
		}
	}
	if err != nil {
		return copyOutcome{err: err}
	}
	text, err := textgen.Clean(raw)
	if err != nil {
		return copyOutcome{err: err}
	}
	return copyOutcome{text: copyfit.Fit(text, t.node.BBox, e.cfg.Copyfit)}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}

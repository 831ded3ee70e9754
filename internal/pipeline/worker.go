package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/designmark/internal/errs"
	"github.com/dgallion1/designmark/internal/parser"
)

// Worker processes a single conversion job.
type Worker struct {
	conv *Converter
	log  *slog.Logger
}

func NewWorker(conv *Converter, log *slog.Logger) *Worker {
	return &Worker{conv: conv, log: log}
}

// Process parses the upload and runs the conversion for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename, w.conv.Heuristics().Limits)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	doc, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err, "code", errs.GetCode(err))
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	log.Info("parsed design", "title", doc.Title, "width", doc.Width, "height", doc.Height)

	// Phase 2: Convert, reporting each stage on the job.
	phase := "parsing"
	res, err := w.conv.Convert(ctx, doc, RunOptions{
		Enrich:  job.Enrich,
		LinkCSS: job.LinkCSS,
		Progress: func(stage string) {
			phase = stage
			job.SetStatus(stageStatus(stage), stage)
		},
	})
	if err != nil {
		log.Error("conversion failed", "phase", phase, "error", err, "code", errs.GetCode(err))
		job.AddError(fmt.Sprintf("%s: %s", phase, err))
		job.SetStatus(StatusFailed, phase)
		return
	}

	job.Complete(res)
	log.Info("job complete", "nodes", res.Stats.Nodes, "warnings", res.Stats.Warnings)
}

func stageStatus(stage string) JobStatus {
	switch stage {
	case StageAnalyzing:
		return StatusAnalyzing
	case StageEnriching:
		return StatusEnriching
	default:
		return StatusRendering
	}
}

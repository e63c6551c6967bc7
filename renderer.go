package weasyreport

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Compile-time interface checks.
var (
	_ Renderer = (*AlternateRenderer)(nil)
	_ Renderer = (*WkhtmltopdfRenderer)(nil)
)

// AlternateRenderer renders reports with the paged-media engine: one
// assembled document per body, merged in input order.
type AlternateRenderer struct {
	engine  Engine
	merger  Merger
	logger  *zap.Logger
	workers int
}

// NewAlternateRenderer creates an AlternateRenderer that renders one body at
// a time. A nil merger defaults to the pdfcpu merger; a nil logger discards
// output.
func NewAlternateRenderer(engine Engine, merger Merger, logger *zap.Logger) *AlternateRenderer {
	if merger == nil {
		merger = NewPDFCPUMerger()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlternateRenderer{engine: engine, merger: merger, logger: logger, workers: 1}
}

// WithWorkers returns a copy rendering up to n bodies concurrently.
// Values below one mean one.
func (a *AlternateRenderer) WithWorkers(n int) *AlternateRenderer {
	c := *a
	c.workers = max(n, MinPoolSize)
	return &c
}

// Render assembles and renders every body of req.
// Any body failure aborts the whole call with a *UserError; bodies rendered
// before it are discarded and bodies not yet started are skipped.
func (a *AlternateRenderer) Render(ctx context.Context, req *Request) ([]byte, error) {
	if req == nil {
		return nil, ErrNilRequest
	}
	if len(req.Bodies) == 0 {
		return []byte{}, nil
	}

	baseURL := strings.TrimSpace(req.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	paper := req.paper()
	start := time.Now()

	docs := make([]*Document, len(req.Bodies))
	errs := make([]error, len(req.Bodies))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, body := range req.Bodies {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				errs[i] = err
				return err
			}
			doc, err := a.engine.Render(gctx, Assemble(body, req.Header, req.Footer, paper), baseURL)
			if err != nil {
				errs[i] = siblingCanceled(gctx, err)
				return err
			}
			docs[i] = doc
			return nil
		})
	}

	if g.Wait() != nil {
		i, err := firstFailure(errs)
		a.logger.Error("paged-media rendering failed",
			zap.String("report", req.ReportRef),
			zap.Int("body", i),
			zap.Int("bodies", len(req.Bodies)),
			zap.String("base_url", baseURL),
			zap.Error(err))
		return nil, newUserError(req.ReportRef, i, err)
	}

	var pdf []byte
	if len(docs) == 1 {
		pdf = docs[0].PDF
	} else {
		merged, err := a.merger.Merge(ctx, docs)
		if err != nil {
			a.logger.Error("merging rendered documents failed",
				zap.String("report", req.ReportRef),
				zap.Int("documents", len(docs)),
				zap.Error(err))
			return nil, newUserError(req.ReportRef, len(docs)-1, err)
		}
		pdf = merged
	}

	a.logger.Info("report rendered",
		zap.String("report", req.ReportRef),
		zap.String("backend", string(BackendAlternate)),
		zap.Int("documents", len(docs)),
		zap.Int("workers", a.workers),
		zap.Bool("merged", len(docs) > 1),
		zap.Int("bytes", len(pdf)),
		zap.Duration("duration", time.Since(start)))

	return pdf, nil
}

// siblingCanceled marks err as a cancellation when gctx had already ended,
// even if the engine flattened the context error into its own message.
func siblingCanceled(gctx context.Context, err error) error {
	ctxErr := gctx.Err()
	if ctxErr == nil || errors.Is(err, ctxErr) {
		return err
	}
	return fmt.Errorf("%w: %w", ctxErr, err)
}

// firstFailure picks the lowest-index engine failure. Cancellations caused by
// a sibling failing are skipped unless nothing else failed.
func firstFailure(errs []error) (int, error) {
	fallback := -1
	for i, err := range errs {
		if err == nil {
			continue
		}
		if !errors.Is(err, context.Canceled) {
			return i, err
		}
		if fallback < 0 {
			fallback = i
		}
	}
	if fallback < 0 {
		return 0, context.Canceled
	}
	return fallback, errs[fallback]
}

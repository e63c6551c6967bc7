package weasyreport

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/alnah/go-weasyreport/internal/paramstore"
)

// Reporter is the entry point called by the host's report pipeline. It
// picks a backend per call and is a drop-in layer in front of the original
// renderer.
type Reporter struct {
	store     ParamStore
	engine    Engine
	merger    Merger
	fallback  Renderer
	resolver  ModuleResolver
	logger    *zap.Logger
	workers   int
	alternate *AlternateRenderer
}

// NewReporter creates a Reporter.
//
// Without WithEngine (or with a nil engine) the paged-media engine is treated
// as unavailable: a warning is logged once here and every call falls back.
// Without WithParamStore all settings take their defaults.
func NewReporter(opts ...Option) (*Reporter, error) {
	r := &Reporter{
		resolver: PrefixResolver{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.store == nil {
		r.store = paramstore.NewMemory(nil)
	}
	if r.engine != nil {
		r.alternate = NewAlternateRenderer(r.engine, r.merger, r.logger).WithWorkers(r.workers)
	} else {
		r.logger.Warn("paged-media engine not available, all reports use the original renderer")
	}
	if r.alternate == nil && r.fallback == nil {
		return nil, errors.Join(ErrEngineUnavailable, ErrNoFallback)
	}

	return r, nil
}

// Render produces the PDF for req with the selected backend.
//
// The fallback receives req unchanged. The alternate receives a copy whose
// BaseURL is resolved from the settings when the caller left it blank.
func (r *Reporter) Render(ctx context.Context, req *Request) ([]byte, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	settings, err := LoadSettings(ctx, r.store)
	if err != nil {
		return nil, err
	}

	backend := r.selectBackend(ctx, req.ReportRef, settings)
	if backend == BackendFallback {
		if r.fallback == nil {
			return nil, ErrNoFallback
		}
		return r.fallback.Render(ctx, req)
	}

	resolved := *req
	if strings.TrimSpace(resolved.BaseURL) == "" {
		resolved.BaseURL = settings.ResolveBaseURL()
	}
	return r.alternate.Render(ctx, &resolved)
}

// Backend reports which backend would render reportRef with the current
// settings.
func (r *Reporter) Backend(ctx context.Context, reportRef string) (Backend, error) {
	settings, err := LoadSettings(ctx, r.store)
	if err != nil {
		return "", err
	}
	return r.selectBackend(ctx, reportRef, settings), nil
}

// selectBackend applies engine availability and the selector.
func (r *Reporter) selectBackend(ctx context.Context, reportRef string, settings *Settings) Backend {
	if r.alternate == nil {
		return BackendFallback
	}

	module := resolveModule(ctx, r.resolver, reportRef)
	backend := BackendFallback
	if settings.UseAlternate(module) {
		backend = BackendAlternate
	}

	r.logger.Debug("backend selected",
		zap.String("report", reportRef),
		zap.String("module", module),
		zap.Bool("enabled", settings.Enabled),
		zap.String("backend", string(backend)))
	return backend
}

// Close releases the engine and the fallback when they hold resources.
func (r *Reporter) Close() error {
	var errs []error
	if r.engine != nil {
		if err := r.engine.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if c, ok := r.fallback.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

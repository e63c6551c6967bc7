package weasyreport

import (
	"context"

	"go.uber.org/zap"
)

// Request is one report-render call from the host's report pipeline.
type Request struct {
	ReportRef string      // report identifier, e.g. "sale.report_saleorder"
	Bodies    []string    // already-rendered HTML body fragments, one document each
	Header    string      // optional header fragment
	Footer    string      // optional footer fragment
	Landscape bool        // orientation flag from the report action
	Paper     PaperFormat // margins and explicit page size
	BaseURL   string      // base for relative assets (empty = DefaultBaseURL)
}

// paper returns the paper format with the request's orientation applied.
func (r *Request) paper() PaperFormat {
	p := r.Paper
	p.Landscape = p.Landscape || r.Landscape
	return p
}

// Renderer is the contract shared by the alternate and fallback backends.
type Renderer interface {
	Render(ctx context.Context, req *Request) ([]byte, error)
}

// Document is the output of one engine invocation.
type Document struct {
	PDF []byte
}

// Engine renders one self-contained HTML document. baseURL resolves
// relative asset references such as images and fonts.
type Engine interface {
	Render(ctx context.Context, html, baseURL string) (*Document, error)
	Close() error
}

// Merger concatenates the pages of several documents, in order, into one PDF.
type Merger interface {
	Merge(ctx context.Context, docs []*Document) ([]byte, error)
}

// Backend identifies which renderer handles a report.
type Backend string

// Backend values.
const (
	BackendAlternate Backend = "weasyprint"
	BackendFallback  Backend = "wkhtmltopdf"
)

// Option configures a Reporter.
type Option func(*Reporter)

// WithParamStore sets the parameter store read on every render call.
func WithParamStore(store ParamStore) Option {
	return func(r *Reporter) {
		r.store = store
	}
}

// WithEngine sets the paged-media engine. A nil engine means the engine is
// unavailable and every call falls back.
func WithEngine(engine Engine) Option {
	return func(r *Reporter) {
		r.engine = engine
	}
}

// WithMerger sets the merger used for multi-body reports.
func WithMerger(m Merger) Option {
	return func(r *Reporter) {
		r.merger = m
	}
}

// WithFallback sets the original renderer.
func WithFallback(fallback Renderer) Option {
	return func(r *Reporter) {
		r.fallback = fallback
	}
}

// WithModuleResolver sets how report references map to modules.
func WithModuleResolver(resolver ModuleResolver) Option {
	return func(r *Reporter) {
		r.resolver = resolver
	}
}

// WithWorkers sets how many bodies of one request render concurrently
// (default 1). Engines that serialize their own work need an EnginePool of
// the same size to benefit.
func WithWorkers(n int) Option {
	return func(r *Reporter) {
		r.workers = n
	}
}

// WithLogger sets the logger. Panics if logger is nil (programmer error).
func WithLogger(logger *zap.Logger) Option {
	if logger == nil {
		panic("weasyreport: WithLogger logger must not be nil")
	}
	return func(r *Reporter) {
		r.logger = logger
	}
}

package weasyreport

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps automatic sizing. Each Chrome instance costs ~200MB.
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for engine child processes.
	cpuDivisor = 2
)

// ErrPoolClosed is returned when rendering through a closed EnginePool.
var ErrPoolClosed = errors.New("engine pool is closed")

// Compile-time interface check.
var _ Engine = (*EnginePool)(nil)

// EngineFactory creates one engine instance for an EnginePool.
type EngineFactory func() (Engine, error)

// EnginePool spreads renders over up to size engine instances, so that
// engines serializing their own work (one browser per ChromeEngine) can
// render several documents at once. Engines are created lazily on first
// acquire to avoid startup delay.
type EnginePool struct {
	size    int
	factory EngineFactory
	engines []Engine
	idle    chan Engine
	mu      sync.Mutex
	created int
	closed  bool
}

// NewEnginePool creates a pool with capacity for n engines.
func NewEnginePool(n int, factory EngineFactory) *EnginePool {
	if n < MinPoolSize {
		n = MinPoolSize
	}
	return &EnginePool{
		size:    n,
		factory: factory,
		engines: make([]Engine, 0, n),
		idle:    make(chan Engine, n),
	}
}

// acquire gets an idle engine, creating one if the pool is not full.
// Blocks until an engine is released or ctx is done.
func (p *EnginePool) acquire(ctx context.Context) (Engine, error) {
	select {
	case e, ok := <-p.idle:
		return p.checkout(e, ok)
	default:
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		e, err := p.factory()
		if err != nil {
			p.mu.Lock()
			p.created--
			p.mu.Unlock()
			return nil, err
		}

		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			_ = e.Close()
			return nil, ErrPoolClosed
		}
		p.engines = append(p.engines, e)
		p.mu.Unlock()
		return e, nil
	}
	p.mu.Unlock()

	select {
	case e, ok := <-p.idle:
		return p.checkout(e, ok)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// checkout validates an engine received from idle. Engines still buffered
// when the pool closes have already been closed and must not be handed out.
func (p *EnginePool) checkout(e Engine, ok bool) (Engine, error) {
	if !ok {
		return nil, ErrPoolClosed
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrPoolClosed
	}
	return e, nil
}

// release returns an engine to the pool. The channel has room for every
// engine the pool creates, so the send never blocks.
func (p *EnginePool) release(e Engine) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.idle <- e
	}
}

// Render renders html on the next available engine.
func (p *EnginePool) Render(ctx context.Context, html, baseURL string) (*Document, error) {
	e, err := p.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer p.release(e)
	return e.Render(ctx, html, baseURL)
}

// Close closes every engine the pool created.
func (p *EnginePool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.idle)
	// Drop buffered engines; every engine is closed below.
	for range p.idle {
	}
	engines := p.engines
	p.mu.Unlock()

	var errs []error
	for _, e := range engines {
		if err := e.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *EnginePool) Size() int {
	return p.size
}

// ResolvePoolSize determines how many documents render at once.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is container-aware once automaxprocs has run.
	n := runtime.GOMAXPROCS(0) / cpuDivisor
	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}

package weasyreport

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// TestResolvePoolSize - Pool sizing
// ---------------------------------------------------------------------------

func TestResolvePoolSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{"explicit 1", 1, 1},
		{"explicit 4", 4, 4},
		{"explicit above max is kept", 12, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ResolvePoolSize(tt.workers); got != tt.want {
				t.Errorf("ResolvePoolSize(%d) = %d, want %d", tt.workers, got, tt.want)
			}
		})
	}
}

func TestResolvePoolSize_Auto(t *testing.T) {
	t.Parallel()

	want := runtime.GOMAXPROCS(0) / cpuDivisor
	want = max(MinPoolSize, min(want, MaxPoolSize))

	for _, workers := range []int{0, -1} {
		if got := ResolvePoolSize(workers); got != want {
			t.Errorf("ResolvePoolSize(%d) = %d, want %d", workers, got, want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestEnginePool - Lazy creation, reuse and shutdown
// ---------------------------------------------------------------------------

// countingFactory records every engine it creates.
type countingFactory struct {
	mu      sync.Mutex
	engines []*fakeEngine
	err     error
	block   chan struct{}
}

func (f *countingFactory) create() (Engine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	e := &fakeEngine{block: f.block}
	f.engines = append(f.engines, e)
	return e, nil
}

func (f *countingFactory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.engines)
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestNewEnginePool_MinimumSize(t *testing.T) {
	t.Parallel()

	f := &countingFactory{}
	for _, n := range []int{0, -3} {
		if got := NewEnginePool(n, f.create).Size(); got != MinPoolSize {
			t.Errorf("NewEnginePool(%d).Size() = %d, want %d", n, got, MinPoolSize)
		}
	}
	if f.count() != 0 {
		t.Error("engines should be created lazily")
	}
}

func TestEnginePool_ReusesEngines(t *testing.T) {
	t.Parallel()

	f := &countingFactory{}
	pool := NewEnginePool(3, f.create)
	defer pool.Close()

	for i := range 5 {
		doc, err := pool.Render(context.Background(), bodies(5)[i], "")
		if err != nil {
			t.Fatal(err)
		}
		if string(doc.PDF) == "" {
			t.Fatal("empty document")
		}
	}
	if f.count() != 1 {
		t.Errorf("sequential renders created %d engines, want 1", f.count())
	}
}

func TestEnginePool_GrowsToSize(t *testing.T) {
	t.Parallel()

	f := &countingFactory{block: make(chan struct{})}
	pool := NewEnginePool(2, f.create)
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := pool.Render(ctx, bodies(4)[i], "")
			errs <- err
		}()
	}

	// Nothing completes until unblocked, so two engines must be created.
	waitFor(t, "two engines", func() bool { return f.count() == 2 })
	for range 4 {
		f.block <- struct{}{}
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("render error = %v", err)
		}
	}
	if f.count() != 2 {
		t.Errorf("created %d engines, want 2", f.count())
	}
}

func TestEnginePool_AcquireHonorsContext(t *testing.T) {
	t.Parallel()

	f := &countingFactory{block: make(chan struct{})}
	pool := NewEnginePool(1, f.create)
	defer pool.Close()

	busy := make(chan error, 1)
	go func() {
		_, err := pool.Render(context.Background(), "<p>busy</p>", "")
		busy <- err
	}()

	waitFor(t, "the only engine to be taken", func() bool { return f.count() == 1 })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := pool.Render(ctx, "<p>waiting</p>", ""); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want context.DeadlineExceeded", err)
	}

	f.block <- struct{}{}
	if err := <-busy; err != nil {
		t.Errorf("busy render error = %v", err)
	}
}

func TestEnginePool_FactoryErrorFreesSlot(t *testing.T) {
	t.Parallel()

	f := &countingFactory{err: errors.New("chrome not found")}
	pool := NewEnginePool(1, f.create)
	defer pool.Close()

	if _, err := pool.Render(context.Background(), "<p>x</p>", ""); err == nil {
		t.Fatal("expected factory error")
	}

	f.mu.Lock()
	f.err = nil
	f.mu.Unlock()

	if _, err := pool.Render(context.Background(), "<p>x</p>", ""); err != nil {
		t.Errorf("render after factory recovered: %v", err)
	}
}

func TestEnginePool_Close(t *testing.T) {
	t.Parallel()

	f := &countingFactory{}
	pool := NewEnginePool(2, f.create)

	if _, err := pool.Render(context.Background(), "<p>x</p>", ""); err != nil {
		t.Fatal(err)
	}
	if err := pool.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := pool.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	for _, e := range f.engines {
		if e.closed.Load() != 1 {
			t.Errorf("engine closed %d times, want 1", e.closed.Load())
		}
	}
	if _, err := pool.Render(context.Background(), "<p>x</p>", ""); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("error = %v, want ErrPoolClosed", err)
	}
}

func TestEnginePool_ClosedEnginesNotReused(t *testing.T) {
	t.Parallel()

	f := &countingFactory{}
	pool := NewEnginePool(2, f.create)

	if _, err := pool.Render(context.Background(), "<p>x</p>", ""); err != nil {
		t.Fatal(err)
	}
	if err := pool.Close(); err != nil {
		t.Fatal(err)
	}

	for range 3 {
		if _, err := pool.Render(context.Background(), "<p>x</p>", ""); !errors.Is(err, ErrPoolClosed) {
			t.Fatalf("error = %v, want ErrPoolClosed", err)
		}
	}
	if f.count() != 1 || f.engines[0].calls.Load() != 1 {
		t.Errorf("created %d engines, first rendered %d times; want 1 and 1",
			f.count(), f.engines[0].calls.Load())
	}
}

func TestEnginePool_checkout(t *testing.T) {
	t.Parallel()

	pool := NewEnginePool(1, (&countingFactory{}).create)
	e := &fakeEngine{}

	if got, err := pool.checkout(e, true); err != nil || got != e {
		t.Errorf("checkout on open pool = (%v, %v)", got, err)
	}
	if _, err := pool.checkout(nil, false); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("checkout on closed channel error = %v, want ErrPoolClosed", err)
	}

	// An engine received just before Close finished must not be handed out.
	pool.mu.Lock()
	pool.closed = true
	pool.mu.Unlock()
	if _, err := pool.checkout(e, true); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("checkout after close error = %v, want ErrPoolClosed", err)
	}
}

package weasyreport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/alnah/go-weasyreport/internal/paramstore"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Fake engine, merger, renderer and store
// ---------------------------------------------------------------------------

// fakeEngine returns "%PDF <marker>" for each document, where marker is the
// text between <p> and </p> in the body. Bodies containing "FAIL" fail.
type fakeEngine struct {
	mu       sync.Mutex
	html     []string
	baseURLs []string
	calls    atomic.Int32
	closed   atomic.Int32
	err      error
	inflight atomic.Int32
	peak     atomic.Int32
	block    chan struct{} // when set, each render waits for a receive
}

func (e *fakeEngine) Render(ctx context.Context, html, baseURL string) (*Document, error) {
	e.calls.Add(1)
	n := e.inflight.Add(1)
	defer e.inflight.Add(-1)
	for {
		p := e.peak.Load()
		if n <= p || e.peak.CompareAndSwap(p, n) {
			break
		}
	}

	if e.block != nil {
		select {
		case <-e.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	e.mu.Lock()
	e.html = append(e.html, html)
	e.baseURLs = append(e.baseURLs, baseURL)
	e.mu.Unlock()

	if e.err != nil {
		return nil, e.err
	}
	if strings.Contains(html, "FAIL") {
		return nil, &EngineError{Engine: "fake", Stderr: "unsupported markup", Err: errors.New("exit status 1")}
	}
	return &Document{PDF: []byte("%PDF " + marker(html))}, nil
}

func (e *fakeEngine) Close() error {
	e.closed.Add(1)
	return nil
}

// marker extracts the first <p> text of a document.
func marker(html string) string {
	_, rest, ok := strings.Cut(html, "<p>")
	if !ok {
		return ""
	}
	m, _, _ := strings.Cut(rest, "</p>")
	return m
}

// joinMerger concatenates document markers with "|".
type joinMerger struct {
	calls int
	err   error
}

func (m *joinMerger) Merge(_ context.Context, docs []*Document) ([]byte, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	parts := make([][]byte, len(docs))
	for i, d := range docs {
		parts[i] = d.PDF
	}
	return bytes.Join(parts, []byte("|")), nil
}

// fakeRenderer stands in for the original renderer.
type fakeRenderer struct {
	reqs   []*Request
	closed bool
}

func (r *fakeRenderer) Render(_ context.Context, req *Request) ([]byte, error) {
	r.reqs = append(r.reqs, req)
	return []byte("%PDF legacy"), nil
}

func (r *fakeRenderer) Close() error {
	r.closed = true
	return nil
}

// failingStore fails every read and write.
type failingStore struct{}

func (failingStore) GetParam(context.Context, string) (string, bool, error) {
	return "", false, errors.New("database is locked")
}

func (failingStore) SetParam(context.Context, string, string) error {
	return errors.New("database is locked")
}

// newStore returns an in-memory store seeded with params.
func newStore(params map[string]string) *paramstore.Memory {
	return paramstore.NewMemory(params)
}

// bodies returns n bodies "<p>b0</p>", "<p>b1</p>", ...
func bodies(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("<p>b%d</p>", i)
	}
	return out
}

func mustContain(t *testing.T, s string, wants ...string) {
	t.Helper()
	for _, w := range wants {
		if !strings.Contains(s, w) {
			t.Errorf("missing %q in:\n%s", w, s)
		}
	}
}

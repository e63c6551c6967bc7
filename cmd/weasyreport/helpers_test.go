package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"go.uber.org/zap"

	weasyreport "github.com/alnah/go-weasyreport"
	"github.com/alnah/go-weasyreport/internal/config"
	"github.com/alnah/go-weasyreport/internal/paramstore"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Fake backends and environment
// ---------------------------------------------------------------------------

// fakeEngine records every document it renders.
type fakeEngine struct {
	mu       sync.Mutex
	html     []string
	baseURLs []string
	err      error
}

func (e *fakeEngine) Render(_ context.Context, html, baseURL string) (*weasyreport.Document, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return nil, e.err
	}
	e.html = append(e.html, html)
	e.baseURLs = append(e.baseURLs, baseURL)
	return &weasyreport.Document{PDF: []byte("%PDF-1.7 weasyprint")}, nil
}

func (e *fakeEngine) Close() error { return nil }

// fakeFallback records the requests it receives.
type fakeFallback struct {
	mu   sync.Mutex
	reqs []*weasyreport.Request
}

func (f *fakeFallback) Render(_ context.Context, req *weasyreport.Request) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	return []byte("%PDF-1.4 wkhtmltopdf"), nil
}

// testEnv is an Environment backed by buffers, a temp parameter store and
// fake backends.
type testEnv struct {
	*Environment
	stdout, stderr *bytes.Buffer
	vars           map[string]string
	engine         *fakeEngine
	fallback       *fakeFallback
	dir            string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	te := &testEnv{
		stdout:   &bytes.Buffer{},
		stderr:   &bytes.Buffer{},
		engine:   &fakeEngine{},
		fallback: &fakeFallback{},
		dir:      dir,
		vars: map[string]string{
			config.EnvStore: filepath.Join(dir, "params.db"),
		},
	}
	te.Environment = &Environment{
		Stdout: te.stdout,
		Stderr: te.stderr,
		Getenv: func(k string) string { return te.vars[k] },
		Backends: func(*config.Config, *zap.Logger) (weasyreport.Engine, weasyreport.Renderer) {
			var engine weasyreport.Engine
			if te.engine != nil {
				engine = te.engine
			}
			var fallback weasyreport.Renderer
			if te.fallback != nil {
				fallback = te.fallback
			}
			return engine, fallback
		},
	}
	return te
}

// seed writes parameters straight into the test store.
func (te *testEnv) seed(t *testing.T, params map[string]string) {
	t.Helper()
	store, err := paramstore.OpenSQLite(te.vars[config.EnvStore], paramstore.DefaultOptions())
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	defer store.Close()
	for k, v := range params {
		if err := store.SetParam(context.Background(), k, v); err != nil {
			t.Fatalf("seeding %s: %v", k, err)
		}
	}
}

// file writes content under the env's temp dir and returns its path.
func (te *testEnv) file(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(te.dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func (te *testEnv) run(args ...string) int {
	return runMain(append([]string{"weasyreport"}, args...), te.Environment)
}

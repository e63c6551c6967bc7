package weasyreport

import (
	"context"
	"errors"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// TestInjectBaseHref - Relative asset resolution in Chrome
// ---------------------------------------------------------------------------

func TestInjectBaseHref(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		doc     string
		baseURL string
		want    string
	}{
		{
			name: "no base url",
			doc:  "<html><head></head></html>",
			want: "<html><head></head></html>",
		},
		{
			name:    "inserted after head",
			doc:     "<html><head><title>x</title></head></html>",
			baseURL: "http://127.0.0.1:8069",
			want:    `<html><head><base href="http://127.0.0.1:8069/"><title>x</title></head></html>`,
		},
		{
			name:    "trailing slash kept single",
			doc:     "<HEAD></HEAD>",
			baseURL: "https://erp.example.com/",
			want:    `<HEAD><base href="https://erp.example.com/"></HEAD>`,
		},
		{
			name:    "no head element",
			doc:     "<p>x</p>",
			baseURL: "http://h",
			want:    `<base href="http://h/"><p>x</p>`,
		},
		{
			name:    "attribute escaped",
			doc:     "<head></head>",
			baseURL: `http://h/?a="b"`,
			want:    `<head><base href="http://h/?a=&#34;b&#34;/"></head>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := injectBaseHref(tt.doc, tt.baseURL); got != tt.want {
				t.Errorf("injectBaseHref() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestNewChromeEngine - Configuration defaults
// ---------------------------------------------------------------------------

func TestNewChromeEngine_Defaults(t *testing.T) {
	t.Parallel()

	e := NewChromeEngine(nil)
	if e.cfg.LoadTimeout != defaultChromeTimeout {
		t.Errorf("LoadTimeout = %v, want %v", e.cfg.LoadTimeout, defaultChromeTimeout)
	}
	if e.logger == nil {
		t.Error("logger should default to a no-op logger")
	}
	if err := e.Close(); err != nil {
		t.Errorf("Close() before any render = %v", err)
	}

	custom := NewChromeEngine(&ChromeConfig{LoadTimeout: 5 * time.Second})
	if custom.cfg.LoadTimeout != 5*time.Second {
		t.Errorf("LoadTimeout = %v, want 5s", custom.cfg.LoadTimeout)
	}
}

// ---------------------------------------------------------------------------
// TestPageError - Cancellation versus engine failure
// ---------------------------------------------------------------------------

func TestPageError(t *testing.T) {
	t.Parallel()

	cause := errors.New("navigation failed: net::ERR_FILE_NOT_FOUND")
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name     string
		ctx      context.Context
		sentinel error
		want     []error
		notWant  error
	}{
		{
			name:     "live context keeps sentinel and cause",
			ctx:      context.Background(),
			sentinel: ErrPageLoad,
			want:     []error{ErrPageLoad, cause},
			notWant:  context.Canceled,
		},
		{
			name:     "ended context reports cancellation",
			ctx:      canceled,
			sentinel: ErrPageLoad,
			want:     []error{context.Canceled},
			notWant:  ErrPageLoad,
		},
		{
			name:    "no sentinel is an engine error",
			ctx:     context.Background(),
			want:    []error{cause},
			notWant: context.Canceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := pageError(tt.ctx, tt.sentinel, cause)
			for _, w := range tt.want {
				if !errors.Is(err, w) {
					t.Errorf("error %v should match %v", err, w)
				}
			}
			if errors.Is(err, tt.notWant) {
				t.Errorf("error %v should not match %v", err, tt.notWant)
			}
		})
	}

	var ee *EngineError
	if !errors.As(pageError(context.Background(), nil, cause), &ee) || ee.Engine != "chrome" {
		t.Error("nil sentinel should produce a chrome EngineError")
	}
}

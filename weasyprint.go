package weasyreport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/alnah/go-weasyreport/internal/process"
)

const defaultWeasyPrintBinary = "weasyprint"

// Compile-time interface check.
var _ Engine = (*WeasyPrintEngine)(nil)

// EngineError is a failed engine invocation. Stderr carries the engine's own
// diagnostics, which are usually the useful part for the end user.
type EngineError struct {
	Engine string
	Stderr string
	Err    error
}

func (e *EngineError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("%s: %v", e.Engine, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Engine, e.Err, msg)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// WeasyPrintConfig configures the WeasyPrint engine.
type WeasyPrintConfig struct {
	// BinaryPath is the weasyprint executable. Empty searches PATH.
	BinaryPath string
	// PresentationalHints honors HTML presentational attributes (width=, align=).
	PresentationalHints bool
	// Logger for debug output. Nil discards.
	Logger *zap.Logger
}

// WeasyPrintEngine renders HTML through the weasyprint command line,
// streaming the document on stdin and reading the PDF from stdout.
type WeasyPrintEngine struct {
	binary string
	hints  bool
	logger *zap.Logger
}

// NewWeasyPrintEngine locates the weasyprint binary. It returns an error
// wrapping ErrEngineUnavailable when the binary cannot be found, so callers
// can fall back to the original renderer.
func NewWeasyPrintEngine(cfg *WeasyPrintConfig) (*WeasyPrintEngine, error) {
	if cfg == nil {
		cfg = &WeasyPrintConfig{}
	}

	bin := cfg.BinaryPath
	if bin == "" {
		bin = defaultWeasyPrintBinary
	}
	resolved, err := resolveBinaryPath(bin)
	if err != nil {
		return nil, fmt.Errorf("%w: weasyprint binary %q: %v", ErrEngineUnavailable, bin, err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &WeasyPrintEngine{
		binary: resolved,
		hints:  cfg.PresentationalHints,
		logger: logger,
	}, nil
}

// resolveBinaryPath checks absolute paths exist and searches PATH otherwise.
func resolveBinaryPath(path string) (string, error) {
	if filepath.IsAbs(path) {
		if _, err := os.Stat(path); err != nil {
			return "", err
		}
		return path, nil
	}
	return exec.LookPath(path)
}

// Render runs weasyprint on html. The context bounds the subprocess.
func (e *WeasyPrintEngine) Render(ctx context.Context, html, baseURL string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	args := e.buildArgs(baseURL)
	e.logger.Debug("executing weasyprint",
		zap.String("binary", e.binary),
		zap.Strings("args", args),
		zap.Int("html_bytes", len(html)))

	cmd := exec.CommandContext(ctx, e.binary, args...) // #nosec G204 -- binary resolved at construction
	process.StartInGroup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdin = strings.NewReader(html)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &EngineError{Engine: "weasyprint", Stderr: stderr.String(), Err: err}
	}

	pdf := stdout.Bytes()
	if len(pdf) == 0 {
		return nil, &EngineError{Engine: "weasyprint", Stderr: stderr.String(), Err: errors.New("empty output")}
	}
	return &Document{PDF: pdf}, nil
}

// buildArgs constructs the weasyprint command line: stdin to stdout.
func (e *WeasyPrintEngine) buildArgs(baseURL string) []string {
	args := []string{"--encoding", "utf-8"}
	if baseURL != "" {
		args = append(args, "--base-url", baseURL)
	}
	if e.hints {
		args = append(args, "--presentational-hints")
	}
	return append(args, "-", "-")
}

// Close is a no-op: each render is its own process.
func (e *WeasyPrintEngine) Close() error {
	return nil
}

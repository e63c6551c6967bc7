package weasyreport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-weasyreport/internal/fileutil"
	"github.com/alnah/go-weasyreport/internal/process"
)

const (
	defaultWkhtmltopdfBinary = "wkhtmltopdf"
	defaultDPI               = 96
)

// WkhtmltopdfConfig configures the original Webkit renderer.
type WkhtmltopdfConfig struct {
	// BinaryPath is the wkhtmltopdf executable. Empty searches PATH.
	BinaryPath string
	// TempDir holds the body, header and footer files during a render.
	TempDir string
	// DPI for rendering (default: 96).
	DPI int
	// Logger for debug output. Nil discards.
	Logger *zap.Logger
}

// WkhtmltopdfRenderer is the original renderer: all bodies go to a single
// wkhtmltopdf invocation, with header and footer as separate HTML files.
type WkhtmltopdfRenderer struct {
	cfg    WkhtmltopdfConfig
	logger *zap.Logger
}

// NewWkhtmltopdfRenderer locates the wkhtmltopdf binary.
func NewWkhtmltopdfRenderer(cfg *WkhtmltopdfConfig) (*WkhtmltopdfRenderer, error) {
	c := WkhtmltopdfConfig{}
	if cfg != nil {
		c = *cfg
	}
	if c.BinaryPath == "" {
		c.BinaryPath = defaultWkhtmltopdfBinary
	}
	if c.TempDir == "" {
		c.TempDir = os.TempDir()
	}
	if c.DPI <= 0 {
		c.DPI = defaultDPI
	}

	resolved, err := resolveBinaryPath(c.BinaryPath)
	if err != nil {
		return nil, fmt.Errorf("%w: wkhtmltopdf binary %q: %v", ErrEngineUnavailable, c.BinaryPath, err)
	}
	c.BinaryPath = resolved

	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WkhtmltopdfRenderer{cfg: c, logger: logger}, nil
}

// tempFiles tracks files created for one render.
type tempFiles []func()

func (t tempFiles) cleanup() {
	for _, fn := range t {
		fn()
	}
}

// Render runs wkhtmltopdf over every body of req.
func (r *WkhtmltopdfRenderer) Render(ctx context.Context, req *Request) ([]byte, error) {
	if req == nil {
		return nil, ErrNilRequest
	}
	if len(req.Bodies) == 0 {
		return []byte{}, nil
	}

	start := time.Now()
	var temps tempFiles
	defer func() { temps.cleanup() }()

	write := func(content string) (string, error) {
		path, cleanup, err := fileutil.WriteTempFile(r.cfg.TempDir, content, "html")
		if err != nil {
			return "", err
		}
		temps = append(temps, cleanup)
		return path, nil
	}

	var headerPath, footerPath string
	var err error
	if req.Header != "" {
		if headerPath, err = write(req.Header); err != nil {
			return nil, fmt.Errorf("writing header: %w", err)
		}
	}
	if req.Footer != "" {
		if footerPath, err = write(req.Footer); err != nil {
			return nil, fmt.Errorf("writing footer: %w", err)
		}
	}

	bodyPaths := make([]string, 0, len(req.Bodies))
	for i, body := range req.Bodies {
		p, err := write(body)
		if err != nil {
			return nil, fmt.Errorf("writing body %d: %w", i, err)
		}
		bodyPaths = append(bodyPaths, p)
	}

	outPath, outCleanup, err := fileutil.WriteTempFile(r.cfg.TempDir, "", "pdf")
	if err != nil {
		return nil, err
	}
	temps = append(temps, outCleanup)

	args := r.buildArgs(req, headerPath, footerPath, bodyPaths, outPath)
	r.logger.Debug("executing wkhtmltopdf",
		zap.String("binary", r.cfg.BinaryPath),
		zap.Strings("args", args))

	cmd := exec.CommandContext(ctx, r.cfg.BinaryPath, args...) // #nosec G204 -- binary resolved at construction
	process.StartInGroup(cmd)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		r.logger.Error("wkhtmltopdf failed",
			zap.String("report", req.ReportRef),
			zap.Error(err),
			zap.String("stderr", stderr.String()))
		return nil, fmt.Errorf("%w: %w", ErrRenderFailed, &EngineError{Engine: "wkhtmltopdf", Stderr: stderr.String(), Err: err})
	}

	pdf, err := os.ReadFile(outPath) // #nosec G304 -- path created above
	if err != nil {
		return nil, fmt.Errorf("%w: reading output: %v", ErrRenderFailed, err)
	}
	if len(pdf) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrRenderFailed, errors.New("wkhtmltopdf produced an empty PDF"))
	}

	r.logger.Info("report rendered",
		zap.String("report", req.ReportRef),
		zap.String("backend", string(BackendFallback)),
		zap.Int("bodies", len(req.Bodies)),
		zap.Int("bytes", len(pdf)),
		zap.Duration("duration", time.Since(start)))

	return pdf, nil
}

// buildArgs constructs the wkhtmltopdf command line. Only margins and sizes
// that are set are passed, so wkhtmltopdf keeps its own defaults otherwise.
func (r *WkhtmltopdfRenderer) buildArgs(req *Request, headerPath, footerPath string, bodies []string, out string) []string {
	args := []string{
		"--quiet",
		"--encoding", "utf-8",
		"--dpi", strconv.Itoa(r.cfg.DPI),
		"--disable-javascript",
	}

	p := req.paper()
	for _, a := range []struct {
		flag  string
		value *float64
	}{
		{ArgMarginTop, p.MarginTop},
		{ArgMarginBottom, p.MarginBottom},
		{ArgMarginLeft, p.MarginLeft},
		{ArgMarginRight, p.MarginRight},
	} {
		if a.value != nil {
			args = append(args, a.flag, formatMM(*a.value))
		}
	}

	if p.hasExplicitSize() {
		args = append(args,
			ArgPageWidth, formatMM(*p.PageWidth),
			ArgPageHeight, formatMM(*p.PageHeight))
	}
	if p.Landscape {
		args = append(args, "--orientation", "Landscape")
	} else {
		args = append(args, "--orientation", "Portrait")
	}

	if headerPath != "" {
		args = append(args, "--header-html", headerPath)
	}
	if footerPath != "" {
		args = append(args, "--footer-html", footerPath)
	}

	args = append(args, bodies...)
	return append(args, out)
}

// Version returns the first line of "wkhtmltopdf --version".
func (r *WkhtmltopdfRenderer) Version(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, r.cfg.BinaryPath, "--version").Output() // #nosec G204 -- binary resolved at construction
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(line), nil
}

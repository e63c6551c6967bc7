package weasyreport

import (
	"context"
	"fmt"
	"html"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/alnah/go-weasyreport/internal/fileutil"
)

// defaultChromeTimeout bounds page loading when the context has no deadline.
const defaultChromeTimeout = 30 * time.Second

// Compile-time interface check.
var _ Engine = (*ChromeEngine)(nil)

// ChromeConfig configures the Chrome engine.
type ChromeConfig struct {
	// BinaryPath is a pre-installed Chrome/Chromium. Empty lets rod download
	// a managed browser on first use (ROD_BROWSER_BIN is also honored).
	BinaryPath string
	// NoSandbox disables the Chrome sandbox (containers, CI).
	NoSandbox bool
	// LoadTimeout bounds page loading when ctx has no deadline.
	LoadTimeout time.Duration
	// Logger for debug output. Nil discards.
	Logger *zap.Logger
}

// ChromeEngine renders through headless Chrome with go-rod, honoring the
// document's @page size and margins. Chrome has no support for CSS running
// elements, so headers and footers render in flow.
type ChromeEngine struct {
	cfg     ChromeConfig
	logger  *zap.Logger
	mu      sync.Mutex
	browser *rod.Browser
}

// NewChromeEngine creates a ChromeEngine. The browser starts lazily on the
// first render.
func NewChromeEngine(cfg *ChromeConfig) *ChromeEngine {
	c := ChromeConfig{}
	if cfg != nil {
		c = *cfg
	}
	if c.BinaryPath == "" {
		c.BinaryPath = os.Getenv("ROD_BROWSER_BIN")
	}
	if c.LoadTimeout <= 0 {
		c.LoadTimeout = defaultChromeTimeout
	}
	if os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("CI") == "true" {
		c.NoSandbox = true
	}
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChromeEngine{cfg: c, logger: logger}
}

// ensureBrowser lazily launches and connects to the browser.
// Caller must hold e.mu.
func (e *ChromeEngine) ensureBrowser() error {
	if e.browser != nil {
		return nil
	}

	l := launcher.New()
	if e.cfg.BinaryPath != "" {
		l = l.Bin(e.cfg.BinaryPath)
	}
	if e.cfg.NoSandbox {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	e.browser = browser
	e.logger.Debug("chrome browser connected", zap.String("control_url", u))
	return nil
}

// Render loads html from a temporary file and prints it to PDF.
func (e *ChromeEngine) Render(ctx context.Context, htmlContent, baseURL string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile("", injectBaseHref(htmlContent, baseURL), "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := e.ensureBrowser(); err != nil {
		return nil, err
	}

	page, err := e.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: "file://" + tmpPath})
	if err != nil {
		return nil, pageError(ctx, ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()

	timeout := e.cfg.LoadTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return nil, pageError(ctx, ErrPageLoad, err)
	}

	reader, err := page.PDF(&proto.PagePrintToPDF{
		PrintBackground:   true,
		PreferCSSPageSize: true,
	})
	if err != nil {
		return nil, pageError(ctx, nil, err)
	}

	pdf, err := io.ReadAll(reader)
	if err != nil {
		return nil, &EngineError{Engine: "chrome", Err: fmt.Errorf("reading PDF stream: %w", err)}
	}
	return &Document{PDF: pdf}, nil
}

// Close releases the browser.
func (e *ChromeEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.browser == nil {
		return nil
	}
	err := e.browser.Close()
	e.browser = nil
	return err
}

// pageError reports the context's error when the page failed because ctx
// ended, so callers can tell cancellation from a real engine failure.
// A nil sentinel wraps err in an EngineError.
func pageError(ctx context.Context, sentinel, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if sentinel == nil {
		return &EngineError{Engine: "chrome", Err: err}
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}

// injectBaseHref adds a <base> element right after <head> so relative assets
// resolve against baseURL instead of the temporary file's directory.
func injectBaseHref(doc, baseURL string) string {
	if baseURL == "" {
		return doc
	}
	base := `<base href="` + html.EscapeString(strings.TrimRight(baseURL, "/")+"/") + `">`

	lower := strings.ToLower(doc)
	idx := strings.Index(lower, "<head>")
	if idx == -1 {
		return base + doc
	}
	insert := idx + len("<head>")
	return doc[:insert] + base + doc[insert:]
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	weasyreport "github.com/alnah/go-weasyreport"
	"github.com/alnah/go-weasyreport/internal/hints"
	"github.com/alnah/go-weasyreport/internal/pipeline"
)

// stdoutPath selects standard output for --output.
const stdoutPath = "-"

// runRender renders one report from body files.
func runRender(args []string, env *Environment) error {
	flags, paperArgs, bodies, err := parseRenderFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(bodies) == 0 {
		return fmt.Errorf("%w: usage: weasyreport render [flags] <body>...", ErrNoBody)
	}

	a, err := newApp(flags.common, env)
	if err != nil {
		return err
	}
	defer a.Close()

	timeout, err := resolveTimeout(flags.timeout, a)
	if err != nil {
		return err
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := buildRequest(ctx, flags, paperArgs, bodies)
	if err != nil {
		return err
	}

	rep, err := a.reporter(env)
	if err != nil {
		return err
	}
	defer func() { _ = rep.Close() }()

	start := time.Now()
	pdf, err := rep.Render(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w%s", err, hints.ForTimeout())
		}
		if errors.Is(err, weasyreport.ErrBrowserConnect) {
			return fmt.Errorf("%w%s", err, hints.ForBrowserConnect())
		}
		return err
	}

	out := resolveOutputPath(flags.output, bodies[0])
	if err := writePDF(out, pdf, env.Stdout); err != nil {
		return err
	}

	a.logger.Debug("render command finished",
		zap.String("output", out),
		zap.Int("bytes", len(pdf)),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// resolveTimeout prefers --timeout over engine.timeout. Zero means none.
func resolveTimeout(flagValue string, a *app) (time.Duration, error) {
	if flagValue == "" {
		return a.cfg.Engine.TimeoutDuration()
	}
	d, err := time.ParseDuration(flagValue)
	if err != nil {
		return 0, fmt.Errorf("%w: --timeout: %v", ErrUsage, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: --timeout must be positive, got %s", ErrUsage, d)
	}
	return d, nil
}

// buildRequest loads body, header and footer files into a render request.
func buildRequest(ctx context.Context, flags *renderFlags, paperArgs map[string]any, bodies []string) (*weasyreport.Request, error) {
	loader := pipeline.NewBodyLoader(flags.localAssets)

	fragments, err := loader.LoadAll(ctx, bodies)
	if err != nil {
		return nil, readBodyError(err)
	}

	req := &weasyreport.Request{
		ReportRef: flags.report,
		Bodies:    fragments,
		Landscape: flags.landscape,
		Paper:     weasyreport.PaperFormatFromArgs(paperArgs, flags.landscape),
		BaseURL:   flags.baseURL,
	}
	if flags.header != "" {
		if req.Header, err = loader.Load(ctx, flags.header); err != nil {
			return nil, readBodyError(err)
		}
	}
	if flags.footer != "" {
		if req.Footer, err = loader.Load(ctx, flags.footer); err != nil {
			return nil, readBodyError(err)
		}
	}
	return req, nil
}

func readBodyError(err error) error {
	if errors.Is(err, pipeline.ErrUnsupportedBody) || errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrReadBody, err)
}

// resolveOutputPath defaults to the first body with a .pdf extension.
func resolveOutputPath(output, firstBody string) string {
	if output != "" {
		return output
	}
	return strings.TrimSuffix(firstBody, filepath.Ext(firstBody)) + ".pdf"
}

// writePDF writes to path, or to stdout for "-".
func writePDF(path string, pdf []byte, stdout io.Writer) error {
	if path == stdoutPath {
		if _, err := stdout.Write(pdf); err != nil {
			return fmt.Errorf("%w: %w", ErrWritePDF, err)
		}
		return nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("%w: %w%s", ErrWritePDF, err, hints.ForOutputDirectory())
		}
	}
	if err := os.WriteFile(path, pdf, 0o600); err != nil {
		return fmt.Errorf("%w: %w", ErrWritePDF, err)
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"os"

	weasyreport "github.com/alnah/go-weasyreport"
	"github.com/alnah/go-weasyreport/internal/config"
	"github.com/alnah/go-weasyreport/internal/logging"
	"github.com/alnah/go-weasyreport/internal/paramstore"
	"github.com/alnah/go-weasyreport/internal/pipeline"
)

// Exit codes for the weasyreport CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Command completed
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // Files, store or output errors
	ExitRender  = 4 // Engine, merge or fallback errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Rendering errors (exit 4)
	if errors.Is(err, weasyreport.ErrRenderFailed) ||
		errors.Is(err, weasyreport.ErrMergeFailed) ||
		errors.Is(err, weasyreport.ErrEngineUnavailable) ||
		errors.Is(err, weasyreport.ErrNoFallback) ||
		errors.Is(err, weasyreport.ErrBrowserConnect) ||
		errors.Is(err, weasyreport.ErrPageCreate) ||
		errors.Is(err, weasyreport.ErrPageLoad) ||
		errors.Is(err, context.DeadlineExceeded) {
		return ExitRender
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, ErrNoBody) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, logging.ErrInvalidLevel) ||
		errors.Is(err, pipeline.ErrUnsupportedBody) ||
		errors.Is(err, weasyreport.ErrModuleNotInstalled) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadBody) ||
		errors.Is(err, ErrWritePDF) ||
		errors.Is(err, ErrOpenStore) ||
		errors.Is(err, paramstore.ErrStoreNotFound) ||
		errors.Is(err, weasyreport.ErrSettingsLoad) ||
		errors.Is(err, weasyreport.ErrSettingsSave) {
		return ExitIO
	}

	return ExitGeneral
}

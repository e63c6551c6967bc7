package weasyreport

import (
	"errors"
	"fmt"
)

// Sentinel errors for library operations.
var (
	ErrRenderFailed      = errors.New("PDF rendering failed")
	ErrEngineUnavailable = errors.New("rendering engine unavailable")
	ErrMergeFailed       = errors.New("PDF merge failed")
	ErrNoFallback        = errors.New("no fallback renderer configured")
	ErrSettingsLoad      = errors.New("failed to load report settings")
	ErrSettingsSave      = errors.New("failed to save report settings")
	ErrNilRequest        = errors.New("render request cannot be nil")

	// Browser errors (chrome engine).
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")

	// Settings validation errors.
	ErrModuleNotInstalled = errors.New("module is not installed")
)

// userErrorMessage is the generic text shown to end users when the
// paged-media engine rejects a document.
const userErrorMessage = "WeasyPrint rendering failed. Check server logs for details."

// UserError is the single user-facing error returned when rendering a report
// fails. The engine's own error text is kept so the end user sees it too.
type UserError struct {
	Report string // report reference being rendered
	Body   int    // zero-based index of the failing body
	Err    error  // underlying engine error
}

// newUserError wraps an engine failure for the given report body.
func newUserError(report string, body int, err error) *UserError {
	return &UserError{Report: report, Body: body, Err: err}
}

func (e *UserError) Error() string {
	if e.Err == nil {
		return userErrorMessage
	}
	return fmt.Sprintf("%s\nError: %s", userErrorMessage, e.Err.Error())
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// Is reports ErrRenderFailed as a match so callers can test the category
// without caring about the engine's concrete error.
func (e *UserError) Is(target error) bool {
	return target == ErrRenderFailed
}

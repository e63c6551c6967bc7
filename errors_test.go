package weasyreport

import (
	"errors"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestUserError - User-facing render failures
// ---------------------------------------------------------------------------

func TestUserError(t *testing.T) {
	t.Parallel()

	cause := &EngineError{Engine: "weasyprint", Stderr: "Unknown CSS property", Err: errors.New("exit status 1")}

	tests := []struct {
		name     string
		err      *UserError
		wantText []string
	}{
		{
			name:     "engine message kept",
			err:      newUserError("sale.report_saleorder", 2, cause),
			wantText: []string{userErrorMessage, "\nError: ", "Unknown CSS property"},
		},
		{
			name:     "no cause",
			err:      &UserError{},
			wantText: []string{userErrorMessage},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			msg := tt.err.Error()
			for _, want := range tt.wantText {
				if !strings.Contains(msg, want) {
					t.Errorf("Error() = %q, missing %q", msg, want)
				}
			}
			if !errors.Is(tt.err, ErrRenderFailed) {
				t.Error("UserError should match ErrRenderFailed")
			}
			if errors.Is(tt.err, ErrMergeFailed) {
				t.Error("UserError should not match unrelated sentinels")
			}
		})
	}
}

func TestUserError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := &EngineError{Engine: "weasyprint", Err: errors.New("exit status 1")}
	err := error(newUserError("sale.x", 0, cause))

	var ee *EngineError
	if !errors.As(err, &ee) || ee != cause {
		t.Error("errors.As should reach the engine error")
	}

	var ue *UserError
	if !errors.As(err, &ue) || ue.Report != "sale.x" || ue.Body != 0 {
		t.Errorf("UserError fields = %+v", ue)
	}
}

func TestUserError_Message(t *testing.T) {
	t.Parallel()

	err := newUserError("sale.x", 0, errors.New("weasyprint: exit status 1: bad CSS"))
	want := "WeasyPrint rendering failed. Check server logs for details.\nError: weasyprint: exit status 1: bad CSS"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

package cmd

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"testing"

	"golang-credit-cleaning-service/pkg/errors"
	"golang-credit-cleaning-service/pkg/logger"
)

func newTestHandler(verbose bool) (*CLIErrorHandler, *bytes.Buffer) {
	var buf bytes.Buffer
	return &CLIErrorHandler{
		logger:  logger.GetGlobalLogger(),
		out:     &buf,
		verbose: verbose,
	}, &buf
}

func TestHandleError_ExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		contains []string
	}{
		{
			name:     "nil",
			err:      nil,
			wantCode: 0,
		},
		{
			name:     "file error",
			err:      errors.FileError(errors.CodeFileNotFound, "cartera.csv", os.ErrNotExist),
			wantCode: 2,
			contains: []string{"Error:", "file_path: cartera.csv", "File error help"},
		},
		{
			name:     "schema error",
			err:      errors.SchemaError("debt", []string{"Saldo_total_M3"}),
			wantCode: 3,
			contains: []string{"Saldo_total_M3", "Schema error help"},
		},
		{
			name:     "validation error",
			err:      errors.ValidationError(errors.CodeOutOfRange, "Ciclo_atraso_M0", 12, nil),
			wantCode: 3,
			contains: []string{"Validation error help"},
		},
		{
			name:     "configuration error",
			err:      errors.ConfigurationError(errors.CodeInvalidConfig, "output", "html", nil),
			wantCode: 4,
			contains: []string{"Configuration error help"},
		},
		{
			name:     "cancelled",
			err:      errors.InternalError(errors.CodeCancelled, "cleaning run", nil),
			wantCode: 5,
		},
		{
			name:     "wrapped os error",
			err:      fmt.Errorf("open: %w", os.ErrPermission),
			wantCode: 2,
			contains: []string{"Permission denied"},
		},
		{
			name:     "generic error",
			err:      fmt.Errorf("boom"),
			wantCode: 1,
			contains: []string{"Error: boom", "--verbose"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, out := newTestHandler(false)
			code := h.HandleError(tt.err)

			if code != tt.wantCode {
				t.Errorf("expected exit code %d, got %d", tt.wantCode, code)
			}
			for _, want := range tt.contains {
				if !strings.Contains(out.String(), want) {
					t.Errorf("expected output to contain %q, got:\n%s", want, out.String())
				}
			}
		})
	}
}

func TestHandleError_CancelledHasNoHelp(t *testing.T) {
	h, out := newTestHandler(false)
	h.HandleError(errors.InternalError(errors.CodeCancelled, "cleaning run", nil))

	if strings.Contains(out.String(), "help") {
		t.Errorf("cancellation should not print category help, got:\n%s", out.String())
	}
}

func TestHandleError_VerboseShowsCause(t *testing.T) {
	h, out := newTestHandler(true)
	cause := fmt.Errorf("disk quota exceeded")
	h.HandleError(errors.InternalError(errors.CodeUnexpectedError, "table output", cause))

	if !strings.Contains(out.String(), "Underlying error: disk quota exceeded") {
		t.Errorf("expected underlying error in verbose mode, got:\n%s", out.String())
	}
}

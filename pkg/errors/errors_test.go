package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestCleanerError(t *testing.T) {
	tests := []struct {
		name       string
		category   ErrorCategory
		code       ErrorCode
		message    string
		cause      error
		expectCode int
	}{
		{
			name:       "file error",
			category:   CategoryFile,
			code:       CodeFileNotFound,
			message:    "file not found",
			cause:      errors.New("no such file"),
			expectCode: 2,
		},
		{
			name:       "parse error",
			category:   CategoryParse,
			code:       CodeInvalidFormat,
			message:    "invalid format",
			cause:      nil,
			expectCode: 3,
		},
		{
			name:       "schema error",
			category:   CategorySchema,
			code:       CodeMissingColumn,
			message:    "missing column",
			cause:      nil,
			expectCode: 3,
		},
		{
			name:       "configuration error",
			category:   CategoryConfiguration,
			code:       CodeInvalidConfig,
			message:    "invalid config",
			cause:      errors.New("missing field"),
			expectCode: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err *CleanerError
			if tt.cause != nil {
				err = Wrap(tt.cause, tt.category, tt.code, tt.message)
			} else {
				err = New(tt.category, tt.code, tt.message)
			}

			if err.Category != tt.category {
				t.Errorf("expected category %s, got %s", tt.category, err.Category)
			}
			if err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, err.Code)
			}
			if err.GetExitCode() != tt.expectCode {
				t.Errorf("expected exit code %d, got %d", tt.expectCode, err.GetExitCode())
			}
			if err.Error() != tt.message {
				t.Errorf("expected error string %s, got %s", tt.message, err.Error())
			}
			if tt.cause != nil && err.Unwrap() != tt.cause {
				t.Errorf("expected to unwrap to %v, got %v", tt.cause, err.Unwrap())
			}
		})
	}
}

func TestCleanerErrorWithContext(t *testing.T) {
	err := New(CategoryFile, CodeFileNotFound, "test error").
		WithContext("file", "/path/to/file").
		WithContext("line", 42).
		WithSuggestion("check file path")

	if err.Context["file"] != "/path/to/file" {
		t.Errorf("expected file context '/path/to/file', got %v", err.Context["file"])
	}
	if err.Context["line"] != 42 {
		t.Errorf("expected line context 42, got %v", err.Context["line"])
	}

	expected := "test error (suggestion: check file path)"
	if err.Error() != expected {
		t.Errorf("expected error string '%s', got '%s'", expected, err.Error())
	}
}

func TestSpecificErrorConstructors(t *testing.T) {
	t.Run("FileError", func(t *testing.T) {
		cause := errors.New("no such file or directory")
		err := FileError(CodeFileNotFound, "/data/cartera.csv", cause)

		if err.Category != CategoryFile {
			t.Errorf("expected file category, got %s", err.Category)
		}
		if err.Context["file_path"] != "/data/cartera.csv" {
			t.Errorf("expected file_path context, got %v", err.Context["file_path"])
		}
		if err.Suggestion == "" {
			t.Error("expected suggestion to be set")
		}
		if err.Cause != cause {
			t.Errorf("expected cause to be %v, got %v", cause, err.Cause)
		}
	})

	t.Run("ParseError", func(t *testing.T) {
		err := ParseError(CodeMalformedRow, "cartera.csv", 10, "wrong number of fields", nil)

		if err.Category != CategoryParse {
			t.Errorf("expected parse category, got %s", err.Category)
		}
		if err.Context["line"] != 10 {
			t.Errorf("expected line context, got %v", err.Context["line"])
		}
	})

	t.Run("SchemaError", func(t *testing.T) {
		err := SchemaError("column normalization", []string{"Saldo_total", "Pago"})

		if err.Category != CategorySchema {
			t.Errorf("expected schema category, got %s", err.Category)
		}
		if err.Code != CodeMissingColumn {
			t.Errorf("expected missing column code, got %s", err.Code)
		}
		if err.Context["stage"] != "column normalization" {
			t.Errorf("expected stage context, got %v", err.Context["stage"])
		}
	})

	t.Run("ValidationError", func(t *testing.T) {
		err := ValidationError(CodeOutOfRange, "Ciclo_atraso_M2", 12, nil)

		if err.Category != CategoryValidation {
			t.Errorf("expected validation category, got %s", err.Category)
		}
		if err.Context["field"] != "Ciclo_atraso_M2" {
			t.Errorf("expected field context, got %v", err.Context["field"])
		}
	})
}

func TestAsCleanerError(t *testing.T) {
	cleanerErr := New(CategoryFile, CodeFileNotFound, "test")
	wrapped := fmt.Errorf("loading: %w", cleanerErr)
	genericErr := errors.New("generic error")

	if extracted, ok := AsCleanerError(wrapped); !ok || extracted != cleanerErr {
		t.Error("expected AsCleanerError to extract CleanerError through wrapping")
	}
	if _, ok := AsCleanerError(genericErr); ok {
		t.Error("expected AsCleanerError to return false for generic error")
	}
	if _, ok := AsCleanerError(nil); ok {
		t.Error("expected AsCleanerError to return false for nil")
	}
	if !IsCategory(wrapped, CategoryFile) {
		t.Error("expected IsCategory to match file category")
	}
	if IsCategory(wrapped, CategorySchema) {
		t.Error("expected IsCategory not to match schema category")
	}
	if IsCleanerError(genericErr) {
		t.Error("expected IsCleanerError to return false for generic error")
	}
}

func TestWrapIfNeeded(t *testing.T) {
	cleanerErr := New(CategoryFile, CodeFileNotFound, "test")
	genericErr := errors.New("generic error")

	if result := WrapIfNeeded(cleanerErr, CategoryParse, CodeInvalidFormat, "wrapped"); result != cleanerErr {
		t.Error("expected WrapIfNeeded to return original CleanerError")
	}

	result := WrapIfNeeded(genericErr, CategoryParse, CodeInvalidFormat, "wrapped")
	if result.Cause != genericErr {
		t.Error("expected WrapIfNeeded to wrap generic error")
	}
	if result.Category != CategoryParse {
		t.Error("expected wrapped error to have correct category")
	}

	if WrapIfNeeded(nil, CategoryParse, CodeInvalidFormat, "wrapped") != nil {
		t.Error("expected WrapIfNeeded to return nil for nil input")
	}
}

func TestIssueCollector(t *testing.T) {
	collector := NewIssueCollector(2)

	if collector.HasIssues() {
		t.Error("expected no issues on a new collector")
	}
	if collector.Summary() != "no value issues" {
		t.Errorf("unexpected empty summary: %s", collector.Summary())
	}

	collector.Add(ValueIssue{Column: "Fecha_pago_M1", Row: 3, Value: "31/02/2024", Code: CodeInvalidDate})
	collector.Add(ValueIssue{Column: "Fecha_pago_M1", Row: 7, Value: "n/a", Code: CodeInvalidDate})
	collector.Add(ValueIssue{Column: "Fecha_corte_M4", Row: 9, Value: "2024-13-01", Code: CodeInvalidDate})

	if collector.Total() != 3 {
		t.Errorf("expected 3 issues, got %d", collector.Total())
	}
	if len(collector.Samples()) != 2 {
		t.Errorf("expected 2 retained samples, got %d", len(collector.Samples()))
	}
	if collector.ByColumn()["Fecha_pago_M1"] != 2 {
		t.Errorf("expected 2 issues for Fecha_pago_M1, got %d", collector.ByColumn()["Fecha_pago_M1"])
	}

	expected := "3 value issues (Fecha_corte_M4: 1, Fecha_pago_M1: 2)"
	if collector.Summary() != expected {
		t.Errorf("expected summary %q, got %q", expected, collector.Summary())
	}
}

func TestExitCodes(t *testing.T) {
	tests := []struct {
		category     ErrorCategory
		expectedCode int
	}{
		{CategoryFile, 2},
		{CategoryParse, 3},
		{CategorySchema, 3},
		{CategoryValidation, 3},
		{CategoryConfiguration, 4},
		{CategoryInternal, 5},
		{"unknown", 1},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			err := New(tt.category, "test_code", "test message")
			if err.GetExitCode() != tt.expectedCode {
				t.Errorf("expected exit code %d for category %s, got %d",
					tt.expectedCode, tt.category, err.GetExitCode())
			}
		})
	}
}

func TestConstructorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  *CleanerError
		want string
	}{
		{
			name: "parse error with line and detail",
			err:  ParseError(CodeMalformedRow, "cartera.csv", 10, "wrong number of fields", nil),
			want: "malformed row in file cartera.csv at line 10: wrong number of fields",
		},
		{
			name: "parse error without line",
			err:  ParseError(CodeUnsupportedExt, "cartera.json", 0, "", nil),
			want: "unsupported file type: cartera.json",
		},
		{
			name: "validation error with value",
			err:  ValidationError(CodeOutOfRange, "Ciclo_atraso_M0", 12, nil),
			want: "value out of range in field 'Ciclo_atraso_M0': 12",
		},
		{
			name: "missing configuration ignores value",
			err:  ConfigurationError(CodeMissingConfig, "input", "", nil),
			want: "missing required configuration: input",
		},
		{
			name: "unknown code falls back to category text",
			err:  FileError("locked", "/data/cartera.csv", nil),
			want: "file error: /data/cartera.csv",
		},
		{
			name: "cancelled run",
			err:  InternalError(CodeCancelled, "cleaning run", nil),
			want: "cleaning run was cancelled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Message != tt.want {
				t.Errorf("expected message %q, got %q", tt.want, tt.err.Message)
			}
			if tt.err.Suggestion == "" {
				t.Error("expected a default suggestion")
			}
		})
	}
}

package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryFile          ErrorCategory = "file"
	CategoryParse         ErrorCategory = "parse"
	CategorySchema        ErrorCategory = "schema"
	CategoryValidation    ErrorCategory = "validation"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryInternal      ErrorCategory = "internal"
)

// ErrorCode represents specific error codes within categories
type ErrorCode string

const (
	// File errors
	CodeFileNotFound   ErrorCode = "file_not_found"
	CodeFilePermission ErrorCode = "file_permission"
	CodeFileCorrupted  ErrorCode = "file_corrupted"
	CodeDirectoryError ErrorCode = "directory_error"

	// Parse errors
	CodeInvalidFormat  ErrorCode = "invalid_format"
	CodeMissingHeader  ErrorCode = "missing_header"
	CodeMalformedRow   ErrorCode = "malformed_row"
	CodeEncodingError  ErrorCode = "encoding_error"
	CodeUnsupportedExt ErrorCode = "unsupported_extension"

	// Schema errors
	CodeMissingColumn ErrorCode = "missing_column"

	// Validation errors
	CodeInvalidDate  ErrorCode = "invalid_date"
	CodeInvalidValue ErrorCode = "invalid_value"
	CodeOutOfRange   ErrorCode = "out_of_range"
	CodeMissingField ErrorCode = "missing_field"

	// Configuration errors
	CodeInvalidConfig  ErrorCode = "invalid_config"
	CodeMissingConfig  ErrorCode = "missing_config"
	CodeConfigConflict ErrorCode = "config_conflict"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
	CodeCancelled       ErrorCode = "cancelled"
)

// CleanerError is the base error type for all application errors
type CleanerError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context provides additional information about the error
type Context map[string]interface{}

// Error implements the error interface
func (e *CleanerError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *CleanerError) Unwrap() error {
	return e.Cause
}

// GetExitCode returns an appropriate exit code for the error
func (e *CleanerError) GetExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryParse, CategorySchema, CategoryValidation:
		return 3
	case CategoryConfiguration:
		return 4
	case CategoryInternal:
		return 5
	default:
		return 1
	}
}

// WithContext adds context information to the error
func (e *CleanerError) WithContext(key string, value interface{}) *CleanerError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *CleanerError) WithSuggestion(suggestion string) *CleanerError {
	e.Suggestion = suggestion
	return e
}

// New creates a new CleanerError
func New(category ErrorCategory, code ErrorCode, message string) *CleanerError {
	return &CleanerError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with CleanerError context
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *CleanerError {
	if err == nil {
		return nil
	}

	return &CleanerError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

func build(err error, category ErrorCategory, code ErrorCode, message string) *CleanerError {
	if err != nil {
		return Wrap(err, category, code, message)
	}
	return New(category, code, message)
}

// codeText is the message layout and default suggestion for one error code.
// The layout takes the subject of the error (a path, column, setting or
// operation) as its only verb.
type codeText struct {
	layout     string
	suggestion string
}

var codeTexts = map[ErrorCode]codeText{
	CodeFileNotFound:   {"file not found: %s", "check that the export path is correct and the file exists"},
	CodeFilePermission: {"permission denied accessing file: %s", "check file permissions and ensure you have read access"},
	CodeFileCorrupted:  {"file appears to be corrupted: %s", "verify the file integrity or export the portfolio again"},
	CodeDirectoryError: {"directory error: %s", "ensure the directory exists and is accessible"},

	CodeInvalidFormat:  {"invalid format in file %s", "check that the file is delimited text with a header row"},
	CodeMissingHeader:  {"missing or invalid header row in file %s", "the first line must contain the column names"},
	CodeMalformedRow:   {"malformed row in file %s", "every row must have the same number of fields as the header"},
	CodeEncodingError:  {"encoding error in file %s", "portfolio exports are expected in ISO-8859-1; use --encoding to match the file"},
	CodeUnsupportedExt: {"unsupported file type: %s", "use .csv, .tsv, .txt, .xlsx or .parquet, optionally compressed with .gz, .zst, .xz, .lz4 or .bz2"},

	CodeInvalidDate:  {"invalid date in field '%s'", "dates must use the DD/MM/YYYY layout"},
	CodeInvalidValue: {"invalid value in field '%s'", "check the field value and format"},
	CodeOutOfRange:   {"value out of range in field '%s'", "delinquency cycles run from 0 to 9"},
	CodeMissingField: {"required field '%s' is missing or empty", "provide a value for this required field"},

	CodeInvalidConfig:  {"invalid configuration for '%s'", "run 'cleaner clean --help' for the accepted values"},
	CodeMissingConfig:  {"missing required configuration: %s", "pass the setting as a flag, a CLEANER_ environment variable or in --config"},
	CodeConfigConflict: {"configuration conflict with setting '%s'", "resolve the conflicting settings"},

	CodeUnexpectedError: {"unexpected error during %s", "this is likely a bug; report it with the output of --verbose"},
	CodeCancelled:       {"%s was cancelled", "run the command again without interrupting it"},
}

var categoryTexts = map[ErrorCategory]codeText{
	CategoryFile:          {"file error: %s", "check the file and try again"},
	CategoryParse:         {"parse error in file %s", "check the file format and data integrity"},
	CategoryValidation:    {"validation error in field '%s'", "check the field value and format"},
	CategoryConfiguration: {"configuration error: %s", "check your configuration and try again"},
	CategoryInternal:      {"internal error during %s", "try again; report the problem if it persists"},
}

// describe builds an error for code, falling back to the category text for
// codes without their own layout
func describe(err error, category ErrorCategory, code ErrorCode, subject string) *CleanerError {
	text, ok := codeTexts[code]
	if !ok {
		text = categoryTexts[category]
	}
	return build(err, category, code, fmt.Sprintf(text.layout, subject)).
		WithSuggestion(text.suggestion)
}

// FileError creates a file-related error
func FileError(code ErrorCode, path string, err error) *CleanerError {
	return describe(err, CategoryFile, code, path).
		WithContext("file_path", path)
}

// ParseError creates a parsing-related error. line is 1-based; zero means the
// problem is not tied to a line.
func ParseError(code ErrorCode, file string, line int, detail string, err error) *CleanerError {
	e := describe(err, CategoryParse, code, file)
	if line > 0 {
		e.Message += fmt.Sprintf(" at line %d", line)
	}
	if detail != "" {
		e.Message += ": " + detail
	}
	return e.WithContext("file", file).
		WithContext("line", line)
}

// SchemaError creates an error for columns a stage requires but the table lacks
func SchemaError(stage string, missing []string) *CleanerError {
	message := fmt.Sprintf("missing required column(s) during %s: %s", stage, strings.Join(missing, ", "))
	return New(CategorySchema, CodeMissingColumn, message).
		WithSuggestion("verify the export layout; column names are case-sensitive").
		WithContext("stage", stage).
		WithContext("columns", missing)
}

// ValidationError creates an error for a value the cleaning rules reject
func ValidationError(code ErrorCode, field string, value interface{}, err error) *CleanerError {
	e := describe(err, CategoryValidation, code, field)
	if value != nil {
		e.Message += fmt.Sprintf(": %v", value)
	}
	return e.WithContext("field", field).
		WithContext("value", value)
}

// ConfigurationError creates an error for a rejected setting
func ConfigurationError(code ErrorCode, setting string, value interface{}, err error) *CleanerError {
	e := describe(err, CategoryConfiguration, code, setting)
	if value != nil && code != CodeMissingConfig {
		e.Message += fmt.Sprintf(": %v", value)
	}
	return e.WithContext("setting", setting).
		WithContext("value", value)
}

// InternalError creates an error for a failed operation that is not the
// caller's fault, or a cancelled run
func InternalError(code ErrorCode, operation string, err error) *CleanerError {
	return describe(err, CategoryInternal, code, operation).
		WithContext("operation", operation)
}

// IsCleanerError checks if an error is a CleanerError
func IsCleanerError(err error) bool {
	_, ok := err.(*CleanerError)
	return ok
}

// AsCleanerError extracts a CleanerError from an error chain
func AsCleanerError(err error) (*CleanerError, bool) {
	var cleanerErr *CleanerError
	if errors.As(err, &cleanerErr) {
		return cleanerErr, true
	}
	return nil, false
}

// IsCategory reports whether err carries a CleanerError of the given category
func IsCategory(err error, category ErrorCategory) bool {
	cleanerErr, ok := AsCleanerError(err)
	return ok && cleanerErr.Category == category
}

// WrapIfNeeded wraps an error if it's not already a CleanerError
func WrapIfNeeded(err error, category ErrorCategory, code ErrorCode, message string) *CleanerError {
	if err == nil {
		return nil
	}

	if cleanerErr, ok := AsCleanerError(err); ok {
		return cleanerErr
	}

	return Wrap(err, category, code, message)
}

package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySource is returned when a source has no header or no data rows.
	ErrEmptySource = errors.New("source contains no data rows")

	// ErrNoMatches is returned when a source pattern matches no files.
	ErrNoMatches = errors.New("no files match pattern")
)

// SourceUnavailableError reports a source table that is missing, unreadable
// or empty. It aborts the run.
type SourceUnavailableError struct {
	Path string
	Err  error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("source unavailable: %s: %v", e.Path, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error {
	return e.Err
}

// MalformedRowError reports a row whose required field could not be coerced
// to its expected type. The row is dropped and counted.
type MalformedRowError struct {
	Source string
	Line   int
	Field  string
	Value  string
	Err    error
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("malformed row %s:%d: %s=%q: %v", e.Source, e.Line, e.Field, e.Value, e.Err)
}

func (e *MalformedRowError) Unwrap() error {
	return e.Err
}

// incompleteRowError marks a row with a missing required field.
type incompleteRowError struct {
	field string
}

func (e *incompleteRowError) Error() string {
	return "missing required field " + e.field
}

// zeroPagesError marks a row whose page count is zero.
type zeroPagesError struct{}

func (zeroPagesError) Error() string {
	return "page count is zero"
}

// IsSourceUnavailable returns true if err is or wraps a SourceUnavailableError.
func IsSourceUnavailable(err error) bool {
	var target *SourceUnavailableError
	return errors.As(err, &target)
}

// IsMalformedRow returns true if err is or wraps a MalformedRowError.
func IsMalformedRow(err error) bool {
	var target *MalformedRowError
	return errors.As(err, &target)
}

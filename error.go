package csvreader

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable reports a source that could not be opened or read.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrMalformedRow reports a lone "\r" under the default row marker rule.
	ErrMalformedRow = errors.New("malformed row")

	// ErrMalformedField reports a closing qualifier followed by something
	// other than a qualifier, a delimiter, a row marker or the end of input.
	ErrMalformedField = errors.New("malformed field")

	// ErrInvalidSettings reports a Settings value rejected by New.
	ErrInvalidSettings = errors.New("invalid settings")
)

// ParseError is returned by Rows.Err when a parse stops before the end of
// its source. It matches its kind with errors.Is.
type ParseError struct {
	// Line is the 1-based row number, counting skipped rows, being parsed.
	Line int
	// Offset is the 1-based rune position in the source, 0 when the error
	// happened before any rune was consumed.
	Offset int
	// Err is one of ErrSourceUnavailable, ErrMalformedRow, ErrMalformedField.
	Err error

	message string
	cause   error
}

func (err *ParseError) Error() string {
	message := fmt.Sprintf("%v on line %d, offset %d: %s", err.Err, err.Line, err.Offset, err.message)
	if err.cause != nil {
		return fmt.Sprintf("%s (cause: %s)", message, err.cause.Error())
	}
	return message
}

func (err *ParseError) Unwrap() []error {
	if err.cause != nil {
		return []error{err.Err, err.cause}
	}
	return []error{err.Err}
}

// Cause returns the I/O error behind an ErrSourceUnavailable, if any.
func (err *ParseError) Cause() error {
	return err.cause
}

func newParseError(kind error, line, offset int, message string, a ...any) *ParseError {
	return &ParseError{
		Line:    line,
		Offset:  offset,
		Err:     kind,
		message: fmt.Sprintf(message, a...),
	}
}

func newMalformedRowError(line, offset int, ch rune) *ParseError {
	return newParseError(ErrMalformedRow, line, offset, "carriage return followed by %q instead of a line feed", ch)
}

func newUnterminatedRowError(line, offset int) *ParseError {
	return newParseError(ErrMalformedRow, line, offset, "input ends right after a carriage return")
}

func newMalformedFieldError(line, offset int, ch rune) *ParseError {
	return newParseError(ErrMalformedField, line, offset, "unexpected %q after closing text qualifier", ch)
}

func newUnterminatedEscapeError(line, offset int) *ParseError {
	return newParseError(ErrMalformedField, line, offset, "input ends inside an escaped text qualifier")
}

func newReadingError(line, offset int, cause error) *ParseError {
	err := newParseError(ErrSourceUnavailable, line, offset, "error reading from source")
	err.cause = cause
	return err
}

func newOpeningError(path string, cause error) *ParseError {
	err := newParseError(ErrSourceUnavailable, 0, 0, "cannot open %s", path)
	err.cause = cause
	return err
}

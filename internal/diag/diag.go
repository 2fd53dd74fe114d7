// Package diag defines the diagnostics produced while extracting messages.
package diag

import (
	"errors"
	"fmt"
)

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevWarning is recorded and extraction continues.
	SevWarning Severity = iota
	// SevFatal aborts the current compilation unit.
	SevFatal
)

func (s Severity) String() string {
	switch s {
	case SevWarning:
		return "warning"
	case SevFatal:
		return "error"
	}
	return "unknown"
}

// Code classifies a diagnostic.
type Code uint8

const (
	UnknownCode Code = iota
	ExtractionError
	MissingID
	DuplicateID
	ArgumentShapeError
	MissingDefaultMessage
	SyntaxError
)

func (c Code) String() string {
	switch c {
	case ExtractionError:
		return "ExtractionError"
	case MissingID:
		return "MissingId"
	case DuplicateID:
		return "DuplicateId"
	case ArgumentShapeError:
		return "ArgumentShapeError"
	case MissingDefaultMessage:
		return "MissingDefaultMessage"
	case SyntaxError:
		return "SyntaxError"
	}
	return "Unknown"
}

// ParseCode is the inverse of Code.String. Unrecognised names map to UnknownCode.
func ParseCode(s string) Code {
	for c := ExtractionError; c <= SyntaxError; c++ {
		if c.String() == s {
			return c
		}
	}
	return UnknownCode
}

// Severity returns the fixed severity for the code.
func (c Code) Severity() Severity {
	if c == MissingDefaultMessage {
		return SevWarning
	}
	return SevFatal
}

// Diagnostic is a located message. Fatal diagnostics are returned as errors.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	File     string
	Line     int
	Column   int
}

// New builds a diagnostic whose severity follows from its code.
func New(code Code, file string, line, column int, msg string) *Diagnostic {
	return &Diagnostic{
		Severity: code.Severity(),
		Code:     code,
		Message:  msg,
		File:     file,
		Line:     line,
		Column:   column,
	}
}

// Newf is New with a format string.
func Newf(code Code, file string, line, column int, format string, args ...any) *Diagnostic {
	return New(code, file, line, column, fmt.Sprintf(format, args...))
}

// Location renders file:line:col, dropping the parts that are unknown.
func (d *Diagnostic) Location() string {
	switch {
	case d.File == "":
		return fmt.Sprintf("%d:%d", d.Line, d.Column)
	case d.Line == 0:
		return d.File
	}
	return fmt.Sprintf("%s:%d:%d", d.File, d.Line, d.Column)
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s: [%s] %s", d.Location(), d.Severity, d.Code, d.Message)
}

// IsFatal reports whether d aborts its unit.
func (d *Diagnostic) IsFatal() bool {
	return d.Severity == SevFatal
}

// CodeOf returns the code of the diagnostic wrapped in err, or UnknownCode.
func CodeOf(err error) Code {
	if d, ok := As(err); ok {
		return d.Code
	}
	return UnknownCode
}

// As returns the first *Diagnostic in err's chain.
func As(err error) (*Diagnostic, bool) {
	var d *Diagnostic
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}

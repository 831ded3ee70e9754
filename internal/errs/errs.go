// Package errs provides structured error kinds for the conversion pipeline.
//
// Hard failures (cyclic structure, invalid input, exceeded limits) are
// returned as *Error values. Recoverable anomalies are not errors at all:
// stages attach them to the document as warnings carrying the same Code, so
// callers can treat both through one vocabulary.
//
//	err := errs.New(errs.CodeCyclicStructure, "node %s reached twice", id)
//	if errs.Is(err, errs.CodeCyclicStructure) {
//	    // abort
//	}
package errs

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error or warning kind.
type Code string

const (
	// Fatal kinds.
	CodeInvalidInput      Code = "INVALID_INPUT"
	CodeCyclicStructure   Code = "CYCLIC_STRUCTURE"
	CodeLimitExceeded     Code = "LIMIT_EXCEEDED"
	CodeUnsupportedFormat Code = "UNSUPPORTED_FORMAT"

	// Recoverable kinds, recorded as warnings.
	CodeMalformedGeometry       Code = "MALFORMED_GEOMETRY"
	CodeStackedVariant          Code = "STACKED_VARIANT"
	CodeBBoxMismatch            Code = "BBOX_MISMATCH"
	CodeClassificationAmbiguity Code = "CLASSIFICATION_AMBIGUITY"
	CodeCollaboratorTimeout     Code = "COLLABORATOR_TIMEOUT"
	CodeCollaboratorFailed      Code = "COLLABORATOR_FAILED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates an Error wrapping cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether any *Error in err's chain has the given code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the code from err, or "" if err carries none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Fatal reports whether code aborts a conversion.
func Fatal(code Code) bool {
	switch code {
	case CodeInvalidInput, CodeCyclicStructure, CodeLimitExceeded, CodeUnsupportedFormat:
		return true
	}
	return false
}

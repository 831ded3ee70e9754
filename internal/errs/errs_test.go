package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	err := New(CodeInvalidInput, "missing bbox on %q", "Logo")
	if got, want := err.Error(), `INVALID_INPUT: missing bbox on "Logo"`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	wrapped := Wrap(CodeInvalidInput, errors.New("eof"), "decode layers")
	if got, want := wrapped.Error(), "INVALID_INPUT: decode layers: eof"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestIsThroughWrapping(t *testing.T) {
	base := New(CodeCyclicStructure, "node n3 reached twice")
	err := fmt.Errorf("convert: %w", base)

	if !Is(err, CodeCyclicStructure) {
		t.Error("expected Is to find code through fmt wrapping")
	}
	if Is(err, CodeInvalidInput) {
		t.Error("expected Is to reject a different code")
	}
	if GetCode(err) != CodeCyclicStructure {
		t.Errorf("GetCode = %q", GetCode(err))
	}
	if GetCode(errors.New("plain")) != "" {
		t.Error("expected empty code for plain error")
	}
}

func TestUnwrapCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(CodeLimitExceeded, cause, "walk")
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to reach the cause")
	}
}

func TestFatal(t *testing.T) {
	tests := []struct {
		code Code
		want bool
	}{
		{CodeCyclicStructure, true},
		{CodeInvalidInput, true},
		{CodeLimitExceeded, true},
		{CodeMalformedGeometry, false},
		{CodeCollaboratorTimeout, false},
		{CodeClassificationAmbiguity, false},
	}
	for _, tc := range tests {
		if got := Fatal(tc.code); got != tc.want {
			t.Errorf("Fatal(%s) = %v, want %v", tc.code, got, tc.want)
		}
	}
}

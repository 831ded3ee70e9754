package textgen

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxCopyLen bounds a reply, in characters, before box fitting.
const MaxCopyLen = 2000

// ErrRejected marks a reply that cannot be used as page copy.
var ErrRejected = errors.New("copy rejected")

var injectionPattern = regexp.MustCompile(
	`(?i)(ignore\s+(previous|all|above)|system\s*prompt|you\s+are\s+now|` +
		`act\s+as\s+|pretend\s+|forget\s+(everything|all)|override|` +
		`new\s+instructions|as\s+an\s+ai\b|language\s+model)`,
)

// Clean flattens a raw reply to plain text and checks it is usable copy.
func Clean(raw string) (string, error) {
	text := strings.TrimSpace(PlainText(raw))
	text = strings.Trim(text, "\"'“”")
	text = strings.TrimSpace(text)
	if err := ValidateCopy(text); err != nil {
		return "", err
	}
	return text, nil
}

// ValidateCopy rejects empty, oversized or instruction-like text.
func ValidateCopy(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("%w: empty", ErrRejected)
	}
	if n := utf8.RuneCountInString(text); n > MaxCopyLen {
		return fmt.Errorf("%w: %d characters exceeds %d", ErrRejected, n, MaxCopyLen)
	}
	if injectionPattern.MatchString(text) {
		return fmt.Errorf("%w: looks like instructions: %s", ErrRejected, truncate(text, 80))
	}
	return nil
}

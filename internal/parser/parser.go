// Package parser reads design exports into document trees.
//
// Readers only check the shape of their input: geometry repair and the tree
// invariants are left to the pipeline stages.
package parser

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/designmark/internal/doctree"
	"github.com/dgallion1/designmark/internal/errs"
)

// Parser converts a raw design export into a Document.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Document, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".json": true,
	".yaml": true,
	".yml":  true,
	".html": true,
	".htm":  true,
}

// ForFile returns the appropriate parser for a filename. lim bounds the size
// of the tree the parser will build.
func ForFile(filename string, lim doctree.Limits) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".json":
		return &JSONParser{Limits: lim}, nil
	case ".yaml", ".yml":
		return &YAMLParser{Limits: lim}, nil
	case ".html", ".htm":
		return &HTMLParser{Limits: lim}, nil
	default:
		return nil, errs.New(errs.CodeUnsupportedFormat, "unsupported file extension: %q", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// baseTitle strips directory and extension from filename.
func baseTitle(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

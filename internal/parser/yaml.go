package parser

import (
	"io"

	"github.com/goccy/go-yaml"

	"github.com/dgallion1/designmark/internal/doctree"
	"github.com/dgallion1/designmark/internal/errs"
)

// YAMLParser reads layer-tree exports written as YAML. The shape matches the
// JSON export.
type YAMLParser struct {
	Limits doctree.Limits
}

func (p *YAMLParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var f rawFile
	if err := yaml.Unmarshal(src, &f); err != nil {
		return nil, errs.Wrap(errs.CodeInvalidInput, err, "parse yaml")
	}
	return buildDocument(&f, baseTitle(filename), p.Limits)
}

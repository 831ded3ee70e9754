package parser

import (
	"encoding/json"
	"io"

	"github.com/dgallion1/designmark/internal/doctree"
	"github.com/dgallion1/designmark/internal/errs"
)

// JSONParser reads layer-tree JSON exports.
type JSONParser struct {
	Limits doctree.Limits
}

func (p *JSONParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	var f rawFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, errs.Wrap(errs.CodeInvalidInput, err, "parse json")
	}
	return buildDocument(&f, baseTitle(filename), p.Limits)
}

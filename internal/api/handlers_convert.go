package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/designmark/internal/errs"
	"github.com/dgallion1/designmark/internal/parser"
	"github.com/dgallion1/designmark/internal/pipeline"
)

// upload is a validated design file from a multipart request.
type upload struct {
	filename string
	data     []byte
	enrich   bool
	linkCSS  bool
}

// httpError carries the status a failed upload should be answered with.
type httpError struct {
	status int
	msg    string
}

func (e *httpError) Error() string { return e.msg }

// readUpload parses the multipart form shared by the convert and job
// endpoints: a "file" part plus optional "enrich" and "inline_css" fields.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, &httpError{http.StatusBadRequest, "invalid multipart form: " + err.Error()}
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, &httpError{http.StatusBadRequest, "file is required: " + err.Error()}
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		return nil, &httpError{http.StatusUnsupportedMediaType, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename))}
	}

	// Read file data.
	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, &httpError{http.StatusInternalServerError, "failed to read file"}
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, &httpError{http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)}
	}

	up := &upload{
		filename: filename,
		data:     data,
		enrich:   r.FormValue("enrich") == "true",
		linkCSS:  r.FormValue("inline_css") == "false",
	}
	if up.enrich && !s.orchestrator.Converter().CanEnrich() {
		return nil, &httpError{http.StatusBadRequest, "enrichment requested but no text-completion service is configured"}
	}
	return up, nil
}

func writeUploadError(w http.ResponseWriter, err error) {
	var he *httpError
	if errors.As(err, &he) {
		jsonError(w, he.msg, he.status)
		return
	}
	jsonError(w, err.Error(), http.StatusInternalServerError)
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if err != nil {
		writeUploadError(w, err)
		return
	}

	conv := s.orchestrator.Converter()
	p, err := parser.ForFile(up.filename, conv.Heuristics().Limits)
	if err != nil {
		jsonCodeError(w, err)
		return
	}
	doc, err := p.Parse(bytes.NewReader(up.data), up.filename)
	if err != nil {
		jsonCodeError(w, err)
		return
	}

	res, err := conv.Convert(r.Context(), doc, pipeline.RunOptions{Enrich: up.enrich, LinkCSS: up.linkCSS})
	if err != nil {
		s.log.Warn("conversion failed", "filename", up.filename, "error", err)
		jsonCodeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

// codeStatus maps a pipeline error code to an HTTP status.
func codeStatus(code errs.Code) int {
	switch code {
	case errs.CodeUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case errs.CodeLimitExceeded:
		return http.StatusRequestEntityTooLarge
	case errs.CodeInvalidInput, errs.CodeCyclicStructure:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func jsonCodeError(w http.ResponseWriter, err error) {
	code := errs.GetCode(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(codeStatus(code))
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error(), "code": string(code)})
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/ChrisW-priv/html-chunking/internal/convert"
	"github.com/ChrisW-priv/html-chunking/internal/digest"
	"github.com/ChrisW-priv/html-chunking/internal/section"
)

// handleChunk runs the chunk+flatten pipeline synchronously on one document.
// The default response is JSON Lines of digest nodes; ?tree=true returns the
// hierarchical section tree instead.
func (s *Server) handleChunk(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	data, format, _, ok := s.readDocument(w, r)
	if !ok {
		return
	}

	htmlData, err := s.orchestrator.Registry().Convert(format, bytes.NewReader(data))
	if err != nil {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	tree, err := section.ParseDocument(bytes.NewReader(htmlData))
	if err != nil {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	if r.URL.Query().Get("tree") == "true" {
		w.Header().Set("Content-Type", "application/json")
		enc := json.NewEncoder(w)
		if r.URL.Query().Get("pretty") == "true" {
			enc.SetIndent("", "  ")
		}
		if err := enc.Encode(tree); err != nil {
			s.log.Error("tree write failed", "error", err)
		}
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	if _, err := digest.WriteStream(w, tree); err != nil {
		s.log.Error("stream write failed", "error", err)
	}
}

// readDocument pulls the document bytes and format out of a request: a
// multipart "file" field, or the raw body. Errors are written to w; callers
// bail out when ok is false.
func (s *Server) readDocument(w http.ResponseWriter, r *http.Request) (data []byte, format convert.Format, filename string, ok bool) {
	var detected bool

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
			return nil, "", "", false
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
			return nil, "", "", false
		}
		defer file.Close()

		data, err = io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
		if err != nil {
			jsonError(w, "failed to read file", http.StatusInternalServerError)
			return nil, "", "", false
		}
		filename = sanitizeFilename(header.Filename)
		format, detected = convert.ForFile(filename)
		if v := r.FormValue("format"); v != "" {
			format, detected = convert.Format(v), true
		}
	} else {
		var err error
		data, err = io.ReadAll(io.LimitReader(r.Body, s.cfg.MaxUploadBytes+1))
		if err != nil {
			jsonError(w, "failed to read body: "+err.Error(), http.StatusBadRequest)
			return nil, "", "", false
		}
		format, detected = convert.ForContentType(r.Header.Get("Content-Type"))
	}
	if v := r.URL.Query().Get("format"); v != "" {
		format, detected = convert.Format(v), true
	}

	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("document exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return nil, "", "", false
	}
	if len(data) == 0 {
		jsonError(w, "empty document", http.StatusBadRequest)
		return nil, "", "", false
	}
	if !detected {
		format = convert.FormatHTML
	}
	if !s.orchestrator.Registry().Supports(format) {
		jsonError(w, fmt.Sprintf("unsupported format: %s", format), http.StatusBadRequest)
		return nil, "", "", false
	}
	return data, format, filename, true
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}

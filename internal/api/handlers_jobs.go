package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ChrisW-priv/html-chunking/internal/convert"
	"github.com/ChrisW-priv/html-chunking/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

// handleSubmitJob queues a document for asynchronous processing. The
// multipart form carries either a "file" upload or a "url" to fetch, plus an
// optional "format" override.
func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	var (
		data     []byte
		format   convert.Format
		detected bool
		filename string
	)
	if rawURL := r.FormValue("url"); rawURL != "" {
		res, err := s.fetcher.Get(r.Context(), rawURL)
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadGateway)
			return
		}
		data, format, detected = res.Data, res.Format, true
		filename = rawURL
	} else {
		file, header, err := r.FormFile("file")
		if err != nil {
			jsonError(w, "file or url is required: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()

		data, err = io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
		if err != nil {
			jsonError(w, "failed to read file", http.StatusInternalServerError)
			return
		}
		filename = sanitizeFilename(header.Filename)
		format, detected = convert.ForFile(filename)
	}
	if v := r.FormValue("format"); v != "" {
		format, detected = convert.Format(v), true
	}
	if !detected {
		format = convert.FormatHTML
	}

	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("document exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}
	if len(data) == 0 {
		jsonError(w, "empty document", http.StatusBadRequest)
		return
	}
	if !s.orchestrator.Registry().Supports(format) {
		jsonError(w, fmt.Sprintf("unsupported format: %s", format), http.StatusBadRequest)
		return
	}

	now := time.Now()
	contentHash := pipeline.ContentHashHex(data)
	job := &pipeline.Job{
		ID:          pipeline.NewJobID(),
		DocID:       contentHash[:16],
		Status:      pipeline.StatusQueued,
		Phase:       "queued",
		Filename:    filename,
		Format:      format,
		ContentHash: contentHash,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	job.SetFileData(data)

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":     job.ID,
		"doc_id":     job.DocID,
		"status":     job.Status,
		"poll_url":   fmt.Sprintf("/api/jobs/%s/status", job.ID),
		"result_url": fmt.Sprintf("/api/jobs/%s/result", job.ID),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   snap.ID,
		"doc_id":   snap.DocID,
		"status":   snap.Status,
		"phase":    snap.Phase,
		"format":   snap.Format,
		"progress": snap.Progress,
	})
}

// handleJobResult streams a finished job's nodes as JSON Lines, enriched
// when enrichment ran.
func (s *Server) handleJobResult(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}

	snap := job.Snapshot()
	switch snap.Status {
	case pipeline.StatusCompleted, pipeline.StatusPartial:
	case pipeline.StatusFailed:
		jsonError(w, "job failed: "+firstError(snap), http.StatusConflict)
		return
	default:
		jsonError(w, fmt.Sprintf("job not finished: %s", snap.Status), http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	enc := json.NewEncoder(w)
	if enriched := job.Enriched(); enriched != nil {
		for _, n := range enriched {
			if err := enc.Encode(n); err != nil {
				s.log.Error("result write failed", "job_id", jobID, "error", err)
				return
			}
		}
		return
	}
	for _, n := range job.Nodes() {
		if err := enc.Encode(n); err != nil {
			s.log.Error("result write failed", "job_id", jobID, "error", err)
			return
		}
	}
}

func firstError(snap pipeline.JobSnapshot) string {
	if len(snap.Progress.Errors) > 0 {
		return snap.Progress.Errors[0]
	}
	return "unknown error"
}

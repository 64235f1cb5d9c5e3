package pipeline

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ChrisW-priv/html-chunking/internal/convert"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestContentHashHex_DifferentInputs(t *testing.T) {
	h1 := ContentHashHex([]byte("aaa"))
	h2 := ContentHashHex([]byte("bbb"))
	if h1 == h2 {
		t.Error("expected different hashes for different inputs")
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusConverting, "converting"},
		{StatusChunking, "chunking"},
		{StatusFlattening, "flattening"},
		{StatusEnriching, "enriching"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("node 3 failed")
	job.AddError("node 7 failed")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "node 3 failed" {
		t.Errorf("expected first error %q, got %q", "node 3 failed", snap.Progress.Errors[0])
	}
}

func TestJob_IncrNodesEnriched(t *testing.T) {
	job := &Job{ID: "incr-test", UpdatedAt: time.Now()}
	job.IncrNodesEnriched()
	job.IncrNodesEnriched()
	job.IncrNodesEnriched()

	snap := job.Snapshot()
	if snap.Progress.NodesEnriched != 3 {
		t.Errorf("expected 3 nodes enriched, got %d", snap.Progress.NodesEnriched)
	}
}

func TestJob_SetTotalNodes(t *testing.T) {
	job := &Job{ID: "total-test", UpdatedAt: time.Now()}
	job.SetTotalNodes(42)

	snap := job.Snapshot()
	if snap.Progress.TotalNodes != 42 {
		t.Errorf("expected 42 total nodes, got %d", snap.Progress.TotalNodes)
	}
}

func TestJob_FileData(t *testing.T) {
	job := &Job{ID: "data-test"}
	data := []byte("file content here")
	job.SetFileData(data)
	got := job.FileData()
	if string(got) != string(data) {
		t.Errorf("expected file data %q, got %q", data, got)
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	// Snapshot should always return non-nil errors slice.
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if len(snap.Progress.Errors) != 0 {
		t.Errorf("expected empty errors, got %d", len(snap.Progress.Errors))
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
}

func TestJobStore_GetMissing(t *testing.T) {
	store := NewJobStore(time.Hour)
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", UpdatedAt: time.Now()}
	store.Put(expired)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	// Add a fresh job.
	fresh := &Job{ID: "new", UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}

func TestNewJobID(t *testing.T) {
	a := NewJobID()
	b := NewJobID()
	if len(a) != 26 || len(b) != 26 {
		t.Fatalf("expected 26-char IDs, got %d and %d", len(a), len(b))
	}
	if a == b {
		t.Error("expected distinct IDs")
	}

	time.Sleep(2 * time.Millisecond)
	c := NewJobID()
	if a >= c {
		t.Errorf("expected IDs to sort by creation time: %q then %q", a, c)
	}
}

func TestWorker_ProcessWithoutEnricher(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	w := NewWorker(convert.DefaultRegistry(), nil, log, 2)

	job := &Job{
		ID:        NewJobID(),
		Status:    StatusQueued,
		Format:    convert.FormatHTML,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	job.SetFileData([]byte("<h1>T</h1><p>A</p><h2>S1</h2><p>B</p>"))

	w.Process(context.Background(), job)

	if job.Status != StatusCompleted {
		t.Fatalf("expected status %q, got %q (errors: %v)", StatusCompleted, job.Status, job.Snapshot().Progress.Errors)
	}
	nodes := job.Nodes()
	if len(nodes) != 2 {
		t.Fatalf("expected 2 flattened nodes, got %d", len(nodes))
	}
	if nodes[0].Title != "T" || nodes[1].Title != "S1" {
		t.Errorf("unexpected node titles: %q, %q", nodes[0].Title, nodes[1].Title)
	}
	if job.Enriched() != nil {
		t.Error("expected no enriched nodes without an enricher")
	}
}

func TestWorker_ProcessUnknownFormat(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	w := NewWorker(convert.DefaultRegistry(), nil, log, 2)

	job := &Job{ID: NewJobID(), Format: convert.Format("pptx"), UpdatedAt: time.Now()}
	job.SetFileData([]byte("x"))

	w.Process(context.Background(), job)

	if job.Status != StatusFailed {
		t.Fatalf("expected status %q, got %q", StatusFailed, job.Status)
	}
}

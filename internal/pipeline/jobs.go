package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/ChrisW-priv/html-chunking/internal/convert"
	"github.com/ChrisW-priv/html-chunking/internal/digest"
	"github.com/ChrisW-priv/html-chunking/internal/enrich"
)

// JobStatus represents the state of a chunking job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusConverting JobStatus = "converting"
	StatusChunking   JobStatus = "chunking"
	StatusFlattening JobStatus = "flattening"
	StatusEnriching  JobStatus = "enriching"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusPartial    JobStatus = "partial"
)

// Job tracks the state of a single document run.
type Job struct {
	mu sync.Mutex

	ID    string `json:"job_id"`
	DocID string `json:"doc_id"`

	Status   JobStatus      `json:"status"`
	Phase    string         `json:"phase"`
	Filename string         `json:"filename"`
	Format   convert.Format `json:"format"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	nodes    []digest.Node
	enriched []enrich.EnrichedNode
	errors   []string
}

// Progress tracks processing progress.
type Progress struct {
	TotalNodes    int      `json:"total_nodes"`
	NodesEnriched int      `json:"nodes_enriched"`
	Errors        []string `json:"errors"`
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// IncrNodesEnriched atomically increments the enriched-node counter.
func (j *Job) IncrNodesEnriched() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.NodesEnriched++
	j.UpdatedAt = time.Now()
}

// SetTotalNodes records the flattened node count.
func (j *Job) SetTotalNodes(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalNodes = n
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw document bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw document bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// SetNodes stores the flattened digest nodes.
func (j *Job) SetNodes(nodes []digest.Node) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.nodes = nodes
}

// Nodes returns the flattened digest nodes.
func (j *Job) Nodes() []digest.Node {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.nodes
}

// SetEnriched stores the enriched node sequence.
func (j *Job) SetEnriched(nodes []enrich.EnrichedNode) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.enriched = nodes
}

// Enriched returns the enriched node sequence, nil when enrichment did not run.
func (j *Job) Enriched() []enrich.EnrichedNode {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.enriched
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string         `json:"job_id"`
	DocID       string         `json:"doc_id"`
	Status      JobStatus      `json:"status"`
	Phase       string         `json:"phase"`
	Filename    string         `json:"filename"`
	Format      convert.Format `json:"format"`
	ContentHash string         `json:"content_hash,omitempty"`
	Progress    Progress       `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	return JobSnapshot{
		ID:          j.ID,
		DocID:       j.DocID,
		Status:      j.Status,
		Phase:       j.Phase,
		Filename:    j.Filename,
		Format:      j.Format,
		ContentHash: j.ContentHash,
		Progress: Progress{
			TotalNodes:    j.Progress.TotalNodes,
			NodesEnriched: j.Progress.NodesEnriched,
			Errors:        errs,
		},
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}

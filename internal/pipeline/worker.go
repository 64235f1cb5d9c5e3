package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ChrisW-priv/html-chunking/internal/convert"
	"github.com/ChrisW-priv/html-chunking/internal/digest"
	"github.com/ChrisW-priv/html-chunking/internal/enrich"
	"github.com/ChrisW-priv/html-chunking/internal/section"
)

// Worker processes a single document job.
type Worker struct {
	registry convert.Registry
	enricher *enrich.Client
	log      *slog.Logger

	maxConcurrentEnrich int
}

// NewWorker builds a worker. enricher may be nil, in which case jobs complete
// after flattening.
func NewWorker(registry convert.Registry, enricher *enrich.Client, log *slog.Logger, maxEnrich int) *Worker {
	return &Worker{
		registry:            registry,
		enricher:            enricher,
		log:                 log,
		maxConcurrentEnrich: maxEnrich,
	}
}

// Process runs the full pipeline for a job: convert, chunk, flatten, and
// optionally enrich.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID)

	job.SetStatus(StatusConverting, "converting")
	htmlData, err := w.registry.Convert(job.Format, bytes.NewReader(job.FileData()))
	if err != nil {
		log.Error("conversion failed", "format", job.Format, "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "converting")
		return
	}

	job.SetStatus(StatusChunking, "chunking")
	tree, err := section.ParseDocument(bytes.NewReader(htmlData))
	if err != nil {
		log.Error("chunking failed", "error", err)
		job.AddError(fmt.Sprintf("chunk: %s", err))
		job.SetStatus(StatusFailed, "chunking")
		return
	}

	job.SetStatus(StatusFlattening, "flattening")
	nodes, err := digest.Flatten(tree)
	if err != nil {
		log.Error("flattening failed", "error", err)
		job.AddError(fmt.Sprintf("flatten: %s", err))
		job.SetStatus(StatusFailed, "flattening")
		return
	}
	job.SetNodes(nodes)
	job.SetTotalNodes(len(nodes))
	log.Info("flattened document", "nodes", len(nodes))

	if w.enricher == nil {
		job.SetStatus(StatusCompleted, "done")
		return
	}

	// Enrich nodes with bounded concurrency. Enrichment failures degrade the
	// job to partial, never failed: the digest nodes themselves are done.
	job.SetStatus(StatusEnriching, "enriching")
	type nodeResult struct {
		idx        int
		enrichment *enrich.Enrichment
		err        error
	}
	results := make(chan nodeResult, len(nodes))
	sem := make(chan struct{}, w.maxConcurrentEnrich)

	for i, node := range nodes {
		sem <- struct{}{}
		go func(i int, node digest.Node) {
			defer func() { <-sem }()
			var enrichment *enrich.Enrichment
			var lastErr error
			for attempt := 0; attempt < MaxRetries; attempt++ {
				enrichment, lastErr = w.enricher.EnrichNode(ctx, node.SectionDigest)
				if lastErr == nil || !IsRetryable(lastErr) {
					break
				}
				log.Warn("retryable enrichment error", "node", node.DigestHash, "attempt", attempt, "error", lastErr)
				select {
				case <-time.After(Backoff(attempt)):
				case <-ctx.Done():
					results <- nodeResult{idx: i, err: ctx.Err()}
					return
				}
			}
			results <- nodeResult{idx: i, enrichment: enrichment, err: lastErr}
		}(i, node)
	}

	enriched := make([]enrich.EnrichedNode, len(nodes))
	hadErrors := false
	for range nodes {
		r := <-results
		job.IncrNodesEnriched()
		enriched[r.idx] = enrich.EnrichedNode{Node: nodes[r.idx]}
		if r.err != nil {
			log.Error("enrichment failed", "node", nodes[r.idx].DigestHash, "error", r.err)
			job.AddError(fmt.Sprintf("enrich %s: %s", nodes[r.idx].DigestHash, r.err))
			hadErrors = true
			continue
		}
		if r.enrichment != nil {
			enriched[r.idx].Enrichment = *r.enrichment
		}
	}
	job.SetEnriched(enriched)
	log.Info("enrichment complete", "nodes", len(nodes), "errors", hadErrors)

	if hadErrors {
		job.SetStatus(StatusPartial, "done")
	} else {
		job.SetStatus(StatusCompleted, "done")
	}
}

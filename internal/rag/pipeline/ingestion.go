// Package pipeline contains the two orchestrations of the RAG core: the
// background ingestion job (extract, chunk, embed, upsert) and the
// retrieval-augmented query (retrieve, prompt, generate).
package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"loglens/internal/apperrors"
	"loglens/internal/embedding"
	"loglens/internal/metrics"
	"loglens/internal/rag/interfaces"
	"loglens/internal/rag/schema"
	"loglens/internal/session"
	"loglens/pkg/logger"
)

// Ingestion runs one upload through the full pipeline as a background job.
// The job record in the session is its only externally observable side
// channel; stages execute strictly in sequence and progress moves through
// coarse milestones, not byte counts.
type Ingestion struct {
	Loader    interfaces.Loader
	Splitter  interfaces.Splitter
	Embedder  embedding.Embedding
	Index     interfaces.VectorIndex
	IndexName string
	Dimension int
	BatchSize int
	Provider  string
	Session   *session.Session
	Log       *logger.Logger
}

// Run executes the ingestion for the job with the given ID. It never returns
// an error to the caller: the triggering HTTP request has already been
// answered, so failures are recorded into the job record and the stored
// upload is removed.
func (p *Ingestion) Run(ctx context.Context, jobID string, doc *session.Document) {
	start := time.Now()

	// Index recreation wipes the previous document's vectors. A failure here
	// is logged and swallowed: ingestion proceeds against whatever index
	// state resulted, trading strict consistency for availability.
	p.advance(jobID, session.StageRecreatingIndex, 10)
	err := p.Index.Recreate(ctx, p.IndexName, p.Dimension)
	metrics.VectorStoreOperations.WithLabelValues("recreate", metrics.Outcome(err)).Inc()
	if err != nil {
		p.Log.WithError(err).Warn(fmt.Sprintf("could not recreate index %s before upload, continuing", p.IndexName))
	}

	p.advance(jobID, session.StageProcessingFile, 30)
	docs, err := p.Loader.Load(ctx, doc.StoredPath)
	if err != nil {
		p.fail(jobID, doc, start, err)
		return
	}

	chunks, err := p.Splitter.Split(ctx, docs)
	if err != nil {
		p.fail(jobID, doc, start, err)
		return
	}
	p.Log.Info(fmt.Sprintf("split %s into %d chunks", doc.Filename, len(chunks)))

	p.advance(jobID, session.StageLoadingToStore, 50)
	if err := p.upsertBatches(ctx, jobID, chunks); err != nil {
		p.fail(jobID, doc, start, err)
		return
	}

	p.advance(jobID, session.StageFinalizing, 90)
	p.Session.SetDocument(doc)

	elapsed := time.Since(start).Seconds()
	p.Session.UpdateJob(jobID, func(j *session.Job) {
		now := time.Now().UTC()
		j.Status = session.StatusCompleted
		j.Stage = session.StageCompleted
		j.Progress = 100
		j.ChunkCount = len(chunks)
		j.CompletedAt = &now
		j.ProcessingSeconds = elapsed
	})

	metrics.FileUploadsTotal.WithLabelValues(doc.Extension, "success").Inc()
	metrics.FileProcessingDuration.WithLabelValues(doc.Extension).Observe(elapsed)
	p.Log.Info(fmt.Sprintf("ingested %s: %d chunks in %.2fs", doc.Filename, len(chunks), elapsed))
}

// upsertBatches embeds and upserts the chunks in bounded batches, reporting
// progress per batch. Batching bounds peak request size and lets the status
// record move between the 50 and 90 percent milestones.
func (p *Ingestion) upsertBatches(ctx context.Context, jobID string, chunks []*schema.Document) error {
	batchSize := p.BatchSize
	if batchSize <= 0 {
		batchSize = 50
	}

	for offset := 0; offset < len(chunks); offset += batchSize {
		end := offset + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[offset:end]

		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = chunk.Text
		}

		vectors, err := p.Embedder.EmbedBatch(ctx, texts)
		metrics.EmbeddingOperations.WithLabelValues(p.Provider, metrics.Outcome(err)).Inc()
		if err != nil {
			return fmt.Errorf("failed to embed chunk batch: %w", err)
		}
		if len(vectors) != len(batch) {
			return fmt.Errorf("embedding provider returned %d vectors for %d chunks", len(vectors), len(batch))
		}
		for i, chunk := range batch {
			chunk.Embedding = vectors[i]
		}

		err = p.Index.AddDocuments(ctx, p.IndexName, batch)
		metrics.VectorStoreOperations.WithLabelValues("add", metrics.Outcome(err)).Inc()
		if err != nil {
			return err
		}

		progress := 50 + 40*end/len(chunks)
		p.Session.UpdateJob(jobID, func(j *session.Job) {
			j.Progress = progress
		})
	}

	return nil
}

func (p *Ingestion) advance(jobID string, stage session.Stage, progress int) {
	p.Session.UpdateJob(jobID, func(j *session.Job) {
		j.Stage = stage
		j.Progress = progress
	})
}

// fail records the terminal failure into the job record and removes the
// stored upload so no orphaned temp files accumulate.
func (p *Ingestion) fail(jobID string, doc *session.Document, start time.Time, err error) {
	p.Log.WithError(err).Error(fmt.Sprintf("ingestion of %s failed", doc.Filename))

	if doc.StoredPath != "" {
		if rmErr := os.Remove(doc.StoredPath); rmErr != nil && !os.IsNotExist(rmErr) {
			p.Log.WithError(rmErr).Warn("could not remove stored upload after failure")
		}
	}

	elapsed := time.Since(start).Seconds()
	p.Session.UpdateJob(jobID, func(j *session.Job) {
		now := time.Now().UTC()
		j.Status = session.StatusFailed
		j.Stage = session.StageFailed
		j.Error = err.Error()
		j.ErrorKind = string(apperrors.KindOf(err))
		j.CompletedAt = &now
		j.ProcessingSeconds = elapsed
	})

	metrics.FileUploadsTotal.WithLabelValues(doc.Extension, "error").Inc()
}

// Package service wires the RAG components together behind the operations
// the HTTP layer exposes: start an ingestion job for an upload and answer a
// question against the current document.
package service

import (
	"context"

	"github.com/google/uuid"

	"loglens/internal/apperrors"
	"loglens/internal/config"
	"loglens/internal/embedding"
	"loglens/internal/llm"
	"loglens/internal/rag/interfaces"
	"loglens/internal/rag/loaders"
	"loglens/internal/rag/pipeline"
	"loglens/internal/rag/splitters"
	"loglens/internal/session"
	"loglens/pkg/logger"
)

// Agent owns the single-document session and builds a fresh pipeline for
// each operation, so per-request provider and model overrides take effect
// without reinitializing anything global.
type Agent struct {
	cfg  *config.AppConfig
	sess *session.Session
	idx  interfaces.VectorIndex
	log  *logger.Logger

	// newLLM builds the chat client; replaced in tests.
	newLLM func(apiKey, model, baseURL string) (interfaces.LLM, error)
}

// New creates an Agent over an established vector index connection.
func New(cfg *config.AppConfig, sess *session.Session, idx interfaces.VectorIndex, log *logger.Logger) *Agent {
	return &Agent{
		cfg:  cfg,
		sess: sess,
		idx:  idx,
		log:  log,
		newLLM: func(apiKey, model, baseURL string) (interfaces.LLM, error) {
			return llm.NewGroq(apiKey, model, baseURL)
		},
	}
}

// Session returns the session owned by the agent.
func (a *Agent) Session() *session.Session {
	return a.sess
}

// Ingest validates the upload's pipeline configuration, registers a new job,
// and runs the ingestion in the background. The returned job record is the
// handle clients poll; the agent's contract ends at job creation, not job
// completion.
func (a *Agent) Ingest(doc *session.Document, provider string) (*session.Job, error) {
	if provider == "" {
		provider = a.cfg.Embedding.Provider
	}

	loader, err := loaders.ForPath(doc.StoredPath)
	if err != nil {
		return nil, err
	}

	embedder, dim, err := embedding.New(provider, &a.cfg.Embedding, a.log)
	if err != nil {
		return nil, err
	}

	job := session.NewJob(uuid.New().String(), doc.Filename)
	a.sess.PutJob(job)

	ing := &pipeline.Ingestion{
		Loader:    loader,
		Splitter:  splitters.NewRecursiveSplitter(a.cfg.Retrieval.ChunkSize, a.cfg.Retrieval.ChunkOverlap),
		Embedder:  embedder,
		Index:     a.idx,
		IndexName: a.idx.NameFor(provider),
		Dimension: dim,
		BatchSize: a.cfg.Retrieval.BatchSize,
		Provider:  provider,
		Session:   a.sess,
		Log:       a.log,
	}

	// Copy the handle before the runner starts; the runner mutates the
	// tracked record through the session mutex, not this copy.
	handle := *job
	go ing.Run(context.Background(), job.ID, doc)

	return &handle, nil
}

// Query answers a question against the currently loaded document, honoring
// per-request provider and chat model overrides.
func (a *Agent) Query(ctx context.Context, question, provider, model string) (*pipeline.Result, error) {
	if a.sess.Document() == nil {
		return nil, apperrors.New(apperrors.KindNoDocument,
			"No file uploaded. Please upload a file first.")
	}

	if provider == "" {
		provider = a.cfg.Embedding.Provider
	}
	if model == "" {
		model = a.cfg.Groq.Model
	}

	embedder, dim, err := embedding.New(provider, &a.cfg.Embedding, a.log)
	if err != nil {
		return nil, err
	}

	indexName := a.idx.NameFor(provider)
	if err := a.idx.EnsureExists(ctx, indexName, dim); err != nil {
		return nil, err
	}

	chat, err := a.newLLM(a.cfg.Groq.APIKey, model, a.cfg.Groq.BaseURL)
	if err != nil {
		return nil, err
	}

	q := &pipeline.Query{
		Embedder:  embedder,
		Index:     a.idx,
		IndexName: indexName,
		TopK:      a.cfg.Retrieval.TopK,
		LLM:       chat,
		Model:     model,
		Log:       a.log,
	}

	return q.Run(ctx, question)
}

package pipeline

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"loglens/internal/apperrors"
	"loglens/internal/embedding"
	"loglens/internal/metrics"
	"loglens/internal/rag/interfaces"
	"loglens/internal/rag/schema"
	"loglens/pkg/logger"
)

// sourcePreviewLength bounds the chunk content echoed back as a citation.
const sourcePreviewLength = 200

// promptTemplate instructs the model to answer from the retrieved context
// only and to say so when the context is insufficient. This reduces
// hallucination as a matter of policy; the model may still fail to comply.
const promptTemplate = `You are a helpful AI assistant that answers questions based on the provided context from files.

Context:
%s

Question: %s

Based on the context above, provide a clear and accurate answer. If the context doesn't contain enough information to answer the question, say so clearly. Be concise but thorough in your response.`

// Source is a citation for one retrieved chunk. Content is a bounded preview
// of the chunk text, not the full chunk.
type Source struct {
	Source     string `json:"source"`
	ChunkIndex int    `json:"chunkIndex"`
	Content    string `json:"content"`
}

// Result is the answer to one question together with its provenance.
type Result struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// Query answers a question from the currently indexed document: it retrieves
// the topK most similar chunks and composes them with the question into a
// single chat model call.
type Query struct {
	Embedder  embedding.Embedding
	Index     interfaces.VectorIndex
	IndexName string
	TopK      int
	LLM       interfaces.LLM
	Model     string
	Log       *logger.Logger
}

// Run executes the retrieval-augmented query.
func (q *Query) Run(ctx context.Context, question string) (*Result, error) {
	if strings.TrimSpace(question) == "" {
		return nil, apperrors.New(apperrors.KindValidation, "question is required")
	}

	vector, err := q.Embedder.Embed(ctx, question)
	metrics.EmbeddingOperations.WithLabelValues("query", metrics.Outcome(err)).Inc()
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	topK := q.TopK
	if topK <= 0 {
		topK = 5
	}

	docs, err := q.Index.Query(ctx, q.IndexName, vector, topK)
	metrics.VectorStoreOperations.WithLabelValues("query", metrics.Outcome(err)).Inc()
	if err != nil {
		return nil, err
	}
	q.Log.Info(fmt.Sprintf("retrieved %d chunks for question", len(docs)))

	answer, err := q.LLM.Generate(ctx, buildPrompt(question, docs))
	metrics.LLMRequests.WithLabelValues(q.Model, metrics.Outcome(err)).Inc()
	if err != nil {
		return nil, err
	}

	return &Result{
		Answer:  answer,
		Sources: buildSources(docs),
	}, nil
}

// buildPrompt fills the fixed template with the retrieved chunks as context.
func buildPrompt(question string, docs []*schema.Document) string {
	var sb strings.Builder
	for i, doc := range docs {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(doc.Text)
	}
	return fmt.Sprintf(promptTemplate, sb.String(), question)
}

func buildSources(docs []*schema.Document) []Source {
	sources := make([]Source, 0, len(docs))
	for _, doc := range docs {
		content := doc.Text
		if len(content) > sourcePreviewLength {
			content = truncateOnRune(content, sourcePreviewLength) + "..."
		}
		sources = append(sources, Source{
			Source:     doc.Source(),
			ChunkIndex: doc.ChunkIndex(),
			Content:    content,
		})
	}
	return sources
}

// truncateOnRune cuts s to at most max bytes without splitting a rune.
func truncateOnRune(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

package pipeline

import (
	"context"
	"sort"
	"sync"

	"loglens/internal/rag/schema"
)

// memoryIndex is an in-memory VectorIndex for tests. Query ranks stored
// documents by cosine similarity against the probe vector.
type memoryIndex struct {
	mu          sync.Mutex
	docs        map[string][]*schema.Document
	recreateErr error
	addErr      error
	recreates   int
}

func newMemoryIndex() *memoryIndex {
	return &memoryIndex{docs: make(map[string][]*schema.Document)}
}

func (f *memoryIndex) NameFor(provider string) string {
	return "test-index-" + provider
}

func (f *memoryIndex) EnsureExists(ctx context.Context, name string, dim int) error {
	return nil
}

func (f *memoryIndex) Recreate(ctx context.Context, name string, dim int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recreates++
	if f.recreateErr != nil {
		return f.recreateErr
	}
	f.docs[name] = nil
	return nil
}

func (f *memoryIndex) AddDocuments(ctx context.Context, name string, docs []*schema.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return f.addErr
	}
	for _, doc := range docs {
		stored := &schema.Document{
			ID:        doc.ID,
			Text:      doc.Text,
			Embedding: doc.Embedding,
			Metadata:  doc.CopyMetadata(),
		}
		f.docs[name] = append(f.docs[name], stored)
	}
	return nil
}

func (f *memoryIndex) Query(ctx context.Context, name string, embedding []float32, topK int) ([]*schema.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored := f.docs[name]
	ranked := make([]*schema.Document, len(stored))
	copy(ranked, stored)
	sort.SliceStable(ranked, func(i, j int) bool {
		return cosine(ranked[i].Embedding, embedding) > cosine(ranked[j].Embedding, embedding)
	})

	if topK > len(ranked) {
		topK = len(ranked)
	}

	results := make([]*schema.Document, 0, topK)
	for _, doc := range ranked[:topK] {
		md := doc.CopyMetadata()
		md[schema.MetadataKeyScore] = cosine(doc.Embedding, embedding)
		results = append(results, &schema.Document{
			ID:       doc.ID,
			Text:     doc.Text,
			Metadata: md,
		})
	}
	return results, nil
}

func (f *memoryIndex) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.docs[name])
}

func cosine(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var dot float32
	for i := range a {
		dot += a[i] * b[i]
	}
	return dot
}

// captureLLM records the prompt it was asked to answer.
type captureLLM struct {
	mu     sync.Mutex
	prompt string
	answer string
	err    error
}

func (f *captureLLM) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func (f *captureLLM) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.prompt
}

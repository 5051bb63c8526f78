package interfaces

import (
	"context"

	"loglens/internal/rag/schema"
)

// Loader is the interface for extracting the text of an uploaded file and
// converting it into a Document.
type Loader interface {
	Load(ctx context.Context, path string) ([]*schema.Document, error)
}

// Splitter is the interface for splitting loaded Documents into smaller
// chunk Documents.
type Splitter interface {
	Split(ctx context.Context, docs []*schema.Document) ([]*schema.Document, error)
}

// VectorIndex owns the lifecycle of a remote vector index and the storage and
// retrieval of embedded chunks. Index names are provider-qualified so that
// indexes created for embedding providers with different dimensionalities
// never collide.
type VectorIndex interface {
	// NameFor returns the deterministic index name for an embedding provider.
	NameFor(provider string) string

	// EnsureExists creates the named index with the given dimensionality if it
	// is absent and waits until it is queryable.
	EnsureExists(ctx context.Context, name string, dim int) error

	// Recreate drops the named index if present and creates a fresh one,
	// polling for deletion and readiness within bounded retry budgets.
	Recreate(ctx context.Context, name string, dim int) error

	// AddDocuments upserts embedded chunk documents into the named index.
	AddDocuments(ctx context.Context, name string, docs []*schema.Document) error

	// Query returns the topK chunks nearest to the given embedding, each with
	// its original text and metadata.
	Query(ctx context.Context, name string, embedding []float32, topK int) ([]*schema.Document, error)
}

// LLM is the interface for a chat model that can generate an answer for a
// fully composed prompt.
type LLM interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

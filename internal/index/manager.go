// Package index manages the lifecycle of the remote vector index: naming it
// per embedding provider, creating it on demand, recreating it before each
// new ingestion, and storing and querying embedded chunks. The index is a
// Milvus collection; one collection per provider suffix is active at a time
// and holds vectors for the current document only.
package index

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"loglens/internal/apperrors"
	"loglens/internal/config"
	"loglens/internal/embedding"
	"loglens/internal/rag/interfaces"
	"loglens/internal/rag/schema"
	"loglens/pkg/logger"
	"loglens/pkg/retry"
)

// Collection schema fields.
const (
	FieldID         = "id"
	FieldChunk      = "chunk"
	FieldSource     = "source"
	FieldChunkIndex = "chunk_index"
	FieldEmbedding  = "embedding"
)

const (
	// Deleting a collection is asynchronous on the remote side; poll until it
	// is gone before creating its replacement.
	deleteAttempts = 30
	// Creation plus index build takes longer than deletion.
	createAttempts = 60
	pollInterval   = time.Second

	maxChunkLength  = 65535
	maxSourceLength = 512
	maxIDLength     = 64
)

// Manager implements the VectorIndex interface over a Milvus connection.
type Manager struct {
	client   client.Client
	baseName string
	override bool
	log      *logger.Logger
}

// NewManager connects to Milvus and returns a Manager. When the operator has
// overridden the base index name, provider suffixing is disabled and the
// override is used verbatim.
func NewManager(ctx context.Context, cfg *config.MilvusConfig, override bool, log *logger.Logger) (*Manager, error) {
	c, err := client.NewClient(ctx, client.Config{Address: cfg.Address})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindIndexUnavailable,
			fmt.Sprintf("failed to connect to vector database at %s", cfg.Address), err)
	}

	return &Manager{
		client:   c,
		baseName: cfg.IndexName,
		override: override,
		log:      log,
	}, nil
}

// Close releases the Milvus connection.
func (m *Manager) Close() {
	if m.client != nil {
		_ = m.client.Close()
	}
}

// NameFor returns the index name for an embedding provider: the base name
// plus a provider suffix, or the operator override unmodified. The result is
// a pure function of the provider and the configured base name.
func (m *Manager) NameFor(provider string) string {
	if m.override {
		return m.baseName
	}
	return m.baseName + embedding.Normalize(provider).Suffix()
}

// EnsureExists creates the named index with the given dimensionality if it is
// absent and waits for it to become queryable. Creation is asynchronous on
// the remote service; querying before readiness fails or returns incomplete
// results.
func (m *Manager) EnsureExists(ctx context.Context, name string, dim int) error {
	exists, err := m.client.HasCollection(ctx, name)
	if err != nil {
		return apperrors.Wrap(apperrors.KindIndexUnavailable,
			"failed to list indexes", err)
	}
	if exists {
		return m.load(ctx, name)
	}

	m.log.Info(fmt.Sprintf("creating index %s with %d dimensions", name, dim))
	if err := m.create(ctx, name, dim); err != nil {
		return err
	}
	return m.awaitReady(ctx, name)
}

// Recreate drops the named index if present and creates a fresh one. Every
// new ingestion fully wipes prior vectors instead of appending, which is what
// keeps query results from ever mixing documents.
func (m *Manager) Recreate(ctx context.Context, name string, dim int) error {
	exists, err := m.client.HasCollection(ctx, name)
	if err != nil {
		return apperrors.Wrap(apperrors.KindIndexUnavailable,
			"failed to list indexes", err)
	}

	if exists {
		m.log.Info(fmt.Sprintf("dropping index %s before recreation", name))
		if err := m.client.DropCollection(ctx, name); err != nil {
			return apperrors.Wrap(apperrors.KindIndexUnavailable,
				fmt.Sprintf("failed to delete index %s", name), err)
		}

		err := retry.Do(ctx, deleteAttempts, pollInterval, func(ctx context.Context) error {
			stillThere, err := m.client.HasCollection(ctx, name)
			if err != nil {
				return err
			}
			if stillThere {
				return fmt.Errorf("index %s still exists", name)
			}
			return nil
		})
		if err != nil {
			return m.classifyPollFailure("deletion", name, err)
		}
	}

	if err := m.create(ctx, name, dim); err != nil {
		return err
	}
	return m.awaitReady(ctx, name)
}

// AddDocuments upserts embedded chunk documents into the named index. The
// chunk text and metadata are stored alongside the vector so retrieval can
// return the original content.
func (m *Manager) AddDocuments(ctx context.Context, name string, docs []*schema.Document) error {
	if len(docs) == 0 {
		return nil
	}

	ids := make([]string, len(docs))
	texts := make([]string, len(docs))
	sources := make([]string, len(docs))
	indexes := make([]int64, len(docs))
	vectors := make([][]float32, len(docs))

	dim := 0
	for i, doc := range docs {
		ids[i] = doc.ID
		texts[i] = truncate(doc.Text, maxChunkLength)
		sources[i] = truncate(doc.Source(), maxSourceLength)
		indexes[i] = int64(doc.ChunkIndex())
		vectors[i] = doc.Embedding
		if len(doc.Embedding) > dim {
			dim = len(doc.Embedding)
		}
	}

	_, err := m.client.Insert(ctx, name, "", /* default partition */
		entity.NewColumnVarChar(FieldID, ids),
		entity.NewColumnVarChar(FieldChunk, texts),
		entity.NewColumnVarChar(FieldSource, sources),
		entity.NewColumnInt64(FieldChunkIndex, indexes),
		entity.NewColumnFloatVector(FieldEmbedding, dim, vectors),
	)
	if err != nil {
		return apperrors.Wrap(apperrors.KindIndexUnavailable,
			fmt.Sprintf("failed to insert chunks into index %s", name), err)
	}

	if err := m.client.Flush(ctx, name, false); err != nil {
		return apperrors.Wrap(apperrors.KindIndexUnavailable,
			fmt.Sprintf("failed to flush index %s", name), err)
	}

	return nil
}

// Query returns the topK chunks nearest to the given embedding.
func (m *Manager) Query(ctx context.Context, name string, vector []float32, topK int) ([]*schema.Document, error) {
	if err := m.load(ctx, name); err != nil {
		return nil, err
	}

	sp, _ := entity.NewIndexAUTOINDEXSearchParam(1)
	results, err := m.client.Search(
		ctx, name, nil, "",
		[]string{FieldChunk, FieldSource, FieldChunkIndex},
		[]entity.Vector{entity.FloatVector(vector)},
		FieldEmbedding, entity.COSINE, topK, sp,
	)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindIndexUnavailable,
			fmt.Sprintf("failed to search index %s", name), err)
	}

	var docs []*schema.Document
	for _, res := range results {
		var chunks, sources []string
		var indexes []int64

		for _, field := range res.Fields {
			switch field.Name() {
			case FieldChunk:
				if col, ok := field.(*entity.ColumnVarChar); ok {
					chunks = col.Data()
				}
			case FieldSource:
				if col, ok := field.(*entity.ColumnVarChar); ok {
					sources = col.Data()
				}
			case FieldChunkIndex:
				if col, ok := field.(*entity.ColumnInt64); ok {
					indexes = col.Data()
				}
			}
		}

		for i := 0; i < res.ResultCount; i++ {
			doc := &schema.Document{
				Metadata: map[string]interface{}{
					schema.MetadataKeyScore: res.Scores[i],
				},
			}
			if i < len(chunks) {
				doc.Text = chunks[i]
			}
			if i < len(sources) {
				doc.Metadata[schema.MetadataKeySource] = sources[i]
			}
			if i < len(indexes) {
				doc.Metadata[schema.MetadataKeyChunkIndex] = indexes[i]
			}
			docs = append(docs, doc)
		}
	}

	return docs, nil
}

// create builds the collection schema and its vector index.
func (m *Manager) create(ctx context.Context, name string, dim int) error {
	collSchema := entity.NewSchema().
		WithName(name).
		WithDescription("chunks of the currently loaded document").
		WithField(entity.NewField().
			WithName(FieldID).
			WithDataType(entity.FieldTypeVarChar).
			WithMaxLength(maxIDLength).
			WithIsPrimaryKey(true)).
		WithField(entity.NewField().
			WithName(FieldChunk).
			WithDataType(entity.FieldTypeVarChar).
			WithMaxLength(maxChunkLength)).
		WithField(entity.NewField().
			WithName(FieldSource).
			WithDataType(entity.FieldTypeVarChar).
			WithMaxLength(maxSourceLength)).
		WithField(entity.NewField().
			WithName(FieldChunkIndex).
			WithDataType(entity.FieldTypeInt64)).
		WithField(entity.NewField().
			WithName(FieldEmbedding).
			WithDataType(entity.FieldTypeFloatVector).
			WithDim(int64(dim)))

	if err := m.client.CreateCollection(ctx, collSchema, entity.DefaultShardNumber); err != nil {
		return apperrors.Wrap(apperrors.KindIndexUnavailable,
			fmt.Sprintf("failed to create index %s", name), err)
	}

	idx, err := entity.NewIndexAUTOINDEX(entity.COSINE)
	if err != nil {
		return apperrors.Wrap(apperrors.KindIndexUnavailable,
			"failed to build vector index definition", err)
	}
	if err := m.client.CreateIndex(ctx, name, FieldEmbedding, idx, false); err != nil {
		return apperrors.Wrap(apperrors.KindIndexUnavailable,
			fmt.Sprintf("failed to create vector index on %s", name), err)
	}

	return nil
}

// awaitReady polls until the freshly created index accepts loads.
func (m *Manager) awaitReady(ctx context.Context, name string) error {
	err := retry.Do(ctx, createAttempts, pollInterval, func(ctx context.Context) error {
		exists, err := m.client.HasCollection(ctx, name)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("index %s not visible yet", name)
		}
		return m.client.LoadCollection(ctx, name, false)
	})
	if err != nil {
		return m.classifyPollFailure("readiness", name, err)
	}
	return nil
}

func (m *Manager) load(ctx context.Context, name string) error {
	if err := m.client.LoadCollection(ctx, name, false); err != nil {
		return apperrors.Wrap(apperrors.KindIndexUnavailable,
			fmt.Sprintf("failed to load index %s", name), err)
	}
	return nil
}

// classifyPollFailure maps an exhausted retry budget to a timeout and
// anything else to an index availability failure.
func (m *Manager) classifyPollFailure(phase, name string, err error) error {
	if _, ok := err.(*retry.ExhaustedError); ok {
		return apperrors.Wrap(apperrors.KindTimeout,
			fmt.Sprintf("timed out waiting for %s of index %s", phase, name), err)
	}
	return apperrors.Wrap(apperrors.KindIndexUnavailable,
		fmt.Sprintf("failed while waiting for %s of index %s", phase, name), err)
}

// truncate bounds s to max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// compile-time check to ensure Manager implements the VectorIndex interface
var _ interfaces.VectorIndex = (*Manager)(nil)

package schema

const (
	// MetadataKeySource is the key for the source file's base name.
	MetadataKeySource = "source"
	// MetadataKeyFullPath is the key for the absolute path of the stored upload.
	MetadataKeyFullPath = "full_path"
	// MetadataKeyChunkIndex is the key for the zero-based chunk sequence index.
	MetadataKeyChunkIndex = "chunk_index"
	// MetadataKeyTimestamp is the key for the ingestion timestamp (RFC3339).
	MetadataKeyTimestamp = "timestamp"
	// MetadataKeyScore is the key for the similarity score set at query time.
	MetadataKeyScore = "score"
)

// Document is the central data structure representing a piece of text and its
// associated data. It is the primary data carrier throughout the RAG pipeline:
// loaders emit one Document per uploaded file, the splitter turns it into
// chunk Documents, and the vector index stores and returns chunk Documents.
type Document struct {
	// ID is the unique identifier for this document or chunk.
	ID string

	// Text is the string content.
	Text string

	// Embedding is the vector representation of the text, filled in by the
	// embedding provider before the chunk is upserted.
	Embedding []float32

	// Metadata holds positional and source information about the document.
	Metadata map[string]interface{}
}

// Source returns the source file name recorded in the metadata, if any.
func (d *Document) Source() string {
	if s, ok := d.Metadata[MetadataKeySource].(string); ok {
		return s
	}
	return ""
}

// ChunkIndex returns the zero-based chunk index recorded in the metadata.
func (d *Document) ChunkIndex() int {
	switch v := d.Metadata[MetadataKeyChunkIndex].(type) {
	case int:
		return v
	case int64:
		return int(v)
	}
	return 0
}

// CopyMetadata returns a shallow copy of the document's metadata map so that
// derived documents never share the same map.
func (d *Document) CopyMetadata() map[string]interface{} {
	md := make(map[string]interface{}, len(d.Metadata))
	for k, v := range d.Metadata {
		md[k] = v
	}
	return md
}

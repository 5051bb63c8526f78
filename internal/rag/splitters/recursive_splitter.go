package splitters

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"loglens/internal/apperrors"
	"loglens/internal/rag/interfaces"
	"loglens/internal/rag/schema"
)

// defaultSeparators is the boundary preference for recursive splitting:
// paragraph, line, word, then raw character cuts as a last resort.
var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// RecursiveSplitter implements the Splitter interface by recursively breaking
// text on the strongest boundary available, targeting ChunkSize characters
// per chunk with ChunkOverlap characters shared between consecutive chunks.
// The output is a pure function of the input text and the split parameters.
type RecursiveSplitter struct {
	ChunkSize    int
	ChunkOverlap int
}

// NewRecursiveSplitter creates a RecursiveSplitter. The overlap is clamped
// below the chunk size so the split always makes forward progress.
func NewRecursiveSplitter(chunkSize, chunkOverlap int) *RecursiveSplitter {
	if chunkSize <= 0 {
		chunkSize = 2000
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 20
	}
	return &RecursiveSplitter{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
	}
}

// Split splits the loaded documents into chunk documents. The chunk index is
// zero-based and continuous across the whole upload, and every chunk records
// its source metadata plus the ingestion timestamp.
func (s *RecursiveSplitter) Split(ctx context.Context, docs []*schema.Document) ([]*schema.Document, error) {
	var total strings.Builder
	for _, doc := range docs {
		total.WriteString(doc.Text)
	}
	if strings.TrimSpace(total.String()) == "" {
		return nil, apperrors.New(apperrors.KindEmptyDocument,
			"document is empty or contains only whitespace")
	}

	now := time.Now().UTC().Format(time.RFC3339)

	var chunks []*schema.Document
	index := 0
	for _, doc := range docs {
		for _, text := range s.splitText(doc.Text, defaultSeparators) {
			md := doc.CopyMetadata()
			md[schema.MetadataKeyChunkIndex] = index
			md[schema.MetadataKeyTimestamp] = now

			chunks = append(chunks, &schema.Document{
				ID:       uuid.New().String(),
				Text:     text,
				Metadata: md,
			})
			index++
		}
	}

	return chunks, nil
}

// splitText breaks text on the first separator present in it, recursing with
// weaker separators on any piece still longer than the chunk size, and merges
// the resulting pieces back into overlapping chunks.
func (s *RecursiveSplitter) splitText(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var next []string
	for i, sep := range separators {
		if sep == "" || strings.Contains(text, sep) {
			separator = sep
			next = separators[i+1:]
			break
		}
	}

	splits := splitOn(text, separator)

	var final []string
	var good []string
	for _, piece := range splits {
		if len(piece) < s.ChunkSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			final = append(final, s.merge(good, separator)...)
			good = nil
		}
		if len(next) == 0 {
			final = append(final, piece)
		} else {
			final = append(final, s.splitText(piece, next)...)
		}
	}
	if len(good) > 0 {
		final = append(final, s.merge(good, separator)...)
	}

	return final
}

// merge greedily joins pieces into chunks of at most ChunkSize characters,
// carrying the tail pieces forward so consecutive chunks overlap by up to
// ChunkOverlap characters.
func (s *RecursiveSplitter) merge(splits []string, separator string) []string {
	sepLen := len(separator)

	var chunks []string
	var current []string
	total := 0

	for _, piece := range splits {
		extra := 0
		if len(current) > 0 {
			extra = sepLen
		}
		if total+len(piece)+extra > s.ChunkSize && len(current) > 0 {
			if chunk := joinPieces(current, separator); chunk != "" {
				chunks = append(chunks, chunk)
			}
			// Drop leading pieces until the retained tail fits inside the
			// overlap budget and leaves room for the next piece.
			for total > s.ChunkOverlap ||
				(total+len(piece)+extra > s.ChunkSize && total > 0) {
				total -= len(current[0])
				if len(current) > 1 {
					total -= sepLen
				}
				current = current[1:]
			}
		}
		if len(current) > 0 {
			total += sepLen
		}
		total += len(piece)
		current = append(current, piece)
	}

	if chunk := joinPieces(current, separator); chunk != "" {
		chunks = append(chunks, chunk)
	}

	return chunks
}

func joinPieces(pieces []string, separator string) string {
	return strings.TrimSpace(strings.Join(pieces, separator))
}

// splitOn splits text by the separator, or into single characters when the
// separator is empty. Empty fragments are dropped.
func splitOn(text, separator string) []string {
	var parts []string
	if separator == "" {
		for _, r := range text {
			parts = append(parts, string(r))
		}
		return parts
	}
	for _, part := range strings.Split(text, separator) {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

// compile-time check to ensure RecursiveSplitter implements the Splitter interface
var _ interfaces.Splitter = (*RecursiveSplitter)(nil)

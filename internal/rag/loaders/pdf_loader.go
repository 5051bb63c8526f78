package loaders

import (
	"bytes"
	"context"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"loglens/internal/apperrors"
	"loglens/internal/rag/interfaces"
	"loglens/internal/rag/schema"
)

// PdfLoader implements the Loader interface for PDF files.
type PdfLoader struct{}

// NewPdfLoader creates a new PdfLoader.
func NewPdfLoader() *PdfLoader {
	return &PdfLoader{}
}

// Load extracts the plain text of a PDF file into a single Document. A PDF
// whose extraction yields only whitespace (typically a scanned or image-only
// document) is an extraction failure, not an empty success.
func (l *PdfLoader) Load(ctx context.Context, path string) ([]*schema.Document, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindExtraction,
			"failed to parse PDF file", err)
	}
	defer f.Close()

	plain, err := reader.GetPlainText()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindExtraction,
			"failed to extract text from PDF file", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return nil, apperrors.Wrap(apperrors.KindExtraction,
			"failed to read extracted PDF text", err)
	}

	text := buf.String()
	if blank(text) {
		return nil, apperrors.New(apperrors.KindExtraction,
			"PDF contains no extractable text (it may be a scanned document)")
	}

	doc := &schema.Document{
		ID:   uuid.New().String(),
		Text: text,
		Metadata: map[string]interface{}{
			schema.MetadataKeySource:   filepath.Base(path),
			schema.MetadataKeyFullPath: path,
		},
	}

	return []*schema.Document{doc}, nil
}

// compile-time check to ensure PdfLoader implements the Loader interface
var _ interfaces.Loader = (*PdfLoader)(nil)

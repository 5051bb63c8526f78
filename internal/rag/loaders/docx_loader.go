package loaders

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/unidoc/unioffice/v2/document"

	"loglens/internal/apperrors"
	"loglens/internal/rag/interfaces"
	"loglens/internal/rag/schema"
	"loglens/pkg/logger"
)

// DocxLoader implements the Loader interface for Word documents. Paragraph
// and table text is extracted as raw text; anything else in the document
// (images, charts, embedded objects) is skipped with a logged warning.
type DocxLoader struct {
	log *logger.Logger
}

// NewDocxLoader creates a new DocxLoader.
func NewDocxLoader() *DocxLoader {
	return &DocxLoader{log: logger.New("docx_loader")}
}

// Load extracts the raw text of a Word document into a single Document.
func (l *DocxLoader) Load(ctx context.Context, path string) ([]*schema.Document, error) {
	doc, err := document.Open(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindExtraction,
			"failed to parse Word document", err)
	}
	defer doc.Close()

	var sb strings.Builder
	for _, p := range doc.Paragraphs() {
		for _, r := range p.Runs() {
			sb.WriteString(r.Text())
		}
		sb.WriteString("\n")
	}

	for _, tbl := range doc.Tables() {
		for _, row := range tbl.Rows() {
			var cells []string
			for _, cell := range row.Cells() {
				var cellText strings.Builder
				for _, p := range cell.Paragraphs() {
					for _, r := range p.Runs() {
						cellText.WriteString(r.Text())
					}
				}
				cells = append(cells, cellText.String())
			}
			sb.WriteString(strings.Join(cells, "\t"))
			sb.WriteString("\n")
		}
	}

	if n := len(doc.Images); n > 0 {
		l.log.Warn(fmt.Sprintf("skipped %d embedded image(s) in %s", n, filepath.Base(path)))
	}

	text := sb.String()
	if blank(text) {
		return nil, apperrors.New(apperrors.KindExtraction,
			"Word document contains no extractable text")
	}

	result := &schema.Document{
		ID:   uuid.New().String(),
		Text: text,
		Metadata: map[string]interface{}{
			schema.MetadataKeySource:   filepath.Base(path),
			schema.MetadataKeyFullPath: path,
		},
	}

	return []*schema.Document{result}, nil
}

// compile-time check to ensure DocxLoader implements the Loader interface
var _ interfaces.Loader = (*DocxLoader)(nil)

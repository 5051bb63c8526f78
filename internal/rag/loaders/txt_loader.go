package loaders

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"loglens/internal/rag/interfaces"
	"loglens/internal/rag/schema"
)

// TxtLoader implements the Loader interface for plain-text family files
// (.txt, .log, .csv, .json, .md). The bytes are passed through verbatim.
type TxtLoader struct{}

// NewTxtLoader creates a new TxtLoader.
func NewTxtLoader() *TxtLoader {
	return &TxtLoader{}
}

// Load reads the file at path and returns it as a single Document.
func (l *TxtLoader) Load(ctx context.Context, path string) ([]*schema.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc := &schema.Document{
		ID:   uuid.New().String(),
		Text: string(content),
		Metadata: map[string]interface{}{
			schema.MetadataKeySource:   filepath.Base(path),
			schema.MetadataKeyFullPath: path,
		},
	}

	return []*schema.Document{doc}, nil
}

// compile-time check to ensure TxtLoader implements the Loader interface
var _ interfaces.Loader = (*TxtLoader)(nil)

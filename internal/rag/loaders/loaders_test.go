package loaders

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loglens/internal/apperrors"
	"loglens/internal/rag/schema"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSupported(t *testing.T) {
	for _, ext := range []string{".txt", ".log", ".csv", ".json", ".md", ".pdf", ".doc", ".docx"} {
		assert.True(t, Supported(ext), "extension %s should be supported", ext)
	}
	assert.True(t, Supported(".TXT"))
	assert.True(t, Supported(".Pdf"))

	for _, ext := range []string{".exe", ".png", ".zip", ""} {
		assert.False(t, Supported(ext), "extension %q should be rejected", ext)
	}
}

func TestForPathDispatch(t *testing.T) {
	loader, err := ForPath("/tmp/app.log")
	require.NoError(t, err)
	assert.IsType(t, &TxtLoader{}, loader)

	loader, err = ForPath("/tmp/report.pdf")
	require.NoError(t, err)
	assert.IsType(t, &PdfLoader{}, loader)

	loader, err = ForPath("/tmp/notes.docx")
	require.NoError(t, err)
	assert.IsType(t, &DocxLoader{}, loader)
}

func TestForPathRejectsUnknownExtension(t *testing.T) {
	_, err := ForPath("/tmp/malware.exe")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	assert.Contains(t, err.Error(), SupportedList())
}

func TestTxtLoaderReadsVerbatim(t *testing.T) {
	content := "2026-08-30 12:00:01 ERROR connection refused\nsecond line\n"
	path := writeFile(t, "app.log", content)

	docs, err := NewTxtLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	assert.Equal(t, content, docs[0].Text)
	assert.Equal(t, "app.log", docs[0].Source())
	assert.Equal(t, path, docs[0].Metadata[schema.MetadataKeyFullPath])
	assert.NotEmpty(t, docs[0].ID)
}

func TestTxtLoaderMissingFile(t *testing.T) {
	_, err := NewTxtLoader().Load(context.Background(), filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)
}

func TestPdfLoaderRejectsGarbage(t *testing.T) {
	path := writeFile(t, "broken.pdf", "this is not a pdf")

	_, err := NewPdfLoader().Load(context.Background(), path)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindExtraction))
}

func TestDocxLoaderRejectsGarbage(t *testing.T) {
	path := writeFile(t, "broken.docx", "this is not a docx")

	_, err := NewDocxLoader().Load(context.Background(), path)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindExtraction))
}

func TestBlank(t *testing.T) {
	assert.True(t, blank(""))
	assert.True(t, blank("  \n\t "))
	assert.False(t, blank("x"))
}

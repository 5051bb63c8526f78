// Package loaders converts uploaded files into plain-text Documents. Each
// loader handles one family of file formats; ForPath dispatches on the file
// extension. Binary-format parsing is delegated to external libraries, the
// loaders only enforce the contract that extraction yields usable text.
package loaders

import (
	"path/filepath"
	"strings"

	"loglens/internal/apperrors"
	"loglens/internal/rag/interfaces"
)

// textExtensions are read verbatim as UTF-8 text.
var textExtensions = map[string]bool{
	".txt": true,
	".log": true,
	".csv": true,
	".json": true,
	".md":  true,
}

// supportedExtensions is the upload whitelist. Anything else is rejected at
// the HTTP boundary before a loader ever runs.
var supportedExtensions = map[string]bool{
	".txt": true, ".log": true, ".csv": true, ".json": true, ".md": true,
	".pdf": true, ".doc": true, ".docx": true,
}

// Supported reports whether the extension (with leading dot, any case) is an
// accepted upload type.
func Supported(ext string) bool {
	return supportedExtensions[strings.ToLower(ext)]
}

// SupportedList returns the accepted extensions for error messages.
func SupportedList() string {
	return ".txt .log .csv .json .md .pdf .doc .docx"
}

// ForPath returns the loader responsible for the file at path, dispatching on
// its extension.
func ForPath(path string) (interfaces.Loader, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case textExtensions[ext]:
		return NewTxtLoader(), nil
	case ext == ".pdf":
		return NewPdfLoader(), nil
	case ext == ".doc", ext == ".docx":
		return NewDocxLoader(), nil
	default:
		return nil, apperrors.Newf(apperrors.KindValidation,
			"unsupported file type %q. Supported formats: %s", ext, SupportedList())
	}
}

// blank reports whether extracted text contains no usable content. Scanned or
// image-only PDFs commonly extract to whitespace.
func blank(text string) bool {
	return strings.TrimSpace(text) == ""
}

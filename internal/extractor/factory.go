package extractor

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/digimosa/doc-redact/internal/models"
)

// Factory hands out the extractor for a document based on its extension.
type Factory struct {
	extractors map[string]Extractor
}

// NewFactory creates a factory with the PDF and image extractors registered
// for every accepted extension.
func NewFactory() *Factory {
	f := &Factory{extractors: make(map[string]Extractor)}
	pdfx := &PDFExtractor{}
	for _, ext := range models.AllowedExtensions {
		if ext == ".pdf" {
			f.Register(ext, pdfx)
		} else {
			f.Register(ext, NewImageExtractor(ext))
		}
	}
	return f
}

// Register binds ext (e.g. ".pdf") to e, replacing any previous binding.
func (f *Factory) Register(ext string, e Extractor) {
	f.extractors[strings.ToLower(ext)] = e
}

// ForFile returns the extractor for name along with its lower-cased extension.
func (f *Factory) ForFile(name string) (Extractor, string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	e, ok := f.extractors[ext]
	if !ok {
		return nil, ext, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return e, ext, nil
}

// IsSupported checks if the file extension has a registered extractor
func (f *Factory) IsSupported(ext string) bool {
	_, ok := f.extractors[strings.ToLower(ext)]
	return ok
}

package extractor

import (
	"errors"

	"github.com/digimosa/doc-redact/internal/models"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrContentMismatch   = errors.New("file content does not match its extension")
)

// Extraction is the text recovered from a document.
type Extraction struct {
	Text      string
	Pages     int
	MediaType string
}

// Extractor pulls text and visual regions out of a document.
type Extractor interface {
	Extract(data []byte) (*Extraction, error)
	DetectVisual(data []byte) ([]models.VisualDetection, error)
}

// sanitizeText replaces control characters with spaces so regexes see
// clean word boundaries. Newlines, tabs and non-ASCII bytes are kept.
func sanitizeText(s string) string {
	out := []byte(s)
	for i, b := range out {
		if (b >= 32 && b <= 126) || b == '\t' || b == '\n' || b == '\r' || b > 127 {
			continue
		}
		out[i] = ' '
	}
	return string(out)
}

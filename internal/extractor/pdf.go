package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/digimosa/doc-redact/internal/models"
)

// PDFExtractor reads text and annotations from PDF documents.
type PDFExtractor struct{}

func openPDF(data []byte) (*pdf.Reader, error) {
	if _, err := VerifyContent(".pdf", data); err != nil {
		return nil, err
	}
	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return doc, nil
}

func (e *PDFExtractor) Extract(data []byte) (*Extraction, error) {
	doc, err := openPDF(data)
	if err != nil {
		return nil, err
	}

	totalPages := doc.NumPage()
	pages := make([]string, 0, totalPages)
	for i := 1; i <= totalPages; i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			// Skip page on error
			continue
		}
		pages = append(pages, sanitizeText(content))
	}

	return &Extraction{
		Text:      strings.Join(pages, "\n"),
		Pages:     totalPages,
		MediaType: KindPDF.MediaType(),
	}, nil
}

// annotationKinds maps PDF annotation subtypes to visual finding types.
var annotationKinds = map[string]struct {
	label      string
	confidence float64
}{
	"Stamp":     {"stamp", 0.85},
	"Ink":       {"handwriting", 0.75},
	"Watermark": {"watermark", 0.7},
}

// DetectVisual reports signature fields, stamps, ink and watermarks with
// their page rectangles.
func (e *PDFExtractor) DetectVisual(data []byte) ([]models.VisualDetection, error) {
	doc, err := openPDF(data)
	if err != nil {
		return nil, err
	}

	var found []models.VisualDetection
	for i := 1; i <= doc.NumPage(); i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}
		annots := page.V.Key("Annots")
		for j := 0; j < annots.Len(); j++ {
			a := annots.Index(j)
			if v, ok := classifyAnnotation(a); ok {
				v.Page = i
				v.BBox = rectOf(a.Key("Rect"))
				found = append(found, v)
			}
		}
	}
	return found, nil
}

func classifyAnnotation(a pdf.Value) (models.VisualDetection, bool) {
	subtype := a.Key("Subtype").Name()

	if subtype == "Widget" {
		ft := a.Key("FT").Name()
		if ft == "" {
			ft = a.Key("Parent").Key("FT").Name()
		}
		if ft != "Sig" {
			return models.VisualDetection{}, false
		}
		desc := "Signature field"
		if name := a.Key("T").Text(); name != "" {
			desc = fmt.Sprintf("Signature field %q", name)
		}
		return models.VisualDetection{
			Type:        "signature",
			Confidence:  0.9,
			Method:      models.MethodAnnotation,
			Description: desc,
		}, true
	}

	kind, ok := annotationKinds[subtype]
	if !ok {
		return models.VisualDetection{}, false
	}
	return models.VisualDetection{
		Type:        kind.label,
		Confidence:  kind.confidence,
		Method:      models.MethodAnnotation,
		Description: subtype + " annotation",
	}, true
}

func rectOf(v pdf.Value) models.BoundingBox {
	var box models.BoundingBox
	if v.Len() < 4 {
		return box
	}
	for i := 0; i < 4; i++ {
		box[i] = v.Index(i).Float64()
	}
	return box
}

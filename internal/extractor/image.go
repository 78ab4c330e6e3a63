package extractor

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"sort"
	"strconv"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"

	"github.com/digimosa/doc-redact/internal/models"
)

// ImageExtractor handles raster images. There is no OCR, so the text of an
// image is whatever its EXIF metadata carries. The zero value accepts any
// supported image kind.
type ImageExtractor struct {
	ext string
}

// NewImageExtractor returns an extractor that only accepts content matching
// the image type named by ext.
func NewImageExtractor(ext string) *ImageExtractor {
	return &ImageExtractor{ext: ext}
}

func (e *ImageExtractor) kindOf(data []byte) (Kind, error) {
	if e.ext != "" {
		return VerifyContent(e.ext, data)
	}
	kind := DetectKind(data)
	if kind == KindUnknown || kind == KindPDF {
		return kind, fmt.Errorf("%w: not an image", ErrContentMismatch)
	}
	return kind, nil
}

// Free-text EXIF tags that commonly hold personal data.
var textTags = map[string]bool{
	"Artist":           true,
	"Copyright":        true,
	"ImageDescription": true,
	"UserComment":      true,
	"XPAuthor":         true,
	"XPComment":        true,
	"XPSubject":        true,
	"OwnerName":        true,
	"CameraOwnerName":  true,
	"BodySerialNumber": true,
}

func readExif(rs io.ReadSeeker) ([]exif.ExifTag, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	tags, _, err := exif.GetFlatExifDataUniversalSearchWithReadSeeker(rs, nil, true)
	if err != nil {
		if isNoExif(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read exif: %w", err)
	}
	return tags, nil
}

func isNoExif(err error) bool {
	if errors.Is(err, exif.ErrNoExif) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no exif")
}

func (e *ImageExtractor) Extract(data []byte) (*Extraction, error) {
	kind, err := e.kindOf(data)
	if err != nil {
		return nil, err
	}

	tags, err := readExif(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	var lines []string
	for _, tag := range tags {
		if !textTags[tag.TagName] {
			continue
		}
		value := strings.TrimSpace(strings.Trim(tag.Formatted, "[]\""))
		if value == "" {
			continue
		}
		lines = append(lines, tag.TagName+": "+value)
	}
	sort.Strings(lines)

	return &Extraction{
		Text:      sanitizeText(strings.Join(lines, "\n")),
		Pages:     1,
		MediaType: kind.MediaType(),
	}, nil
}

// DetectVisual flags location and device identity metadata. Findings cover
// the whole image since the data is not tied to a region.
func (e *ImageExtractor) DetectVisual(data []byte) ([]models.VisualDetection, error) {
	if _, err := e.kindOf(data); err != nil {
		return nil, err
	}
	tags, err := readExif(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, nil
	}

	w, h := imageSize(data, tags)
	box := models.BoundingBox{0, 0, float64(w), float64(h)}

	var gps, device []string
	for _, tag := range tags {
		name := tag.TagName
		switch {
		case strings.HasPrefix(name, "GPS") || strings.Contains(tag.IfdPath, "GPS"):
			if name != "GPSVersionID" {
				gps = append(gps, name)
			}
		case name == "Make" || name == "Model" || strings.Contains(strings.ToLower(name), "serial"):
			device = append(device, name)
		}
	}

	var found []models.VisualDetection
	if len(gps) > 0 {
		found = append(found, models.VisualDetection{
			Type:        "gps_location",
			Page:        1,
			BBox:        box,
			Confidence:  0.95,
			Method:      models.MethodMetadata,
			Description: "Embedded GPS coordinates (" + strings.Join(gps, ", ") + ")",
		})
	}
	if len(device) > 0 {
		found = append(found, models.VisualDetection{
			Type:        "device_identity",
			Page:        1,
			BBox:        box,
			Confidence:  0.8,
			Method:      models.MethodMetadata,
			Description: "Capturing device details (" + strings.Join(device, ", ") + ")",
		})
	}
	return found, nil
}

// imageSize tries the stdlib decoders, then the BMP header, then EXIF
// dimension tags. Unknown sizes come back as zero.
func imageSize(data []byte, tags []exif.ExifTag) (int, int) {
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		return cfg.Width, cfg.Height
	}
	if DetectKind(data) == KindBMP && len(data) >= 26 {
		w := int32(binary.LittleEndian.Uint32(data[18:22]))
		h := int32(binary.LittleEndian.Uint32(data[22:26]))
		if h < 0 {
			h = -h
		}
		return int(w), int(h)
	}

	var w, h int
	for _, tag := range tags {
		n, err := strconv.Atoi(strings.TrimSpace(tag.FormattedFirst))
		if err != nil {
			continue
		}
		switch tag.TagName {
		case "ImageWidth", "PixelXDimension":
			if w == 0 {
				w = n
			}
		case "ImageLength", "PixelYDimension":
			if h == 0 {
				h = n
			}
		}
	}
	return w, h
}

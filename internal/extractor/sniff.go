package extractor

import (
	"bytes"
	"fmt"
	"strings"
)

// Kind identifies a supported document type by its signature.
type Kind int

const (
	KindUnknown Kind = iota
	KindPDF
	KindJPEG
	KindPNG
	KindTIFF
	KindBMP
)

func (k Kind) String() string {
	switch k {
	case KindPDF:
		return "pdf"
	case KindJPEG:
		return "jpeg"
	case KindPNG:
		return "png"
	case KindTIFF:
		return "tiff"
	case KindBMP:
		return "bmp"
	default:
		return "unknown"
	}
}

// MediaType returns the MIME type for the kind.
func (k Kind) MediaType() string {
	switch k {
	case KindPDF:
		return "application/pdf"
	case KindJPEG:
		return "image/jpeg"
	case KindPNG:
		return "image/png"
	case KindTIFF:
		return "image/tiff"
	case KindBMP:
		return "image/bmp"
	default:
		return "application/octet-stream"
	}
}

var (
	pdfSig    = []byte("%PDF-")
	pngSig    = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}
	jpegSig   = []byte{0xff, 0xd8, 0xff}
	tiffSigLE = []byte{0x49, 0x49, 0x2a, 0x00}
	tiffSigBE = []byte{0x4d, 0x4d, 0x00, 0x2a}
	bmpSig    = []byte("BM")
)

// DetectKind inspects the leading bytes of a document for known signatures.
func DetectKind(header []byte) Kind {
	switch {
	case bytes.HasPrefix(header, pdfSig):
		return KindPDF
	case bytes.HasPrefix(header, jpegSig):
		return KindJPEG
	case bytes.HasPrefix(header, pngSig):
		return KindPNG
	case bytes.HasPrefix(header, tiffSigLE), bytes.HasPrefix(header, tiffSigBE):
		return KindTIFF
	case bytes.HasPrefix(header, bmpSig):
		return KindBMP
	default:
		return KindUnknown
	}
}

// KindForExtension maps an accepted extension to the kind it must contain.
func KindForExtension(ext string) Kind {
	switch strings.ToLower(ext) {
	case ".pdf":
		return KindPDF
	case ".jpg", ".jpeg":
		return KindJPEG
	case ".png":
		return KindPNG
	case ".tiff":
		return KindTIFF
	case ".bmp":
		return KindBMP
	default:
		return KindUnknown
	}
}

// VerifyContent checks that data really is the type its extension claims.
func VerifyContent(ext string, data []byte) (Kind, error) {
	want := KindForExtension(ext)
	got := DetectKind(data)
	if want == KindUnknown || got != want {
		return got, fmt.Errorf("%w: %s file looks like %s", ErrContentMismatch, ext, got)
	}
	return got, nil
}

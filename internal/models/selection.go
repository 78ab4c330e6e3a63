package models

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// AllowedExtensions are the document types the redactor accepts.
var AllowedExtensions = []string{".pdf", ".png", ".jpg", ".jpeg", ".bmp", ".tiff"}

// MaxUploadBytes is the largest accepted document.
const MaxUploadBytes int64 = 50 << 20

var (
	ErrSelectionRejected = errors.New("selection rejected")
	ErrUnsupportedType   = fmt.Errorf("%w: unsupported file type", ErrSelectionRejected)
	ErrFileTooLarge      = fmt.Errorf("%w: file too large", ErrSelectionRejected)
	ErrEmptyFile         = fmt.Errorf("%w: file is empty", ErrSelectionRejected)
)

// IsAllowedExtension reports whether ext (with leading dot, any case) is accepted.
func IsAllowedExtension(ext string) bool {
	ext = strings.ToLower(ext)
	for _, a := range AllowedExtensions {
		if a == ext {
			return true
		}
	}
	return false
}

// ValidateSelection checks a candidate document against the allow-list and
// size limit. A maxBytes of zero means MaxUploadBytes.
func ValidateSelection(name string, size, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = MaxUploadBytes
	}
	ext := filepath.Ext(name)
	if !IsAllowedExtension(ext) {
		return fmt.Errorf("%w %q (allowed: %s)", ErrUnsupportedType, ext, strings.Join(AllowedExtensions, ", "))
	}
	if size <= 0 {
		return ErrEmptyFile
	}
	if size > maxBytes {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, size, maxBytes)
	}
	return nil
}

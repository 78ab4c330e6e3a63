package controller

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/digimosa/doc-redact/internal/extractor"
	"github.com/digimosa/doc-redact/internal/models"
)

// ErrSelectionRejected marks files the selection widget must refuse.
var ErrSelectionRejected = models.ErrSelectionRejected

// ValidateSelection applies the extension allow-list and size limit.
func ValidateSelection(name string, size, maxBytes int64) error {
	return models.ValidateSelection(name, size, maxBytes)
}

// SelectPath turns a local path into a validated selection.
func SelectPath(path string, maxBytes int64) (models.SelectedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return models.SelectedFile{}, err
	}
	if info.IsDir() {
		return models.SelectedFile{}, fmt.Errorf("%w: %s is a directory", ErrSelectionRejected, path)
	}
	name := filepath.Base(path)
	if err := ValidateSelection(name, info.Size(), maxBytes); err != nil {
		return models.SelectedFile{}, err
	}
	return models.SelectedFile{
		Name:      name,
		Size:      info.Size(),
		MediaType: extractor.KindForExtension(filepath.Ext(name)).MediaType(),
		Path:      path,
	}, nil
}

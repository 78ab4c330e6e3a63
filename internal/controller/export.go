package controller

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/digimosa/doc-redact/internal/reporting"
)

// Artifact is a downloadable report.
type Artifact struct {
	Name    string
	Content []byte
}

// Save writes the artifact into dir and returns its path.
func (a Artifact) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, a.Name)
	if err := os.WriteFile(path, a.Content, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// ExportReport renders the stored audit log as the text report. ok is false
// when there is no result to export.
func (c *Controller) ExportReport() (Artifact, bool) {
	if !c.CanExport() {
		return Artifact{}, false
	}

	var buf bytes.Buffer
	if err := reporting.RenderText(&buf, c.result.AuditLog, c.report); err != nil {
		c.log.WithField("error", err).Error("failed to render report")
		return Artifact{}, false
	}
	return Artifact{
		Name:    reporting.ReportName(c.file.Name),
		Content: buf.Bytes(),
	}, true
}

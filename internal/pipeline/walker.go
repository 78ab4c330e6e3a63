package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/digimosa/doc-redact/internal/models"
)

func (b *Batch) walkFiles(ctx context.Context, roots []string) {
	defer close(b.jobs)

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			b.results <- BatchResult{Path: root, Err: err}
			continue
		}
		if !info.IsDir() {
			// Explicitly named files are queued as-is so rejections get reported.
			if !b.enqueue(ctx, root) {
				return
			}
			continue
		}

		err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				b.svc.log.WithFields(logrus.Fields{"path": path, "error": err}).Warn("error accessing path")
				return nil // Continue walking
			}
			if d.IsDir() || !models.IsAllowedExtension(filepath.Ext(path)) {
				return nil
			}
			if !b.enqueue(ctx, path) {
				return filepath.SkipAll
			}
			return nil
		})
		if err != nil {
			b.svc.log.WithField("error", err).Warn("error walking directory")
		}
	}
}

func (b *Batch) enqueue(ctx context.Context, path string) bool {
	select {
	case <-ctx.Done():
		return false
	case b.jobs <- path:
		return true
	}
}

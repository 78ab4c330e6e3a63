package pipeline

import (
	"context"
	"time"

	"github.com/digimosa/doc-redact/internal/models"
)

func (b *Batch) worker(ctx context.Context) {
	defer b.wg.Done()

	for path := range b.jobs {
		start := time.Now()
		res := BatchResult{Path: path}
		if err := ctx.Err(); err != nil {
			res.Err = err
		} else {
			res.Result, res.Err = b.svc.Detect(ctx, models.SelectedFile{Name: path, Path: path})
		}
		res.Duration = time.Since(start)
		b.results <- res
	}
}

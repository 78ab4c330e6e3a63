package pipeline

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/digimosa/doc-redact/internal/models"
)

// BatchResult is the outcome for one file of a batch.
type BatchResult struct {
	Path     string
	Result   *models.DetectionResult
	Err      error
	Duration time.Duration
}

// Batch processes many files through a Service with a fixed worker pool.
type Batch struct {
	svc     *Service
	workers int
	jobs    chan string
	results chan BatchResult
	wg      sync.WaitGroup
}

// RunBatch expands paths (directories are walked for supported files) and
// processes every file concurrently. Results are sorted by path.
func (s *Service) RunBatch(ctx context.Context, paths []string, workers int) []BatchResult {
	if workers < 1 {
		workers = 1
	}
	b := &Batch{
		svc:     s,
		workers: workers,
		jobs:    make(chan string, workers*4), // Buffer relative to workers
		results: make(chan BatchResult, workers*4),
	}

	for i := 0; i < b.workers; i++ {
		b.wg.Add(1)
		go b.worker(ctx)
	}
	go b.walkFiles(ctx, paths)
	go func() {
		b.wg.Wait()
		close(b.results)
	}()

	var out []BatchResult
	for res := range b.results {
		entry := s.log.WithFields(logrus.Fields{"path": res.Path, "took": res.Duration.String()})
		if res.Err != nil {
			entry.WithField("error", res.Err).Warn("file failed")
		} else {
			entry.WithField("findings", res.Result.AuditLog.TotalDetections()).Info("file done")
		}
		out = append(out, res)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

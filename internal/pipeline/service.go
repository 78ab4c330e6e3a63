package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/digimosa/doc-redact/internal/logging"
	"github.com/digimosa/doc-redact/internal/models"
)

// Recorder persists completed runs.
type Recorder interface {
	SaveRun(ctx context.Context, log *models.AuditLog, redactedPath string) (uint, error)
}

// Publisher announces completed runs to other systems.
type Publisher interface {
	PublishRunCompleted(ctx context.Context, runID uint, log *models.AuditLog) error
}

// Service turns uploads into detection results: it runs the pipeline,
// writes the redacted artifact and records the run.
type Service struct {
	pipeline  *Pipeline
	outputDir string
	maxBytes  int64
	recorder  Recorder
	publisher Publisher
	log       *logrus.Entry
}

type ServiceOption func(*Service)

func WithRecorder(r Recorder) ServiceOption {
	return func(s *Service) { s.recorder = r }
}

func WithPublisher(p Publisher) ServiceOption {
	return func(s *Service) { s.publisher = p }
}

func WithMaxBytes(n int64) ServiceOption {
	return func(s *Service) { s.maxBytes = n }
}

func NewService(p *Pipeline, outputDir string, opts ...ServiceOption) *Service {
	s := &Service{
		pipeline:  p,
		outputDir: outputDir,
		maxBytes:  models.MaxUploadBytes,
		log:       logging.Component("service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Detect reads the selected file from disk and processes it.
func (s *Service) Detect(ctx context.Context, file models.SelectedFile) (*models.DetectionResult, error) {
	data, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file.Path, err)
	}
	return s.ProcessUpload(ctx, file.Name, data)
}

// ProcessUpload validates and processes one document.
func (s *Service) ProcessUpload(ctx context.Context, name string, data []byte) (*models.DetectionResult, error) {
	if err := models.ValidateSelection(name, int64(len(data)), s.maxBytes); err != nil {
		return nil, err
	}

	auditLog, redacted, err := s.pipeline.Process(ctx, Document{Name: name, Data: data})
	if err != nil {
		return nil, err
	}

	path, err := s.writeArtifact(name, redacted)
	if err != nil {
		return nil, err
	}
	auditLog.RedactedOutput = filepath.Base(path)

	var runID uint
	if s.recorder != nil {
		runID, err = s.recorder.SaveRun(ctx, auditLog, path)
		if err != nil {
			return nil, fmt.Errorf("record run: %w", err)
		}
	}

	if s.publisher != nil {
		if err := s.publisher.PublishRunCompleted(ctx, runID, auditLog); err != nil {
			// Events are best effort; the run itself succeeded.
			s.log.WithFields(logrus.Fields{"run_id": runID, "error": err}).Warn("failed to publish run event")
		}
	}

	return &models.DetectionResult{
		Status:       "success",
		RunID:        runID,
		RedactedFile: auditLog.RedactedOutput,
		AuditLog:     auditLog,
	}, nil
}

// RedactedName is the artifact name for a document, e.g. redacted_scan.txt.
func RedactedName(document string) string {
	base := filepath.Base(document)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return "redacted_" + stem + ".txt"
}

func (s *Service) writeArtifact(name, redacted string) (string, error) {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	dir, err := os.MkdirTemp(s.outputDir, time.Now().UTC().Format("20060102T150405")+"-")
	if err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, RedactedName(name))
	if err := os.WriteFile(path, []byte(redacted), 0o644); err != nil {
		return "", fmt.Errorf("write redacted file: %w", err)
	}
	return path, nil
}

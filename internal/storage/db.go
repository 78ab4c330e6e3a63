package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/digimosa/doc-redact/internal/models"
)

var ErrRunNotFound = errors.New("run not found")

// RunModel is one processed document.
type RunModel struct {
	ID                uint             `gorm:"primaryKey" json:"id"`
	Document          string           `json:"document"`
	MediaType         string           `json:"media_type"`
	FileSize          int64            `json:"file_size"`
	RiskLevel         string           `json:"risk_level"`
	ComplianceStatus  string           `json:"compliance_status"`
	OverallConfidence float64          `json:"overall_confidence"`
	TotalTextPII      int              `json:"total_text_pii"`
	TotalVisualPII    int              `json:"total_visual_pii"`
	ProcessingMillis  int64            `json:"processing_millis"`
	RedactedPath      string           `json:"-"`
	AuditJSON         string           `gorm:"type:text" json:"-"`
	CreatedAt         time.Time        `json:"created_at"`
	Detections        []DetectionModel `gorm:"foreignKey:RunID" json:"detections,omitempty"`
}

// DetectionModel is a single text or visual finding of a run.
type DetectionModel struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	RunID      uint    `gorm:"index" json:"run_id"`
	Kind       string  `json:"kind"` // "text" or "visual"
	Category   string  `json:"category"`
	Value      string  `json:"value,omitempty"`
	Method     string  `json:"method"`
	Confidence float64 `json:"confidence"`
	Location   string  `json:"location"`
}

// Store keeps run history in SQLite.
type Store struct {
	db *gorm.DB
}

func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	if err := db.AutoMigrate(&RunModel{}, &DetectionModel{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveRun stores the audit log and its findings in one transaction.
func (s *Store) SaveRun(ctx context.Context, log *models.AuditLog, redactedPath string) (uint, error) {
	blob, err := json.Marshal(log)
	if err != nil {
		return 0, err
	}

	run := &RunModel{
		Document:          log.Document,
		MediaType:         log.Metadata.MediaType,
		FileSize:          log.Metadata.FileSize,
		RiskLevel:         string(log.RiskLevel),
		ComplianceStatus:  string(log.ComplianceStatus),
		OverallConfidence: log.OverallConfidence,
		TotalTextPII:      log.TotalTextPII,
		TotalVisualPII:    log.TotalVisualPII,
		ProcessingMillis:  log.Metadata.ProcessingMillis,
		RedactedPath:      redactedPath,
		AuditJSON:         string(blob),
		CreatedAt:         log.Timestamp,
	}
	for _, category := range log.Categories() {
		for _, d := range log.TextPII[category] {
			run.Detections = append(run.Detections, DetectionModel{
				Kind:       "text",
				Category:   category,
				Value:      d.Value,
				Method:     d.Method,
				Confidence: d.Confidence,
				Location:   d.Location,
			})
		}
	}
	for _, v := range log.VisualPII {
		run.Detections = append(run.Detections, DetectionModel{
			Kind:       "visual",
			Category:   v.Type,
			Method:     v.Method,
			Confidence: v.Confidence,
			Location:   fmt.Sprintf("Page %d, Box [%.0f, %.0f, %.0f, %.0f]", v.Page, v.BBox[0], v.BBox[1], v.BBox[2], v.BBox[3]),
		})
	}

	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return 0, fmt.Errorf("save run: %w", err)
	}
	return run.ID, nil
}

// ListRuns returns the most recent runs first, without their detections.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunModel, error) {
	var runs []RunModel
	q := s.db.WithContext(ctx).Order("created_at desc, id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&runs).Error
	return runs, err
}

// GetRun loads a run with its detections.
func (s *Store) GetRun(ctx context.Context, id uint) (*RunModel, error) {
	var run RunModel
	err := s.db.WithContext(ctx).Preload("Detections").First(&run, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// AuditLog decodes the full audit log stored with a run.
func (r *RunModel) AuditLog() (*models.AuditLog, error) {
	var log models.AuditLog
	if err := json.Unmarshal([]byte(r.AuditJSON), &log); err != nil {
		return nil, fmt.Errorf("decode audit log of run %d: %w", r.ID, err)
	}
	return &log, nil
}

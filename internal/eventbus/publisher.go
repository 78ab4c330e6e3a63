package eventbus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"github.com/digimosa/doc-redact/internal/logging"
	"github.com/digimosa/doc-redact/internal/models"
)

// SubjectRunCompleted carries one RunCompleted event per processed document.
const SubjectRunCompleted = "redactor.runs.completed"

// RunCompleted is the event payload. It summarizes the run without the
// detected values themselves.
type RunCompleted struct {
	RunID            uint                    `json:"run_id"`
	Document         string                  `json:"document"`
	Timestamp        time.Time               `json:"timestamp"`
	TotalTextPII     int                     `json:"total_text_pii"`
	TotalVisualPII   int                     `json:"total_visual_pii"`
	Categories       map[string]int          `json:"categories"`
	RiskLevel        models.RiskLevel        `json:"risk_score"`
	ComplianceStatus models.ComplianceStatus `json:"compliance_status"`
	RedactedOutput   string                  `json:"redacted_output"`
}

// NewRunCompleted builds the event for a finished run.
func NewRunCompleted(runID uint, log *models.AuditLog) RunCompleted {
	categories := make(map[string]int, len(log.TextPII))
	for category, items := range log.TextPII {
		categories[category] = len(items)
	}
	return RunCompleted{
		RunID:            runID,
		Document:         log.Document,
		Timestamp:        log.Timestamp,
		TotalTextPII:     log.TotalTextPII,
		TotalVisualPII:   log.TotalVisualPII,
		Categories:       categories,
		RiskLevel:        log.RiskLevel,
		ComplianceStatus: log.ComplianceStatus,
		RedactedOutput:   log.RedactedOutput,
	}
}

type Publisher struct {
	conn *nats.Conn
	log  *logrus.Entry
}

// NewPublisher connects to natsURL. An empty URL yields a publisher that
// drops every event.
func NewPublisher(natsURL string) (*Publisher, error) {
	p := &Publisher{log: logging.Component("eventbus")}
	if natsURL == "" {
		return p, nil
	}

	conn, err := nats.Connect(natsURL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}
	p.conn = conn
	p.log.WithField("url", natsURL).Info("connected to NATS")
	return p, nil
}

// PublishRunCompleted publishes a RunCompleted event for the run.
func (p *Publisher) PublishRunCompleted(ctx context.Context, runID uint, log *models.AuditLog) error {
	if p.conn == nil || log == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(NewRunCompleted(runID, log))
	if err != nil {
		return err
	}
	if err := p.conn.Publish(SubjectRunCompleted, data); err != nil {
		return err
	}

	p.log.WithFields(logrus.Fields{"run_id": runID, "document": log.Document}).Debug("published run event")
	return nil
}

func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
		p.log.Info("disconnected from NATS")
	}
}

func (p *Publisher) IsConnected() bool {
	return p.conn != nil && p.conn.IsConnected()
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/digimosa/doc-redact/internal/ai"
	"github.com/digimosa/doc-redact/internal/config"
	"github.com/digimosa/doc-redact/internal/extractor"
	"github.com/digimosa/doc-redact/internal/extractor/detectors"
	"github.com/digimosa/doc-redact/internal/logging"
	"github.com/digimosa/doc-redact/internal/models"
	"github.com/digimosa/doc-redact/internal/whitelist"
)

var ErrExtractionFailed = errors.New("text extraction failed")

// DefaultThreshold is the confidence below which findings need review.
const DefaultThreshold = 0.8

// Document is one upload handed to the pipeline.
type Document struct {
	Name string
	Data []byte
}

// Verifier double-checks heuristic findings, typically with an LLM.
type Verifier interface {
	Verify(ctx context.Context, category models.FindingType, value, snippet string) (ai.Verdict, error)
}

type Options struct {
	Threshold float64
	Factory   *extractor.Factory
	Whitelist *whitelist.Whitelist
	Verifier  Verifier // nil skips contextual analysis
	// OnStage is called as each stage begins.
	OnStage func(models.ProcessingStage)
}

// Pipeline runs the staged PII detection over a single document.
type Pipeline struct {
	threshold float64
	factory   *extractor.Factory
	whitelist *whitelist.Whitelist
	verifier  Verifier
	onStage   func(models.ProcessingStage)
	patterns  []detectors.Detector
	entities  []detectors.Detector
	log       *logrus.Entry
}

func New(opts Options) (*Pipeline, error) {
	pack, err := detectors.LoadPatternDetectors()
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		threshold: opts.Threshold,
		factory:   opts.Factory,
		whitelist: opts.Whitelist,
		verifier:  opts.Verifier,
		onStage:   opts.OnStage,
		patterns:  append(detectors.PatternMatchers(), pack...),
		entities:  detectors.EntityRecognizers(),
		log:       logging.Component("pipeline"),
	}
	if p.threshold <= 0 || p.threshold > 1 {
		p.threshold = DefaultThreshold
	}
	if p.factory == nil {
		p.factory = extractor.NewFactory()
	}
	if p.whitelist == nil {
		p.whitelist, _ = whitelist.New("")
	}
	return p, nil
}

// NewFromConfig wires the pipeline from application config. The Ollama
// verifier is only attached when AI is enabled.
func NewFromConfig(cfg *config.Config, wl *whitelist.Whitelist) (*Pipeline, error) {
	opts := Options{
		Threshold: cfg.ConfidenceThreshold,
		Whitelist: wl,
	}
	if !cfg.DisableAI {
		opts.Verifier = ai.NewClient(cfg.OllamaURL, cfg.OllamaModel)
	}
	return New(opts)
}

// Threshold returns the review threshold in effect.
func (p *Pipeline) Threshold() float64 {
	return p.threshold
}

// run carries the intermediate state of one Process call.
type run struct {
	doc        Document
	extractor  extractor.Extractor
	extraction *extractor.Extraction
	financial  bool
	candidates []candidate
	visual     []models.VisualDetection
	verified   bool
	log        *models.AuditLog
	redacted   string
}

type step struct {
	stage models.ProcessingStage
	fn    func(context.Context, *run) error
}

// Process runs every stage in order and returns the audit log together with
// the redacted text. Cancellation is checked between stages.
func (p *Pipeline) Process(ctx context.Context, doc Document) (*models.AuditLog, string, error) {
	ex, _, err := p.factory.ForFile(doc.Name)
	if err != nil {
		return nil, "", err
	}

	r := &run{doc: doc, extractor: ex}
	steps := []step{
		{models.StageExtractingText, p.extractText},
		{models.StagePatternMatching, p.matchPatterns},
		{models.StageEntityRecognition, p.recognizeEntities},
		{models.StageContextualAnalysis, p.analyzeContext},
		{models.StageVisualDetection, p.detectVisual},
		{models.StageFinalizing, p.finalize},
	}

	started := time.Now()
	var timings []models.StageTiming
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}
		if p.onStage != nil {
			p.onStage(s.stage)
		}

		t0 := time.Now()
		if err := s.fn(ctx, r); err != nil {
			return nil, "", fmt.Errorf("%s: %w", s.stage, err)
		}
		timings = append(timings, models.StageTiming{Stage: s.stage.String(), Millis: time.Since(t0).Milliseconds()})
	}

	r.log.Metadata.StageTimings = timings
	r.log.Metadata.ProcessingMillis = time.Since(started).Milliseconds()

	p.log.WithFields(logrus.Fields{
		"document": doc.Name,
		"text":     r.log.TotalTextPII,
		"visual":   r.log.TotalVisualPII,
		"risk":     r.log.RiskLevel,
		"status":   r.log.ComplianceStatus,
	}).Info("document processed")

	return r.log, r.redacted, nil
}

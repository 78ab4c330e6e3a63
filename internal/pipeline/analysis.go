package pipeline

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/digimosa/doc-redact/internal/extractor/detectors"
	"github.com/digimosa/doc-redact/internal/models"
)

// Baseline confidences per detection method.
const (
	confidenceFinancial = 0.9
	confidenceDefault   = 0.75
	confidenceChecksum  = 0.95
	confidenceEntity    = 0.85
	confidenceBareName  = 0.7
)

// maxVerifications caps LLM round trips per document.
const maxVerifications = 25

// candidate is a match with its working confidence.
type candidate struct {
	models.Match
	Confidence float64
}

func (c candidate) end() int64 {
	return c.Offset + int64(len(c.Value))
}

func (p *Pipeline) extractText(_ context.Context, r *run) (err error) {
	// The PDF parser panics on some malformed inputs.
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrExtractionFailed, rec)
		}
	}()

	out, err := r.extractor.Extract(r.doc.Data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}
	r.extraction = out
	r.financial = detectors.HasFinancialContext(out.Text)
	return nil
}

func (p *Pipeline) matchPatterns(_ context.Context, r *run) error {
	base := confidenceDefault
	if r.financial {
		base = confidenceFinancial
	}

	for _, d := range p.patterns {
		for _, m := range d.Detect(r.extraction.Text) {
			conf := base
			if m.Method == models.MethodChecksum {
				conf = confidenceChecksum
			}
			r.candidates = append(r.candidates, candidate{Match: m, Confidence: conf})
		}
	}
	return nil
}

func (p *Pipeline) recognizeEntities(_ context.Context, r *run) error {
	text := r.extraction.Text
	for _, d := range p.entities {
		for _, m := range d.Detect(text) {
			conf := confidenceEntity
			if m.Type == models.TypeName && !detectors.Labelled(text, m) {
				conf = confidenceBareName
			}
			r.candidates = append(r.candidates, candidate{Match: m, Confidence: conf})
		}
	}
	return nil
}

type verdictKey struct {
	category models.FindingType
	value    string
}

// analyzeContext asks the verifier about entity findings. Rejected findings
// are dropped. Any verifier error abandons the stage and keeps every finding
// as it was.
func (p *Pipeline) analyzeContext(ctx context.Context, r *run) error {
	if p.verifier == nil {
		return nil
	}

	type outcome struct {
		keep bool
		conf float64
	}
	decided := make(map[verdictKey]outcome)

	for _, c := range r.candidates {
		if c.Method != models.MethodNER {
			continue
		}
		key := verdictKey{c.Type, c.Value}
		if _, ok := decided[key]; ok {
			continue
		}
		if len(decided) >= maxVerifications {
			break
		}

		v, err := p.verifier.Verify(ctx, c.Type, c.Value, c.Snippet)
		if err != nil {
			p.log.WithFields(logrus.Fields{"document": r.doc.Name, "error": err}).Warn("contextual analysis skipped")
			return nil
		}
		decided[key] = outcome{keep: v.Valid, conf: v.Confidence}
	}

	kept := r.candidates[:0]
	for _, c := range r.candidates {
		if o, ok := decided[verdictKey{c.Type, c.Value}]; ok && c.Method == models.MethodNER {
			if !o.keep {
				continue
			}
			c.Method = models.MethodLLM
			c.Confidence = clamp01(o.conf)
		}
		kept = append(kept, c)
	}
	r.candidates = kept
	r.verified = len(decided) > 0
	return nil
}

func (p *Pipeline) detectVisual(_ context.Context, r *run) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("visual detection: %v", rec)
		}
	}()

	found, err := r.extractor.DetectVisual(r.doc.Data)
	if err != nil {
		return err
	}
	for i := range found {
		found[i].Confidence = clamp01(found[i].Confidence)
	}
	r.visual = found
	return nil
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

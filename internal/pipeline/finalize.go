package pipeline

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/digimosa/doc-redact/internal/extractor"
	"github.com/digimosa/doc-redact/internal/models"
)

func (p *Pipeline) finalize(_ context.Context, r *run) error {
	var accepted []candidate
	for _, c := range resolveOverlaps(r.candidates) {
		if p.whitelist.Contains(c.Value) {
			p.log.WithField("category", c.Type).Debug("whitelisted value skipped")
			continue
		}
		accepted = append(accepted, c)
	}

	lines := extractor.NewLineIndex(r.extraction.Text)
	textPII := make(map[string][]models.Detection)
	for _, c := range accepted {
		key := string(c.Type)
		textPII[key] = append(textPII[key], models.Detection{
			Value:      c.Value,
			Method:     c.Method,
			Confidence: c.Confidence,
			Location:   lines.Locate(int(c.Offset), c.Value),
		})
	}

	visual := r.visual
	if visual == nil {
		visual = []models.VisualDetection{}
	}

	log := &models.AuditLog{
		Document:  filepath.Base(r.doc.Name),
		Timestamp: time.Now().UTC(),
		TextPII:   textPII,
		VisualPII: visual,
		Metadata: models.ProcessingMetadata{
			Pages:            r.extraction.Pages,
			FileSize:         int64(len(r.doc.Data)),
			MediaType:        r.extraction.MediaType,
			FinancialContext: r.financial,
			LLMVerified:      r.verified,
			DetectionMethods: methodsUsed(accepted, visual),
		},
	}
	log.Recount()
	log.OverallConfidence = OverallConfidence(log)
	log.RiskLevel = AssessRisk(log)
	log.ComplianceStatus = Compliance(log, p.threshold)

	if err := log.Validate(); err != nil {
		return err
	}

	r.log = log
	r.redacted = redact(r.extraction.Text, accepted)
	return nil
}

// methodPriority orders methods when two findings claim the same text.
var methodPriority = map[string]int{
	models.MethodChecksum: 4,
	models.MethodLLM:      3,
	models.MethodRegex:    2,
	models.MethodNER:      1,
}

// resolveOverlaps keeps one finding per span of text, preferring stronger
// methods, then higher confidence, then longer matches. The result is
// ordered by offset.
func resolveOverlaps(cands []candidate) []candidate {
	ranked := make([]candidate, len(cands))
	copy(ranked, cands)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if methodPriority[a.Method] != methodPriority[b.Method] {
			return methodPriority[a.Method] > methodPriority[b.Method]
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if len(a.Value) != len(b.Value) {
			return len(a.Value) > len(b.Value)
		}
		return a.Offset < b.Offset
	})

	var kept []candidate
	for _, c := range ranked {
		clash := false
		for _, k := range kept {
			if c.Offset < k.end() && k.Offset < c.end() {
				clash = true
				break
			}
		}
		if !clash {
			kept = append(kept, c)
		}
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].Offset < kept[j].Offset })
	return kept
}

func methodsUsed(cands []candidate, visual []models.VisualDetection) []string {
	seen := make(map[string]bool)
	for _, c := range cands {
		seen[c.Method] = true
	}
	for _, v := range visual {
		seen[v.Method] = true
	}
	out := make([]string, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// redact masks every finding in text as [REDACTED:CATEGORY]. Findings must
// be non-overlapping and ordered by offset.
func redact(text string, findings []candidate) string {
	var sb strings.Builder
	cursor := int64(0)
	for _, f := range findings {
		if f.Offset < cursor || f.end() > int64(len(text)) {
			continue
		}
		sb.WriteString(text[cursor:f.Offset])
		sb.WriteString("[REDACTED:" + strings.ToUpper(string(f.Type)) + "]")
		cursor = f.end()
	}
	sb.WriteString(text[cursor:])
	return sb.String()
}

package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLog() *AuditLog {
	log := &AuditLog{
		Document: "report.pdf",
		TextPII: map[string][]Detection{
			"ssn":   {{Value: "123-45-6789", Method: MethodRegex, Confidence: 0.9, Location: "Line 1, Column 1-11"}},
			"email": {{Value: "a@b.io", Method: MethodRegex, Confidence: 0.75}, {Value: "c@d.io", Method: MethodRegex, Confidence: 0.95}},
		},
		VisualPII: []VisualDetection{
			{Type: "signature", Page: 1, BBox: BoundingBox{1, 2, 3, 4}, Confidence: 0.9},
		},
		OverallConfidence: 0.87,
	}
	log.Recount()
	return log
}

func TestAuditLog_Counts(t *testing.T) {
	log := sampleLog()

	assert.Equal(t, 3, log.TotalTextPII)
	assert.Equal(t, 1, log.TotalVisualPII)
	assert.Equal(t, 4, log.TotalDetections())
	assert.Equal(t, []string{"email", "ssn"}, log.Categories())
	assert.InDelta(t, (0.9+0.75+0.95)/3, log.AverageTextConfidence(), 1e-9)
	assert.InDelta(t, 0.9, log.AverageVisualConfidence(), 1e-9)
}

func TestAuditLog_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AuditLog)
		ok     bool
	}{
		{name: "valid", mutate: func(*AuditLog) {}, ok: true},
		{name: "text confidence above one", mutate: func(a *AuditLog) { a.TextPII["ssn"][0].Confidence = 1.2 }},
		{name: "visual confidence negative", mutate: func(a *AuditLog) { a.VisualPII[0].Confidence = -0.1 }},
		{name: "overall out of range", mutate: func(a *AuditLog) { a.OverallConfidence = 94.2 }},
		{name: "stale counters", mutate: func(a *AuditLog) { a.TotalTextPII = 9 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := sampleLog()
			tt.mutate(log)
			err := log.Validate()
			if tt.ok {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidAuditLog))
		})
	}
}

func TestProcessingStage_Order(t *testing.T) {
	stage := StageIdle
	var seen []ProcessingStage
	for {
		stage = stage.Next()
		if stage == StageIdle {
			break
		}
		seen = append(seen, stage)
	}
	assert.Equal(t, Stages, seen)

	for _, s := range Stages {
		assert.Positive(t, s.DefaultDuration(), s.String())
		assert.NotEqual(t, "Idle", s.Label())
	}
	assert.Zero(t, StageIdle.DefaultDuration())
}

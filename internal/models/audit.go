package models

import (
	"errors"
	"fmt"
	"sort"
)

var ErrInvalidAuditLog = errors.New("invalid audit log")

// Categories returns the TextPII keys in a stable order.
func (a *AuditLog) Categories() []string {
	keys := make([]string, 0, len(a.TextPII))
	for k := range a.TextPII {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Recount refreshes the aggregate counters from the detection lists.
func (a *AuditLog) Recount() {
	total := 0
	for _, items := range a.TextPII {
		total += len(items)
	}
	a.TotalTextPII = total
	a.TotalVisualPII = len(a.VisualPII)
}

// TotalDetections is text plus visual findings.
func (a *AuditLog) TotalDetections() int {
	return a.TotalTextPII + a.TotalVisualPII
}

// AverageTextConfidence returns the mean confidence over text findings, or 0.
func (a *AuditLog) AverageTextConfidence() float64 {
	sum, n := 0.0, 0
	for _, items := range a.TextPII {
		for _, d := range items {
			sum += d.Confidence
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// AverageVisualConfidence returns the mean confidence over visual findings, or 0.
func (a *AuditLog) AverageVisualConfidence() float64 {
	if len(a.VisualPII) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range a.VisualPII {
		sum += v.Confidence
	}
	return sum / float64(len(a.VisualPII))
}

// Validate checks confidence ranges and counter consistency.
func (a *AuditLog) Validate() error {
	if a.OverallConfidence < 0 || a.OverallConfidence > 1 {
		return fmt.Errorf("%w: overall confidence %.3f out of range", ErrInvalidAuditLog, a.OverallConfidence)
	}
	text := 0
	for category, items := range a.TextPII {
		if category == "" {
			return fmt.Errorf("%w: empty category", ErrInvalidAuditLog)
		}
		for _, d := range items {
			if d.Confidence < 0 || d.Confidence > 1 {
				return fmt.Errorf("%w: %s confidence %.3f out of range", ErrInvalidAuditLog, category, d.Confidence)
			}
		}
		text += len(items)
	}
	for i, v := range a.VisualPII {
		if v.Confidence < 0 || v.Confidence > 1 {
			return fmt.Errorf("%w: visual #%d confidence %.3f out of range", ErrInvalidAuditLog, i, v.Confidence)
		}
	}
	if text != a.TotalTextPII || len(a.VisualPII) != a.TotalVisualPII {
		return fmt.Errorf("%w: counters do not match detections", ErrInvalidAuditLog)
	}
	return nil
}

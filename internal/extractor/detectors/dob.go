package detectors

import (
	"regexp"

	"github.com/digimosa/doc-redact/internal/models"
)

var datePattern = regexp.MustCompile(`\b(?:\d{1,2}[/-]\d{1,2}[/-]\d{4}|\d{4}-\d{2}-\d{2}|(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},\s+\d{4})\b`)

var birthContext = NewKeywordSet("birth", "dob", "born")

// DateOfBirthDetector reports dates that follow a birth label.
type DateOfBirthDetector struct {
	BaseRegexDetector
}

func NewDateOfBirthDetector() *DateOfBirthDetector {
	return &DateOfBirthDetector{
		BaseRegexDetector: BaseRegexDetector{
			Pattern: datePattern,
			Label:   models.TypeDateOfBirth,
		},
	}
}

func (d *DateOfBirthDetector) Detect(content string) []models.Match {
	var out []models.Match
	for _, m := range d.BaseRegexDetector.Detect(content) {
		if birthContext.Contains(preceding(content, int(m.Offset), 30)) {
			out = append(out, m)
		}
	}
	return out
}

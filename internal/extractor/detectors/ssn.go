package detectors

import (
	"regexp"

	"github.com/digimosa/doc-redact/internal/models"
)

var ssnPattern = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)

type SSNDetector struct {
	BaseRegexDetector
}

func NewSSNDetector() *SSNDetector {
	return &SSNDetector{
		BaseRegexDetector: BaseRegexDetector{
			Pattern: ssnPattern,
			Label:   models.TypeSSN,
		},
	}
}

// Detect drops numbers the SSA never issues: area 000, 666 or 9xx,
// group 00 and serial 0000.
func (d *SSNDetector) Detect(content string) []models.Match {
	var out []models.Match
	for _, m := range d.BaseRegexDetector.Detect(content) {
		area, group, serial := m.Value[0:3], m.Value[4:6], m.Value[7:11]
		if area == "000" || area == "666" || area[0] == '9' {
			continue
		}
		if group == "00" || serial == "0000" {
			continue
		}
		out = append(out, m)
	}
	return out
}

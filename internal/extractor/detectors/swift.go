package detectors

import (
	"regexp"

	"github.com/digimosa/doc-redact/internal/models"
)

// Bank code, country code, location and an optional branch.
var swiftPattern = regexp.MustCompile(`\b[A-Z]{6}[A-Z0-9]{2}(?:[A-Z0-9]{3})?\b`)

var swiftContext = NewKeywordSet("swift", "bic")

// SwiftCodeDetector only reports codes introduced by a SWIFT or BIC label;
// bare eight letter words are too common to flag.
type SwiftCodeDetector struct {
	BaseRegexDetector
}

func NewSwiftCodeDetector() *SwiftCodeDetector {
	return &SwiftCodeDetector{
		BaseRegexDetector: BaseRegexDetector{
			Pattern: swiftPattern,
			Label:   models.TypeSwiftCode,
		},
	}
}

func (d *SwiftCodeDetector) Detect(content string) []models.Match {
	var out []models.Match
	for _, m := range d.BaseRegexDetector.Detect(content) {
		if swiftContext.Contains(preceding(content, int(m.Offset), 30)) {
			out = append(out, m)
		}
	}
	return out
}

package detectors

import (
	"regexp"

	"github.com/digimosa/doc-redact/internal/models"
)

// Street addresses with an optional city and state/ZIP tail.
var locationPattern = regexp.MustCompile(`\b\d{1,5} +(?:[A-Z][a-z]+ +){1,3}(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Lane|Ln|Drive|Dr|Court|Ct|Way|Place|Pl)\b\.?(?:, *[A-Z][a-zA-Z]+(?: +[A-Z][a-zA-Z]+)*)?(?:, *[A-Z]{2} +\d{5})?`)

type LocationDetector struct {
	BaseRegexDetector
}

func NewLocationDetector() *LocationDetector {
	return &LocationDetector{
		BaseRegexDetector: BaseRegexDetector{
			Pattern: locationPattern,
			Label:   models.TypeLocation,
			Method:  models.MethodNER,
		},
	}
}

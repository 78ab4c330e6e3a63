package detectors

import (
	"regexp"

	"github.com/digimosa/doc-redact/internal/models"
)

var accountPattern = regexp.MustCompile(`\b\d{10,20}\b`)

type AccountNumberDetector struct {
	BaseRegexDetector
}

func NewAccountNumberDetector() *AccountNumberDetector {
	return &AccountNumberDetector{
		BaseRegexDetector: BaseRegexDetector{
			Pattern: accountPattern,
			Label:   models.TypeAccountNumber,
		},
	}
}

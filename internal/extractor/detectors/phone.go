package detectors

import (
	"regexp"

	"github.com/digimosa/doc-redact/internal/models"
)

// North American numbers with an optional country prefix: (555) 123-4567,
// 555-987-6543, +1-212-555-0123, 1.800.555.0199.
var phonePattern = regexp.MustCompile(`(?:\+?\d{1,3}[-.\s])?(?:\(\d{3}\)\s?|\b\d{3}[-.\s])\d{3}[-.\s]\d{4}\b`)

type PhoneDetector struct {
	BaseRegexDetector
}

func NewPhoneDetector() *PhoneDetector {
	return &PhoneDetector{
		BaseRegexDetector: BaseRegexDetector{
			Pattern: phonePattern,
			Label:   models.TypePhone,
		},
	}
}

package detectors

import (
	"regexp"

	"github.com/digimosa/doc-redact/internal/models"
)

var organizationPattern = regexp.MustCompile(`\b(?:(?:[A-Z][A-Za-z'.-]*|&)[ \t]+){1,4}(?:Bank|Corp|Corporation|Inc|LLC|Ltd|GmbH|AG|Company|Group|Holdings|Partners|Trust|Association|Credit Union)\b\.?`)

type OrganizationDetector struct {
	BaseRegexDetector
}

func NewOrganizationDetector() *OrganizationDetector {
	return &OrganizationDetector{
		BaseRegexDetector: BaseRegexDetector{
			Pattern: organizationPattern,
			Label:   models.TypeOrganization,
			Method:  models.MethodNER,
		},
	}
}

package detectors

import (
	"regexp"

	"github.com/digimosa/doc-redact/internal/models"
)

// Detector defines the interface for PII detection strategies
type Detector interface {
	Detect(content string) []models.Match
	Type() models.FindingType
}

// BaseRegexDetector implements common regex scanning logic
type BaseRegexDetector struct {
	Pattern *regexp.Regexp
	Label   models.FindingType
	Method  string
}

func (d *BaseRegexDetector) Detect(content string) []models.Match {
	if d.Pattern == nil {
		return nil
	}

	method := d.Method
	if method == "" {
		method = models.MethodRegex
	}

	var found []models.Match
	for _, loc := range d.Pattern.FindAllStringIndex(content, -1) {
		start, end := loc[0], loc[1]
		found = append(found, models.Match{
			Type:    d.Label,
			Method:  method,
			Value:   content[start:end],
			Snippet: snippet(content, start, end),
			Offset:  int64(start),
		})
	}
	return found
}

func (d *BaseRegexDetector) Type() models.FindingType {
	return d.Label
}

// snippet grabs up to 20 bytes of context on either side of a match.
func snippet(content string, start, end int) string {
	from := start - 20
	if from < 0 {
		from = 0
	}
	to := end + 20
	if to > len(content) {
		to = len(content)
	}
	return content[from:to]
}

// preceding returns the window of text right before offset.
func preceding(content string, offset, width int) string {
	from := offset - width
	if from < 0 {
		from = 0
	}
	return content[from:offset]
}

// PatternMatchers returns the structured identifier detectors.
func PatternMatchers() []Detector {
	return []Detector{
		NewSSNDetector(),
		NewCreditCardDetector(),
		NewIBANDetector(),
		NewAccountNumberDetector(),
		NewSwiftCodeDetector(),
		NewEmailDetector(),
		NewPhoneDetector(),
		NewDateOfBirthDetector(),
	}
}

// EntityRecognizers returns the heuristic named entity detectors.
func EntityRecognizers() []Detector {
	return []Detector{
		NewNameDetector(),
		NewOrganizationDetector(),
		NewLocationDetector(),
	}
}

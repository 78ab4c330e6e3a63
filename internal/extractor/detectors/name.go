package detectors

import (
	"regexp"
	"strings"

	"github.com/digimosa/doc-redact/internal/models"
)

// Two to four capitalized words, allowing hyphens, O'Connor style prefixes,
// accented letters and a middle initial.
var namePattern = regexp.MustCompile(`\b` + namePart + `(?:[- ](?:[A-Z]\. )?` + namePart + `){1,3}\b`)

const namePart = `[A-ZÄÖÜ](?:'[A-ZÄÖÜ])?[a-zäöüß]+`

var nameLabels = NewKeywordSet("name", "mr.", "mrs.", "ms.", "dr.", "holder", "customer", "signed", "patient", "applicant")

// Capitalized words that show up in form labels and headings.
var nameStopwords = map[string]bool{
	"account": true, "address": true, "bank": true, "birth": true, "card": true,
	"credit": true, "date": true, "driver": true, "email": true, "license": true,
	"number": true, "phone": true, "routing": true, "security": true, "social": true,
	"statement": true, "street": true, "avenue": true, "road": true, "total": true,
	"balance": true, "passport": true, "national": true, "customer": true, "information": true,
	"dear": true, "the": true, "name": true, "signature": true, "page": true,
}

// NameDetector is a lightweight stand-in for a person NER model.
type NameDetector struct {
	BaseRegexDetector
}

func NewNameDetector() *NameDetector {
	return &NameDetector{
		BaseRegexDetector: BaseRegexDetector{
			Pattern: namePattern,
			Label:   models.TypeName,
			Method:  models.MethodNER,
		},
	}
}

func (d *NameDetector) Detect(content string) []models.Match {
	var out []models.Match
	for _, m := range d.BaseRegexDetector.Detect(content) {
		if hasStopword(m.Value) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Labelled reports whether the match follows a label such as "Name:" or
// an honorific.
func Labelled(content string, m models.Match) bool {
	return nameLabels.Contains(preceding(content, int(m.Offset), 16))
}

func hasStopword(value string) bool {
	for _, part := range strings.FieldsFunc(value, func(r rune) bool { return r == ' ' || r == '-' }) {
		if nameStopwords[strings.ToLower(part)] {
			return true
		}
	}
	return false
}

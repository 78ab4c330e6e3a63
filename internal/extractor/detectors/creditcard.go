package detectors

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/digimosa/doc-redact/internal/models"
)

// Look for 13-19 digits with optional separators, relying on Luhn for validation.
var broadCCPattern = regexp.MustCompile(`\b(?:\d[ -]*?){13,19}\b`)

type CreditCardDetector struct {
	BaseRegexDetector
}

func NewCreditCardDetector() *CreditCardDetector {
	return &CreditCardDetector{
		BaseRegexDetector: BaseRegexDetector{
			Pattern: broadCCPattern,
			Label:   models.TypeCreditCard,
			Method:  models.MethodChecksum,
		},
	}
}

func (d *CreditCardDetector) Detect(content string) []models.Match {
	candidates := d.BaseRegexDetector.Detect(content)
	var verified []models.Match

	for _, m := range candidates {
		clean := digitsOnly(m.Value)

		if len(clean) < 13 || len(clean) > 19 {
			continue
		}
		if luhnCheck(clean) {
			verified = append(verified, m)
		}
	}
	return verified
}

// digitsOnly removes non-digit characters
func digitsOnly(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// luhnCheck implements the Luhn algorithm for credit card validation
func luhnCheck(cc string) bool {
	sum := 0
	alternate := false
	for i := len(cc) - 1; i >= 0; i-- {
		n := int(cc[i] - '0')
		if alternate {
			n *= 2
			if n > 9 {
				n = (n % 10) + 1
			}
		}
		sum += n
		alternate = !alternate
	}
	return (sum % 10) == 0
}

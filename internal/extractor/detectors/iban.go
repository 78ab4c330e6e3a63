package detectors

import (
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/digimosa/doc-redact/internal/models"
)

// Country code, check digits, then 11-30 alphanumerics optionally grouped by four.
var ibanPattern = regexp.MustCompile(`\b[A-Z]{2}\d{2}(?: ?[A-Z0-9]{4}){2,7}(?: ?[A-Z0-9]{1,3})?\b`)

type IBANDetector struct {
	BaseRegexDetector
}

func NewIBANDetector() *IBANDetector {
	return &IBANDetector{
		BaseRegexDetector: BaseRegexDetector{
			Pattern: ibanPattern,
			Label:   models.TypeIBAN,
			Method:  models.MethodChecksum,
		},
	}
}

// Detect overrides the base method to include MOD-97 validation
func (d *IBANDetector) Detect(content string) []models.Match {
	candidates := d.BaseRegexDetector.Detect(content)

	var verified []models.Match
	for _, m := range candidates {
		if validateIBAN(strings.ReplaceAll(m.Value, " ", "")) {
			verified = append(verified, m)
		}
	}
	return verified
}

// validateIBAN performs the MOD-97 check
func validateIBAN(iban string) bool {
	if len(iban) < 15 || len(iban) > 34 {
		return false
	}

	rearranged := iban[4:] + iban[:4]

	var numeric strings.Builder
	for _, r := range rearranged {
		switch {
		case r >= '0' && r <= '9':
			numeric.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			// A=10, B=11, ... Z=35
			numeric.WriteString(strconv.Itoa(int(r - 'A' + 10)))
		default:
			return false
		}
	}

	n, ok := new(big.Int).SetString(numeric.String(), 10)
	if !ok {
		return false
	}
	return new(big.Int).Mod(n, big.NewInt(97)).Int64() == 1
}

package pipeline

import "github.com/digimosa/doc-redact/internal/models"

// sensitivity weights each category by the harm its disclosure causes.
var sensitivity = map[string]float64{
	string(models.TypeSSN):           10,
	string(models.TypeCreditCard):    10,
	string(models.TypePassport):      9,
	string(models.TypeAccountNumber): 8,
	string(models.TypeIBAN):          8,
	string(models.TypeDriverLicense): 8,
	string(models.TypeRoutingNumber): 6,
	string(models.TypeDateOfBirth):   6,
	string(models.TypeSwiftCode):     4,
	string(models.TypeLocation):      4,
	string(models.TypeName):          3,
	string(models.TypeEmail):         3,
	string(models.TypePhone):         3,
	string(models.TypeOrganization):  1,
	"gps_location":                   6,
	"signature":                      5,
	"stamp":                          2,
	"handwriting":                    3,
	"watermark":                      1,
	"device_identity":                2,
}

// Categories that make a document high risk on their own.
var critical = map[string]bool{
	string(models.TypeSSN):        true,
	string(models.TypeCreditCard): true,
	string(models.TypePassport):   true,
}

const (
	highRiskScore   = 15.0
	mediumRiskScore = 5.0
	defaultWeight   = 2.0
)

func weightOf(category string) float64 {
	if w, ok := sensitivity[category]; ok {
		return w
	}
	return defaultWeight
}

// RiskScore sums sensitivity times confidence over all findings.
func RiskScore(log *models.AuditLog) float64 {
	score := 0.0
	for category, items := range log.TextPII {
		for _, d := range items {
			score += weightOf(category) * d.Confidence
		}
	}
	for _, v := range log.VisualPII {
		score += weightOf(v.Type) * v.Confidence
	}
	return score
}

// AssessRisk maps the risk score to a level. Any critical identifier makes
// the document HIGH risk.
func AssessRisk(log *models.AuditLog) models.RiskLevel {
	for category, items := range log.TextPII {
		if critical[category] && len(items) > 0 {
			return models.RiskHigh
		}
	}
	score := RiskScore(log)
	switch {
	case score >= highRiskScore:
		return models.RiskHigh
	case score >= mediumRiskScore:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

// OverallConfidence is the mean confidence over every finding. A document
// without findings has nothing uncertain and scores 1.
func OverallConfidence(log *models.AuditLog) float64 {
	sum, n := 0.0, 0
	for _, items := range log.TextPII {
		for _, d := range items {
			sum += d.Confidence
			n++
		}
	}
	for _, v := range log.VisualPII {
		sum += v.Confidence
		n++
	}
	if n == 0 {
		return 1
	}
	return clamp01(sum / float64(n))
}

// Compliance is REVIEW_REQUIRED when any finding falls below threshold.
func Compliance(log *models.AuditLog, threshold float64) models.ComplianceStatus {
	for _, items := range log.TextPII {
		for _, d := range items {
			if d.Confidence < threshold {
				return models.StatusReviewRequired
			}
		}
	}
	for _, v := range log.VisualPII {
		if v.Confidence < threshold {
			return models.StatusReviewRequired
		}
	}
	return models.StatusCompliant
}

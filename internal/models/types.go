package models

import "time"

// FindingType is the PII category a match belongs to. It is also the key
// of AuditLog.TextPII.
type FindingType string

const (
	TypeSSN           FindingType = "ssn"
	TypeAccountNumber FindingType = "account_number"
	TypeCreditCard    FindingType = "credit_card"
	TypeIBAN          FindingType = "iban"
	TypeSwiftCode     FindingType = "swift_code"
	TypeRoutingNumber FindingType = "routing_number"
	TypePhone         FindingType = "phone"
	TypeEmail         FindingType = "email"
	TypeDateOfBirth   FindingType = "date_of_birth"
	TypeDriverLicense FindingType = "driver_license"
	TypePassport      FindingType = "passport"
	TypeName          FindingType = "name"
	TypeOrganization  FindingType = "organization"
	TypeLocation      FindingType = "location"
	TypeImageMetadata FindingType = "image_metadata"
)

// Detection methods attributed to a finding.
const (
	MethodRegex      = "regex"
	MethodChecksum   = "checksum"
	MethodNER        = "ner"
	MethodLLM        = "llm"
	MethodMetadata   = "metadata"
	MethodAnnotation = "pdf_annotation"
)

// Match is a raw detector hit before scoring.
type Match struct {
	Type    FindingType
	Method  string
	Value   string
	Snippet string
	Offset  int64 // byte offset in the extracted text
}

// Detection is a single scored text finding.
type Detection struct {
	Value      string  `json:"value"`
	Method     string  `json:"method"`
	Confidence float64 `json:"confidence"`
	Location   string  `json:"location"`
}

// BoundingBox is x1, y1, x2, y2 in page or pixel coordinates.
type BoundingBox [4]float64

// VisualDetection is a finding tied to a region of a page or image.
type VisualDetection struct {
	Type        string      `json:"type"`
	Page        int         `json:"page"`
	BBox        BoundingBox `json:"bbox"`
	Confidence  float64     `json:"confidence"`
	Method      string      `json:"method"`
	Description string      `json:"description"`
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

type ComplianceStatus string

const (
	StatusCompliant      ComplianceStatus = "COMPLIANT"
	StatusReviewRequired ComplianceStatus = "REVIEW_REQUIRED"
)

// StageTiming records how long a pipeline stage took.
type StageTiming struct {
	Stage  string `json:"stage"`
	Millis int64  `json:"millis"`
}

// ProcessingMetadata describes how a document was processed.
type ProcessingMetadata struct {
	Pages            int           `json:"total_pages"`
	FileSize         int64         `json:"file_size"`
	MediaType        string        `json:"media_type"`
	ProcessingMillis int64         `json:"processing_millis"`
	FinancialContext bool          `json:"financial_context"`
	LLMVerified      bool          `json:"llm_verified"`
	DetectionMethods []string      `json:"detection_methods"`
	StageTimings     []StageTiming `json:"stage_timings"`
}

// AuditLog is the structured record of all findings for one run.
type AuditLog struct {
	Document          string                 `json:"document"`
	Timestamp         time.Time              `json:"timestamp"`
	TextPII           map[string][]Detection `json:"text_pii"`
	VisualPII         []VisualDetection      `json:"visual_pii"`
	RedactedOutput    string                 `json:"redacted_output"`
	Metadata          ProcessingMetadata     `json:"processing_metadata"`
	TotalTextPII      int                    `json:"total_text_pii"`
	TotalVisualPII    int                    `json:"total_visual_pii"`
	OverallConfidence float64                `json:"overall_confidence"`
	RiskLevel         RiskLevel              `json:"risk_score"`
	ComplianceStatus  ComplianceStatus       `json:"compliance_status"`
}

// DetectionResult is what the detection service returns for one upload.
type DetectionResult struct {
	Status       string    `json:"status"`
	RunID        uint      `json:"run_id"`
	RedactedFile string    `json:"redacted_file"`
	AuditLog     *AuditLog `json:"audit_log"`
}

// SelectedFile is the document the user picked.
type SelectedFile struct {
	Name      string
	Size      int64
	MediaType string
	Path      string
}


package reporting

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/digimosa/doc-redact/internal/models"
)

func sampleLog() *models.AuditLog {
	log := &models.AuditLog{
		Document:  "statement.pdf",
		Timestamp: time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC),
		TextPII: map[string][]models.Detection{
			"ssn": {
				{Value: "123-45-6789", Method: models.MethodRegex, Confidence: 0.9, Location: "Line 2, Column 6-16"},
			},
			"email": {
				{Value: "a@example.com", Method: models.MethodRegex, Confidence: 0.75, Location: "Line 3, Column 1-13"},
				{Value: "b@example.com", Method: models.MethodRegex, Confidence: 0.75, Location: "Line 4, Column 1-13"},
			},
		},
		VisualPII: []models.VisualDetection{
			{Type: "signature", Page: 1, BBox: models.BoundingBox{10, 20, 110, 60}, Confidence: 0.9, Method: models.MethodAnnotation, Description: "Signature field"},
		},
		RedactedOutput: "redacted_statement.txt",
		Metadata: models.ProcessingMetadata{
			Pages:            1,
			FileSize:         2048,
			MediaType:        "application/pdf",
			ProcessingMillis: 1500,
			FinancialContext: true,
			DetectionMethods: []string{models.MethodRegex, models.MethodAnnotation},
		},
		OverallConfidence: 0.825,
		RiskLevel:         models.RiskHigh,
		ComplianceStatus:  models.StatusReviewRequired,
	}
	log.Recount()
	return log
}

func TestReportName(t *testing.T) {
	assert.Equal(t, "redacted_audit_report_statement.pdf", ReportName("statement.pdf"))
}

func TestTextReportContents(t *testing.T) {
	out, err := TextReport(sampleLog(), Options{})
	require.NoError(t, err)

	assert.Contains(t, out, "DOCUMENT REDACTION AUDIT REPORT")
	assert.Contains(t, out, "Original Document: statement.pdf")
	assert.Contains(t, out, "Processing Date: 2026-03-04")
	assert.Contains(t, out, "File Size: 2.0 KB")
	assert.Contains(t, out, "Processing Duration: 1.5 seconds")
	assert.Contains(t, out, "TEXT PII DETECTED: 3 items across 2 categories")
	assert.Contains(t, out, "VISUAL PII DETECTED: 1 items across 1 categories")
	assert.Contains(t, out, "TOTAL REDACTIONS: 4 items")
	assert.Contains(t, out, "SOCIAL SECURITY NUMBERS (1 instance):")
	assert.Contains(t, out, "EMAIL ADDRESSES (2 instances):")
	assert.Contains(t, out, "├─ a@example.com (Regex, 75.0% confidence, Line 3, Column 1-13)")
	assert.Contains(t, out, "└─ b@example.com")
	assert.Contains(t, out, "SIGNATURES (1 instance):")
	assert.Contains(t, out, "Page 1: Signature field (PDF annotation, 90.0% confidence, BBox: 10,20,110,60)")
	assert.Contains(t, out, "1. Extracting text content")
	assert.Contains(t, out, "6. Generating redacted document")
	assert.Contains(t, out, "Overall Processing Confidence: 82.5%")
	assert.Contains(t, out, "RISK ASSESSMENT: HIGH")
	assert.Contains(t, out, "COMPLIANCE STATUS: REVIEW_REQUIRED")

	// email sorts before ssn
	assert.Less(t, strings.Index(out, "EMAIL ADDRESSES"), strings.Index(out, "SOCIAL SECURITY NUMBERS"))
}

func TestTextReportDeterministic(t *testing.T) {
	a, err := TextReport(sampleLog(), Options{})
	require.NoError(t, err)
	b, err := TextReport(sampleLog(), Options{})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestTextReportEmpty(t *testing.T) {
	log := &models.AuditLog{Document: "clean.png", TextPII: map[string][]models.Detection{}, OverallConfidence: 1,
		RiskLevel: models.RiskLow, ComplianceStatus: models.StatusCompliant}
	out, err := TextReport(log, Options{})
	require.NoError(t, err)
	assert.NotContains(t, out, "DETAILED TEXT PII DETECTIONS")
	assert.NotContains(t, out, "DETAILED VISUAL PII DETECTIONS")
	assert.Contains(t, out, "└─ none")
	assert.Contains(t, out, "Redacted Output: -")
}

func TestRenderNilLog(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, RenderText(&buf, nil, Options{}), models.ErrInvalidAuditLog)
	assert.ErrorIs(t, RenderHTML(&buf, nil, Options{}), models.ErrInvalidAuditLog)
	assert.ErrorIs(t, WriteXLSX(&buf, nil, Options{}), models.ErrInvalidAuditLog)
}

func TestRenderHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, sampleLog(), Options{Threshold: 0.8}))
	out := buf.String()
	assert.Contains(t, out, "<code>123-45-6789</code>")
	assert.Contains(t, out, `class="low-conf"`)
	assert.Contains(t, out, "SIGNATURES")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleLog()))

	var decoded models.AuditLog
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 3, decoded.TotalTextPII)
	assert.Equal(t, models.RiskHigh, decoded.RiskLevel)
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleLog(), Options{}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetSummary, sheetText, sheetVisual}, f.GetSheetList())

	rows, err := f.GetRows(sheetText)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Category", "Value", "Method", "Confidence", "Location"}, rows[0])
	assert.Equal(t, "email", rows[1][0])
	assert.Equal(t, "ssn", rows[3][0])

	visual, err := f.GetRows(sheetVisual)
	require.NoError(t, err)
	require.Len(t, visual, 2)
	assert.Equal(t, "10,20,110,60", visual[1][2])

	doc, err := f.GetCellValue(sheetSummary, "B2")
	require.NoError(t, err)
	assert.Equal(t, "statement.pdf", doc)

	total, err := f.GetCellValue(sheetSummary, "B11")
	require.NoError(t, err)
	assert.Equal(t, "4", total)
}

func TestRenderDispatch(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Render(&buf, "pdf", sampleLog(), Options{}))
	require.NoError(t, Render(&buf, "txt", sampleLog(), Options{}))
	assert.Contains(t, buf.String(), "AUDIT REPORT")
	assert.Equal(t, "application/json", ContentType("json"))
	assert.Equal(t, "text/plain; charset=utf-8", ContentType("txt"))
}

func TestDisplayNames(t *testing.T) {
	assert.Equal(t, "PERSONAL NAMES", CategoryTitle("name"))
	assert.Equal(t, "CUSTOM THING", CategoryTitle("custom_thing"))
	assert.Equal(t, "STAMPS/SEALS", VisualTitle("stamp"))
	assert.Equal(t, "LLM-verified", MethodName(models.MethodLLM))
	assert.Equal(t, "other", MethodName("other"))
}

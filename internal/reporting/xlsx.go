package reporting

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/digimosa/doc-redact/internal/models"
)

const (
	sheetSummary = "Summary"
	sheetText    = "Text PII"
	sheetVisual  = "Visual PII"
)

// WriteXLSX writes the audit log as a workbook with summary, text and visual
// sheets.
func WriteXLSX(w io.Writer, log *models.AuditLog, opts Options) error {
	if log == nil {
		return fmt.Errorf("write xlsx report: %w", models.ErrInvalidAuditLog)
	}
	v := newView(log, opts)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return err
	}
	for _, name := range []string{sheetText, sheetVisual} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	summary := [][]interface{}{
		{"Field", "Value"},
		{"Document", v.Document},
		{"Document ID", v.DocumentID},
		{"Processed", v.Date + " " + v.Time},
		{"Media Type", v.MediaType},
		{"Pages", v.Pages},
		{"Risk Level", v.Risk},
		{"Compliance", v.Compliance},
		{"Text PII", v.TextTotal},
		{"Visual PII", v.VisualTotal},
		{"Total Redactions", v.Total},
		{"Overall Confidence", log.OverallConfidence},
		{"Redacted Output", v.RedactedOutput},
	}
	if err := writeRows(f, sheetSummary, summary, header); err != nil {
		return err
	}

	text := [][]interface{}{{"Category", "Value", "Method", "Confidence", "Location"}}
	for _, category := range log.Categories() {
		for _, d := range log.TextPII[category] {
			text = append(text, []interface{}{category, d.Value, d.Method, d.Confidence, d.Location})
		}
	}
	if err := writeRows(f, sheetText, text, header); err != nil {
		return err
	}

	visual := [][]interface{}{{"Type", "Page", "BBox", "Method", "Confidence", "Description"}}
	for _, d := range log.VisualPII {
		visual = append(visual, []interface{}{d.Type, d.Page, bbox(d.BBox), d.Method, d.Confidence, d.Description})
	}
	if err := writeRows(f, sheetVisual, visual, header); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	return f.Write(w)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}, header int) error {
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return err
		}
	}
	if len(rows) == 0 {
		return nil
	}
	end, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", end, header)
}

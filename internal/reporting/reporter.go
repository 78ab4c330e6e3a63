package reporting

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	texttemplate "text/template"

	"github.com/digimosa/doc-redact/internal/models"
	"github.com/digimosa/doc-redact/internal/templates"
)

// ReportName is the download name of the text audit report for a document.
func ReportName(document string) string {
	return "redacted_audit_report_" + document
}

var funcs = texttemplate.FuncMap{
	"yesno": func(b bool) string {
		if b {
			return "Yes"
		}
		return "No"
	},
	"inc": func(i int) int { return i + 1 },
}

var (
	textTmpl = texttemplate.Must(texttemplate.New("audit").Funcs(funcs).Parse(templates.AuditReportText))
	htmlTmpl = template.Must(template.New("report").Parse(templates.ReportHTML))
)

// RenderText writes the plain text audit report. Output depends only on log.
func RenderText(w io.Writer, log *models.AuditLog, opts Options) error {
	if log == nil {
		return fmt.Errorf("render text report: %w", models.ErrInvalidAuditLog)
	}
	return textTmpl.Execute(w, newView(log, opts))
}

// TextReport renders the text report into a string.
func TextReport(log *models.AuditLog, opts Options) (string, error) {
	var buf bytes.Buffer
	if err := RenderText(&buf, log, opts); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderHTML writes the HTML audit report.
func RenderHTML(w io.Writer, log *models.AuditLog, opts Options) error {
	if log == nil {
		return fmt.Errorf("render html report: %w", models.ErrInvalidAuditLog)
	}
	return htmlTmpl.Execute(w, newView(log, opts))
}

// WriteJSON writes the audit log as indented JSON.
func WriteJSON(w io.Writer, log *models.AuditLog) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(log)
}

// SaveFile renders the report selected by format ("txt", "json", "html" or
// "xlsx") into filename.
func SaveFile(filename, format string, log *models.AuditLog, opts Options) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	return Render(file, format, log, opts)
}

// Render dispatches to the writer for format.
func Render(w io.Writer, format string, log *models.AuditLog, opts Options) error {
	switch format {
	case "txt", "text":
		return RenderText(w, log, opts)
	case "json":
		return WriteJSON(w, log)
	case "html":
		return RenderHTML(w, log, opts)
	case "xlsx":
		return WriteXLSX(w, log, opts)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// ContentType is the MIME type served for a report format.
func ContentType(format string) string {
	switch format {
	case "json":
		return "application/json"
	case "html":
		return "text/html; charset=utf-8"
	case "xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/plain; charset=utf-8"
	}
}

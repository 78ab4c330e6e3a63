package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/digimosa/doc-redact/internal/controller"
	"github.com/digimosa/doc-redact/internal/models"
	"github.com/digimosa/doc-redact/internal/reporting"
	"github.com/digimosa/doc-redact/internal/theme"
)

type styles struct {
	title  lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	dim    lipgloss.Style
	accent lipgloss.Style
	ok     lipgloss.Style
	warn   lipgloss.Style
	danger lipgloss.Style
}

func newStyles(p theme.Palette) styles {
	return styles{
		title:  lipgloss.NewStyle().Bold(true).Foreground(p.Accent),
		label:  lipgloss.NewStyle().Foreground(p.Ink),
		value:  lipgloss.NewStyle().Foreground(p.Ink).Bold(true),
		dim:    lipgloss.NewStyle().Foreground(p.Dim),
		accent: lipgloss.NewStyle().Foreground(p.AccentAlt),
		ok:     lipgloss.NewStyle().Foreground(p.Success),
		warn:   lipgloss.NewStyle().Foreground(p.Warn),
		danger: lipgloss.NewStyle().Foreground(p.Danger).Bold(true),
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	st := newStyles(m.theme.Palette())
	c := m.ctrl

	lines := []string{st.title.Render("doc-redact"), ""}

	if f := c.File(); f != nil {
		lines = append(lines, st.label.Render("File: ")+st.value.Render(f.Name)+
			st.dim.Render(fmt.Sprintf("  %s, %s", humanBytes(f.Size), f.MediaType)))
	} else {
		lines = append(lines, st.dim.Render("No file selected. Press n to pick one."))
	}

	if c.InProgress() {
		lines = append(lines, "", st.label.Render("Processing..."))
		lines = append(lines, renderStages(st, c.Stage())...)
	}

	if msg := c.Err(); msg != "" {
		lines = append(lines, "", st.danger.Render(msg))
	}

	if res := c.Result(); res != nil && res.AuditLog != nil {
		lines = append(lines, "", renderSummary(st, res))
		if c.DetailsExpanded() {
			lines = append(lines, "", renderDetails(st, res.AuditLog))
		}
	}

	if m.notice != "" {
		lines = append(lines, "", st.warn.Render(m.notice))
	}

	lines = append(lines, "", renderHelp(st, c, m.theme.Current()))
	return strings.Join(lines, "\n")
}

func renderStages(st styles, current models.ProcessingStage) []string {
	lines := make([]string, 0, len(models.Stages))
	for _, s := range models.Stages {
		switch {
		case current == models.StageIdle || s > current:
			lines = append(lines, st.dim.Render("  · "+s.Label()))
		case s == current:
			lines = append(lines, st.accent.Render("  ▶ "+s.Label()))
		default:
			lines = append(lines, st.ok.Render("  ✓ "+s.Label()))
		}
	}
	return lines
}

func renderSummary(st styles, res *models.DetectionResult) string {
	log := res.AuditLog
	risk := st.ok
	switch log.RiskLevel {
	case models.RiskHigh:
		risk = st.danger
	case models.RiskMedium:
		risk = st.warn
	}
	compliance := st.ok
	if log.ComplianceStatus == models.StatusReviewRequired {
		compliance = st.warn
	}

	rows := []summaryRow{
		{Label: "Total detections", Value: fmt.Sprint(log.TotalDetections())},
		{Label: "Text PII", Value: fmt.Sprintf("%d in %d categories", log.TotalTextPII, len(log.TextPII))},
		{Label: "Visual PII", Value: fmt.Sprint(log.TotalVisualPII)},
		{Label: "Confidence", Value: fmt.Sprintf("%.1f%%", log.OverallConfidence*100)},
		{Label: "Redacted file", Value: res.RedactedFile},
	}
	return renderTable(st, rows) + "\n" +
		st.label.Render("Risk: ") + risk.Render(string(log.RiskLevel)) +
		st.label.Render("   Compliance: ") + compliance.Render(string(log.ComplianceStatus))
}

func renderDetails(st styles, log *models.AuditLog) string {
	var b strings.Builder
	for _, category := range log.Categories() {
		b.WriteString(st.accent.Render(reporting.CategoryTitle(category)) + "\n")
		for _, d := range log.TextPII[category] {
			fmt.Fprintf(&b, "  %s %s %s\n", st.dim.Render("-"), st.value.Render(d.Value),
				st.dim.Render(fmt.Sprintf("(%s, %.0f%%, %s)", reporting.MethodName(d.Method), d.Confidence*100, d.Location)))
		}
	}

	visual := append([]models.VisualDetection(nil), log.VisualPII...)
	sort.SliceStable(visual, func(i, j int) bool { return visual[i].Type < visual[j].Type })
	for _, v := range visual {
		fmt.Fprintf(&b, "%s %s\n", st.accent.Render(reporting.VisualTitle(v.Type)),
			st.dim.Render(fmt.Sprintf("page %d, %.0f%%, %s", v.Page, v.Confidence*100, v.Description)))
	}
	if b.Len() == 0 {
		return st.dim.Render("No PII detected.")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderHelp(st styles, c *controller.Controller, mode theme.Mode) string {
	keys := []string{"n/p file"}
	if c.CanStart() {
		keys = append(keys, "s start")
	}
	if c.InProgress() {
		keys = append(keys, "space skip")
	}
	if c.Result() != nil {
		keys = append(keys, "d details")
	}
	if c.CanExport() {
		keys = append(keys, "e export")
	}
	keys = append(keys, "t theme ("+mode.String()+")", "q quit")
	return st.dim.Render(strings.Join(keys, " · "))
}

func humanBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

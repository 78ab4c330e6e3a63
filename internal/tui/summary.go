package tui

import (
	"fmt"
	"strings"
)

type summaryRow struct {
	Label string
	Value string
}

// renderTable draws rows as an aligned two column table.
func renderTable(st styles, rows []summaryRow) string {
	labelWidth := 0
	valueWidth := 0
	for _, row := range rows {
		if len(row.Label) > labelWidth {
			labelWidth = len(row.Label)
		}
		if len(row.Value) > valueWidth {
			valueWidth = len(row.Value)
		}
	}

	hline := st.dim.Render(strings.Repeat("-", labelWidth+valueWidth+3))
	lines := []string{hline}
	for _, row := range rows {
		lines = append(lines, fmt.Sprintf("%s | %s",
			st.label.Render(padRight(row.Label, labelWidth)),
			st.value.Render(padRight(row.Value, valueWidth))))
	}
	lines = append(lines, hline)
	return strings.Join(lines, "\n")
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

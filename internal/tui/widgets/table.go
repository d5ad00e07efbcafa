package widgets

import (
	"fmt"
	"strings"
)

// Table is a plain fixed-width data table. Rows are pre-stringified by the
// caller; the widget only aligns and truncates.
type Table struct {
	Columns []string
	Rows    [][]string
	MaxRows int
}

func (t Table) Render(width int) string {
	if len(t.Columns) == 0 {
		return ""
	}
	colWidth := width / len(t.Columns)
	if colWidth < 8 {
		colWidth = 8
	}

	var b strings.Builder
	for _, col := range t.Columns {
		fmt.Fprintf(&b, "%-*s", colWidth, truncate(col, colWidth-1))
	}
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(width, colWidth*len(t.Columns))))

	rows := t.Rows
	if t.MaxRows > 0 && len(rows) > t.MaxRows {
		rows = rows[:t.MaxRows]
	}
	for _, row := range rows {
		b.WriteString("\n")
		for i := range t.Columns {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			fmt.Fprintf(&b, "%-*s", colWidth, truncate(cell, colWidth-1))
		}
	}
	if t.MaxRows > 0 && len(t.Rows) > t.MaxRows {
		fmt.Fprintf(&b, "\n… %d more rows", len(t.Rows)-t.MaxRows)
	}
	return b.String()
}

func truncate(s string, w int) string {
	if w <= 0 || len(s) <= w {
		return s
	}
	if w <= 1 {
		return s[:w]
	}
	return s[:w-1] + "…"
}

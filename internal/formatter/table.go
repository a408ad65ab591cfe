// Package formatter renders aligned text tables for terminal reports.
package formatter

import (
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Alignment of a column.
type Alignment int

// Column alignments.
const (
	AlignLeft Alignment = iota
	AlignRight
)

// Table is a header plus rows of cells.
type Table struct {
	Header []string
	Align  []Alignment
	Rows   [][]string
}

// FormatTable renders t as a pipe table whose columns are padded to the
// widest cell. Widths are display widths, so wide runes line up.
func FormatTable(t Table) string {
	colCount := len(t.Header)
	for _, row := range t.Rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}

	if colCount == 0 {
		return ""
	}

	colWidths := make([]int, colCount)

	measure := func(row []string) {
		for i := 0; i < len(row) && i < colCount; i++ {
			if w := runewidth.StringWidth(row[i]); w > colWidths[i] {
				colWidths[i] = w
			}
		}
	}

	measure(t.Header)

	for _, row := range t.Rows {
		measure(row)
	}

	// Ensure min width for separator (usually 3 dashes "---")
	for i := range colWidths {
		if colWidths[i] < 3 {
			colWidths[i] = 3
		}
	}

	lines := make([]string, 0, len(t.Rows)+2)
	lines = append(lines, t.formatRow(t.Header, colWidths))

	var sep strings.Builder

	sep.WriteString("|")

	for j := 0; j < colCount; j++ {
		dashes := strings.Repeat("-", colWidths[j])
		if t.alignment(j) == AlignRight {
			dashes = dashes[:len(dashes)-1] + ":"
		}

		sep.WriteString(" " + dashes + " |")
	}

	lines = append(lines, sep.String())

	for _, row := range t.Rows {
		lines = append(lines, t.formatRow(row, colWidths))
	}

	return strings.Join(lines, "\n") + "\n"
}

// Render writes an optional title line followed by the formatted table.
func Render(w io.Writer, title string, t Table) error {
	var sb strings.Builder

	if title != "" {
		sb.WriteString(title + "\n")
	}

	sb.WriteString(FormatTable(t))

	_, err := io.WriteString(w, sb.String())

	return err
}

func (t Table) alignment(col int) Alignment {
	if col < len(t.Align) {
		return t.Align[col]
	}

	return AlignLeft
}

func (t Table) formatRow(row []string, colWidths []int) string {
	var sb strings.Builder

	sb.WriteString("|")

	for j := range colWidths {
		content := ""
		if j < len(row) {
			content = row[j]
		}

		pad := ""
		if padding := colWidths[j] - runewidth.StringWidth(content); padding > 0 {
			pad = strings.Repeat(" ", padding)
		}

		sb.WriteString(" ")

		if t.alignment(j) == AlignRight {
			sb.WriteString(pad + content)
		} else {
			sb.WriteString(content + pad)
		}

		sb.WriteString(" |")
	}

	return sb.String()
}

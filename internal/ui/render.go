package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/scttfrdmn/readstructure-go/pkg/readstructure"
)

// RenderError formats err for display. Syntax errors show the normalized
// input with the offending span highlighted and a caret line beneath it.
func (s *Styles) RenderError(err error) string {
	var syntaxErr *readstructure.SyntaxError
	if !errors.As(err, &syntaxErr) {
		return s.Error.Render("error:") + " " + err.Error()
	}

	var b strings.Builder
	b.WriteString(s.Error.Render("error:"))
	b.WriteString(" ")
	b.WriteString(syntaxErr.Err.Error())
	b.WriteString("\n  ")
	b.WriteString(syntaxErr.Prefix)
	b.WriteString(s.Span.Render(syntaxErr.Span))
	b.WriteString(syntaxErr.Suffix)
	b.WriteString("\n  ")
	b.WriteString(strings.Repeat(" ", lipgloss.Width(syntaxErr.Prefix)))
	b.WriteString(s.Caret.Render(strings.Repeat("^", max(1, lipgloss.Width(syntaxErr.Span)))))
	return b.String()
}

// RenderStructure lists each segment of rs with its offset, length and kind.
func (s *Styles) RenderStructure(rs readstructure.ReadStructure) string {
	rows := [][]string{{"#", "segment", "offset", "length", "kind"}}
	for i, seg := range rs.All() {
		length := "+"
		if n, ok := seg.Length(); ok {
			length = strconv.Itoa(n)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			seg.String(),
			strconv.Itoa(seg.Offset()),
			length,
			seg.Kind().String(),
		})
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for j, cell := range row {
			widths[j] = max(widths[j], lipgloss.Width(cell))
		}
	}

	var b strings.Builder
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cell = fmt.Sprintf("%-*s", widths[j], cell)
			switch {
			case i == 0:
				cell = s.Header.Render(cell)
			case j == len(row)-1:
				cell = s.Kind.Render(cell)
			}
			cells[j] = cell
		}
		b.WriteString(strings.TrimRight(strings.Join(cells, "  "), " "))
		b.WriteString("\n")
	}

	b.WriteString(s.Dim.Render(summary(rs)))
	b.WriteString("\n")
	return b.String()
}

func summary(rs readstructure.ReadStructure) string {
	if n, ok := rs.FixedLength(); ok {
		return fmt.Sprintf("%d segments, fixed length %d", rs.Len(), n)
	}
	return fmt.Sprintf("%d segments, at least %d bases", rs.Len(), rs.MinLength())
}

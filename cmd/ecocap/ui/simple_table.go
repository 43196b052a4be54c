package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// SimpleTable renders a titled report table with "|" column separators.
// Missing trailing cells render blank; extra cells are dropped.
type SimpleTable struct {
	Title   string
	Headers []string
	Rows    [][]string
	// Empty is printed under the title when there are no rows. When it is
	// blank an empty table renders nothing.
	Empty string

	right map[int]bool
}

// NewSimpleTable creates a table with the given title and headers.
func NewSimpleTable(title string, headers []string) *SimpleTable {
	return &SimpleTable{Title: title, Headers: headers, right: map[int]bool{}}
}

// AddRow appends a row.
func (t *SimpleTable) AddRow(row ...string) {
	t.Rows = append(t.Rows, row)
}

// AlignRight right-aligns the given columns, for counts and identifiers.
func (t *SimpleTable) AlignRight(cols ...int) *SimpleTable {
	for _, c := range cols {
		t.right[c] = true
	}
	return t
}

// widths returns each column's padded display width. lipgloss.Width counts
// a CJK character as two cells.
func (t *SimpleTable) widths() []int {
	w := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		w[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i := 0; i < len(row) && i < len(w); i++ {
			w[i] = max(w[i], lipgloss.Width(row[i]))
		}
	}
	for i := range w {
		w[i] += 2
	}
	return w
}

func (t *SimpleTable) line(sb *strings.Builder, base lipgloss.Style, sep lipgloss.Style, widths []int, cells []string) {
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		s := base.Padding(0, 1).Width(w)
		if t.right[i] {
			s = s.Align(lipgloss.Right)
		}
		if i > 0 {
			sb.WriteString(sep.Render("|"))
		}
		sb.WriteString(s.Render(cell))
	}
	sb.WriteString("\n")
}

// View renders the table followed by a blank line.
func (t *SimpleTable) View(styles Styles) string {
	if len(t.Rows) == 0 && t.Empty == "" {
		return ""
	}

	var sb strings.Builder
	if t.Title != "" {
		sb.WriteString(styles.Title.Render(t.Title) + "\n")
	}
	if len(t.Rows) == 0 {
		sb.WriteString(styles.Muted.Render(t.Empty) + "\n\n")
		return sb.String()
	}

	widths := t.widths()
	t.line(&sb, styles.Bold, styles.Muted, widths, t.Headers)

	total := len(widths) - 1
	for _, w := range widths {
		total += w
	}
	sb.WriteString(styles.Muted.Render(strings.Repeat("-", total)) + "\n")

	for _, row := range t.Rows {
		t.line(&sb, styles.Body, styles.Muted, widths, row)
	}
	sb.WriteString("\n")
	return sb.String()
}

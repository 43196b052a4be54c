package workbook

import (
	"fmt"
	"strings"
)

// Table is a sheet read below a header row.
type Table struct {
	Sheet     string
	HeaderRow int
	Header    []string
	Rows      []TableRow
}

// TableRow is one data row with its worksheet row number.
type TableRow struct {
	Number int
	Cells  []string
}

// Cell returns the value at column index i, or "" past the end of the row.
func (r TableRow) Cell(i int) string {
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return r.Cells[i]
}

// Blank reports whether every cell of the row is empty after trimming.
func (r TableRow) Blank() bool {
	for _, c := range r.Cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Table reads a sheet whose header sits on headerRow (1-based). Rows above
// the header are ignored.
func (w *Workbook) Table(sheet string, headerRow int) (*Table, error) {
	rows, err := w.Rows(sheet)
	if err != nil {
		return nil, err
	}
	t := &Table{Sheet: sheet, HeaderRow: headerRow}
	if headerRow < 1 || len(rows) < headerRow {
		return t, nil
	}
	t.Header = rows[headerRow-1]
	for i := headerRow; i < len(rows); i++ {
		t.Rows = append(t.Rows, TableRow{Number: i + 1, Cells: rows[i]})
	}
	return t, nil
}

// Column returns the index of the first header cell equal to name after
// trimming, or -1.
func (t *Table) Column(name string) int {
	for i, h := range t.Header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

// Columns resolves several header names at once. Any missing name is an
// ErrBadSchema.
func (t *Table) Columns(names ...string) ([]int, error) {
	out := make([]int, len(names))
	var missing []string
	for i, name := range names {
		out[i] = t.Column(name)
		if out[i] < 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s is missing column(s) %s", ErrBadSchema, t.Sheet, strings.Join(missing, ", "))
	}
	return out, nil
}

// Width returns the number of non-empty header cells, counting up to the
// last one.
func (t *Table) Width() int {
	n := len(t.Header)
	for n > 0 && strings.TrimSpace(t.Header[n-1]) == "" {
		n--
	}
	return n
}

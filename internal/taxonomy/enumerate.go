package taxonomy

import (
	"fmt"
	"strings"
)

// Row is one classification row of the detail sheet.
type Row struct {
	Number int // worksheet row number, for error messages
	Labels [Levels]Label
}

// RowFromCells builds a Row from raw cell values. Missing trailing cells are
// empty labels; extra cells are ignored.
func RowFromCells(number int, cells []string) Row {
	r := Row{Number: number}
	for i := 0; i < Levels; i++ {
		if i < len(cells) {
			r.Labels[i] = ParseLabel(cells[i])
		} else {
			r.Labels[i] = EmptyLabel()
		}
	}
	return r
}

// InvalidLabelError aborts enumeration: a classification row is missing a
// label, which would make the ordinal space ambiguous.
type InvalidLabelError struct {
	Row      int
	Level    int
	State    LabelState
	Contents []string
}

func (e *InvalidLabelError) Error() string {
	return fmt.Sprintf("invalid classification at row %d, level %d (%s label): [%s]",
		e.Row, e.Level, e.State, strings.Join(e.Contents, ", "))
}

// Add enumerates one row: each level's path gets the next ordinal of its
// level the first time it is seen. Fully blank rows are ignored.
func (o *Ordinals) Add(r Row) error {
	if blankRow(r.Labels) {
		return nil
	}
	for level := 0; level < Levels; level++ {
		if !r.Labels[level].Present() {
			return &InvalidLabelError{
				Row:      r.Number,
				Level:    level,
				State:    r.Labels[level].State(),
				Contents: rawLabels(r.Labels),
			}
		}
		p, _ := pathOf(r.Labels, level)
		o.levels[level].assign(p)
	}
	return nil
}

// Enumerate builds the per-level ordinals of rows, in row order. The first
// invalid row aborts with an *InvalidLabelError.
func Enumerate(rows []Row) (*Ordinals, error) {
	o := NewOrdinals()
	for _, r := range rows {
		if err := o.Add(r); err != nil {
			return nil, err
		}
	}
	return o, nil
}

package taxonomy

import "fmt"

// PairRow is one row of an identifier sheet: six (label, identifier) pairs.
type PairRow struct {
	Number    int
	Labels    [Levels]Label
	IDs       [Levels]Identifier
	Rewritten [Levels]bool // label cells changed by inheritance
}

// PairRowFromCells builds a PairRow from the 12 raw cells of a sheet row.
func PairRowFromCells(number int, cells []string) PairRow {
	r := PairRow{Number: number}
	cell := func(i int) string {
		if i < len(cells) {
			return cells[i]
		}
		return ""
	}
	for level := 0; level < Levels; level++ {
		r.Labels[level] = ParseLabel(cell(level * 2))
		r.IDs[level] = ParseIdentifier(cell(level*2 + 1))
	}
	return r
}

// UnresolvedPathError is returned by a strict Formatter for a row whose
// path at some level was never enumerated.
type UnresolvedPathError struct {
	Row   int
	Level int
	Path  string
}

func (e *UnresolvedPathError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("row %d level %d: no label to resolve", e.Row, e.Level)
	}
	return fmt.Sprintf("row %d level %d: path %q was never enumerated", e.Row, e.Level, e.Path)
}

// FormatStats summarizes a formatting pass.
type FormatStats struct {
	Rows       int // rows formatted
	Skipped    int // fully blank rows left untouched
	Resolved   int // identifier cells given a number
	Unresolved int // identifier cells given the placeholder
	Inherited  int // label cells rewritten from their parent
}

// Formatter writes identifiers into PairRows using enumerated ordinals.
type Formatter struct {
	ordinals *Ordinals
	strict   bool
}

// NewFormatter returns a formatter over o. A strict formatter fails on the
// first unresolved path instead of writing the placeholder.
func NewFormatter(o *Ordinals, strict bool) *Formatter {
	return &Formatter{ordinals: o, strict: strict}
}

// FormatRow fills the identifiers of one row in place. Empty or placeholder
// labels inherit the label of the level above; at level 0 a placeholder is
// cleared. Unresolvable paths get the placeholder identifier.
func (f *Formatter) FormatRow(r *PairRow) (resolved, unresolved int, err error) {
	for level := 0; level < Levels; level++ {
		old := r.Labels[level]
		if !old.Present() {
			next := EmptyLabel()
			if level > 0 {
				next = r.Labels[level-1]
			}
			if next.Raw() != old.Raw() {
				r.Labels[level] = next
				r.Rewritten[level] = true
			}
		}

		p, ok := pathOf(r.Labels, level)
		if ok {
			if n, found := f.ordinals.levels[level].Lookup(p); found {
				r.IDs[level] = IdentifierFor(level, n)
				resolved++
				continue
			}
		}

		if f.strict {
			e := &UnresolvedPathError{Row: r.Number, Level: level}
			if ok {
				e.Path = p.String()
			}
			return resolved, unresolved, e
		}
		r.IDs[level] = PlaceholderID()
		unresolved++
	}
	return resolved, unresolved, nil
}

// FormatRows formats every row in place. Fully blank rows are skipped.
func (f *Formatter) FormatRows(rows []PairRow) (FormatStats, error) {
	var stats FormatStats
	for i := range rows {
		// Blank rows keep their empty id cells rather than getting "/" in
		// all six; the flattener drops both alike.
		if blankRow(rows[i].Labels) {
			stats.Skipped++
			continue
		}
		resolved, unresolved, err := f.FormatRow(&rows[i])
		stats.Resolved += resolved
		stats.Unresolved += unresolved
		if err != nil {
			return stats, err
		}
		for _, rewritten := range rows[i].Rewritten {
			if rewritten {
				stats.Inherited++
			}
		}
		stats.Rows++
	}
	return stats, nil
}

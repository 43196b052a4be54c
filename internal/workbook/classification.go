package workbook

import (
	"fmt"

	"ecocap/internal/logging"
	"ecocap/internal/taxonomy"
)

// EdgeHeader is the header row of the flattened edge sheet.
var EdgeHeader = []interface{}{"field", "field_id", "parent_id", "level"}

// ReadClassificationRows loads the detail sheet: exactly six label columns
// under headerRow.
func (w *Workbook) ReadClassificationRows(sheet string, headerRow int) ([]taxonomy.Row, error) {
	t, err := w.Table(sheet, headerRow)
	if err != nil {
		return nil, err
	}
	if width := t.Width(); width != taxonomy.Levels {
		return nil, fmt.Errorf("%w: %s has %d header columns, want %d", ErrBadSchema, sheet, width, taxonomy.Levels)
	}
	rows := make([]taxonomy.Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		rows = append(rows, taxonomy.RowFromCells(r.Number, r.Cells))
	}
	logging.WorkbookDebug("Read %d classification rows from %s", len(rows), sheet)
	return rows, nil
}

// ReadPairRows loads an identifier sheet: six (label, identifier) column
// pairs under headerRow.
func (w *Workbook) ReadPairRows(sheet string, headerRow int) ([]taxonomy.PairRow, error) {
	t, err := w.Table(sheet, headerRow)
	if err != nil {
		return nil, err
	}
	if width := t.Width(); width < taxonomy.Levels*2 {
		return nil, fmt.Errorf("%w: %s has %d header columns, want %d", ErrBadSchema, sheet, width, taxonomy.Levels*2)
	}
	rows := make([]taxonomy.PairRow, 0, len(t.Rows))
	for _, r := range t.Rows {
		rows = append(rows, taxonomy.PairRowFromCells(r.Number, r.Cells))
	}
	logging.WorkbookDebug("Read %d identifier rows from %s", len(rows), sheet)
	return rows, nil
}

// WritePairRows stores formatted rows back: every identifier cell, and the
// label cells that were rewritten by inheritance.
func (w *Workbook) WritePairRows(sheet string, rows []taxonomy.PairRow) error {
	for _, r := range rows {
		for level := 0; level < taxonomy.Levels; level++ {
			col := level*2 + 1
			if r.Rewritten[level] {
				var label interface{}
				if raw := r.Labels[level].Raw(); raw != "" {
					label = raw
				}
				if err := w.SetCell(sheet, col, r.Number, label); err != nil {
					return err
				}
			}
			if err := w.SetCell(sheet, col+1, r.Number, r.IDs[level].Cell()); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteOrdinalSummary writes each level's (label, ordinal) pairs side by
// side from startRow down. The sheet is created if missing; rows from
// startRow on are cleared first, rows above are kept.
func (w *Workbook) WriteOrdinalSummary(sheet string, startRow int, o *taxonomy.Ordinals) error {
	if _, err := w.EnsureSheet(sheet); err != nil {
		return err
	}
	if err := w.ClearFrom(sheet, startRow); err != nil {
		return err
	}
	for level := 0; level < taxonomy.Levels; level++ {
		col := level*2 + 1
		for i, e := range o.Level(level).Entries() {
			if err := w.SetRow(sheet, col, startRow+i, []interface{}{e.Path.Last(), e.Ordinal}); err != nil {
				return err
			}
		}
	}
	logging.Workbook("Wrote ordinal summary to %s: %v", sheet, o.Counts())
	return nil
}

// ReplaceEdgeSheet recreates sheet holding the edge list under EdgeHeader.
func (w *Workbook) ReplaceEdgeSheet(sheet string, edges []taxonomy.Edge) error {
	if err := w.ReplaceSheet(sheet); err != nil {
		return err
	}
	if err := w.SetRow(sheet, 1, 1, EdgeHeader); err != nil {
		return err
	}
	for i, e := range edges {
		if err := w.SetRow(sheet, 1, i+2, []interface{}{e.Label, e.ID, e.Parent.Cell(), e.Level}); err != nil {
			return err
		}
	}
	logging.Workbook("Wrote %d edges to %s", len(edges), sheet)
	return nil
}

// Package workbook wraps an xlsx file opened once, mutated in memory and
// written back at checkpoints.
package workbook

import (
	"errors"
	"fmt"
	"strings"

	"ecocap/internal/logging"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrSheetNotFound is returned when a named sheet does not exist.
	ErrSheetNotFound = errors.New("sheet not found")
	// ErrBadSchema is returned when a sheet's header does not have the
	// expected shape.
	ErrBadSchema = errors.New("unexpected sheet layout")
)

// SaveError reports a failed checkpoint. The in-memory workbook is intact;
// the operator has to release the file and rerun.
type SaveError struct {
	Path string
	Err  error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("failed to save %s: %v", e.Path, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

// Hint is the remediation shown to the operator.
func (e *SaveError) Hint() string {
	return "close the file in the other program and rerun"
}

// Workbook is an open xlsx file.
type Workbook struct {
	f    *excelize.File
	path string
}

// Open loads the workbook at path.
func Open(path string) (*Workbook, error) {
	timer := logging.StartTimer(logging.CategoryWorkbook, "Open")
	defer timer.Stop()

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	logging.Workbook("Opened %s (%d sheets)", path, len(f.GetSheetList()))
	return &Workbook{f: f, path: path}, nil
}

// New creates an empty workbook that will be saved to path.
func New(path string) *Workbook {
	return &Workbook{f: excelize.NewFile(), path: path}
}

// Path returns the file the workbook saves to.
func (w *Workbook) Path() string { return w.path }

// Close releases the workbook's temporary files.
func (w *Workbook) Close() error {
	return w.f.Close()
}

// Save writes the workbook back to its path. Failures come back as
// *SaveError.
func (w *Workbook) Save() error {
	if err := w.f.SaveAs(w.path); err != nil {
		logging.WorkbookWarn("Save of %s failed: %v", w.path, err)
		return &SaveError{Path: w.path, Err: err}
	}
	logging.WorkbookDebug("Saved %s", w.path)
	return nil
}

// Sheets lists the sheet names in workbook order.
func (w *Workbook) Sheets() []string {
	return w.f.GetSheetList()
}

// HasSheet reports whether a sheet exists.
func (w *Workbook) HasSheet(name string) bool {
	idx, err := w.f.GetSheetIndex(name)
	return err == nil && idx >= 0
}

// Activate makes sheet the one shown when the file is opened.
func (w *Workbook) Activate(sheet string) error {
	idx, err := w.f.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		return fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
	}
	w.f.SetActiveSheet(idx)
	return nil
}

// Rows returns the raw cell values of a sheet. Trailing empty cells of a row
// are trimmed.
func (w *Workbook) Rows(sheet string) ([][]string, error) {
	if !w.HasSheet(sheet) {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
	}
	rows, err := w.f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

// Cell returns one raw cell value. col and row are 1-based.
func (w *Workbook) Cell(sheet string, col, row int) (string, error) {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", err
	}
	return w.f.GetCellValue(sheet, name, excelize.Options{RawCellValue: true})
}

// SetCell writes one cell. A nil value clears it.
func (w *Workbook) SetCell(sheet string, col, row int, value interface{}) error {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if value == nil {
		value = ""
	}
	if err := w.f.SetCellValue(sheet, name, value); err != nil {
		return fmt.Errorf("failed to write %s!%s: %w", sheet, name, err)
	}
	return nil
}

// SetRow writes values into consecutive cells starting at (col, row).
func (w *Workbook) SetRow(sheet string, col, row int, values []interface{}) error {
	for i, v := range values {
		if err := w.SetCell(sheet, col+i, row, v); err != nil {
			return err
		}
	}
	return nil
}

// ClearFrom blanks every cell at or below row, keeping the rows above.
func (w *Workbook) ClearFrom(sheet string, row int) error {
	rows, err := w.Rows(sheet)
	if err != nil {
		return err
	}
	for r := row; r <= len(rows); r++ {
		for c := range rows[r-1] {
			if err := w.SetCell(sheet, c+1, r, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

// EnsureSheet creates the sheet if it is missing and reports whether it did.
func (w *Workbook) EnsureSheet(name string) (bool, error) {
	if w.HasSheet(name) {
		return false, nil
	}
	if _, err := w.f.NewSheet(name); err != nil {
		return false, fmt.Errorf("failed to create sheet %s: %w", name, err)
	}
	logging.WorkbookDebug("Created sheet %s", name)
	return true, nil
}

// ReplaceSheet drops the sheet if it exists and creates it empty.
func (w *Workbook) ReplaceSheet(name string) error {
	if w.HasSheet(name) {
		// The last sheet of a workbook cannot be deleted, only emptied.
		if len(w.Sheets()) == 1 {
			return w.ClearFrom(name, 1)
		}
		if err := w.f.DeleteSheet(name); err != nil {
			return fmt.Errorf("failed to delete sheet %s: %w", name, err)
		}
	}
	_, err := w.EnsureSheet(name)
	return err
}

// CopySheet creates name as a copy of template. An existing sheet is left
// alone and reported as not created.
func (w *Workbook) CopySheet(template, name string) (bool, error) {
	if w.HasSheet(name) {
		return false, nil
	}
	from, err := w.f.GetSheetIndex(template)
	if err != nil || from < 0 {
		return false, fmt.Errorf("%w: %s", ErrSheetNotFound, template)
	}
	to, err := w.f.NewSheet(name)
	if err != nil {
		return false, fmt.Errorf("failed to create sheet %s: %w", name, err)
	}
	if err := w.f.CopySheet(from, to); err != nil {
		return false, fmt.Errorf("failed to copy %s to %s: %w", template, name, err)
	}
	logging.WorkbookDebug("Copied %s to %s", template, name)
	return true, nil
}

// LinkToSheet turns a cell into an internal hyperlink to A1 of target, styled
// as a link.
func (w *Workbook) LinkToSheet(sheet string, col, row int, target string) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	location := fmt.Sprintf("'%s'!A1", strings.ReplaceAll(target, "'", "''"))
	if err := w.f.SetCellHyperLink(sheet, cell, location, "Location"); err != nil {
		return fmt.Errorf("failed to link %s!%s: %w", sheet, cell, err)
	}
	style, err := w.f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "0000FF", Underline: "single"},
	})
	if err != nil {
		return err
	}
	return w.f.SetCellStyle(sheet, cell, cell, style)
}

// MaxSheetNameLen is Excel's limit on sheet name length, in characters.
const MaxSheetNameLen = 31

// SheetName derives a name Excel accepts from s: the characters :\/?*[]
// are dropped, leading and trailing apostrophes are trimmed and the result
// is cut to MaxSheetNameLen runes. A name with nothing left becomes "Sheet".
func SheetName(s string) string {
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return -1
		}
		return r
	}, s)
	s = strings.Trim(strings.TrimSpace(s), "'")
	if r := []rune(s); len(r) > MaxSheetNameLen {
		s = strings.TrimRight(string(r[:MaxSheetNameLen]), "' ")
	}
	if s == "" {
		return "Sheet"
	}
	return s
}

// SuffixSheetName returns the n-th alternative of a valid sheet name, "~n"
// appended and the base shortened to stay within MaxSheetNameLen.
func SuffixSheetName(name string, n int) string {
	suffix := fmt.Sprintf("~%d", n)
	r := []rune(name)
	if keep := MaxSheetNameLen - len(suffix); len(r) > keep {
		r = r[:keep]
	}
	return string(r) + suffix
}

// LinkedSheet returns the sheet an internal hyperlink in the cell points
// to, or "" when the cell has no such link.
func (w *Workbook) LinkedSheet(sheet string, col, row int) (string, error) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", err
	}
	ok, location, err := w.f.GetCellHyperLink(sheet, cell)
	if err != nil {
		return "", fmt.Errorf("failed to read link %s!%s: %w", sheet, cell, err)
	}
	i := strings.LastIndex(location, "!")
	if !ok || i <= 0 {
		return "", nil
	}
	target := location[:i]
	if len(target) >= 2 && strings.HasPrefix(target, "'") && strings.HasSuffix(target, "'") {
		target = strings.ReplaceAll(target[1:len(target)-1], "''", "'")
	}
	return target, nil
}

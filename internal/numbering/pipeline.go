// Package numbering runs the category numbering pipeline over a workbook:
// enumerate the detail sheet, write the ordinal summary, fill identifier
// columns on the target sheets, and flatten the result into an edge sheet.
package numbering

import (
	"context"
	"errors"
	"fmt"

	"ecocap/internal/config"
	"ecocap/internal/logging"
	"ecocap/internal/taxonomy"
	"ecocap/internal/workbook"

	"github.com/google/uuid"
)

// TargetResult is the outcome of formatting one target sheet.
type TargetResult struct {
	Sheet   string
	Missing bool
	Stats   taxonomy.FormatStats
}

// Result summarizes a pipeline run.
type Result struct {
	RunID   string
	Counts  [taxonomy.Levels]int
	Targets []TargetResult
	Edges   []taxonomy.Edge
	// Checkpoints that could not be written. The run continues past them.
	SaveFailures []*workbook.SaveError
}

// Saved reports whether every checkpoint reached disk.
func (r *Result) Saved() bool { return len(r.SaveFailures) == 0 }

// Pipeline is one configured numbering run over an open workbook.
type Pipeline struct {
	cfg config.NumberingConfig
	wb  *workbook.Workbook
	log *logging.RequestLogger
	res *Result
}

// New prepares a run of cfg against wb.
func New(wb *workbook.Workbook, cfg config.NumberingConfig) *Pipeline {
	runID := uuid.NewString()
	return &Pipeline{
		cfg: cfg,
		wb:  wb,
		log: logging.WithRequestID(logging.CategoryNumbering, runID).WithField("workbook", wb.Path()),
		res: &Result{RunID: runID},
	}
}

// Run executes all stages in order. Enumeration errors, unreadable sheets and
// strict-mode resolution failures abort the run; failed saves do not.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	timer := logging.StartTimer(logging.CategoryNumbering, "Run")
	defer timer.StopWithInfo()

	p.log.Info("Numbering run started")

	ordinals, err := p.enumerate()
	if err != nil {
		return p.res, err
	}
	if err := ctx.Err(); err != nil {
		return p.res, err
	}
	if err := p.wb.WriteOrdinalSummary(p.cfg.OrdinalSheet, p.cfg.OrdinalStartRow, ordinals); err != nil {
		return p.res, fmt.Errorf("failed to write ordinal summary: %w", err)
	}
	if err := p.checkpoint("ordinal summary"); err != nil {
		return p.res, err
	}

	for _, sheet := range p.cfg.TargetSheets {
		if err := ctx.Err(); err != nil {
			return p.res, err
		}
		if err := p.format(ordinals, sheet); err != nil {
			return p.res, err
		}
	}

	if err := ctx.Err(); err != nil {
		return p.res, err
	}
	if err := p.flatten(); err != nil {
		return p.res, err
	}

	p.log.Info("Numbering run finished: counts=%v edges=%d save_failures=%d",
		p.res.Counts, len(p.res.Edges), len(p.res.SaveFailures))
	return p.res, nil
}

func (p *Pipeline) enumerate() (*taxonomy.Ordinals, error) {
	rows, err := p.wb.ReadClassificationRows(p.cfg.DetailSheet, p.cfg.DetailHeaderRow)
	if err != nil {
		return nil, fmt.Errorf("failed to read detail sheet: %w", err)
	}
	ordinals, err := taxonomy.Enumerate(rows)
	if err != nil {
		p.log.Error("Enumeration aborted: %v", err)
		return nil, err
	}
	p.res.Counts = ordinals.Counts()
	p.log.Info("Enumerated %d rows from %s: %v", len(rows), p.cfg.DetailSheet, p.res.Counts)
	return ordinals, nil
}

// format fills one target sheet. A missing target sheet is skipped.
func (p *Pipeline) format(ordinals *taxonomy.Ordinals, sheet string) error {
	target := TargetResult{Sheet: sheet}
	rows, err := p.wb.ReadPairRows(sheet, p.cfg.TargetHeaderRow)
	if errors.Is(err, workbook.ErrSheetNotFound) {
		p.log.Warn("Target sheet %s does not exist, skipping", sheet)
		target.Missing = true
		p.res.Targets = append(p.res.Targets, target)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read target sheet %s: %w", sheet, err)
	}

	stats, ferr := taxonomy.NewFormatter(ordinals, p.cfg.Strict).FormatRows(rows)
	target.Stats = stats
	p.res.Targets = append(p.res.Targets, target)
	if ferr != nil {
		p.log.Error("Formatting %s aborted: %v", sheet, ferr)
		return ferr
	}
	if stats.Unresolved > 0 {
		p.log.Warn("%s: %d identifier cells could not be resolved", sheet, stats.Unresolved)
	}

	if err := p.wb.WritePairRows(sheet, rows); err != nil {
		return fmt.Errorf("failed to write target sheet %s: %w", sheet, err)
	}
	p.log.Info("Formatted %s: rows=%d resolved=%d unresolved=%d inherited=%d",
		sheet, stats.Rows, stats.Resolved, stats.Unresolved, stats.Inherited)
	return p.checkpoint(sheet)
}

// ReadEdges flattens the edge source sheet of wb as it stands, without
// renumbering or writing anything.
func ReadEdges(wb *workbook.Workbook, cfg config.NumberingConfig) ([]taxonomy.Edge, error) {
	rows, err := wb.ReadPairRows(cfg.EdgeSourceSheet, cfg.TargetHeaderRow)
	if err != nil {
		return nil, fmt.Errorf("failed to read edge source sheet: %w", err)
	}
	return taxonomy.Flatten(rows), nil
}

func (p *Pipeline) flatten() error {
	edges, err := ReadEdges(p.wb, p.cfg)
	if err != nil {
		return err
	}
	p.res.Edges = edges
	if err := p.wb.ReplaceEdgeSheet(p.cfg.EdgeSheet, p.res.Edges); err != nil {
		return fmt.Errorf("failed to write edge sheet: %w", err)
	}
	p.log.Info("Flattened %s into %d edges on %s", p.cfg.EdgeSourceSheet, len(p.res.Edges), p.cfg.EdgeSheet)
	return p.checkpoint("edge sheet")
}

// checkpoint saves the workbook. A *workbook.SaveError is recorded and
// swallowed.
func (p *Pipeline) checkpoint(stage string) error {
	err := p.wb.Save()
	if err == nil {
		p.log.Debug("Checkpoint after %s saved", stage)
		return nil
	}
	var saveErr *workbook.SaveError
	if errors.As(err, &saveErr) {
		p.log.Warn("Checkpoint after %s not saved: %v; %s", stage, saveErr, saveErr.Hint())
		p.res.SaveFailures = append(p.res.SaveFailures, saveErr)
		return nil
	}
	return err
}

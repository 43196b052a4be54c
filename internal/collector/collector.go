package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ecocap/internal/config"
	"ecocap/internal/logging"
	"ecocap/internal/workbook"

	"github.com/google/uuid"
)

// Directory sheet columns.
const (
	ColumnCompany = "公司名称"
	ColumnTotal   = "能力总数"
	ColumnStatus  = "状态"
	ColumnTime    = "查询时间"
)

// TimestampLayout formats the query time written to the directory sheet.
const TimestampLayout = "2006-01-02 15:04:05"

// Stats summarizes a collection run.
type Stats struct {
	RunID     string
	Companies int // rows visited
	Skipped   int // blank or already collected
	Succeeded int
	Partial   int
	Failed    int
	Abilities int // ability rows written
	Reused    int // abilities already collected, not reopened

	SaveFailures []*workbook.SaveError
}

// Collector fills the workbook from the portal.
type Collector struct {
	wb     *workbook.Workbook
	portal Portal
	cfg    config.CollectorConfig
	pacer  *Pacer
	now    func() time.Time
	log    *logging.RequestLogger
	stats  Stats

	// taken maps a lower-cased sheet name to the company that owns it; ""
	// marks the directory and template sheets. owned is the reverse.
	taken map[string]string
	owned map[string]string
}

// New returns a collector writing into wb.
func New(wb *workbook.Workbook, portal Portal, cfg config.CollectorConfig) *Collector {
	runID := uuid.NewString()
	return &Collector{
		wb:     wb,
		portal: portal,
		cfg:    cfg,
		pacer:  NewPacer(cfg.MinPauseMs, cfg.MaxPauseMs),
		now:    time.Now,
		log:    logging.WithRequestID(logging.CategoryCollector, runID).WithField("workbook", wb.Path()),
		stats:  Stats{RunID: runID},
		taken:  make(map[string]string),
		owned:  make(map[string]string),
	}
}

type directory struct {
	sheet                      string
	company, total, status, at int // 1-based columns
}

// Run visits every directory row. It stops early only on a cancelled
// context, a closed operator input or a workbook write error; portal
// failures are recorded as failed statuses.
func (c *Collector) Run(ctx context.Context) (*Stats, error) {
	timer := logging.StartTimer(logging.CategoryCollector, "Run")
	defer timer.Stop()

	t, err := c.wb.Table(c.cfg.DirectorySheet, c.cfg.DirectoryHeaderRow)
	if err != nil {
		return nil, err
	}
	cols, err := t.Columns(ColumnCompany, ColumnTotal, ColumnStatus, ColumnTime)
	if err != nil {
		return nil, err
	}
	if !c.wb.HasSheet(c.cfg.TemplateSheet) {
		return nil, fmt.Errorf("%w: %s", workbook.ErrSheetNotFound, c.cfg.TemplateSheet)
	}
	dir := directory{
		sheet:   c.cfg.DirectorySheet,
		company: cols[0] + 1,
		total:   cols[1] + 1,
		status:  cols[2] + 1,
		at:      cols[3] + 1,
	}

	if err := c.claimLinkedSheets(t, dir); err != nil {
		return nil, err
	}

	if err := c.portal.EnsureLogin(ctx); err != nil {
		return nil, fmt.Errorf("failed to log in to portal: %w", err)
	}

	for _, row := range t.Rows {
		if err := ctx.Err(); err != nil {
			return &c.stats, err
		}
		c.stats.Companies++
		name := strings.TrimSpace(row.Cell(cols[0]))
		if name == "" {
			c.stats.Skipped++
			c.log.Debug("Row %d has no company name, skipping", row.Number)
			continue
		}
		if row.Cell(cols[2]) == StatusSuccess {
			c.stats.Skipped++
			c.log.Debug("Company %s already collected, skipping", name)
			continue
		}
		if err := c.collectRow(ctx, dir, row.Number, name); err != nil {
			return &c.stats, err
		}
	}

	if err := c.wb.Activate(dir.sheet); err != nil {
		return &c.stats, err
	}
	if err := c.checkpoint("run"); err != nil {
		return &c.stats, err
	}
	c.log.Info("Collection finished: %d succeeded, %d partial, %d failed, %d skipped, %d abilities written",
		c.stats.Succeeded, c.stats.Partial, c.stats.Failed, c.stats.Skipped, c.stats.Abilities)
	return &c.stats, nil
}

func (c *Collector) collectRow(ctx context.Context, dir directory, rowNum int, name string) error {
	sheetName := c.sheetFor(name)
	sheet, err := c.companySheet(name, sheetName)
	if err != nil {
		c.log.Warn("Company %s has no usable sheet %s: %v", name, sheetName, err)
		c.stats.Failed++
		return c.finishRow(dir, rowNum, name, StatusFailed)
	}
	if err := c.wb.LinkToSheet(dir.sheet, dir.company, rowNum, sheetName); err != nil {
		return err
	}
	if err := c.checkpoint(name); err != nil {
		return err
	}

	status, err := c.collectCompany(ctx, sheet, dir, rowNum)
	if err != nil {
		return err
	}
	switch status {
	case StatusSuccess:
		c.stats.Succeeded++
	case StatusPartial:
		c.stats.Partial++
	default:
		c.stats.Failed++
	}
	return c.finishRow(dir, rowNum, name, status)
}

// finishRow writes the company's status and query time.
func (c *Collector) finishRow(dir directory, rowNum int, name, status string) error {
	if err := c.wb.SetCell(dir.sheet, dir.status, rowNum, status); err != nil {
		return err
	}
	if err := c.wb.SetCell(dir.sheet, dir.at, rowNum, c.now().Format(TimestampLayout)); err != nil {
		return err
	}
	c.log.Info("Company %s done: %s", name, status)
	return c.checkpoint(name)
}

// claimLinkedSheets records which sheet each directory row already links
// to, so a resumed run reuses it and no two companies share a sheet.
func (c *Collector) claimLinkedSheets(t *workbook.Table, dir directory) error {
	c.taken[strings.ToLower(c.cfg.DirectorySheet)] = ""
	c.taken[strings.ToLower(c.cfg.TemplateSheet)] = ""
	for _, row := range t.Rows {
		name := strings.TrimSpace(row.Cell(dir.company - 1))
		if name == "" {
			continue
		}
		target, err := c.wb.LinkedSheet(dir.sheet, dir.company, row.Number)
		if err != nil {
			return err
		}
		if target == "" || !c.wb.HasSheet(target) {
			continue
		}
		c.claim(name, target)
	}
	return nil
}

// claim gives sheet to company unless another company already owns it.
func (c *Collector) claim(company, sheet string) bool {
	if owner, taken := c.taken[strings.ToLower(sheet)]; taken && owner != company {
		return false
	}
	if _, ok := c.owned[company]; ok {
		return false
	}
	c.taken[strings.ToLower(sheet)] = company
	c.owned[company] = sheet
	return true
}

// sheetFor returns the company's sheet name: the one it already owns, else
// the first valid derivation of its name no other company owns.
func (c *Collector) sheetFor(company string) string {
	if sheet, ok := c.owned[company]; ok {
		return sheet
	}
	base := workbook.SheetName(company)
	candidate := base
	for n := 2; !c.claim(company, candidate); n++ {
		candidate = workbook.SuffixSheetName(base, n)
	}
	return candidate
}

// collectCompany walks the company's listing and returns its status.
func (c *Collector) collectCompany(ctx context.Context, sheet *companySheet, dir directory, rowNum int) (string, error) {
	listing, err := c.portal.OpenCompany(ctx, sheet.company)
	if err != nil {
		if fatal(ctx, err) {
			return "", err
		}
		c.log.Warn("Company %s: %v", sheet.company, err)
		return StatusFailed, nil
	}
	defer func() {
		if err := listing.Close(); err != nil {
			c.log.Debug("Closing listing of %s: %v", sheet.company, err)
		}
	}()

	total, err := listing.Total(ctx)
	if err != nil {
		if fatal(ctx, err) {
			return "", err
		}
		c.log.Warn("Company %s: ability total unreadable: %v", sheet.company, err)
		return sheet.status()
	}
	if err := c.wb.SetCell(dir.sheet, dir.total, rowNum, total); err != nil {
		return "", err
	}
	if err := c.checkpoint(sheet.company); err != nil {
		return "", err
	}
	if total == 0 {
		c.log.Warn("Company %s lists no abilities, it may not be on the portal yet", sheet.company)
	}

	if err := c.walk(ctx, sheet, listing); err != nil {
		return "", err
	}
	return sheet.status()
}

func (c *Collector) walk(ctx context.Context, sheet *companySheet, listing Listing) error {
	done, err := sheet.collected()
	if err != nil {
		return err
	}
	for page := 1; ; page++ {
		names, err := listing.Names(ctx)
		if err != nil {
			if fatal(ctx, err) {
				return err
			}
			c.log.Warn("Company %s page %d did not load, stopping: %v", sheet.company, page, err)
			return nil
		}
		c.log.Debug("Company %s page %d: %d abilities", sheet.company, page, len(names))

		for _, name := range names {
			if done[name] {
				c.stats.Reused++
				continue
			}
			if err := c.pacer.Pause(ctx); err != nil {
				return err
			}
			d, err := listing.Detail(ctx, name)
			if err != nil {
				if fatal(ctx, err) {
					return err
				}
				c.log.Warn("Ability %s of %s: %v", name, sheet.company, err)
				d = FailedDetail(name)
			}
			d.Name = name
			d = d.Resolve()
			if err := sheet.upsert(d); err != nil {
				return err
			}
			c.stats.Abilities++
			if err := c.checkpoint(name); err != nil {
				return err
			}
		}

		more, err := listing.Next(ctx)
		if err != nil {
			if fatal(ctx, err) {
				return err
			}
			c.log.Warn("Company %s: next page unreachable after page %d: %v", sheet.company, page, err)
			return nil
		}
		if !more {
			c.log.Debug("Company %s: %d pages browsed", sheet.company, page)
			return nil
		}
		if err := c.pacer.Pause(ctx); err != nil {
			return err
		}
	}
}

// fatal reports errors that end the run rather than one company.
func fatal(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, ErrOperatorGone)
}

func (c *Collector) checkpoint(stage string) error {
	err := c.wb.Save()
	if err == nil {
		return nil
	}
	var saveErr *workbook.SaveError
	if errors.As(err, &saveErr) {
		c.log.Warn("Checkpoint after %s not saved: %v; %s", stage, saveErr, saveErr.Hint())
		c.stats.SaveFailures = append(c.stats.SaveFailures, saveErr)
		return nil
	}
	return err
}

// companySheet is the per-company ability sheet, header on row 1.
type companySheet struct {
	wb      *workbook.Workbook
	company string
	name    string
}

func (c *Collector) companySheet(company, name string) (*companySheet, error) {
	created, err := c.wb.CopySheet(c.cfg.TemplateSheet, name)
	if err != nil {
		return nil, err
	}
	s := &companySheet{wb: c.wb, company: company, name: name}
	if created {
		c.log.Debug("Created sheet %s for %s", name, company)
		rows, err := c.wb.Rows(name)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			header := make([]interface{}, len(AbilityHeader))
			for i, h := range AbilityHeader {
				header[i] = h
			}
			if err := c.wb.SetRow(name, 1, 1, header); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

func (s *companySheet) dataRows() ([][]string, error) {
	rows, err := s.wb.Rows(s.name)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, nil
	}
	return rows[1:], nil
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

// collected returns the abilities already recorded as successful.
func (s *companySheet) collected() (map[string]bool, error) {
	rows, err := s.dataRows()
	if err != nil {
		return nil, err
	}
	done := make(map[string]bool)
	for _, row := range rows {
		if cellAt(row, 1) == StatusSuccess {
			done[cellAt(row, 0)] = true
		}
	}
	return done, nil
}

func (s *companySheet) status() (string, error) {
	rows, err := s.dataRows()
	if err != nil {
		return "", err
	}
	statuses := make([]string, 0, len(rows))
	for _, row := range rows {
		statuses = append(statuses, cellAt(row, 1))
	}
	return CompanyStatus(statuses), nil
}

// upsert writes d over the row holding the same ability name, or else into
// the first blank row.
func (s *companySheet) upsert(d AbilityDetail) error {
	rows, err := s.dataRows()
	if err != nil {
		return err
	}
	target, blank := 0, 0
	for i, row := range rows {
		if cellAt(row, 0) == d.Name {
			target = i + 2
			break
		}
		if blank == 0 && blankRow(row) {
			blank = i + 2
		}
	}
	if target == 0 {
		target = blank
	}
	if target == 0 {
		target = len(rows) + 2
	}
	return s.wb.SetRow(s.name, 1, target, d.Row())
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Package companysort reorders the partner companies listed on each row of
// the capability detail sheet.
//
// From the anchor column to the end of the row, cells form (name, ecosystem
// type, score) triples. Each row's triples are sorted by ecosystem type rank
// and then by score, both descending; ties keep their original order.
package companysort

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"ecocap/internal/config"
	"ecocap/internal/logging"
	"ecocap/internal/workbook"
)

// Width is the number of cells per company.
const Width = 3

// UnknownRank is the rank of an ecosystem type missing from the rank table.
const UnknownRank = -1

// Company is one (name, type, score) triple as read from the sheet.
type Company struct {
	Name  string
	Type  string
	Score string
}

// Cells returns the triple as cell values. Blank cells are nil and numeric
// scores are numbers.
func (c Company) Cells() []interface{} {
	out := make([]interface{}, Width)
	for i, v := range []string{c.Name, c.Type, c.Score} {
		if v != "" {
			out[i] = v
		}
	}
	if f, ok, _ := ParseScore(c.Score); ok {
		out[2] = f
	}
	return out
}

// ParseScore reads a score cell. Blank and placeholder scores are missing
// (ok false, no error); text that is not a number is missing with an error.
func ParseScore(raw string) (float64, bool, error) {
	s := strings.TrimSpace(raw)
	if s == "" || s == "/" {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, fmt.Errorf("unparseable score %q", raw)
	}
	return f, true, nil
}

// Ranker orders companies.
type Ranker struct {
	ranks map[string]int
}

// NewRanker returns a ranker over the given type ranks.
func NewRanker(ranks map[string]int) *Ranker {
	return &Ranker{ranks: ranks}
}

// Rank returns the rank of an ecosystem type.
func (r *Ranker) Rank(typ string) int {
	if n, ok := r.ranks[typ]; ok {
		return n
	}
	return UnknownRank
}

type sortKey struct {
	rank  int
	score float64
}

func (r *Ranker) key(c Company) (sortKey, error) {
	k := sortKey{rank: r.Rank(c.Type), score: math.Inf(-1)}
	f, ok, err := ParseScore(c.Score)
	if ok {
		k.score = f
	}
	return k, err
}

// Split pads cells to a multiple of Width and cuts them into companies.
func Split(cells []string) []Company {
	n := (len(cells) + Width - 1) / Width
	out := make([]Company, n)
	at := func(i int) string {
		if i < len(cells) {
			return cells[i]
		}
		return ""
	}
	for i := range out {
		out[i] = Company{Name: at(i * Width), Type: at(i*Width + 1), Score: at(i*Width + 2)}
	}
	return out
}

// Sort orders companies in place, highest rank and score first. It returns
// one error per company whose score could not be read; those rank as if the
// score were missing.
func (r *Ranker) Sort(companies []Company) []error {
	keys := make([]sortKey, len(companies))
	var errs []error
	idx := make([]int, len(companies))
	for i, c := range companies {
		idx[i] = i
		k, err := r.key(c)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.Name, err))
		}
		keys[i] = k
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := keys[idx[a]], keys[idx[b]]
		if ka.rank != kb.rank {
			return ka.rank > kb.rank
		}
		return ka.score > kb.score
	})
	sorted := make([]Company, len(companies))
	for i, j := range idx {
		sorted[i] = companies[j]
	}
	copy(companies, sorted)
	return errs
}

// Stats summarizes a sort pass.
type Stats struct {
	Rows        int // data rows with at least one company cell
	Reordered   int // rows whose order changed
	BadScores   int // score cells that were not numbers
	AnchorIndex int // 0-based column of the first triple
}

// SortSheet sorts every data row of the configured sheet in memory. The
// caller saves the workbook.
func SortSheet(wb *workbook.Workbook, cfg config.SortConfig) (Stats, error) {
	timer := logging.StartTimer(logging.CategorySort, "SortSheet")
	defer timer.Stop()

	var stats Stats
	t, err := wb.Table(cfg.Sheet, cfg.HeaderRow)
	if err != nil {
		return stats, err
	}
	anchor := t.Column(cfg.AnchorHeader)
	if anchor < 0 {
		return stats, fmt.Errorf("%w: %s has no %q column", workbook.ErrBadSchema, cfg.Sheet, cfg.AnchorHeader)
	}
	stats.AnchorIndex = anchor
	ranker := NewRanker(cfg.TypeRanks)

	for _, row := range t.Rows {
		if len(row.Cells) <= anchor {
			continue
		}
		companies := Split(row.Cells[anchor:])
		before := append([]Company(nil), companies...)
		for _, err := range ranker.Sort(companies) {
			stats.BadScores++
			logging.SortWarn("Row %d: %v, ranked last", row.Number, err)
		}
		stats.Rows++
		if equal(before, companies) {
			continue
		}
		stats.Reordered++
		for i, c := range companies {
			if err := wb.SetRow(cfg.Sheet, anchor+1+i*Width, row.Number, c.Cells()); err != nil {
				return stats, err
			}
		}
	}

	logging.Sort("Sorted %s: %d rows, %d reordered, %d bad scores", cfg.Sheet, stats.Rows, stats.Reordered, stats.BadScores)
	return stats, nil
}

func equal(a, b []Company) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

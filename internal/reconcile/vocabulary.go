// Package reconcile compares the category names used on the capability
// detail sheet with the names summarized on the front sheet, level by level.
package reconcile

import (
	"fmt"
	"sort"
	"strings"

	"ecocap/internal/config"
	"ecocap/internal/logging"
	"ecocap/internal/workbook"
)

const (
	// Level-2 names are joined with this in a summary cell.
	nameSeparator = "、"
	// Summary level-3 cells hold items separated by this.
	itemSeparator = "；"
	// Each item is "<level 2>：<level 3>、<level 3>".
	pairSeparator = "："
)

type set map[string]struct{}

func (s set) add(v string) { s[v] = struct{}{} }

func (s set) has(v string) bool {
	_, ok := s[v]
	return ok
}

// minus returns the sorted members of s missing from o.
func (s set) minus(o set) []string {
	var out []string
	for v := range s {
		if !o.has(v) {
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// Group names a level-3 group: a level-2 name under its level-1 name.
type Group struct {
	First  string
	Second string
}

func (g Group) String() string { return g.First + " / " + g.Second }

// Vocabulary is the set of names at the first three levels, with level 2
// grouped by level 1 and level 3 grouped by (level 1, level 2).
type Vocabulary struct {
	First  set
	Second map[string]set
	Third  map[Group]set
}

// NewVocabulary returns an empty vocabulary.
func NewVocabulary() *Vocabulary {
	return &Vocabulary{First: set{}, Second: map[string]set{}, Third: map[Group]set{}}
}

func (v *Vocabulary) addSecond(first, second string) {
	if v.Second[first] == nil {
		v.Second[first] = set{}
	}
	v.Second[first].add(second)
}

func (v *Vocabulary) addThird(g Group, third string) {
	if v.Third[g] == nil {
		v.Third[g] = set{}
	}
	v.Third[g].add(third)
}

// Counts returns the number of level-1 names, level-2 groups and level-3
// groups.
func (v *Vocabulary) Counts() (first, second, third int) {
	return len(v.First), len(v.Second), len(v.Third)
}

func missing(s string) bool {
	return s == "" || s == "/"
}

// ReadDetail builds the vocabulary of the detail sheet. Rows marked removed
// are skipped, and a row stops contributing at its first missing level.
func ReadDetail(wb *workbook.Workbook, cfg config.ReconcileConfig) (*Vocabulary, error) {
	t, err := wb.Table(cfg.DetailSheet, cfg.DetailHeaderRow)
	if err != nil {
		return nil, err
	}
	cols, err := t.Columns(cfg.DetailColumns[0], cfg.DetailColumns[1], cfg.DetailColumns[2], cfg.HandlingColumn)
	if err != nil {
		return nil, err
	}

	v := NewVocabulary()
	for _, row := range t.Rows {
		first, second, third := row.Cell(cols[0]), row.Cell(cols[1]), row.Cell(cols[2])
		if row.Cell(cols[3]) == cfg.RemovedMarker {
			continue
		}
		if missing(first) {
			continue
		}
		v.First.add(first)
		if missing(second) {
			continue
		}
		v.addSecond(first, second)
		if missing(third) {
			continue
		}
		v.addThird(Group{First: first, Second: second}, third)
	}

	n1, n2, n3 := v.Counts()
	logging.Reconcile("Detail sheet %s: %d level-1 names, %d level-2 groups, %d level-3 groups", cfg.DetailSheet, n1, n2, n3)
	return v, nil
}

// FormatIssue is a summary level-3 item that could not be parsed.
type FormatIssue struct {
	Row    int
	Item   string
	Reason string
}

func (i FormatIssue) String() string {
	return fmt.Sprintf("row %d: %q %s", i.Row, i.Item, i.Reason)
}

// ParseThirdLevel splits a summary level-3 cell into (level 2, level 3 names)
// items. Malformed items are returned as issues with Row unset.
func ParseThirdLevel(cell string) (map[string][]string, []FormatIssue) {
	out := make(map[string][]string)
	var issues []FormatIssue
	for _, item := range strings.Split(cell, itemSeparator) {
		if missing(item) {
			continue
		}
		parts := strings.Split(item, pairSeparator)
		switch {
		case len(parts) < 2:
			issues = append(issues, FormatIssue{Item: item, Reason: "is missing \"：\""})
			continue
		case len(parts) > 2:
			issues = append(issues, FormatIssue{Item: item, Reason: "has more than one \"：\""})
			continue
		case parts[0] == "" || parts[1] == "":
			issues = append(issues, FormatIssue{Item: item, Reason: "is missing its level-2 or level-3 name"})
			continue
		}
		for _, name := range strings.Split(parts[1], nameSeparator) {
			if name != "" {
				out[parts[0]] = append(out[parts[0]], name)
			}
		}
	}
	return out, issues
}

// ReadSummary builds the vocabulary of the summary sheet.
func ReadSummary(wb *workbook.Workbook, cfg config.ReconcileConfig) (*Vocabulary, []FormatIssue, error) {
	t, err := wb.Table(cfg.SummarySheet, cfg.SummaryHeaderRow)
	if err != nil {
		return nil, nil, err
	}
	cols, err := t.Columns(cfg.SummaryColumns[0], cfg.SummaryColumns[1], cfg.SummaryColumns[2])
	if err != nil {
		return nil, nil, err
	}

	v := NewVocabulary()
	var issues []FormatIssue
	for _, row := range t.Rows {
		first := row.Cell(cols[0])
		if first == "" {
			continue
		}
		v.First.add(first)

		for _, second := range strings.Split(row.Cell(cols[1]), nameSeparator) {
			if second != "" {
				v.addSecond(first, second)
			}
		}

		thirds, rowIssues := ParseThirdLevel(row.Cell(cols[2]))
		for _, issue := range rowIssues {
			issue.Row = row.Number
			logging.ReconcileWarn("Summary level-3 item %s", issue)
			issues = append(issues, issue)
		}
		for second, names := range thirds {
			for _, third := range names {
				v.addThird(Group{First: first, Second: second}, third)
			}
		}
	}

	n1, n2, n3 := v.Counts()
	logging.Reconcile("Summary sheet %s: %d level-1 names, %d level-2 groups, %d level-3 groups", cfg.SummarySheet, n1, n2, n3)
	return v, issues, nil
}

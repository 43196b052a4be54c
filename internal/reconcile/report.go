package reconcile

import (
	"sort"

	"ecocap/internal/config"
	"ecocap/internal/logging"
	"ecocap/internal/workbook"
)

// GroupDiff is the difference inside one detail group. Second is empty for
// level-2 groups, which are keyed by their level-1 name alone.
type GroupDiff struct {
	First            string
	Second           string
	MissingInSummary bool
	OnlyInDetail     []string
	OnlyInSummary    []string
}

// LevelCounts holds the sizes of a vocabulary.
type LevelCounts struct {
	First  int
	Second int
	Third  int
}

func countsOf(v *Vocabulary) LevelCounts {
	a, b, c := v.Counts()
	return LevelCounts{First: a, Second: b, Third: c}
}

// Report is the outcome of comparing the two vocabularies.
type Report struct {
	Detail  LevelCounts
	Summary LevelCounts

	FirstOnlyInDetail  []string
	FirstOnlyInSummary []string

	// Groups with differences, sorted by name.
	Second []GroupDiff
	Third  []GroupDiff

	FormatIssues []FormatIssue
}

// Clean reports whether the vocabularies agree and the summary parsed.
func (r *Report) Clean() bool {
	return len(r.FirstOnlyInDetail) == 0 && len(r.FirstOnlyInSummary) == 0 &&
		len(r.Second) == 0 && len(r.Third) == 0 && len(r.FormatIssues) == 0
}

// Compare diffs the detail vocabulary against the summary. Every detail group
// is checked; groups present only in the summary show up through the level
// above them.
func Compare(detail, summary *Vocabulary) *Report {
	r := &Report{
		Detail:             countsOf(detail),
		Summary:            countsOf(summary),
		FirstOnlyInDetail:  detail.First.minus(summary.First),
		FirstOnlyInSummary: summary.First.minus(detail.First),
	}

	firsts := make([]string, 0, len(detail.Second))
	for first := range detail.Second {
		firsts = append(firsts, first)
	}
	sort.Strings(firsts)
	for _, first := range firsts {
		if d, ok := diffGroup(detail.Second[first], summary.Second[first]); ok {
			d.First = first
			r.Second = append(r.Second, d)
		}
	}

	groups := make([]Group, 0, len(detail.Third))
	for g := range detail.Third {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].First != groups[j].First {
			return groups[i].First < groups[j].First
		}
		return groups[i].Second < groups[j].Second
	})
	for _, g := range groups {
		if d, ok := diffGroup(detail.Third[g], summary.Third[g]); ok {
			d.First, d.Second = g.First, g.Second
			r.Third = append(r.Third, d)
		}
	}
	return r
}

func diffGroup(detail, summary set) (GroupDiff, bool) {
	if summary == nil {
		return GroupDiff{MissingInSummary: true}, true
	}
	d := GroupDiff{
		OnlyInDetail:  detail.minus(summary),
		OnlyInSummary: summary.minus(detail),
	}
	return d, len(d.OnlyInDetail) > 0 || len(d.OnlyInSummary) > 0
}

// Run reads both vocabularies from wb and compares them.
func Run(wb *workbook.Workbook, cfg config.ReconcileConfig) (*Report, error) {
	timer := logging.StartTimer(logging.CategoryReconcile, "Run")
	defer timer.Stop()

	detail, err := ReadDetail(wb, cfg)
	if err != nil {
		return nil, err
	}
	summary, issues, err := ReadSummary(wb, cfg)
	if err != nil {
		return nil, err
	}
	r := Compare(detail, summary)
	r.FormatIssues = issues

	logging.Reconcile("Reconciled: level-1 +%d/-%d, %d level-2 groups differ, %d level-3 groups differ, %d format issues",
		len(r.FirstOnlyInDetail), len(r.FirstOnlyInSummary), len(r.Second), len(r.Third), len(r.FormatIssues))
	return r, nil
}

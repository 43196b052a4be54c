package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"ecocap/cmd/ecocap/ui"
	"ecocap/internal/reconcile"
	"ecocap/internal/workbook"

	"github.com/spf13/cobra"
)

// runReconcile prints the category name differences of args[0]. The workbook
// is only read.
func runReconcile(cmd *cobra.Command, args []string) error {
	wb, err := workbook.Open(args[0])
	if err != nil {
		return err
	}
	defer wb.Close()

	report, err := reconcile.Run(wb, cfg.Reconcile)
	if err != nil {
		return err
	}
	renderReconcile(cmd.OutOrStdout(), ui.DefaultStyles(), report)
	return nil
}

func joinNames(names []string) string {
	return strings.Join(names, "、")
}

func renderReconcile(w io.Writer, styles ui.Styles, r *reconcile.Report) {
	counts := ui.NewSimpleTable("Vocabulary sizes", []string{"Sheet", "Level 1", "Level 2 groups", "Level 3 groups"}).AlignRight(1, 2, 3)
	counts.AddRow(cfg.Reconcile.DetailSheet, strconv.Itoa(r.Detail.First), strconv.Itoa(r.Detail.Second), strconv.Itoa(r.Detail.Third))
	counts.AddRow(cfg.Reconcile.SummarySheet, strconv.Itoa(r.Summary.First), strconv.Itoa(r.Summary.Second), strconv.Itoa(r.Summary.Third))
	fmt.Fprint(w, counts.View(styles))

	first := ui.NewSimpleTable("Level 1", []string{"Only in detail", "Only in summary"})
	first.Empty = "no differences"
	if len(r.FirstOnlyInDetail) > 0 || len(r.FirstOnlyInSummary) > 0 {
		first.AddRow(joinNames(r.FirstOnlyInDetail), joinNames(r.FirstOnlyInSummary))
	}
	fmt.Fprint(w, first.View(styles))

	second := ui.NewSimpleTable("Level 2", []string{"Level 1", "Only in detail", "Only in summary"})
	second.Empty = "no differences"
	for _, d := range r.Second {
		second.AddRow(groupRow(d.First, d)...)
	}
	fmt.Fprint(w, second.View(styles))

	third := ui.NewSimpleTable("Level 3", []string{"Level 1 / Level 2", "Only in detail", "Only in summary"})
	third.Empty = "no differences"
	for _, d := range r.Third {
		third.AddRow(groupRow(reconcile.Group{First: d.First, Second: d.Second}.String(), d)...)
	}
	fmt.Fprint(w, third.View(styles))

	issues := ui.NewSimpleTable("Summary format issues", []string{"Row", "Item", "Problem"}).AlignRight(0)
	for _, i := range r.FormatIssues {
		issues.AddRow(strconv.Itoa(i.Row), i.Item, i.Reason)
	}
	fmt.Fprint(w, issues.View(styles))

	if r.Clean() {
		fmt.Fprintln(w, styles.Status(true, "detail and summary agree"))
	} else {
		fmt.Fprintln(w, styles.Status(false, "detail and summary differ"))
	}
}

func groupRow(name string, d reconcile.GroupDiff) []string {
	if d.MissingInSummary {
		return []string{name, "missing in summary", ""}
	}
	return []string{name, joinNames(d.OnlyInDetail), joinNames(d.OnlyInSummary)}
}

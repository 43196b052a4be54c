package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"ecocap/cmd/ecocap/ui"
	"ecocap/internal/companysort"
	"ecocap/internal/workbook"

	"github.com/spf13/cobra"
)

// runSort sorts the partner triples of args[0] and saves it.
func runSort(cmd *cobra.Command, args []string) error {
	wb, err := workbook.Open(args[0])
	if err != nil {
		return err
	}
	defer wb.Close()

	stats, err := companysort.SortSheet(wb, cfg.Sort)
	if err != nil {
		return err
	}

	styles := ui.DefaultStyles()
	renderSort(cmd.OutOrStdout(), styles, stats)

	var failures []*workbook.SaveError
	if err := wb.Save(); err != nil {
		var saveErr *workbook.SaveError
		if !errors.As(err, &saveErr) {
			return err
		}
		failures = append(failures, saveErr)
	}
	renderSaveFailures(cmd.OutOrStdout(), styles, failures)
	if len(failures) > 0 {
		return failures[0]
	}
	return nil
}

func renderSort(w io.Writer, styles ui.Styles, stats companysort.Stats) {
	t := ui.NewSimpleTable(fmt.Sprintf("Company sort of %s", cfg.Sort.Sheet), []string{"Rows", "Reordered", "Bad scores", "First column"}).
		AlignRight(0, 1, 2, 3)
	t.AddRow(strconv.Itoa(stats.Rows), strconv.Itoa(stats.Reordered), strconv.Itoa(stats.BadScores), strconv.Itoa(stats.AnchorIndex+1))
	fmt.Fprint(w, t.View(styles))
}

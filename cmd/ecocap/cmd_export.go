package main

import (
	"fmt"

	"ecocap/cmd/ecocap/ui"
	"ecocap/internal/numbering"
	"ecocap/internal/workbook"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// runExport exports the edge list of args[0], as currently numbered, to the
// database args[1]. The workbook is not modified.
func runExport(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	wb, err := workbook.Open(args[0])
	if err != nil {
		return err
	}
	defer wb.Close()

	edges, err := numbering.ReadEdges(wb, cfg.Numbering)
	if err != nil {
		return err
	}
	stored, runs, err := exportEdges(ctx, args[1], uuid.NewString(), wb.Path(), edges)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.DefaultStyles().Status(stored == len(edges),
		fmt.Sprintf("%d edges from %s exported to %s, %d runs recorded", stored, cfg.Numbering.EdgeSourceSheet, args[1], runs)))
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"ecocap/cmd/ecocap/ui"
	"ecocap/internal/export"
	"ecocap/internal/numbering"
	"ecocap/internal/taxonomy"
	"ecocap/internal/workbook"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var levelNames = [taxonomy.Levels]string{"行业", "一级", "二级", "三级", "四级", "五级"}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// runNumbering runs the numbering pipeline on args[0].
func runNumbering(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	wb, err := workbook.Open(args[0])
	if err != nil {
		return err
	}
	defer wb.Close()

	res, err := numbering.New(wb, cfg.Numbering).Run(ctx)
	if err != nil {
		var invalid *taxonomy.InvalidLabelError
		if errors.As(err, &invalid) {
			return fmt.Errorf("detail sheet %s: %w", cfg.Numbering.DetailSheet, err)
		}
		return err
	}
	renderNumbering(cmd.OutOrStdout(), ui.DefaultStyles(), res)

	if cfg.Export.DatabasePath != "" {
		stored, _, err := exportEdges(ctx, cfg.Export.DatabasePath, res.RunID, wb.Path(), res.Edges)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.DefaultStyles().Status(true,
			fmt.Sprintf("%d edges exported to %s", stored, cfg.Export.DatabasePath)))
	}
	if logger != nil {
		logger.Info("Numbering finished",
			zap.String("run", res.RunID),
			zap.Int("edges", len(res.Edges)),
			zap.Int("save_failures", len(res.SaveFailures)))
	}
	return nil
}

func renderNumbering(w io.Writer, styles ui.Styles, res *numbering.Result) {
	counts := ui.NewSimpleTable("Ordinals per level", []string{"Level", "Name", "Paths"}).AlignRight(0, 2)
	for level, n := range res.Counts {
		counts.AddRow(strconv.Itoa(level), levelNames[level], strconv.Itoa(n))
	}
	fmt.Fprint(w, counts.View(styles))

	targets := ui.NewSimpleTable("Target sheets", []string{"Sheet", "Rows", "Resolved", "Unresolved", "Inherited"}).AlignRight(1, 2, 3, 4)
	for _, t := range res.Targets {
		if t.Missing {
			targets.AddRow(t.Sheet, "missing", "", "", "")
			continue
		}
		targets.AddRow(t.Sheet,
			strconv.Itoa(t.Stats.Rows),
			strconv.Itoa(t.Stats.Resolved),
			strconv.Itoa(t.Stats.Unresolved),
			strconv.Itoa(t.Stats.Inherited))
	}
	fmt.Fprint(w, targets.View(styles))

	fmt.Fprintf(w, "%s\n", styles.Body.Render(fmt.Sprintf("%d edges written", len(res.Edges))))
	renderSaveFailures(w, styles, res.SaveFailures)
}

func renderSaveFailures(w io.Writer, styles ui.Styles, failures []*workbook.SaveError) {
	if len(failures) == 0 {
		fmt.Fprintln(w, styles.Status(true, "workbook saved"))
		return
	}
	fmt.Fprintln(w, styles.Status(false, fmt.Sprintf("%d saves failed: %v", len(failures), failures[len(failures)-1])))
	fmt.Fprintln(w, styles.Muted.Render(failures[0].Hint()))
}

// exportEdges writes edges to the SQLite database at path. It returns the
// number of edges the database now holds and of runs it has recorded.
func exportEdges(ctx context.Context, path, runID, source string, edges []taxonomy.Edge) (stored, runs int, err error) {
	store, err := export.Open(ctx, path)
	if err != nil {
		return 0, 0, err
	}
	defer store.Close()
	if err := store.ReplaceEdges(ctx, export.Run{ID: runID, Workbook: source}, edges); err != nil {
		return 0, 0, err
	}
	got, err := store.Edges(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read back edges: %w", err)
	}
	recorded, err := store.Runs(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list runs: %w", err)
	}
	return len(got), len(recorded), nil
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"ecocap/cmd/ecocap/ui"
	"ecocap/internal/browser"
	"ecocap/internal/collector"
	"ecocap/internal/workbook"

	"github.com/spf13/cobra"
)

// runCollect drives the portal in Chrome and fills args[0].
func runCollect(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	wb, err := workbook.Open(args[0])
	if err != nil {
		return err
	}
	defer wb.Close()

	sm := browser.NewSessionManager(cfg.Browser)
	if err := sm.Start(ctx); err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer func() {
		if err := sm.Shutdown(context.Background()); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "browser shutdown: %v\n", err)
		}
	}()

	operator := collector.NewOperator(os.Stdin, cmd.OutOrStdout())
	portal := collector.NewRodPortal(sm, cfg.Collector, operator)

	stats, err := collector.New(wb, portal, cfg.Collector).Run(ctx)
	if stats != nil {
		renderCollect(cmd.OutOrStdout(), ui.DefaultStyles(), stats, sm.Counters())
	}
	return err
}

func renderCollect(w io.Writer, styles ui.Styles, s *collector.Stats, tabs browser.Counters) {
	t := ui.NewSimpleTable("Collection", []string{"Companies", "Skipped", collector.StatusSuccess, collector.StatusPartial, collector.StatusFailed, "Abilities", "Reused", "Tabs"}).
		AlignRight(0, 1, 2, 3, 4, 5, 6, 7)
	t.AddRow(
		strconv.Itoa(s.Companies),
		strconv.Itoa(s.Skipped),
		strconv.Itoa(s.Succeeded),
		strconv.Itoa(s.Partial),
		strconv.Itoa(s.Failed),
		strconv.Itoa(s.Abilities),
		strconv.Itoa(s.Reused),
		strconv.Itoa(tabs.Opened),
	)
	fmt.Fprint(w, t.View(styles))
	renderSaveFailures(w, styles, s.SaveFailures)
}

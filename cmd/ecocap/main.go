package main

import (
	"fmt"
	"os"

	"ecocap/internal/config"
	"ecocap/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Root flags
	strict     bool
	sqlitePath string

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd numbers the capability classification of a workbook.
var rootCmd = &cobra.Command{
	Use:   "ecocap <workbook>",
	Short: "Number and maintain the ecosystem capability workbook",
	Long: `ecocap maintains the ecosystem capability workbook.

Without a subcommand it runs the classification numbering pipeline:
  1. Enumerate every 6-level path of the detail sheet, per level, in first-seen order
  2. Write the per-level ordinals to the ordinal summary sheet
  3. Fill the identifier columns of every target sheet
  4. Flatten the edge source sheet into a (field, field_id, parent_id, level) edge list

The workbook is saved after every stage.`,
	Args:              exactArgs(1),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
	RunE: runNumbering,
}

var sortCmd = &cobra.Command{
	Use:   "sort <workbook>",
	Short: "Sort the partner companies of every capability row",
	Long: `Reorders the (name, ecosystem type, score) triples that follow the partner
list header on each row: by ecosystem type rank, then score, both descending.`,
	Args: exactArgs(1),
	RunE: runSort,
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile <workbook>",
	Short: "Compare the category names of the detail and summary sheets",
	Args:  exactArgs(1),
	RunE:  runReconcile,
}

var collectCmd = &cobra.Command{
	Use:   "collect <workbook>",
	Short: "Collect company abilities from the marketplace portal",
	Long: `Opens the portal in Chrome and, for every company of the directory sheet
not yet collected, records each listed ability on the company's own sheet.

Log in by hand when prompted and type ok in this terminal. The workbook is
saved after every ability, so an interrupted run resumes where it stopped.`,
	Args: exactArgs(1),
	RunE: runCollect,
}

var exportCmd = &cobra.Command{
	Use:   "export <workbook> <db>",
	Short: "Export the flattened classification tree to SQLite",
	Args:  exactArgs(2),
	RunE:  runExport,
}

// exactArgs is cobra.ExactArgs that also prints the command's usage.
// Usage stays silenced for errors raised while a command runs.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
			return err
		}
		return nil
	}
}

// setup loads configuration and initializes logging for every command.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("strict") {
		loaded.Numbering.Strict = strict
	}
	if sqlitePath != "" {
		loaded.Export.DatabasePath = sqlitePath
	}
	cfg = loaded

	logger, err = logging.Initialize(logging.Options{
		Level:      cfg.Logging.Level,
		Verbose:    verbose,
		File:       cfg.Logging.File,
		Categories: cfg.Logging.Categories,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logging.BootDebug("Configuration loaded from %s", configPath)
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Configuration file")

	rootCmd.Flags().BoolVar(&strict, "strict", false, "Fail when a target row has a path missing from the detail sheet")
	rootCmd.Flags().StringVar(&sqlitePath, "sqlite", "", "Also export the edge list to this SQLite database")

	rootCmd.AddCommand(sortCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

package main

import (
	"github.com/spf13/cobra"

	"shipscan/internal/pipeline"
)

var (
	runInput  string
	runXLSX   string
	runSQLite string
)

// runCmd executes the full pipeline
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Report, enrich and export in one pass",
	Long: `Runs the report stage, scrapes seaport details for every country code
found in the normalized shipments, and writes ports_info.csv. When a SQLite
path is set the ports and a run record are stored there as well.

Example:
  shipscan run --input trades.csv --sqlite shipscan.sqlite`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		applyInputFlags(cmd, runInput)

		if cmd.Flags().Changed("xlsx") {
			cfg.Output.XLSXPath = runXLSX
		}

		if cmd.Flags().Changed("sqlite") {
			cfg.Output.SQLitePath = runSQLite
		}

		p, err := pipeline.New(cfg, log)
		if err != nil {
			return err
		}

		_, err = p.Run(cmd.Context(), cmd.OutOrStdout())

		return err
	},
}

func init() {
	runCmd.Flags().StringVarP(&runInput, "input", "i", "", "Path to the trades CSV (overrides input.path)")
	runCmd.Flags().StringVar(&runXLSX, "xlsx", "", "Also write the report tables to this workbook")
	runCmd.Flags().StringVar(&runSQLite, "sqlite", "", "Store ports and the run record in this SQLite file")
}

package main

import (
	"github.com/spf13/cobra"

	"shipscan/internal/pipeline"
)

var (
	reportInput string
	reportXLSX  string
)

// reportCmd prints the aggregates of a trades file
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Normalize a trades file and print its summary tables",
	Long: `Reads the trades file, keeps HS 870423 shipments, normalizes values,
items counts and countries, then prints the null counts, country pairs,
routes and average FOB value per destination.

Example:
  shipscan report --input trades.csv --xlsx report.xlsx`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		applyInputFlags(cmd, reportInput)

		if cmd.Flags().Changed("xlsx") {
			cfg.Output.XLSXPath = reportXLSX
		}

		p, err := pipeline.New(cfg, log)
		if err != nil {
			return err
		}

		a, err := p.Analyze(cmd.Context())
		if err != nil {
			return err
		}

		return p.WriteReport(a, cmd.OutOrStdout())
	},
}

func init() {
	reportCmd.Flags().StringVarP(&reportInput, "input", "i", "", "Path to the trades CSV (overrides input.path)")
	reportCmd.Flags().StringVar(&reportXLSX, "xlsx", "", "Also write the tables to this workbook")
}

func applyInputFlags(cmd *cobra.Command, input string) {
	if cmd.Flags().Changed("input") {
		cfg.Input.Path = input
	}
}

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"shipscan/internal/pipeline"
	"shipscan/internal/store"
)

var errNoISOCodes = errors.New("at least one --iso code is required")

var (
	portsISO    []string
	portsOutput string
)

// portsCmd scrapes seaport details for explicit country codes
var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "Scrape seaport details for ISO country codes",
	Long: `Fetches the port-info index once, then every port page listed for the
given ISO alpha-2 codes, and writes the result to the ports CSV.

Example:
  shipscan ports --iso CN,MX --output ports_info.csv`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if len(portsISO) == 0 {
			return errNoISOCodes
		}

		if cmd.Flags().Changed("output") {
			cfg.Output.PortsCSV = portsOutput
		}

		codes := make([]string, 0, len(portsISO))
		for _, code := range portsISO {
			codes = append(codes, strings.ToUpper(strings.TrimSpace(code)))
		}

		p, err := pipeline.New(cfg, log)
		if err != nil {
			return err
		}

		ports, stats, err := p.Enrich(cmd.Context(), codes)
		if err != nil {
			return err
		}

		run := store.Run{ID: uuid.New(), Ports: len(ports)}

		if err := p.Export(cmd.Context(), ports, run); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%d ports scraped, %d failed, %d countries skipped\n",
			len(ports), len(stats.Failures), stats.Skipped)

		return nil
	},
}

func init() {
	portsCmd.Flags().StringSliceVar(&portsISO, "iso", nil, "Comma-separated ISO alpha-2 codes")
	portsCmd.Flags().StringVarP(&portsOutput, "output", "o", "", "Ports CSV path (overrides output.ports_csv)")
}

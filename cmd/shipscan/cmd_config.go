package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configOutput string

// configCmd writes the effective configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Write the effective configuration as YAML",
	Long: `Writes the configuration in effect (defaults, then --config, then flags)
to a YAML file that can be edited and passed back with --config.

Example:
  shipscan config --output shipscan.yaml`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.SaveConfig(configOutput); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "configuration written to %s\n", configOutput)

		return nil
	},
}

func init() {
	configCmd.Flags().StringVarP(&configOutput, "output", "o", "shipscan.yaml", "Destination YAML file")
}

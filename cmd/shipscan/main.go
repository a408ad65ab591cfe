// Package main provides the shipscan command-line tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"shipscan/internal/config"
	"shipscan/internal/logger"
)

var (
	// Global flags
	configPath string
	logLevel   string
	logFormat  string

	cfg *config.Config
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "shipscan",
	Short: "Validate trade shipments and enrich them with seaport details",
	Long: `shipscan reads a semicolon-delimited trades export, keeps the HS 870423
shipments, normalizes their values and countries, prints summary tables and
scrapes seaport details for the countries involved.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error

		cfg, err = config.LoadOrDefault(configPath)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("log-level") {
			cfg.Logging.Level = logLevel
		}

		if cmd.Flags().Changed("log-format") {
			cfg.Logging.Format = logFormat
		}

		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid flags: %w", err)
		}

		log = logger.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML config file (defaults apply when empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(reportCmd, portsCmd, runCmd, configCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		if log == nil {
			log = logger.NewLogger("error")
		}

		if errors.Is(err, context.Canceled) {
			log.Warn("interrupted")
		} else {
			log.Error("shipscan failed", "error", err)
		}

		os.Exit(1)
	}
}

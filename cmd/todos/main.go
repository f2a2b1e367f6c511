// Package main implements the todos service binary.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"todoservice/internal/adapter/logger"
	"todoservice/internal/config"
)

var (
	cfg *config.Config
	log *logger.LokiLogger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "todos",
	Short:        "Todo management service",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		cfg, err = config.LoadConfig()
		if err != nil {
			return err
		}

		log, err = logger.NewLokiLogger(cfg.ServiceName, cfg.LokiURL, cfg.IsProduction())
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			log.Sync()
		}
	},
}

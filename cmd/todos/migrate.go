package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"todoservice/internal/adapter/database"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Apply or roll back the schema migrations",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{string(database.Up), string(database.Down)},
	RunE:      runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	direction := database.Up
	if len(args) == 1 {
		direction = database.Direction(args[0])
	}

	db, err := database.Open(cmd.Context(), cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(db, direction); err != nil {
		return err
	}

	log.Logger.Info("Migrations applied",
		zap.String("direction", string(direction)),
		zap.String("driver", cfg.Database.Driver))

	return nil
}

package cmd

import (
	"github.com/spf13/cobra"

	config "task-kpi-system.com/task-kpi-system/internal/configs"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := config.NewDatabase(cfg.DatabaseDSN); err != nil {
			return err
		}
		logger.Info("schema migrated", "dsn", cfg.DatabaseDSN)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"task-kpi-system.com/task-kpi-system/internal/auth"
	config "task-kpi-system.com/task-kpi-system/internal/configs"
	repository "task-kpi-system.com/task-kpi-system/internal/repositories"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for an existing user",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetString("user")
		ttl, _ := cmd.Flags().GetDuration("ttl")
		if userID == "" {
			return fmt.Errorf("--user is required")
		}

		manager, err := auth.NewManager(cfg.JWTSecret)
		if err != nil {
			return fmt.Errorf("JWT_SECRET: %w", err)
		}

		database, err := config.NewDatabase(cfg.DatabaseDSN)
		if err != nil {
			return err
		}

		user, err := repository.NewUserRepository(database).FindByID(cmd.Context(), userID)
		if err != nil {
			return err
		}

		token, err := manager.GenerateToken(*user, ttl)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().String("user", "", "user id")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "token lifetime")
	rootCmd.AddCommand(tokenCmd)
}

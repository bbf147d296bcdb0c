package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	config "task-kpi-system.com/task-kpi-system/internal/configs"
	"task-kpi-system.com/task-kpi-system/internal/constants"
	model "task-kpi-system.com/task-kpi-system/internal/models"
	repository "task-kpi-system.com/task-kpi-system/internal/repositories"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage the local user directory",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Add a user that tasks can be assigned and escalated to",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("id")
		name, _ := cmd.Flags().GetString("name")
		role, _ := cmd.Flags().GetString("role")
		department, _ := cmd.Flags().GetString("department")

		if name == "" {
			return fmt.Errorf("--name is required")
		}
		if !constants.Role(role).Valid() {
			return fmt.Errorf("unknown role %q", role)
		}

		database, err := config.NewDatabase(cfg.DatabaseDSN)
		if err != nil {
			return err
		}

		user := model.User{ID: id, Name: name, Role: constants.Role(role), DepartmentID: department}
		if err := repository.NewUserRepository(database).Create(cmd.Context(), &user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}

		return json.NewEncoder(cmd.OutOrStdout()).Encode(user)
	},
}

func init() {
	userCreateCmd.Flags().String("id", "", "user id (generated when empty)")
	userCreateCmd.Flags().String("name", "", "display name")
	userCreateCmd.Flags().String("role", string(constants.RoleUser), "superadmin, admin or user")
	userCreateCmd.Flags().String("department", "", "department id")

	userCmd.AddCommand(userCreateCmd)
	rootCmd.AddCommand(userCmd)
}

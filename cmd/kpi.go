package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	config "task-kpi-system.com/task-kpi-system/internal/configs"
	dto "task-kpi-system.com/task-kpi-system/internal/data_models"
	repository "task-kpi-system.com/task-kpi-system/internal/repositories"
	"task-kpi-system.com/task-kpi-system/internal/services"
)

var kpiCmd = &cobra.Command{
	Use:   "kpi",
	Short: "Print KPI snapshots for one user or for everyone",
	RunE: func(cmd *cobra.Command, args []string) error {
		window, err := windowFromFlags(cmd)
		if err != nil {
			return err
		}

		database, err := config.NewDatabase(cfg.DatabaseDSN)
		if err != nil {
			return err
		}
		users := repository.NewUserRepository(database)
		kpiService := services.NewKPIService(repository.NewKPIRepository(database), users, nil)

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")

		if userID, _ := cmd.Flags().GetString("user"); userID != "" {
			snapshot, err := kpiService.GetUserKPI(cmd.Context(), userID, window)
			if err != nil {
				return err
			}
			return enc.Encode(snapshot)
		}

		snapshots, err := kpiService.GetAllUsersKPI(cmd.Context(), window)
		if err != nil {
			return err
		}
		return enc.Encode(snapshots)
	},
}

func windowFromFlags(cmd *cobra.Command) (services.Window, error) {
	var w services.Window
	if cmd.Flags().Changed("year") {
		year, _ := cmd.Flags().GetInt("year")
		w.Year = &year
	}
	if cmd.Flags().Changed("month") {
		month, _ := cmd.Flags().GetInt("month")
		w.Month = &month
	}

	if v, _ := cmd.Flags().GetString("from"); v != "" {
		from, err := dto.ParseDate(v)
		if err != nil {
			return w, fmt.Errorf("--from: %w", err)
		}
		w.DateFrom = &from
	}
	if v, _ := cmd.Flags().GetString("to"); v != "" {
		to, err := dto.ParseDate(v)
		if err != nil {
			return w, fmt.Errorf("--to: %w", err)
		}
		w.DateTo = &to
	}

	if _, err := w.Range(); err != nil {
		return w, err
	}
	return w, nil
}

func init() {
	kpiCmd.Flags().String("user", "", "restrict to one user id")
	kpiCmd.Flags().Int("year", 0, "calendar year")
	kpiCmd.Flags().Int("month", 0, "calendar month, requires --year")
	kpiCmd.Flags().String("from", "", "first day, YYYY-MM-DD")
	kpiCmd.Flags().String("to", "", "last day, YYYY-MM-DD")
	rootCmd.AddCommand(kpiCmd)
}

package tally

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/tally/internal/service"
)

var (
	progressDays int
	progressDate string
	progressJSON bool
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show rolling daily totals, averages, and streaks",
	Long:  "Show per-day totals for the last N days (7 for weekly, 30 for monthly) with averages over the whole window and meal/water streaks.",
	RunE: func(cmd *cobra.Command, args []string) error {
		end, err := parseDateOrToday(progressDate)
		if err != nil {
			return err
		}
		return withService(cmd, func(ctx context.Context, svc *service.Service) error {
			report, err := svc.Progress(ctx, cfg.UserID, end, progressDays)
			if err != nil {
				return loadFailed("progress", err)
			}
			if progressJSON {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Range: %s to %s (%d days)\n", report.FromDate, report.ToDate, report.WindowDays)
			fmt.Fprintln(out, "DATE\tKCAL\tMEALS\tWATER\tHABITS")
			for _, d := range report.Days {
				fmt.Fprintf(out, "%s\t%d\t%d\t%d\t%d\n", d.Date, d.TotalCalories, d.MealCount, d.TotalWater, d.HabitCount)
			}
			fmt.Fprintf(out, "Total: %d kcal, %d meals, %d glasses\n", report.TotalCalories, report.TotalMeals, report.TotalWater)
			fmt.Fprintf(out, "Average/day: %.1f kcal, %.1f meals, %.1f glasses\n", report.AvgCaloriesPerDay, report.AvgMealsPerDay, report.AvgWaterPerDay)
			fmt.Fprintf(out, "Meal streak: %d (longest %d)\n", report.MealStreak.Current, report.MealStreak.Longest)
			fmt.Fprintf(out, "Water streak: %d (longest %d)\n", report.WaterStreak.Current, report.WaterStreak.Longest)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(progressCmd)
	progressCmd.Flags().IntVar(&progressDays, "days", 7, "Window size in days")
	progressCmd.Flags().StringVar(&progressDate, "date", "", "Last day of the window YYYY-MM-DD (default today)")
	progressCmd.Flags().BoolVar(&progressJSON, "json", false, "Output JSON")
}

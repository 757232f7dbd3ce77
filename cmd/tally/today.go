package tally

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/tally/internal/service"
)

var (
	todayDate string
	todayJSON bool
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's calories, water, and meals against your goals",
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := parseDateOrToday(todayDate)
		if err != nil {
			return err
		}
		return withService(cmd, func(ctx context.Context, svc *service.Service) error {
			status, err := svc.TodaySummary(ctx, cfg.UserID, target)
			if err != nil {
				return loadFailed("today", err)
			}
			if todayJSON {
				return writeJSON(cmd.OutOrStdout(), status)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Date: %s\n", status.Date)
			fmt.Fprintf(out, "Calories: %d / %d kcal (%.0f%%)\n", status.Calories, status.CalorieGoal, status.CalorieProgress)
			if status.RemainingCalories >= 0 {
				fmt.Fprintf(out, "Remaining: %d kcal\n", status.RemainingCalories)
			} else {
				fmt.Fprintf(out, "Over goal by: %d kcal\n", -status.RemainingCalories)
			}
			fmt.Fprintf(out, "Water: %d / %d glasses\n", status.WaterGlasses, status.WaterGoal)
			fmt.Fprintf(out, "Meals: %d (streak %d days)\n", status.MealCount, status.MealStreak)
			for _, g := range status.Meals {
				fmt.Fprintf(out, "  %s: %d kcal\n", g.MealType, g.Calories)
				for _, m := range g.Meals {
					fmt.Fprintf(out, "    %s\t%s\t%d\n", formatTime(m.CreatedAt), m.FoodName, m.Calories)
				}
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(todayCmd)
	todayCmd.Flags().StringVar(&todayDate, "date", "", "Date YYYY-MM-DD (default today)")
	todayCmd.Flags().BoolVar(&todayJSON, "json", false, "Output JSON")
}

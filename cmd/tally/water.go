package tally

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/tally/internal/service"
)

var waterCmd = &cobra.Command{
	Use:   "water",
	Short: "Log water intake",
}

var (
	waterGlasses int
	waterDate    string
	waterTime    string
)

var waterAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Log glasses of water",
	RunE: func(cmd *cobra.Command, args []string) error {
		at, err := parseDateTimeOrNow(waterDate, waterTime)
		if err != nil {
			return err
		}
		return withService(cmd, func(ctx context.Context, svc *service.Service) error {
			w, err := svc.AddWater(ctx, cfg.UserID, waterGlasses, at)
			if err != nil {
				return err
			}
			today, err := svc.TodaySummary(ctx, cfg.UserID, w.LoggedAt)
			if err != nil {
				return loadFailed("water total", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %d glass(es); %s total %d/%d\n", w.Glasses, today.Date, today.WaterGlasses, today.WaterGoal)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(waterCmd)
	waterCmd.AddCommand(waterAddCmd)

	waterAddCmd.Flags().IntVar(&waterGlasses, "glasses", 1, "Number of glasses")
	waterAddCmd.Flags().StringVar(&waterDate, "date", "", "Date YYYY-MM-DD (default now)")
	waterAddCmd.Flags().StringVar(&waterTime, "time", "", "Time HH:MM")
}

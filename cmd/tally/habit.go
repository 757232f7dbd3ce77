package tally

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/saadjs/tally/internal/aggregate"
	"github.com/saadjs/tally/internal/service"
)

var habitCmd = &cobra.Command{
	Use:   "habit",
	Short: "Track daily habits and streaks",
}

var (
	habitName   string
	habitEmoji  string
	habitTarget int
)

var habitAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a habit",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *service.Service) error {
			h, err := svc.CreateHabit(ctx, service.CreateHabitInput{
				UserID:      cfg.UserID,
				Name:        habitName,
				Emoji:       habitEmoji,
				TargetCount: habitTarget,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created habit %s %s (target %d/day) as %s\n", h.Emoji, h.Name, h.TargetCount, h.ID)
			return nil
		})
	},
}

var habitQuickAddCmd = &cobra.Command{
	Use:   "quick-add [preset]",
	Short: "Create a habit from a preset (run without arguments to list presets)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "PRESET\tEMOJI\tTARGET")
			for _, p := range service.HabitPresets {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d\n", p.Name, p.Emoji, p.TargetCount)
			}
			return nil
		}
		return withService(cmd, func(ctx context.Context, svc *service.Service) error {
			h, err := svc.QuickAddHabit(ctx, cfg.UserID, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created habit %s %s (target %d/day) as %s\n", h.Emoji, h.Name, h.TargetCount, h.ID)
			return nil
		})
	},
}

var habitListCmd = &cobra.Command{
	Use:   "list",
	Short: "List habits with today's progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *service.Service) error {
			status, err := svc.HabitStatus(ctx, cfg.UserID, time.Time{}, 1)
			if err != nil {
				return loadFailed("habits", err)
			}
			if len(status) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No habits yet (try: tally habit quick-add)")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tHABIT\tTODAY")
			for _, h := range status {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s %s\t%s\n", h.HabitID, h.Emoji, h.Name, todayProgress(h))
			}
			return nil
		})
	},
}

var (
	habitLogCount int
	habitLogDate  string
	habitLogTime  string
)

var habitLogCmd = &cobra.Command{
	Use:   "log <habit-id>",
	Short: "Record a habit completion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		at, err := parseDateTimeOrNow(habitLogDate, habitLogTime)
		if err != nil {
			return err
		}
		return withService(cmd, func(ctx context.Context, svc *service.Service) error {
			l, err := svc.LogHabit(ctx, cfg.UserID, args[0], habitLogCount, at)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %d completion(s) of %s\n", l.Count, l.HabitID)
			return nil
		})
	},
}

var habitDeleteCmd = &cobra.Command{
	Use:   "delete <habit-id>",
	Short: "Delete a habit and its history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *service.Service) error {
			if err := svc.DeleteHabit(ctx, cfg.UserID, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted habit %s\n", args[0])
			return nil
		})
	},
}

var (
	streakDays int
	streakDate string
	streakJSON bool
)

var habitStreaksCmd = &cobra.Command{
	Use:   "streaks",
	Short: "Show current and longest streak per habit",
	RunE: func(cmd *cobra.Command, args []string) error {
		end, err := parseDateOrToday(streakDate)
		if err != nil {
			return err
		}
		return withService(cmd, func(ctx context.Context, svc *service.Service) error {
			status, err := svc.HabitStatus(ctx, cfg.UserID, end, streakDays)
			if err != nil {
				return loadFailed("habit streaks", err)
			}
			if streakJSON {
				return writeJSON(cmd.OutOrStdout(), status)
			}
			if len(status) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No habits yet")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "HABIT\tTODAY\tCURRENT\tLONGEST")
			for _, h := range status {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\t%s\t%d\t%d\n", h.Emoji, h.Name, todayProgress(h), h.Current, h.Longest)
			}
			return nil
		})
	},
}

func todayProgress(h aggregate.HabitStreak) string {
	mark := " "
	if h.DoneToday() {
		mark = "✓"
	}
	return strings.TrimSpace(fmt.Sprintf("%d/%d %s", h.CompletedToday, h.TargetCount, mark))
}

func init() {
	rootCmd.AddCommand(habitCmd)
	habitCmd.AddCommand(habitAddCmd, habitQuickAddCmd, habitListCmd, habitLogCmd, habitDeleteCmd, habitStreaksCmd)

	habitAddCmd.Flags().StringVar(&habitName, "name", "", "Habit name")
	habitAddCmd.Flags().StringVar(&habitEmoji, "emoji", "", "Emoji shown next to the habit")
	habitAddCmd.Flags().IntVar(&habitTarget, "target", 1, "Completions per day")
	_ = habitAddCmd.MarkFlagRequired("name")

	habitLogCmd.Flags().IntVar(&habitLogCount, "count", 1, "Completions to record")
	habitLogCmd.Flags().StringVar(&habitLogDate, "date", "", "Date YYYY-MM-DD (default now)")
	habitLogCmd.Flags().StringVar(&habitLogTime, "time", "", "Time HH:MM")

	habitStreaksCmd.Flags().IntVar(&streakDays, "days", aggregate.HabitLookbackDays, "Days of history to scan")
	habitStreaksCmd.Flags().StringVar(&streakDate, "date", "", "Last day of the window YYYY-MM-DD (default today)")
	habitStreaksCmd.Flags().BoolVar(&streakJSON, "json", false, "Output JSON")
}

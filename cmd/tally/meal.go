package tally

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/saadjs/tally/internal/model"
	"github.com/saadjs/tally/internal/provider/estimator"
	"github.com/saadjs/tally/internal/service"
)

var mealCmd = &cobra.Command{
	Use:   "meal",
	Short: "Log and manage meals",
}

var (
	mealName     string
	mealCalories int
	mealType     string
	mealDate     string
	mealTime     string
	mealNotes    string
	mealImage    string
)

var mealAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Log a meal",
	RunE: func(cmd *cobra.Command, args []string) error {
		at, err := parseDateTimeOrNow(mealDate, mealTime)
		if err != nil {
			return err
		}
		return withService(cmd, func(ctx context.Context, svc *service.Service) error {
			m, err := svc.LogMeal(ctx, service.LogMealInput{
				UserID:   cfg.UserID,
				FoodName: mealName,
				Calories: mealCalories,
				MealType: model.MealType(mealType),
				At:       at,
				Notes:    mealNotes,
				ImageRef: mealImage,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s %s (%d kcal) as %s\n", m.MealType, m.FoodName, m.Calories, m.ID)
			return nil
		})
	},
}

var (
	mealListDate string
	mealListJSON bool
)

var mealListCmd = &cobra.Command{
	Use:   "list",
	Short: "List meals for a day (newest first)",
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := parseDateOrToday(mealListDate)
		if err != nil {
			return err
		}
		return withService(cmd, func(ctx context.Context, svc *service.Service) error {
			meals, err := svc.ListMeals(ctx, cfg.UserID, day)
			if err != nil {
				return loadFailed("meals", err)
			}
			if mealListJSON {
				return writeJSON(cmd.OutOrStdout(), meals)
			}
			if len(meals) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No meals logged")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tTIME\tTYPE\tFOOD\tKCAL")
			for _, m := range meals {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%d\n", m.ID, formatTime(m.CreatedAt), m.MealType, m.FoodName, m.Calories)
			}
			return nil
		})
	},
}

var mealShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a single meal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *service.Service) error {
			m, err := svc.GetMeal(ctx, cfg.UserID, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID: %s\n", m.ID)
			fmt.Fprintf(out, "Date: %s\n", formatTime(m.CreatedAt))
			fmt.Fprintf(out, "Type: %s\n", m.MealType)
			fmt.Fprintf(out, "Food: %s\n", m.FoodName)
			fmt.Fprintf(out, "Calories: %d\n", m.Calories)
			if m.Confidence != nil {
				fmt.Fprintf(out, "Confidence: %.0f%%\n", *m.Confidence*100)
			}
			if m.ImageRef != "" {
				fmt.Fprintf(out, "Image: %s\n", m.ImageRef)
			}
			fmt.Fprintf(out, "Notes: %s\n", m.Notes)
			return nil
		})
	},
}

var (
	mealUpdateName     string
	mealUpdateCalories int
	mealUpdateNotes    string
)

var mealUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a meal's food name, calories, or notes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var in service.UpdateMealInput
		if cmd.Flags().Changed("name") {
			in.FoodName = &mealUpdateName
		}
		if cmd.Flags().Changed("calories") {
			in.Calories = &mealUpdateCalories
		}
		if cmd.Flags().Changed("notes") {
			in.Notes = &mealUpdateNotes
		}
		return withService(cmd, func(ctx context.Context, svc *service.Service) error {
			m, err := svc.UpdateMeal(ctx, cfg.UserID, args[0], in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated meal %s\n", m.ID)
			return nil
		})
	},
}

var mealDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a meal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *service.Service) error {
			if err := svc.DeleteMeal(ctx, cfg.UserID, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted meal %s\n", args[0])
			return nil
		})
	},
}

var (
	estimateImage string
	estimateType  string
)

var mealEstimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Log a meal estimated from a photo by the configured recognition endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.EstimatorURL == "" {
			return fmt.Errorf("no estimator configured (set TALLY_ESTIMATOR_URL)")
		}
		est := &estimator.Client{BaseURL: cfg.EstimatorURL, APIKey: cfg.EstimatorKey}
		return withService(cmd, func(ctx context.Context, svc *service.Service) error {
			m, err := svc.LogEstimatedMeal(ctx, est, cfg.UserID, estimateImage, model.MealType(estimateType), time.Time{})
			if err != nil {
				return err
			}
			confidence := 0.0
			if m.Confidence != nil {
				confidence = *m.Confidence
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s %s (%d kcal, %.0f%% confidence) as %s\n", m.MealType, m.FoodName, m.Calories, confidence*100, m.ID)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(mealCmd)
	mealCmd.AddCommand(mealAddCmd, mealListCmd, mealShowCmd, mealUpdateCmd, mealDeleteCmd, mealEstimateCmd)

	mealEstimateCmd.Flags().StringVar(&estimateImage, "image", "", "Reference to the meal photo")
	mealEstimateCmd.Flags().StringVar(&estimateType, "type", string(model.MealSnack), "Meal type: breakfast, lunch, dinner, snack")
	_ = mealEstimateCmd.MarkFlagRequired("image")

	mealAddCmd.Flags().StringVar(&mealName, "name", "", "Food name")
	mealAddCmd.Flags().IntVar(&mealCalories, "calories", 0, "Calories")
	mealAddCmd.Flags().StringVar(&mealType, "type", string(model.MealSnack), "Meal type: breakfast, lunch, dinner, snack")
	mealAddCmd.Flags().StringVar(&mealDate, "date", "", "Date YYYY-MM-DD (default now)")
	mealAddCmd.Flags().StringVar(&mealTime, "time", "", "Time HH:MM")
	mealAddCmd.Flags().StringVar(&mealNotes, "notes", "", "Optional notes")
	mealAddCmd.Flags().StringVar(&mealImage, "image", "", "Optional reference to a meal photo")
	_ = mealAddCmd.MarkFlagRequired("name")
	_ = mealAddCmd.MarkFlagRequired("calories")

	mealListCmd.Flags().StringVar(&mealListDate, "date", "", "Date YYYY-MM-DD (default today)")
	mealListCmd.Flags().BoolVar(&mealListJSON, "json", false, "Output JSON")

	mealUpdateCmd.Flags().StringVar(&mealUpdateName, "name", "", "Food name")
	mealUpdateCmd.Flags().IntVar(&mealUpdateCalories, "calories", 0, "Calories")
	mealUpdateCmd.Flags().StringVar(&mealUpdateNotes, "notes", "", "Notes")
}

package service

import (
	"context"
	"time"

	"github.com/saadjs/tally/internal/aggregate"
	"github.com/saadjs/tally/internal/model"
)

type MealGroup struct {
	MealType model.MealType `json:"meal_type"`
	Calories int            `json:"calories"`
	Meals    []model.Meal   `json:"meals"`
}

type TodayStatus struct {
	Date              string      `json:"date"`
	Calories          int         `json:"calories"`
	CalorieGoal       int         `json:"calorie_goal"`
	RemainingCalories int         `json:"remaining_calories"`
	CalorieProgress   float64     `json:"calorie_progress_pct"`
	MealCount         int         `json:"meal_count"`
	WaterGlasses      int         `json:"water_glasses"`
	WaterGoal         int         `json:"water_goal"`
	MealStreak        int         `json:"meal_streak"`
	Meals             []MealGroup `json:"meals_by_type"`
}

// TodaySummary builds the home view for the day containing date.
func (s *Service) TodaySummary(ctx context.Context, userID string, date time.Time) (*TodayStatus, error) {
	date = s.timeOrNow(date)
	goals, err := s.Goals(ctx, userID)
	if err != nil {
		return nil, err
	}
	// A week is enough to show the running streak next to today's totals.
	var report *aggregate.Report
	err = s.todayRun.Do(ctx, func(ctx context.Context) error {
		var err error
		report, err = s.agg.Report(ctx, userID, date, 7)
		return err
	})
	if err != nil {
		return nil, err
	}
	day := report.Days[len(report.Days)-1]

	status := &TodayStatus{
		Date:              day.Date,
		Calories:          day.TotalCalories,
		CalorieGoal:       goals.Calories,
		RemainingCalories: goals.Calories - day.TotalCalories,
		MealCount:         day.MealCount,
		WaterGlasses:      day.TotalWater,
		WaterGoal:         goals.WaterGlasses,
		MealStreak:        report.MealStreak.Current,
	}
	if goals.Calories > 0 {
		status.CalorieProgress = float64(day.TotalCalories) / float64(goals.Calories) * 100
	}

	from, to := s.dayBounds(date)
	groups := make(map[model.MealType]*MealGroup, len(model.MealTypes))
	for _, m := range report.Meals {
		if m.CreatedAt.Before(from) || !m.CreatedAt.Before(to) {
			continue
		}
		g, ok := groups[m.MealType]
		if !ok {
			g = &MealGroup{MealType: m.MealType, Meals: []model.Meal{}}
			groups[m.MealType] = g
		}
		g.Calories += m.Calories
		g.Meals = append(g.Meals, m)
	}
	status.Meals = make([]MealGroup, 0, len(groups))
	for _, t := range model.MealTypes {
		if g, ok := groups[t]; ok {
			status.Meals = append(status.Meals, *g)
		}
	}
	return status, nil
}

// Progress is the rolling report behind the weekly and monthly views.
// A call made while an earlier one is still loading supersedes it; the
// earlier call returns aggregate.ErrSuperseded.
func (s *Service) Progress(ctx context.Context, userID string, end time.Time, days int) (*aggregate.Report, error) {
	var report *aggregate.Report
	err := s.progressRun.Do(ctx, func(ctx context.Context) error {
		var err error
		report, err = s.agg.Report(ctx, userID, s.timeOrNow(end), days)
		return err
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

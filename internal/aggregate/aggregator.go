package aggregate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/saadjs/tally/internal/apperr"
	"github.com/saadjs/tally/internal/logging"
	"github.com/saadjs/tally/internal/model"
	"github.com/saadjs/tally/internal/store"
)

// HabitLookbackDays is how far back habit streaks look by default.
const HabitLookbackDays = 30

type Report struct {
	UserID            string         `json:"user_id"`
	FromDate          string         `json:"from_date"`
	ToDate            string         `json:"to_date"`
	WindowDays        int            `json:"window_days"`
	TotalCalories     int            `json:"total_calories"`
	TotalWater        int            `json:"total_water"`
	TotalMeals        int            `json:"total_meals"`
	AvgCaloriesPerDay float64        `json:"avg_calories_per_day"`
	AvgWaterPerDay    float64        `json:"avg_water_per_day"`
	AvgMealsPerDay    float64        `json:"avg_meals_per_day"`
	MealStreak        StreakStat     `json:"meal_streak"`
	WaterStreak       StreakStat     `json:"water_streak"`
	Days              []DailySummary `json:"days"`
	Meals             []model.Meal   `json:"-"`
}

type HabitStreak struct {
	HabitID        string `json:"habit_id"`
	Name           string `json:"name"`
	Emoji          string `json:"emoji"`
	TargetCount    int    `json:"target_count"`
	CompletedToday int    `json:"completed_today"`
	Current        int    `json:"current_streak"`
	Longest        int    `json:"longest_streak"`
}

func (h HabitStreak) DoneToday() bool {
	return h.CompletedToday >= h.TargetCount
}

type Aggregator struct {
	store  store.Reader
	loc    *time.Location
	logger *slog.Logger
}

func New(r store.Reader, loc *time.Location, logger *slog.Logger) *Aggregator {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Aggregator{store: r, loc: loc, logger: logger}
}

func (a *Aggregator) Location() *time.Location {
	return a.loc
}

// Report loads meals, water and habit logs for the window ending on the day
// of end and summarizes them. Any store failure aborts the whole report.
func (a *Aggregator) Report(ctx context.Context, userID string, end time.Time, days int) (*Report, error) {
	w, err := NewWindow(end, days, a.loc)
	if err != nil {
		return nil, err
	}
	f := store.Filter{UserID: userID, From: w.Start(), To: w.Limit()}
	if err := f.Validate("aggregate"); err != nil {
		return nil, err
	}

	started := time.Now()
	var (
		meals     []model.Meal
		water     []model.WaterLog
		habitLogs []model.HabitLog
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		meals, err = a.store.ListMeals(gctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		water, err = a.store.ListWaterLogs(gctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		habitLogs, err = a.store.ListHabitLogs(gctx, f)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, a.fail("report", userID, err)
	}

	summaries := Summarize(Buckets(w, meals, water, habitLogs))
	report := &Report{
		UserID:            userID,
		FromDate:          w.Start().Format(dateLayout),
		ToDate:            w.End.In(w.Loc).Format(dateLayout),
		WindowDays:        w.Days,
		TotalCalories:     Total(summaries, Calories),
		TotalWater:        Total(summaries, Water),
		TotalMeals:        Total(summaries, Meals),
		AvgCaloriesPerDay: Average(summaries, Calories),
		AvgWaterPerDay:    Average(summaries, Water),
		AvgMealsPerDay:    Average(summaries, Meals),
		MealStreak:        Streaks(summaries, MealLogged),
		WaterStreak:       Streaks(summaries, WaterLogged),
		Days:              summaries,
		Meals:             meals,
	}
	a.logger.Debug("aggregated window",
		"user_id", userID,
		"from", report.FromDate,
		"to", report.ToDate,
		"meals", len(meals),
		"water_logs", len(water),
		"habit_logs", len(habitLogs),
		"elapsed", time.Since(started),
	)
	return report, nil
}

// HabitStreaks computes, per habit, the current and longest completion
// streak within the window and how many completions were logged today.
func (a *Aggregator) HabitStreaks(ctx context.Context, userID string, end time.Time, days int) ([]HabitStreak, error) {
	w, err := NewWindow(end, days, a.loc)
	if err != nil {
		return nil, err
	}

	var (
		habits []model.Habit
		logs   []model.HabitLog
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		habits, err = a.store.ListHabits(gctx, store.Filter{UserID: userID})
		return err
	})
	g.Go(func() error {
		var err error
		logs, err = a.store.ListHabitLogs(gctx, store.Filter{UserID: userID, From: w.Start(), To: w.Limit()})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, a.fail("habit streaks", userID, err)
	}

	byHabit := make(map[string][]model.HabitLog, len(habits))
	for _, l := range logs {
		byHabit[l.HabitID] = append(byHabit[l.HabitID], l)
	}

	out := make([]HabitStreak, 0, len(habits))
	for _, h := range habits {
		summaries := Summarize(Buckets(w, nil, nil, byHabit[h.ID]))
		stat := Streaks(summaries, HabitCompleted)
		out = append(out, HabitStreak{
			HabitID:        h.ID,
			Name:           h.Name,
			Emoji:          h.Emoji,
			TargetCount:    h.TargetCount,
			CompletedToday: summaries[len(summaries)-1].HabitCount,
			Current:        stat.Current,
			Longest:        stat.Longest,
		})
	}
	return out, nil
}

func (a *Aggregator) fail(op, userID string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if apperr.KindOf(err) == "" {
		err = apperr.Unavailable(op, err)
	}
	a.logger.Error("aggregation failed", "op", op, "user_id", userID, "error", err)
	return fmt.Errorf("aggregate %s: %w", op, err)
}

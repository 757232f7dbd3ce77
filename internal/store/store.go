// Package store defines the record store adapter consumed by the aggregator
// and the service layer. Concrete adapters live in subpackages.
package store

import (
	"context"
	"strings"
	"time"

	"github.com/saadjs/tally/internal/apperr"
	"github.com/saadjs/tally/internal/model"
)

type Entity string

const (
	Meals     Entity = "meals"
	WaterLogs Entity = "waterLogs"
	Habits    Entity = "habits"
	HabitLogs Entity = "habitLogs"
)

func (e Entity) Valid() bool {
	switch e {
	case Meals, WaterLogs, Habits, HabitLogs:
		return true
	}
	return false
}

type Order int

const (
	Ascending Order = iota
	Descending
)

// Filter scopes a query. From is inclusive and To exclusive; zero values
// leave that side of the range open. Limit <= 0 means no limit.
type Filter struct {
	UserID  string
	From    time.Time
	To      time.Time
	HabitID string
	Order   Order
	Limit   int
}

func (f Filter) Validate(op string) error {
	if strings.TrimSpace(f.UserID) == "" {
		return apperr.Invalid(op, "user id is required")
	}
	if !f.From.IsZero() && !f.To.IsZero() && !f.From.Before(f.To) {
		return apperr.Invalid(op, "range start must be before range end")
	}
	return nil
}

// Reader is the read side of a store. The aggregator only needs this.
type Reader interface {
	ListMeals(ctx context.Context, f Filter) ([]model.Meal, error)
	ListWaterLogs(ctx context.Context, f Filter) ([]model.WaterLog, error)
	ListHabits(ctx context.Context, f Filter) ([]model.Habit, error)
	ListHabitLogs(ctx context.Context, f Filter) ([]model.HabitLog, error)
}

type Store interface {
	Reader
	GetMeal(ctx context.Context, userID, id string) (model.Meal, error)
	InsertMeal(ctx context.Context, m model.Meal) error
	InsertWaterLog(ctx context.Context, w model.WaterLog) error
	InsertHabit(ctx context.Context, h model.Habit) error
	InsertHabitLog(ctx context.Context, l model.HabitLog) error
	UpdateMeal(ctx context.Context, userID, id string, patch model.MealPatch) error
	Delete(ctx context.Context, entity Entity, userID, id string) error
	GetSetting(ctx context.Context, userID, key string) (string, bool, error)
	SetSetting(ctx context.Context, userID, key, value string) error
	ListSettings(ctx context.Context, userID string) (map[string]string, error)
	Close() error
}

package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/saadjs/tally/internal/aggregate"
	"github.com/saadjs/tally/internal/apperr"
	"github.com/saadjs/tally/internal/model"
	"github.com/saadjs/tally/internal/store"
)

const defaultHabitEmoji = "✨"

type CreateHabitInput struct {
	UserID      string
	Name        string
	Emoji       string
	TargetCount int
}

type HabitPreset struct {
	Name        string
	Emoji       string
	TargetCount int
}

var HabitPresets = []HabitPreset{
	{Name: "Drink Water", Emoji: "💧", TargetCount: 8},
	{Name: "Exercise", Emoji: "🏃", TargetCount: 1},
	{Name: "Read", Emoji: "📚", TargetCount: 1},
	{Name: "Meditate", Emoji: "🧘", TargetCount: 1},
	{Name: "Sleep 8h", Emoji: "😴", TargetCount: 1},
}

func (s *Service) CreateHabit(ctx context.Context, in CreateHabitInput) (model.Habit, error) {
	const op = "create habit"
	if err := validateUser(op, in.UserID); err != nil {
		return model.Habit{}, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return model.Habit{}, apperr.Invalid(op, "habit name is required")
	}
	if in.TargetCount == 0 {
		in.TargetCount = 1
	}
	if err := validatePositiveInt(op, "target count", in.TargetCount); err != nil {
		return model.Habit{}, err
	}
	in.Emoji = strings.TrimSpace(in.Emoji)
	if in.Emoji == "" {
		in.Emoji = defaultHabitEmoji
	}

	h := model.Habit{
		ID:          s.newID(),
		UserID:      in.UserID,
		Name:        in.Name,
		Emoji:       in.Emoji,
		TargetCount: in.TargetCount,
		CreatedAt:   s.now(),
	}
	if err := s.store.InsertHabit(ctx, h); err != nil {
		return model.Habit{}, err
	}
	return h, nil
}

// QuickAddHabit creates one of HabitPresets, matched case-insensitively.
func (s *Service) QuickAddHabit(ctx context.Context, userID, preset string) (model.Habit, error) {
	for _, p := range HabitPresets {
		if strings.EqualFold(p.Name, strings.TrimSpace(preset)) {
			return s.CreateHabit(ctx, CreateHabitInput{UserID: userID, Name: p.Name, Emoji: p.Emoji, TargetCount: p.TargetCount})
		}
	}
	return model.Habit{}, apperr.Missing("quick add habit", "no preset named %q", preset)
}

func (s *Service) ListHabits(ctx context.Context, userID string) ([]model.Habit, error) {
	return s.store.ListHabits(ctx, store.Filter{UserID: userID})
}

// LogHabit records count completions of a habit. Zero count means one.
func (s *Service) LogHabit(ctx context.Context, userID, habitID string, count int, at time.Time) (model.HabitLog, error) {
	const op = "log habit"
	if err := validateUser(op, userID); err != nil {
		return model.HabitLog{}, err
	}
	if count == 0 {
		count = 1
	}
	if err := validatePositiveInt(op, "count", count); err != nil {
		return model.HabitLog{}, err
	}
	habitID = strings.TrimSpace(habitID)
	habits, err := s.store.ListHabits(ctx, store.Filter{UserID: userID})
	if err != nil {
		return model.HabitLog{}, err
	}
	found := false
	for _, h := range habits {
		if h.ID == habitID {
			found = true
			break
		}
	}
	if !found {
		return model.HabitLog{}, apperr.Missing(op, "habit %s not found", habitID)
	}

	l := model.HabitLog{
		ID:          s.newID(),
		UserID:      userID,
		HabitID:     habitID,
		CompletedAt: s.timeOrNow(at),
		Count:       count,
	}
	if err := s.store.InsertHabitLog(ctx, l); err != nil {
		return model.HabitLog{}, err
	}
	return l, nil
}

func (s *Service) DeleteHabit(ctx context.Context, userID, habitID string) error {
	if err := validateUser("delete habit", userID); err != nil {
		return err
	}
	return s.store.Delete(ctx, store.Habits, userID, strings.TrimSpace(habitID))
}

// HabitStatus returns every habit with today's progress and its streaks,
// longest current streak first. Zero lookbackDays means
// aggregate.HabitLookbackDays.
func (s *Service) HabitStatus(ctx context.Context, userID string, day time.Time, lookbackDays int) ([]aggregate.HabitStreak, error) {
	switch {
	case lookbackDays == 0:
		lookbackDays = aggregate.HabitLookbackDays
	case lookbackDays < 0:
		return nil, apperr.Invalid("habit status", "lookback days must be >= 1, got %d", lookbackDays)
	}
	out, err := s.agg.HabitStreaks(ctx, userID, s.timeOrNow(day), lookbackDays)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Current > out[j].Current
	})
	return out, nil
}

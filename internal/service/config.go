package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/saadjs/tally/internal/apperr"
)

const (
	ConfigDailyCalorieGoal = "daily_calorie_goal"
	ConfigDailyWaterGoal   = "daily_water_goal"

	DefaultCalorieGoal = 2000
	DefaultWaterGoal   = 8
)

var configKeys = []string{ConfigDailyCalorieGoal, ConfigDailyWaterGoal}

type Goals struct {
	Calories     int `json:"calories"`
	WaterGlasses int `json:"water_glasses"`
}

func (s *Service) SetConfig(ctx context.Context, userID, key, value string) error {
	const op = "set config"
	if err := validateUser(op, userID); err != nil {
		return err
	}
	key = strings.TrimSpace(strings.ToLower(key))
	value = strings.TrimSpace(value)
	switch key {
	case ConfigDailyCalorieGoal, ConfigDailyWaterGoal:
		n, err := strconv.Atoi(value)
		if err != nil {
			return apperr.Invalid(op, "%s must be a whole number, got %q", key, value)
		}
		if err := validatePositiveInt(op, key, n); err != nil {
			return err
		}
		value = strconv.Itoa(n)
	default:
		return apperr.Invalid(op, "unknown config key %q (use %s)", key, strings.Join(configKeys, ", "))
	}
	return s.store.SetSetting(ctx, userID, key, value)
}

// ListConfig returns every known key, filling in defaults for unset ones.
func (s *Service) ListConfig(ctx context.Context, userID string) (map[string]string, error) {
	if err := validateUser("list config", userID); err != nil {
		return nil, err
	}
	out, err := s.store.ListSettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, ok := out[ConfigDailyCalorieGoal]; !ok {
		out[ConfigDailyCalorieGoal] = strconv.Itoa(DefaultCalorieGoal)
	}
	if _, ok := out[ConfigDailyWaterGoal]; !ok {
		out[ConfigDailyWaterGoal] = strconv.Itoa(DefaultWaterGoal)
	}
	return out, nil
}

func (s *Service) Goals(ctx context.Context, userID string) (Goals, error) {
	calories, err := s.intSetting(ctx, userID, ConfigDailyCalorieGoal, DefaultCalorieGoal)
	if err != nil {
		return Goals{}, err
	}
	water, err := s.intSetting(ctx, userID, ConfigDailyWaterGoal, DefaultWaterGoal)
	if err != nil {
		return Goals{}, err
	}
	return Goals{Calories: calories, WaterGlasses: water}, nil
}

func (s *Service) intSetting(ctx context.Context, userID, key string, fallback int) (int, error) {
	raw, ok, err := s.store.GetSetting(ctx, userID, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Invalid("read config", "stored %s is not a number: %q", key, raw)
	}
	return n, nil
}

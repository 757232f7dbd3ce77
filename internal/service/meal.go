package service

import (
	"context"
	"strings"
	"time"

	"github.com/saadjs/tally/internal/apperr"
	"github.com/saadjs/tally/internal/model"
	"github.com/saadjs/tally/internal/store"
)

type LogMealInput struct {
	UserID     string
	FoodName   string
	Calories   int
	MealType   model.MealType
	At         time.Time
	Notes      string
	ImageRef   string
	Confidence *float64
}

type UpdateMealInput struct {
	FoodName *string
	Calories *int
	Notes    *string
}

func (s *Service) LogMeal(ctx context.Context, in LogMealInput) (model.Meal, error) {
	const op = "log meal"
	if err := validateUser(op, in.UserID); err != nil {
		return model.Meal{}, err
	}
	in.FoodName = strings.TrimSpace(in.FoodName)
	if in.FoodName == "" {
		return model.Meal{}, apperr.Invalid(op, "food name is required")
	}
	if err := validateNonNegativeInt(op, "calories", in.Calories); err != nil {
		return model.Meal{}, err
	}
	in.MealType = model.MealType(strings.ToLower(strings.TrimSpace(string(in.MealType))))
	if !in.MealType.Valid() {
		return model.Meal{}, apperr.Invalid(op, "invalid meal type %q (use breakfast, lunch, dinner, snack)", in.MealType)
	}
	if in.Confidence != nil && (*in.Confidence < 0 || *in.Confidence > 1) {
		return model.Meal{}, apperr.Invalid(op, "confidence must be between 0 and 1")
	}

	m := model.Meal{
		ID:         s.newID(),
		UserID:     in.UserID,
		FoodName:   in.FoodName,
		Calories:   in.Calories,
		MealType:   in.MealType,
		CreatedAt:  s.timeOrNow(in.At),
		Notes:      strings.TrimSpace(in.Notes),
		ImageRef:   strings.TrimSpace(in.ImageRef),
		Confidence: in.Confidence,
	}
	if err := s.store.InsertMeal(ctx, m); err != nil {
		return model.Meal{}, err
	}
	s.logger.Info("meal logged", "user_id", m.UserID, "meal_id", m.ID, "calories", m.Calories)
	return m, nil
}

// ListMeals returns the meals logged on the day containing day, newest first.
func (s *Service) ListMeals(ctx context.Context, userID string, day time.Time) ([]model.Meal, error) {
	from, to := s.dayBounds(s.timeOrNow(day))
	return s.store.ListMeals(ctx, store.Filter{UserID: userID, From: from, To: to, Order: store.Descending})
}

func (s *Service) GetMeal(ctx context.Context, userID, id string) (model.Meal, error) {
	if err := validateUser("get meal", userID); err != nil {
		return model.Meal{}, err
	}
	return s.store.GetMeal(ctx, userID, strings.TrimSpace(id))
}

// UpdateMeal edits the user-editable fields: food name, calories and notes.
func (s *Service) UpdateMeal(ctx context.Context, userID, id string, in UpdateMealInput) (model.Meal, error) {
	const op = "update meal"
	if err := validateUser(op, userID); err != nil {
		return model.Meal{}, err
	}
	patch := model.MealPatch{Calories: in.Calories}
	if in.FoodName != nil {
		name := strings.TrimSpace(*in.FoodName)
		if name == "" {
			return model.Meal{}, apperr.Invalid(op, "food name is required")
		}
		patch.FoodName = &name
	}
	if in.Calories != nil {
		if err := validateNonNegativeInt(op, "calories", *in.Calories); err != nil {
			return model.Meal{}, err
		}
	}
	if in.Notes != nil {
		notes := strings.TrimSpace(*in.Notes)
		patch.Notes = &notes
	}
	if patch.FoodName == nil && patch.Calories == nil && patch.Notes == nil {
		return model.Meal{}, apperr.Invalid(op, "set at least one of food name, calories, notes")
	}
	id = strings.TrimSpace(id)
	if err := s.store.UpdateMeal(ctx, userID, id, patch); err != nil {
		return model.Meal{}, err
	}
	return s.store.GetMeal(ctx, userID, id)
}

func (s *Service) DeleteMeal(ctx context.Context, userID, id string) error {
	if err := validateUser("delete meal", userID); err != nil {
		return err
	}
	return s.store.Delete(ctx, store.Meals, userID, strings.TrimSpace(id))
}

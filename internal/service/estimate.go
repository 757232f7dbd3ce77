package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/saadjs/tally/internal/apperr"
	"github.com/saadjs/tally/internal/model"
)

type Estimate struct {
	FoodName   string  `json:"food_name"`
	Calories   int     `json:"calories"`
	Confidence float64 `json:"confidence"`
}

// Estimator recognizes food in a captured image. Implementations call an
// external recognition service; none ships with tally.
type Estimator interface {
	Estimate(ctx context.Context, imageRef string) (Estimate, error)
}

// LogEstimatedMeal asks est about the image and logs the result as a meal.
func (s *Service) LogEstimatedMeal(ctx context.Context, est Estimator, userID, imageRef string, mealType model.MealType, at time.Time) (model.Meal, error) {
	const op = "log estimated meal"
	imageRef = strings.TrimSpace(imageRef)
	if imageRef == "" {
		return model.Meal{}, apperr.Invalid(op, "image reference is required")
	}
	if est == nil {
		return model.Meal{}, fmt.Errorf("%s: no estimator configured", op)
	}
	e, err := est.Estimate(ctx, imageRef)
	if err != nil {
		return model.Meal{}, fmt.Errorf("estimate %s: %w", imageRef, err)
	}
	confidence := e.Confidence
	return s.LogMeal(ctx, LogMealInput{
		UserID:     userID,
		FoodName:   e.FoodName,
		Calories:   e.Calories,
		MealType:   mealType,
		At:         at,
		ImageRef:   imageRef,
		Confidence: &confidence,
	})
}

package model

import "time"

type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

var MealTypes = []MealType{MealBreakfast, MealLunch, MealDinner, MealSnack}

func (t MealType) Valid() bool {
	for _, v := range MealTypes {
		if t == v {
			return true
		}
	}
	return false
}

type Meal struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	FoodName   string    `json:"food_name"`
	Calories   int       `json:"calories"`
	MealType   MealType  `json:"meal_type"`
	CreatedAt  time.Time `json:"created_at"`
	Notes      string    `json:"notes,omitempty"`
	ImageRef   string    `json:"image_ref,omitempty"`
	Confidence *float64  `json:"confidence,omitempty"`
}

type WaterLog struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	Glasses  int       `json:"glasses"`
	LoggedAt time.Time `json:"logged_at"`
}

type Habit struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Emoji       string    `json:"emoji"`
	TargetCount int       `json:"target_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type HabitLog struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	HabitID     string    `json:"habit_id"`
	CompletedAt time.Time `json:"completed_at"`
	Count       int       `json:"count"`
}

// MealPatch carries the user-editable meal fields. Nil fields are left as is.
type MealPatch struct {
	FoodName *string
	Calories *int
	Notes    *string
}

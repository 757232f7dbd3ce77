package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/saadjs/tally/internal/apperr"
	"github.com/saadjs/tally/internal/model"
	"github.com/saadjs/tally/internal/store"
)

// timeLayout is fixed width so stored timestamps compare correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// New wraps an opened, migrated database.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	return s.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(op, id, raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, apperr.Invalid(op, "record %s has malformed timestamp %q", id, raw)
	}
	return t, nil
}

// rangeClause appends the filter's user, range and habit predicates.
func rangeClause(query string, args []any, column string, f store.Filter) (string, []any) {
	query += ` WHERE user_id = ?`
	args = append(args, f.UserID)
	if !f.From.IsZero() {
		query += ` AND ` + column + ` >= ?`
		args = append(args, formatTime(f.From))
	}
	if !f.To.IsZero() {
		query += ` AND ` + column + ` < ?`
		args = append(args, formatTime(f.To))
	}
	if strings.TrimSpace(f.HabitID) != "" {
		query += ` AND habit_id = ?`
		args = append(args, f.HabitID)
	}
	if f.Order == store.Descending {
		query += ` ORDER BY ` + column + ` DESC, id DESC`
	} else {
		query += ` ORDER BY ` + column + ` ASC, id ASC`
	}
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}
	return query, args
}

func (s *Store) ListMeals(ctx context.Context, f store.Filter) ([]model.Meal, error) {
	const op = "list meals"
	if err := f.Validate(op); err != nil {
		return nil, err
	}
	query, args := rangeClause(`
SELECT id, user_id, food_name, calories, meal_type, created_at, IFNULL(notes, ''), IFNULL(image_ref, ''), confidence
FROM meals`, nil, "created_at", f)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Unavailable(op, err)
	}
	defer rows.Close()

	items := make([]model.Meal, 0)
	for rows.Next() {
		var m model.Meal
		var calories sql.NullInt64
		var confidence sql.NullFloat64
		var createdRaw, mealType string
		if err := rows.Scan(&m.ID, &m.UserID, &m.FoodName, &calories, &mealType, &createdRaw, &m.Notes, &m.ImageRef, &confidence); err != nil {
			return nil, apperr.Unavailable(op, fmt.Errorf("scan meal: %w", err))
		}
		m.Calories = int(calories.Int64)
		m.MealType = model.MealType(mealType)
		if confidence.Valid {
			v := confidence.Float64
			m.Confidence = &v
		}
		if m.CreatedAt, err = parseTime(op, m.ID, createdRaw); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Unavailable(op, fmt.Errorf("iterate meals: %w", err))
	}
	return items, nil
}

func (s *Store) ListWaterLogs(ctx context.Context, f store.Filter) ([]model.WaterLog, error) {
	const op = "list water logs"
	if err := f.Validate(op); err != nil {
		return nil, err
	}
	query, args := rangeClause(`SELECT id, user_id, glasses, logged_at FROM water_logs`, nil, "logged_at", f)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Unavailable(op, err)
	}
	defer rows.Close()

	items := make([]model.WaterLog, 0)
	for rows.Next() {
		var w model.WaterLog
		var loggedRaw string
		if err := rows.Scan(&w.ID, &w.UserID, &w.Glasses, &loggedRaw); err != nil {
			return nil, apperr.Unavailable(op, fmt.Errorf("scan water log: %w", err))
		}
		if w.LoggedAt, err = parseTime(op, w.ID, loggedRaw); err != nil {
			return nil, err
		}
		items = append(items, w)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Unavailable(op, fmt.Errorf("iterate water logs: %w", err))
	}
	return items, nil
}

func (s *Store) ListHabits(ctx context.Context, f store.Filter) ([]model.Habit, error) {
	const op = "list habits"
	if err := f.Validate(op); err != nil {
		return nil, err
	}
	f.HabitID = ""
	query, args := rangeClause(`SELECT id, user_id, name, emoji, target_count, created_at FROM habits`, nil, "created_at", f)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Unavailable(op, err)
	}
	defer rows.Close()

	items := make([]model.Habit, 0)
	for rows.Next() {
		var h model.Habit
		var createdRaw string
		if err := rows.Scan(&h.ID, &h.UserID, &h.Name, &h.Emoji, &h.TargetCount, &createdRaw); err != nil {
			return nil, apperr.Unavailable(op, fmt.Errorf("scan habit: %w", err))
		}
		if h.CreatedAt, err = parseTime(op, h.ID, createdRaw); err != nil {
			return nil, err
		}
		items = append(items, h)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Unavailable(op, fmt.Errorf("iterate habits: %w", err))
	}
	return items, nil
}

func (s *Store) ListHabitLogs(ctx context.Context, f store.Filter) ([]model.HabitLog, error) {
	const op = "list habit logs"
	if err := f.Validate(op); err != nil {
		return nil, err
	}
	query, args := rangeClause(`SELECT id, user_id, habit_id, completed_at, count FROM habit_logs`, nil, "completed_at", f)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Unavailable(op, err)
	}
	defer rows.Close()

	items := make([]model.HabitLog, 0)
	for rows.Next() {
		var l model.HabitLog
		var completedRaw string
		if err := rows.Scan(&l.ID, &l.UserID, &l.HabitID, &completedRaw, &l.Count); err != nil {
			return nil, apperr.Unavailable(op, fmt.Errorf("scan habit log: %w", err))
		}
		if l.CompletedAt, err = parseTime(op, l.ID, completedRaw); err != nil {
			return nil, err
		}
		items = append(items, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Unavailable(op, fmt.Errorf("iterate habit logs: %w", err))
	}
	return items, nil
}

func (s *Store) GetMeal(ctx context.Context, userID, id string) (model.Meal, error) {
	const op = "get meal"
	var m model.Meal
	var calories sql.NullInt64
	var confidence sql.NullFloat64
	var createdRaw, mealType string
	err := s.db.QueryRowContext(ctx, `
SELECT id, user_id, food_name, calories, meal_type, created_at, IFNULL(notes, ''), IFNULL(image_ref, ''), confidence
FROM meals
WHERE user_id = ? AND id = ?
`, userID, id).Scan(&m.ID, &m.UserID, &m.FoodName, &calories, &mealType, &createdRaw, &m.Notes, &m.ImageRef, &confidence)
	if err == sql.ErrNoRows {
		return model.Meal{}, apperr.Missing(op, "meal %s not found", id)
	}
	if err != nil {
		return model.Meal{}, apperr.Unavailable(op, err)
	}
	m.Calories = int(calories.Int64)
	m.MealType = model.MealType(mealType)
	if confidence.Valid {
		v := confidence.Float64
		m.Confidence = &v
	}
	if m.CreatedAt, err = parseTime(op, m.ID, createdRaw); err != nil {
		return model.Meal{}, err
	}
	return m, nil
}

func (s *Store) InsertMeal(ctx context.Context, m model.Meal) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO meals(id, user_id, food_name, calories, meal_type, created_at, notes, image_ref, confidence)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
`, m.ID, m.UserID, m.FoodName, m.Calories, string(m.MealType), formatTime(m.CreatedAt), nullString(m.Notes), nullString(m.ImageRef), m.Confidence)
	return apperr.Unavailable("insert meal", err)
}

func (s *Store) InsertWaterLog(ctx context.Context, w model.WaterLog) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO water_logs(id, user_id, glasses, logged_at)
VALUES(?, ?, ?, ?)
`, w.ID, w.UserID, w.Glasses, formatTime(w.LoggedAt))
	return apperr.Unavailable("insert water log", err)
}

func (s *Store) InsertHabit(ctx context.Context, h model.Habit) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO habits(id, user_id, name, emoji, target_count, created_at)
VALUES(?, ?, ?, ?, ?, ?)
`, h.ID, h.UserID, h.Name, h.Emoji, h.TargetCount, formatTime(h.CreatedAt))
	return apperr.Unavailable("insert habit", err)
}

func (s *Store) InsertHabitLog(ctx context.Context, l model.HabitLog) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO habit_logs(id, user_id, habit_id, completed_at, count)
VALUES(?, ?, ?, ?, ?)
`, l.ID, l.UserID, l.HabitID, formatTime(l.CompletedAt), l.Count)
	return apperr.Unavailable("insert habit log", err)
}

func (s *Store) UpdateMeal(ctx context.Context, userID, id string, patch model.MealPatch) error {
	const op = "update meal"
	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)
	if patch.FoodName != nil {
		sets = append(sets, "food_name = ?")
		args = append(args, *patch.FoodName)
	}
	if patch.Calories != nil {
		sets = append(sets, "calories = ?")
		args = append(args, *patch.Calories)
	}
	if patch.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, nullString(*patch.Notes))
	}
	if len(sets) == 0 {
		return apperr.Invalid(op, "nothing to update")
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, userID, id)

	res, err := s.db.ExecContext(ctx, `UPDATE meals SET `+strings.Join(sets, ", ")+` WHERE user_id = ? AND id = ?`, args...)
	if err != nil {
		return apperr.Unavailable(op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperr.Unavailable(op, fmt.Errorf("read rows affected for meal %s: %w", id, err))
	}
	if affected == 0 {
		return apperr.Missing(op, "meal %s not found", id)
	}
	return nil
}

var tables = map[store.Entity]string{
	store.Meals:     "meals",
	store.WaterLogs: "water_logs",
	store.Habits:    "habits",
	store.HabitLogs: "habit_logs",
}

func (s *Store) Delete(ctx context.Context, entity store.Entity, userID, id string) error {
	op := "delete " + string(entity)
	table, ok := tables[entity]
	if !ok {
		return apperr.Invalid(op, "unknown entity %q", entity)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return apperr.Unavailable(op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperr.Unavailable(op, fmt.Errorf("read rows affected for %s: %w", id, err))
	}
	if affected == 0 {
		return apperr.Missing(op, "%s %s not found", entity, id)
	}
	return nil
}

func (s *Store) GetSetting(ctx context.Context, userID, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM app_config WHERE user_id = ? AND key = ?`, userID, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, apperr.Unavailable("get setting "+key, err)
	}
	return value, true, nil
}

func (s *Store) SetSetting(ctx context.Context, userID, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO app_config(user_id, key, value, updated_at)
VALUES(?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(user_id, key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at
`, userID, key, value)
	return apperr.Unavailable("set setting "+key, err)
}

func (s *Store) ListSettings(ctx context.Context, userID string) (map[string]string, error) {
	const op = "list settings"
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM app_config WHERE user_id = ? ORDER BY key ASC`, userID)
	if err != nil {
		return nil, apperr.Unavailable(op, err)
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, apperr.Unavailable(op, fmt.Errorf("scan setting: %w", err))
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Unavailable(op, fmt.Errorf("iterate settings: %w", err))
	}
	return out, nil
}

func nullString(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}

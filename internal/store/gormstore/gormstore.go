// Package gormstore is the hosted PostgreSQL record store, built on GORM.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/saadjs/tally/internal/apperr"
	"github.com/saadjs/tally/internal/model"
	"github.com/saadjs/tally/internal/store"
)

type mealRow struct {
	ID         string    `gorm:"primaryKey;size:36"`
	UserID     string    `gorm:"size:128;not null;index:idx_meals_user_created,priority:1"`
	FoodName   string    `gorm:"not null"`
	Calories   *int      `gorm:"check:calories IS NULL OR calories >= 0"`
	MealType   string    `gorm:"size:16;not null"`
	CreatedAt  time.Time `gorm:"not null;index:idx_meals_user_created,priority:2"`
	Notes      string
	ImageRef   string
	Confidence *float64
	UpdatedAt  time.Time
}

func (mealRow) TableName() string { return "meals" }

type waterLogRow struct {
	ID       string    `gorm:"primaryKey;size:36"`
	UserID   string    `gorm:"size:128;not null;index:idx_water_logs_user_logged,priority:1"`
	Glasses  int       `gorm:"not null;check:glasses >= 1"`
	LoggedAt time.Time `gorm:"not null;index:idx_water_logs_user_logged,priority:2"`
}

func (waterLogRow) TableName() string { return "water_logs" }

type habitRow struct {
	ID          string `gorm:"primaryKey;size:36"`
	UserID      string `gorm:"size:128;not null;index"`
	Name        string `gorm:"not null"`
	Emoji       string
	TargetCount int       `gorm:"not null;check:target_count >= 1"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (habitRow) TableName() string { return "habits" }

type habitLogRow struct {
	ID          string    `gorm:"primaryKey;size:36"`
	UserID      string    `gorm:"size:128;not null;index:idx_habit_logs_user_completed,priority:1"`
	HabitID     string    `gorm:"size:36;not null;index"`
	CompletedAt time.Time `gorm:"not null;index:idx_habit_logs_user_completed,priority:2"`
	Count       int       `gorm:"not null;check:count >= 1"`
}

func (habitLogRow) TableName() string { return "habit_logs" }

type settingRow struct {
	UserID    string `gorm:"primaryKey;size:128"`
	Key       string `gorm:"primaryKey;size:64"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

func (settingRow) TableName() string { return "app_config" }

type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

// Open connects to PostgreSQL and migrates the record tables.
func Open(dsn string) (*Store, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, apperr.Unavailable("connect postgres", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := gdb.AutoMigrate(&mealRow{}, &waterLogRow{}, &habitRow{}, &habitLogRow{}, &settingRow{}); err != nil {
		return nil, fmt.Errorf("migrate postgres schema: %w", err)
	}
	return New(gdb), nil
}

// New wraps an existing connection without migrating.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func scoped(tx *gorm.DB, column string, f store.Filter) *gorm.DB {
	tx = tx.Where("user_id = ?", f.UserID)
	if !f.From.IsZero() {
		tx = tx.Where(column+" >= ?", f.From.UTC())
	}
	if !f.To.IsZero() {
		tx = tx.Where(column+" < ?", f.To.UTC())
	}
	if f.HabitID != "" {
		tx = tx.Where("habit_id = ?", f.HabitID)
	}
	if f.Order == store.Descending {
		tx = tx.Order(column + " DESC").Order("id DESC")
	} else {
		tx = tx.Order(column + " ASC").Order("id ASC")
	}
	if f.Limit > 0 {
		tx = tx.Limit(f.Limit)
	}
	return tx
}

func (s *Store) ListMeals(ctx context.Context, f store.Filter) ([]model.Meal, error) {
	const op = "list meals"
	if err := f.Validate(op); err != nil {
		return nil, err
	}
	var rows []mealRow
	if err := scoped(s.db.WithContext(ctx), "created_at", f).Find(&rows).Error; err != nil {
		return nil, apperr.Unavailable(op, err)
	}
	out := make([]model.Meal, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (s *Store) ListWaterLogs(ctx context.Context, f store.Filter) ([]model.WaterLog, error) {
	const op = "list water logs"
	if err := f.Validate(op); err != nil {
		return nil, err
	}
	var rows []waterLogRow
	if err := scoped(s.db.WithContext(ctx), "logged_at", f).Find(&rows).Error; err != nil {
		return nil, apperr.Unavailable(op, err)
	}
	out := make([]model.WaterLog, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.WaterLog{ID: r.ID, UserID: r.UserID, Glasses: r.Glasses, LoggedAt: r.LoggedAt})
	}
	return out, nil
}

func (s *Store) ListHabits(ctx context.Context, f store.Filter) ([]model.Habit, error) {
	const op = "list habits"
	if err := f.Validate(op); err != nil {
		return nil, err
	}
	f.HabitID = ""
	var rows []habitRow
	if err := scoped(s.db.WithContext(ctx), "created_at", f).Find(&rows).Error; err != nil {
		return nil, apperr.Unavailable(op, err)
	}
	out := make([]model.Habit, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.Habit{ID: r.ID, UserID: r.UserID, Name: r.Name, Emoji: r.Emoji, TargetCount: r.TargetCount, CreatedAt: r.CreatedAt})
	}
	return out, nil
}

func (s *Store) ListHabitLogs(ctx context.Context, f store.Filter) ([]model.HabitLog, error) {
	const op = "list habit logs"
	if err := f.Validate(op); err != nil {
		return nil, err
	}
	var rows []habitLogRow
	if err := scoped(s.db.WithContext(ctx), "completed_at", f).Find(&rows).Error; err != nil {
		return nil, apperr.Unavailable(op, err)
	}
	out := make([]model.HabitLog, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.HabitLog{ID: r.ID, UserID: r.UserID, HabitID: r.HabitID, CompletedAt: r.CompletedAt, Count: r.Count})
	}
	return out, nil
}

func (s *Store) GetMeal(ctx context.Context, userID, id string) (model.Meal, error) {
	const op = "get meal"
	var row mealRow
	err := s.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Meal{}, apperr.Missing(op, "meal %s not found", id)
	}
	if err != nil {
		return model.Meal{}, apperr.Unavailable(op, err)
	}
	return row.toModel(), nil
}

func (s *Store) InsertMeal(ctx context.Context, m model.Meal) error {
	calories := m.Calories
	row := mealRow{
		ID:         m.ID,
		UserID:     m.UserID,
		FoodName:   m.FoodName,
		Calories:   &calories,
		MealType:   string(m.MealType),
		CreatedAt:  m.CreatedAt.UTC(),
		Notes:      m.Notes,
		ImageRef:   m.ImageRef,
		Confidence: m.Confidence,
	}
	return apperr.Unavailable("insert meal", s.db.WithContext(ctx).Create(&row).Error)
}

func (s *Store) InsertWaterLog(ctx context.Context, w model.WaterLog) error {
	row := waterLogRow{ID: w.ID, UserID: w.UserID, Glasses: w.Glasses, LoggedAt: w.LoggedAt.UTC()}
	return apperr.Unavailable("insert water log", s.db.WithContext(ctx).Create(&row).Error)
}

func (s *Store) InsertHabit(ctx context.Context, h model.Habit) error {
	row := habitRow{ID: h.ID, UserID: h.UserID, Name: h.Name, Emoji: h.Emoji, TargetCount: h.TargetCount, CreatedAt: h.CreatedAt.UTC()}
	return apperr.Unavailable("insert habit", s.db.WithContext(ctx).Create(&row).Error)
}

func (s *Store) InsertHabitLog(ctx context.Context, l model.HabitLog) error {
	row := habitLogRow{ID: l.ID, UserID: l.UserID, HabitID: l.HabitID, CompletedAt: l.CompletedAt.UTC(), Count: l.Count}
	return apperr.Unavailable("insert habit log", s.db.WithContext(ctx).Create(&row).Error)
}

func (s *Store) UpdateMeal(ctx context.Context, userID, id string, patch model.MealPatch) error {
	const op = "update meal"
	updates := map[string]any{}
	if patch.FoodName != nil {
		updates["food_name"] = *patch.FoodName
	}
	if patch.Calories != nil {
		updates["calories"] = *patch.Calories
	}
	if patch.Notes != nil {
		updates["notes"] = *patch.Notes
	}
	if len(updates) == 0 {
		return apperr.Invalid(op, "nothing to update")
	}
	res := s.db.WithContext(ctx).Model(&mealRow{}).Where("user_id = ? AND id = ?", userID, id).Updates(updates)
	if res.Error != nil {
		return apperr.Unavailable(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Missing(op, "meal %s not found", id)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, entity store.Entity, userID, id string) error {
	op := "delete " + string(entity)
	var target any
	switch entity {
	case store.Meals:
		target = &mealRow{}
	case store.WaterLogs:
		target = &waterLogRow{}
	case store.Habits:
		target = &habitRow{}
	case store.HabitLogs:
		target = &habitLogRow{}
	default:
		return apperr.Invalid(op, "unknown entity %q", entity)
	}

	var affected int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		affected, err = deleteScoped(tx, entity, target, userID, id)
		if err != nil {
			return err
		}
		if affected == 0 {
			return errNothingDeleted
		}
		return nil
	})
	if affected == 0 && (err == nil || errors.Is(err, errNothingDeleted)) {
		return apperr.Missing(op, "%s %s not found", entity, id)
	}
	if err != nil {
		return apperr.Unavailable(op, err)
	}
	return nil
}

// errNothingDeleted rolls back a delete that matched no row.
var errNothingDeleted = errors.New("no row matched")

// deleteScoped removes one record owned by userID. Deleting a habit also
// removes its logs; the caller runs both statements in one transaction.
func deleteScoped(tx *gorm.DB, entity store.Entity, target any, userID, id string) (int64, error) {
	res := tx.Where("user_id = ? AND id = ?", userID, id).Delete(target)
	if res.Error != nil {
		return 0, res.Error
	}
	if entity == store.Habits {
		if err := tx.Where("user_id = ? AND habit_id = ?", userID, id).Delete(&habitLogRow{}).Error; err != nil {
			return 0, err
		}
	}
	return res.RowsAffected, nil
}

func (s *Store) GetSetting(ctx context.Context, userID, key string) (string, bool, error) {
	var row settingRow
	err := s.db.WithContext(ctx).Where("user_id = ? AND key = ?", userID, key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, apperr.Unavailable("get setting "+key, err)
	}
	return row.Value, true, nil
}

func (s *Store) SetSetting(ctx context.Context, userID, key, value string) error {
	row := settingRow{UserID: userID, Key: key, Value: value}
	return apperr.Unavailable("set setting "+key, upsertSetting(s.db.WithContext(ctx), &row).Error)
}

// upsertSetting writes row, replacing the value already stored for its key.
func upsertSetting(tx *gorm.DB, row *settingRow) *gorm.DB {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(row)
}

func (s *Store) ListSettings(ctx context.Context, userID string) (map[string]string, error) {
	var rows []settingRow
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("key ASC").Find(&rows).Error; err != nil {
		return nil, apperr.Unavailable("list settings", err)
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Value
	}
	return out, nil
}

func (r mealRow) toModel() model.Meal {
	m := model.Meal{
		ID:         r.ID,
		UserID:     r.UserID,
		FoodName:   r.FoodName,
		MealType:   model.MealType(r.MealType),
		CreatedAt:  r.CreatedAt,
		Notes:      r.Notes,
		ImageRef:   r.ImageRef,
		Confidence: r.Confidence,
	}
	if r.Calories != nil {
		m.Calories = *r.Calories
	}
	return m
}

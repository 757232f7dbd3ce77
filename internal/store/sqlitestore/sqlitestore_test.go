package sqlitestore_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/saadjs/tally/internal/apperr"
	"github.com/saadjs/tally/internal/db"
	"github.com/saadjs/tally/internal/model"
	"github.com/saadjs/tally/internal/store"
	"github.com/saadjs/tally/internal/store/sqlitestore"
)

func newTestStore(t *testing.T) *sqlitestore.Store {
	t.Helper()
	sqldb, err := db.Open(filepath.Join(t.TempDir(), "tally.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	s := sqlitestore.New(sqldb)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestMealCRUDScopedToUser(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	at := time.Date(2024, 1, 10, 12, 30, 0, 0, time.UTC)
	if err := s.InsertMeal(ctx, model.Meal{ID: "m1", UserID: "alice", FoodName: "Salad", Calories: 320, MealType: model.MealLunch, CreatedAt: at}); err != nil {
		t.Fatalf("insert meal: %v", err)
	}
	if err := s.InsertMeal(ctx, model.Meal{ID: "m2", UserID: "bob", FoodName: "Burger", Calories: 800, MealType: model.MealDinner, CreatedAt: at}); err != nil {
		t.Fatalf("insert meal: %v", err)
	}

	meals, err := s.ListMeals(ctx, store.Filter{UserID: "alice"})
	if err != nil {
		t.Fatalf("list meals: %v", err)
	}
	if len(meals) != 1 || meals[0].ID != "m1" || !meals[0].CreatedAt.Equal(at) {
		t.Fatalf("unexpected meals: %+v", meals)
	}

	name := "Greek salad"
	calories := 350
	if err := s.UpdateMeal(ctx, "alice", "m1", model.MealPatch{FoodName: &name, Calories: &calories}); err != nil {
		t.Fatalf("update meal: %v", err)
	}
	got, err := s.GetMeal(ctx, "alice", "m1")
	if err != nil {
		t.Fatalf("get meal: %v", err)
	}
	if got.FoodName != name || got.Calories != calories || got.MealType != model.MealLunch {
		t.Fatalf("unexpected updated meal: %+v", got)
	}

	if err := s.UpdateMeal(ctx, "bob", "m1", model.MealPatch{FoodName: &name}); !apperr.IsKind(err, apperr.NotFound) {
		t.Fatalf("expected not found updating another user's meal, got %v", err)
	}
	if err := s.Delete(ctx, store.Meals, "bob", "m1"); !apperr.IsKind(err, apperr.NotFound) {
		t.Fatalf("expected not found deleting another user's meal, got %v", err)
	}
	if err := s.Delete(ctx, store.Meals, "alice", "m1"); err != nil {
		t.Fatalf("delete meal: %v", err)
	}
	if _, err := s.GetMeal(ctx, "alice", "m1"); !apperr.IsKind(err, apperr.NotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestListRangeOrderAndLimit(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	for i, offset := range []time.Duration{-time.Second, 0, 6 * time.Hour, 24 * time.Hour} {
		w := model.WaterLog{ID: string(rune('a' + i)), UserID: "u", Glasses: i + 1, LoggedAt: base.Add(offset)}
		if err := s.InsertWaterLog(ctx, w); err != nil {
			t.Fatalf("insert water log %d: %v", i, err)
		}
	}

	logs, err := s.ListWaterLogs(ctx, store.Filter{UserID: "u", From: base, To: base.Add(24 * time.Hour)})
	if err != nil {
		t.Fatalf("list water logs: %v", err)
	}
	if len(logs) != 2 || logs[0].ID != "b" || logs[1].ID != "c" {
		t.Fatalf("expected b,c inside the day, got %+v", logs)
	}

	logs, err = s.ListWaterLogs(ctx, store.Filter{UserID: "u", Order: store.Descending, Limit: 1})
	if err != nil {
		t.Fatalf("list latest water log: %v", err)
	}
	if len(logs) != 1 || logs[0].ID != "d" {
		t.Fatalf("expected latest log d, got %+v", logs)
	}
}

func TestSubSecondTimestampsOrderCorrectly(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	if err := s.InsertWaterLog(ctx, model.WaterLog{ID: "late", UserID: "u", Glasses: 1, LoggedAt: base.Add(500 * time.Millisecond)}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.InsertWaterLog(ctx, model.WaterLog{ID: "early", UserID: "u", Glasses: 1, LoggedAt: base}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	logs, err := s.ListWaterLogs(ctx, store.Filter{UserID: "u", From: base, To: base.Add(time.Second)})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(logs) != 2 || logs[0].ID != "early" || logs[1].ID != "late" {
		t.Fatalf("expected early then late, got %+v", logs)
	}
}

func TestHabitLogsFilterByHabitAndCascade(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	for _, id := range []string{"h1", "h2"} {
		if err := s.InsertHabit(ctx, model.Habit{ID: id, UserID: "u", Name: id, Emoji: "✨", TargetCount: 1, CreatedAt: at}); err != nil {
			t.Fatalf("insert habit %s: %v", id, err)
		}
	}
	for i, habitID := range []string{"h1", "h1", "h2"} {
		l := model.HabitLog{ID: string(rune('x' + i)), UserID: "u", HabitID: habitID, CompletedAt: at.Add(time.Duration(i) * time.Hour), Count: 1}
		if err := s.InsertHabitLog(ctx, l); err != nil {
			t.Fatalf("insert habit log: %v", err)
		}
	}

	logs, err := s.ListHabitLogs(ctx, store.Filter{UserID: "u", HabitID: "h1"})
	if err != nil {
		t.Fatalf("list habit logs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 logs for h1, got %d", len(logs))
	}

	if err := s.Delete(ctx, store.Habits, "u", "h1"); err != nil {
		t.Fatalf("delete habit: %v", err)
	}
	logs, err = s.ListHabitLogs(ctx, store.Filter{UserID: "u"})
	if err != nil {
		t.Fatalf("list habit logs after delete: %v", err)
	}
	if len(logs) != 1 || logs[0].HabitID != "h2" {
		t.Fatalf("expected only h2 log to remain, got %+v", logs)
	}
}

func TestListRequiresUser(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	if _, err := s.ListMeals(context.Background(), store.Filter{}); !apperr.IsKind(err, apperr.InvalidRecord) {
		t.Fatalf("expected invalid record for missing user, got %v", err)
	}
}

func TestSettingsUpsert(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	if _, ok, err := s.GetSetting(ctx, "u", "daily_calorie_goal"); err != nil || ok {
		t.Fatalf("expected unset setting, ok=%v err=%v", ok, err)
	}
	if err := s.SetSetting(ctx, "u", "daily_calorie_goal", "1800"); err != nil {
		t.Fatalf("set setting: %v", err)
	}
	if err := s.SetSetting(ctx, "u", "daily_calorie_goal", "2100"); err != nil {
		t.Fatalf("overwrite setting: %v", err)
	}
	v, ok, err := s.GetSetting(ctx, "u", "daily_calorie_goal")
	if err != nil || !ok || v != "2100" {
		t.Fatalf("expected 2100, got %q ok=%v err=%v", v, ok, err)
	}
	all, err := s.ListSettings(ctx, "other")
	if err != nil {
		t.Fatalf("list settings: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected settings scoped to user, got %+v", all)
	}
}

func TestMalformedTimestampIsInvalidRecord(t *testing.T) {
	t.Parallel()
	sqldb, err := db.Open(filepath.Join(t.TempDir(), "tally.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	s := sqlitestore.New(sqldb)
	defer s.Close()

	if _, err := sqldb.Exec(`INSERT INTO meals(id, user_id, food_name, calories, meal_type, created_at) VALUES('m1', 'u', 'toast', NULL, 'breakfast', 'yesterday')`); err != nil {
		t.Fatalf("seed raw meal: %v", err)
	}
	if _, err := s.ListMeals(context.Background(), store.Filter{UserID: "u"}); !apperr.IsKind(err, apperr.InvalidRecord) {
		t.Fatalf("expected invalid record, got %v", err)
	}
}

func TestMissingCaloriesReadAsZero(t *testing.T) {
	t.Parallel()
	sqldb, err := db.Open(filepath.Join(t.TempDir(), "tally.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	s := sqlitestore.New(sqldb)
	defer s.Close()

	if _, err := sqldb.Exec(`INSERT INTO meals(id, user_id, food_name, calories, meal_type, created_at) VALUES('m1', 'u', 'tea', NULL, 'snack', '2024-01-10T08:00:00.000000000Z')`); err != nil {
		t.Fatalf("seed raw meal: %v", err)
	}
	meals, err := s.ListMeals(context.Background(), store.Filter{UserID: "u"})
	if err != nil {
		t.Fatalf("list meals: %v", err)
	}
	if len(meals) != 1 || meals[0].Calories != 0 {
		t.Fatalf("expected one meal with zero calories, got %+v", meals)
	}
}

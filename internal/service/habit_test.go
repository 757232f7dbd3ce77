package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/saadjs/tally/internal/apperr"
	"github.com/saadjs/tally/internal/service"
)

func TestCreateHabitDefaults(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	h, err := svc.CreateHabit(ctx, service.CreateHabitInput{UserID: "u1", Name: " Stretch "})
	if err != nil {
		t.Fatalf("create habit: %v", err)
	}
	if h.Name != "Stretch" || h.TargetCount != 1 || h.Emoji == "" {
		t.Fatalf("unexpected habit: %+v", h)
	}
	if _, err := svc.CreateHabit(ctx, service.CreateHabitInput{UserID: "u1", Name: "Run", TargetCount: -3}); !apperr.IsKind(err, apperr.InvalidRecord) {
		t.Fatalf("expected negative target to fail, got %v", err)
	}
}

func TestQuickAddHabitUsesPreset(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	h, err := svc.QuickAddHabit(ctx, "u1", "drink water")
	if err != nil {
		t.Fatalf("quick add: %v", err)
	}
	if h.Name != "Drink Water" || h.Emoji != "💧" || h.TargetCount != 8 {
		t.Fatalf("unexpected preset habit: %+v", h)
	}
	if _, err := svc.QuickAddHabit(ctx, "u1", "juggle"); !apperr.IsKind(err, apperr.NotFound) {
		t.Fatalf("expected unknown preset to be not found, got %v", err)
	}

	habits, err := svc.ListHabits(ctx, "u1")
	if err != nil {
		t.Fatalf("list habits: %v", err)
	}
	if len(habits) != 1 {
		t.Fatalf("expected one habit, got %+v", habits)
	}
}

func TestLogHabitRequiresOwnHabit(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	h, err := svc.CreateHabit(ctx, service.CreateHabitInput{UserID: "u1", Name: "Read"})
	if err != nil {
		t.Fatalf("create habit: %v", err)
	}
	if _, err := svc.LogHabit(ctx, "u2", h.ID, 1, time.Time{}); !apperr.IsKind(err, apperr.NotFound) {
		t.Fatalf("expected other user log to fail, got %v", err)
	}
	l, err := svc.LogHabit(ctx, "u1", h.ID, 0, time.Time{})
	if err != nil {
		t.Fatalf("log habit: %v", err)
	}
	if l.Count != 1 || l.HabitID != h.ID || !l.CompletedAt.Equal(testNow) {
		t.Fatalf("unexpected habit log: %+v", l)
	}
}

func TestHabitStatusSortsByCurrentStreak(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	read, err := svc.CreateHabit(ctx, service.CreateHabitInput{UserID: "u1", Name: "Read"})
	if err != nil {
		t.Fatalf("create read: %v", err)
	}
	run, err := svc.CreateHabit(ctx, service.CreateHabitInput{UserID: "u1", Name: "Run"})
	if err != nil {
		t.Fatalf("create run: %v", err)
	}
	if _, err := svc.LogHabit(ctx, "u1", read.ID, 1, daysAgo(0, 7)); err != nil {
		t.Fatalf("log read: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := svc.LogHabit(ctx, "u1", run.ID, 1, daysAgo(i, 6)); err != nil {
			t.Fatalf("log run %d: %v", i, err)
		}
	}

	status, err := svc.HabitStatus(ctx, "u1", time.Time{}, 0)
	if err != nil {
		t.Fatalf("habit status: %v", err)
	}
	if len(status) != 2 || status[0].Name != "Run" || status[0].Current != 3 || status[1].Current != 1 {
		t.Fatalf("unexpected habit status: %+v", status)
	}
	if !status[1].DoneToday() {
		t.Fatalf("expected read to be done today: %+v", status[1])
	}

	if err := svc.DeleteHabit(ctx, "u1", run.ID); err != nil {
		t.Fatalf("delete habit: %v", err)
	}
	status, err = svc.HabitStatus(ctx, "u1", time.Time{}, 0)
	if err != nil {
		t.Fatalf("habit status after delete: %v", err)
	}
	if len(status) != 1 || status[0].HabitID != read.ID {
		t.Fatalf("unexpected habit status after delete: %+v", status)
	}
}

func TestHabitStatusRejectsNegativeLookback(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateHabit(ctx, service.CreateHabitInput{UserID: "u1", Name: "Read"}); err != nil {
		t.Fatalf("create habit: %v", err)
	}
	if _, err := svc.HabitStatus(ctx, "u1", time.Time{}, -1); !apperr.IsKind(err, apperr.InvalidRecord) {
		t.Fatalf("expected invalid record for negative lookback, got %v", err)
	}
	status, err := svc.HabitStatus(ctx, "u1", time.Time{}, 0)
	if err != nil {
		t.Fatalf("habit status with default lookback: %v", err)
	}
	if len(status) != 1 {
		t.Fatalf("expected one habit, got %+v", status)
	}
}

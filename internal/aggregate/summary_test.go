package aggregate_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/saadjs/tally/internal/aggregate"
	"github.com/saadjs/tally/internal/apperr"
	"github.com/saadjs/tally/internal/model"
)

func mustWindow(t *testing.T, end time.Time, days int) aggregate.Window {
	t.Helper()
	w, err := aggregate.NewWindow(end, days, time.UTC)
	if err != nil {
		t.Fatalf("new window: %v", err)
	}
	return w
}

func TestSummarizeCoversContiguousWindow(t *testing.T) {
	t.Parallel()
	end := time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC)
	for _, days := range []int{1, 7, 30} {
		w := mustWindow(t, end, days)
		got := aggregate.Summarize(aggregate.Buckets(w, nil, nil, nil))
		if len(got) != days {
			t.Fatalf("window %d: expected %d summaries, got %d", days, days, len(got))
		}
		if got[len(got)-1].Date != "2024-03-02" {
			t.Fatalf("window %d: expected last day 2024-03-02, got %s", days, got[len(got)-1].Date)
		}
		for i := 1; i < len(got); i++ {
			prev, _ := time.Parse("2006-01-02", got[i-1].Date)
			cur, _ := time.Parse("2006-01-02", got[i].Date)
			if cur.Sub(prev) != 24*time.Hour {
				t.Fatalf("window %d: days %s and %s are not contiguous", days, got[i-1].Date, got[i].Date)
			}
		}
	}
}

func TestWindowCrossesLeapDay(t *testing.T) {
	t.Parallel()
	w := mustWindow(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 3)
	got := aggregate.Summarize(aggregate.Buckets(w, nil, nil, nil))
	want := []string{"2024-02-28", "2024-02-29", "2024-03-01"}
	for i := range want {
		if got[i].Date != want[i] {
			t.Fatalf("expected %v, got %+v", want, got)
		}
	}
}

func TestNewWindowRejectsNonPositiveSize(t *testing.T) {
	t.Parallel()
	if _, err := aggregate.NewWindow(time.Now(), 0, time.UTC); !apperr.IsKind(err, apperr.InvalidRecord) {
		t.Fatalf("expected invalid record for zero-day window, got %v", err)
	}
}

func TestBucketByDayBoundary(t *testing.T) {
	t.Parallel()
	w := mustWindow(t, time.Date(2024, 1, 11, 12, 0, 0, 0, time.UTC), 2)
	stamps := []time.Time{
		time.Date(2024, 1, 10, 23, 59, 59, 0, time.UTC),
		time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 9, 23, 59, 59, 0, time.UTC),
		time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC),
	}
	buckets := aggregate.BucketByDay(stamps, func(t time.Time) time.Time { return t }, w)
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(buckets))
	}
	if len(buckets[0]) != 1 || !buckets[0][0].Equal(stamps[0]) {
		t.Fatalf("expected 23:59:59 in 2024-01-10 bucket, got %v", buckets[0])
	}
	if len(buckets[1]) != 1 || !buckets[1][0].Equal(stamps[1]) {
		t.Fatalf("expected midnight in 2024-01-11 bucket, got %v", buckets[1])
	}
}

func TestBucketByDayUsesWindowLocation(t *testing.T) {
	t.Parallel()
	loc := time.FixedZone("UTC-5", -5*3600)
	w, err := aggregate.NewWindow(time.Date(2024, 1, 10, 12, 0, 0, 0, loc), 2, loc)
	if err != nil {
		t.Fatalf("new window: %v", err)
	}
	// 03:00 UTC on the 10th is 22:00 on the 9th in UTC-5.
	stamps := []time.Time{time.Date(2024, 1, 10, 3, 0, 0, 0, time.UTC)}
	buckets := aggregate.BucketByDay(stamps, func(t time.Time) time.Time { return t }, w)
	if len(buckets[0]) != 1 || len(buckets[1]) != 0 {
		t.Fatalf("expected record in first (2024-01-09) bucket, got %v", buckets)
	}
}

func TestBucketByDayEmptyInput(t *testing.T) {
	t.Parallel()
	w := mustWindow(t, time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC), 7)
	buckets := aggregate.BucketByDay([]time.Time(nil), func(t time.Time) time.Time { return t }, w)
	if len(buckets) != 7 {
		t.Fatalf("expected 7 buckets, got %d", len(buckets))
	}
	for i, b := range buckets {
		if b == nil || len(b) != 0 {
			t.Fatalf("bucket %d: expected empty non-nil bucket, got %v", i, b)
		}
	}
}

func TestSummarizeTotalsAndMissingCalories(t *testing.T) {
	t.Parallel()
	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	w := mustWindow(t, day, 1)
	meals := []model.Meal{
		{ID: "a", Calories: 300, CreatedAt: day.Add(8 * time.Hour)},
		{ID: "b", CreatedAt: day.Add(13 * time.Hour)},
	}
	water := []model.WaterLog{
		{ID: "w1", Glasses: 1, LoggedAt: day.Add(9 * time.Hour)},
		{ID: "w2", Glasses: 2, LoggedAt: day.Add(15 * time.Hour)},
	}
	logs := []model.HabitLog{{ID: "l1", HabitID: "h", Count: 1, CompletedAt: day.Add(7 * time.Hour)}}

	got := aggregate.Summarize(aggregate.Buckets(w, meals, water, logs))
	want := []aggregate.DailySummary{{Date: "2024-01-10", TotalCalories: 300, TotalWater: 3, MealCount: 2, HabitCount: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestSummarizeIdempotent(t *testing.T) {
	t.Parallel()
	end := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	w := mustWindow(t, end, 7)
	meals := []model.Meal{
		{ID: "a", Calories: 500, CreatedAt: end.AddDate(0, 0, -3)},
		{ID: "b", Calories: 250, CreatedAt: end},
	}
	first := aggregate.Summarize(aggregate.Buckets(w, meals, nil, nil))
	second := aggregate.Summarize(aggregate.Buckets(w, meals, nil, nil))
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical summaries, got %+v and %+v", first, second)
	}
}

func TestAverageDividesByWindowLength(t *testing.T) {
	t.Parallel()
	zero := make([]aggregate.DailySummary, 7)
	if got := aggregate.Average(zero, aggregate.Calories); got != 0 {
		t.Fatalf("expected 0 average for all-zero window, got %v", got)
	}
	if got := aggregate.Average(nil, aggregate.Water); got != 0 {
		t.Fatalf("expected 0 average for empty window, got %v", got)
	}

	days := make([]aggregate.DailySummary, 7)
	days[6].TotalCalories = 1400
	days[6].TotalWater = 7
	if got := aggregate.Average(days, aggregate.Calories); got != 200 {
		t.Fatalf("expected 1400/7 = 200, got %v", got)
	}
	if got := aggregate.Average(days, aggregate.Water); got != 1 {
		t.Fatalf("expected 7/7 = 1, got %v", got)
	}
}

func mealCounts(counts ...int) []aggregate.DailySummary {
	out := make([]aggregate.DailySummary, len(counts))
	for i, c := range counts {
		out[i].MealCount = c
	}
	return out
}

func TestStreakBreaksAtFirstInactiveDay(t *testing.T) {
	t.Parallel()
	days := mealCounts(0, 1, 1, 0, 1, 1, 1)
	if got := aggregate.Streak(days, aggregate.MealLogged); got != 3 {
		t.Fatalf("expected streak 3, got %d", got)
	}
	if got := aggregate.LongestStreak(days, aggregate.MealLogged); got != 3 {
		t.Fatalf("expected longest streak 3, got %d", got)
	}
}

func TestStreakZeroWhenTodayInactive(t *testing.T) {
	t.Parallel()
	days := mealCounts(1, 1, 1, 1, 1, 1, 0)
	if got := aggregate.Streak(days, aggregate.MealLogged); got != 0 {
		t.Fatalf("expected streak 0, got %d", got)
	}
	if got := aggregate.LongestStreak(days, aggregate.MealLogged); got != 6 {
		t.Fatalf("expected longest streak 6, got %d", got)
	}
}

func TestStreakBoundedByWindow(t *testing.T) {
	t.Parallel()
	days := mealCounts(1, 1, 1, 1, 1)
	if got := aggregate.Streak(days, aggregate.MealLogged); got != 5 {
		t.Fatalf("expected streak capped at window size 5, got %d", got)
	}
	if got := aggregate.Streak(nil, aggregate.MealLogged); got != 0 {
		t.Fatalf("expected 0 for empty window, got %d", got)
	}
}

func TestHabitCompletedPredicate(t *testing.T) {
	t.Parallel()
	days := []aggregate.DailySummary{{HabitCount: 0}, {HabitCount: 2}, {HabitCount: 1}}
	stat := aggregate.Streaks(days, aggregate.HabitCompleted)
	if stat.Current != 2 || stat.Longest != 2 {
		t.Fatalf("expected current=2 longest=2, got %+v", stat)
	}
}

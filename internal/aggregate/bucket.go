package aggregate

import (
	"time"

	"github.com/saadjs/tally/internal/apperr"
	"github.com/saadjs/tally/internal/model"
)

const dateLayout = "2006-01-02"

// Window is a run of whole calendar days ending on the day containing End.
type Window struct {
	End  time.Time
	Days int
	Loc  *time.Location
}

func NewWindow(end time.Time, days int, loc *time.Location) (Window, error) {
	if days <= 0 {
		return Window{}, apperr.Invalid("window", "window size must be > 0, got %d", days)
	}
	if loc == nil {
		loc = time.Local
	}
	return Window{End: end, Days: days, Loc: loc}, nil
}

// Start is midnight of the first day in the window.
func (w Window) Start() time.Time {
	y, m, d := w.End.In(w.Loc).Date()
	return time.Date(y, m, d-(w.Days-1), 0, 0, 0, 0, w.Loc)
}

// Limit is midnight after the last day; the window is [Start, Limit).
func (w Window) Limit() time.Time {
	y, m, d := w.End.In(w.Loc).Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, w.Loc)
}

// Dates lists the window's days in ascending order.
func (w Window) Dates() []time.Time {
	y, m, d := w.Start().Date()
	out := make([]time.Time, 0, w.Days)
	for i := 0; i < w.Days; i++ {
		out = append(out, time.Date(y, m, d+i, 0, 0, 0, 0, w.Loc))
	}
	return out
}

func (w Window) dayKey(t time.Time) string {
	return t.In(w.Loc).Format(dateLayout)
}

// BucketByDay partitions records into one slice per window day. Records
// outside the window are dropped; empty days get an empty, non-nil slice.
func BucketByDay[T any](records []T, at func(T) time.Time, w Window) [][]T {
	dates := w.Dates()
	index := make(map[string]int, len(dates))
	out := make([][]T, len(dates))
	for i, d := range dates {
		index[d.Format(dateLayout)] = i
		out[i] = []T{}
	}
	for _, r := range records {
		if i, ok := index[w.dayKey(at(r))]; ok {
			out[i] = append(out[i], r)
		}
	}
	return out
}

// Bucket holds every record kind that fell on one calendar day.
type Bucket struct {
	Date      time.Time
	Meals     []model.Meal
	Water     []model.WaterLog
	HabitLogs []model.HabitLog
}

func Buckets(w Window, meals []model.Meal, water []model.WaterLog, habitLogs []model.HabitLog) []Bucket {
	dates := w.Dates()
	mealDays := BucketByDay(meals, func(m model.Meal) time.Time { return m.CreatedAt }, w)
	waterDays := BucketByDay(water, func(l model.WaterLog) time.Time { return l.LoggedAt }, w)
	habitDays := BucketByDay(habitLogs, func(l model.HabitLog) time.Time { return l.CompletedAt }, w)

	out := make([]Bucket, len(dates))
	for i, d := range dates {
		out[i] = Bucket{
			Date:      d,
			Meals:     mealDays[i],
			Water:     waterDays[i],
			HabitLogs: habitDays[i],
		}
	}
	return out
}

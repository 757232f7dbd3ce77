package aggregate

type DailySummary struct {
	Date          string `json:"date"`
	TotalCalories int    `json:"total_calories"`
	TotalWater    int    `json:"total_water"`
	MealCount     int    `json:"meal_count"`
	HabitCount    int    `json:"habit_count"`
}

// Summarize totals each bucket. Zero-valued record fields add nothing.
func Summarize(buckets []Bucket) []DailySummary {
	out := make([]DailySummary, 0, len(buckets))
	for _, b := range buckets {
		s := DailySummary{Date: b.Date.Format(dateLayout)}
		for _, m := range b.Meals {
			s.TotalCalories += m.Calories
			s.MealCount++
		}
		for _, w := range b.Water {
			s.TotalWater += w.Glasses
		}
		for _, l := range b.HabitLogs {
			s.HabitCount += l.Count
		}
		out = append(out, s)
	}
	return out
}

// Field selects the summary value Average works on.
type Field func(DailySummary) int

var (
	Calories Field = func(d DailySummary) int { return d.TotalCalories }
	Water    Field = func(d DailySummary) int { return d.TotalWater }
	Meals    Field = func(d DailySummary) int { return d.MealCount }
	Habits   Field = func(d DailySummary) int { return d.HabitCount }
)

// Average is the per-day mean over the whole window, counting empty days.
func Average(days []DailySummary, field Field) float64 {
	if len(days) == 0 {
		return 0
	}
	sum := 0
	for i := range days {
		sum += field(days[i])
	}
	return float64(sum) / float64(len(days))
}

func Total(days []DailySummary, field Field) int {
	sum := 0
	for i := range days {
		sum += field(days[i])
	}
	return sum
}

type Predicate func(DailySummary) bool

var (
	MealLogged     Predicate = func(d DailySummary) bool { return d.MealCount > 0 }
	WaterLogged    Predicate = func(d DailySummary) bool { return d.TotalWater > 0 }
	HabitCompleted Predicate = func(d DailySummary) bool { return d.HabitCount >= 1 }
)

// Streak counts active days walking back from the last day. An inactive
// last day means 0, even if earlier days were active.
func Streak(days []DailySummary, active Predicate) int {
	n := 0
	for i := len(days) - 1; i >= 0; i-- {
		if !active(days[i]) {
			break
		}
		n++
	}
	return n
}

func LongestStreak(days []DailySummary, active Predicate) int {
	run, longest := 0, 0
	for i := range days {
		if active(days[i]) {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	return longest
}

type StreakStat struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

func Streaks(days []DailySummary, active Predicate) StreakStat {
	return StreakStat{
		Current: Streak(days, active),
		Longest: LongestStreak(days, active),
	}
}

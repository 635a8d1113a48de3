package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/models"
)

// WeekdayNames is indexed by time.Weekday (Sunday=0).
var WeekdayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

const (
	trendWindowDays   = 7
	trendMinimumDays  = 2 * trendWindowDays
	highActivityCount = 5
)

// CurrentStreak counts consecutive active days ending at the most recent day.
func CurrentStreak(series []models.DailyContribution) int {
	streak := 0
	for i := len(series) - 1; i >= 0; i-- {
		if series[i].Count <= 0 {
			break
		}
		streak++
	}
	return streak
}

func LongestStreak(series []models.DailyContribution) int {
	longest, current := 0, 0
	for _, day := range series {
		if day.Count > 0 {
			current++
			longest = max(longest, current)
		} else {
			current = 0
		}
	}
	return longest
}

// WeeklyPattern sums contributions per weekday name. The weekday is derived from the
// date itself; days whose date does not parse are skipped.
func WeeklyPattern(series []models.DailyContribution) map[string]int {
	pattern := make(map[string]int, len(WeekdayNames))
	for _, name := range WeekdayNames {
		pattern[name] = 0
	}

	for _, day := range series {
		t, err := time.Parse(time.DateOnly, day.Date)
		if err != nil {
			continue
		}
		pattern[WeekdayNames[t.Weekday()]] += day.Count
	}
	return pattern
}

// MostActiveDay picks the weekday with the highest total; ties go to the earlier day
// in Sunday-first order.
func MostActiveDay(pattern map[string]int) string {
	best, bestCount := "", -1
	for _, name := range WeekdayNames {
		if c, ok := pattern[name]; ok && c > bestCount {
			best, bestCount = name, c
		}
	}
	if best == "" {
		return "Unknown"
	}
	return best
}

type TrendDirection string

const (
	TrendInsufficient TrendDirection = "insufficient data"
	TrendIncreasing   TrendDirection = "increasing"
	TrendDecreasing   TrendDirection = "decreasing"
	TrendStable       TrendDirection = "stable"
)

// Trend compares the last seven days of a series with the seven before them.
type Trend struct {
	Direction TrendDirection
	Recent    int
	Previous  int
}

// Magnitude is the raw count difference for increasing/decreasing trends and the
// recent weekly total for a stable one.
func (t Trend) Magnitude() int {
	switch t.Direction {
	case TrendIncreasing:
		return t.Recent - t.Previous
	case TrendDecreasing:
		return t.Previous - t.Recent
	case TrendStable:
		return t.Recent
	default:
		return 0
	}
}

func (t Trend) String() string {
	switch t.Direction {
	case TrendIncreasing:
		return fmt.Sprintf("increasing (+%d vs previous week)", t.Magnitude())
	case TrendDecreasing:
		return fmt.Sprintf("decreasing (-%d vs previous week)", t.Magnitude())
	case TrendStable:
		return fmt.Sprintf("stable (~%d contributions/week)", t.Magnitude())
	default:
		return string(TrendInsufficient)
	}
}

func AnalyzeTrend(series []models.DailyContribution) Trend {
	n := len(series)
	if n < trendMinimumDays {
		return Trend{Direction: TrendInsufficient}
	}

	recent := sumCounts(series[n-trendWindowDays:])
	previous := sumCounts(series[n-trendMinimumDays : n-trendWindowDays])

	t := Trend{Recent: recent, Previous: previous}
	switch {
	case float64(recent) > float64(previous)*1.2:
		t.Direction = TrendIncreasing
	case float64(recent) < float64(previous)*0.8:
		t.Direction = TrendDecreasing
	default:
		t.Direction = TrendStable
	}
	return t
}

type ActivityLevel string

const (
	LevelNone     ActivityLevel = "none"
	LevelLight    ActivityLevel = "light"
	LevelModerate ActivityLevel = "moderate"
	LevelHigh     ActivityLevel = "high"
	LevelVeryHigh ActivityLevel = "very high"
)

// DailyActivityLevel classifies a single day's contribution count.
func DailyActivityLevel(count int) ActivityLevel {
	switch {
	case count >= 10:
		return LevelVeryHigh
	case count >= 5:
		return LevelHigh
	case count >= 2:
		return LevelModerate
	case count > 0:
		return LevelLight
	default:
		return LevelNone
	}
}

// MonthlyActivityLevel classifies a month's total contribution count.
func MonthlyActivityLevel(total int) ActivityLevel {
	switch {
	case total >= 80:
		return LevelVeryHigh
	case total >= 40:
		return LevelHigh
	case total >= 15:
		return LevelModerate
	case total > 0:
		return LevelLight
	default:
		return LevelNone
	}
}

func ActiveDays(series []models.DailyContribution) int {
	active := 0
	for _, day := range series {
		if day.Count > 0 {
			active++
		}
	}
	return active
}

// ActiveDayRatio is the percentage of days with at least one contribution; 0 for an
// empty series.
func ActiveDayRatio(series []models.DailyContribution) float64 {
	if len(series) == 0 {
		return 0
	}
	return float64(ActiveDays(series)) * 100 / float64(len(series))
}

func HighActivityDays(series []models.DailyContribution) int {
	high := 0
	for _, day := range series {
		if day.Count >= highActivityCount {
			high++
		}
	}
	return high
}

type MonthTotal struct {
	Month string
	Total int
}

// MonthlyTotals sums the series per MonthKey, months ascending.
func MonthlyTotals(series []models.DailyContribution) []MonthTotal {
	totals := make(map[string]int)
	for _, day := range series {
		totals[MonthKey(day.Date)] += day.Count
	}

	out := make([]MonthTotal, 0, len(totals))
	for month, total := range totals {
		out = append(out, MonthTotal{Month: month, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

func sumCounts(series []models.DailyContribution) int {
	total := 0
	for _, day := range series {
		total += day.Count
	}
	return total
}

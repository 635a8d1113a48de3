package analytics

import (
	"testing"
	"time"

	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// series builds consecutive daily contributions starting at start.
func series(start string, counts ...int) []models.DailyContribution {
	day, err := time.Parse(time.DateOnly, start)
	if err != nil {
		panic(err)
	}
	out := make([]models.DailyContribution, len(counts))
	for i, c := range counts {
		d := day.AddDate(0, 0, i)
		out[i] = models.DailyContribution{Date: d.Format(time.DateOnly), Count: c, Weekday: int(d.Weekday())}
	}
	return out
}

// fourteenDays has days 2-13 active and the first and last day empty.
func fourteenDays() []models.DailyContribution {
	return series("2025-01-01", 0, 3, 5, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 0)
}

func TestStreaks(t *testing.T) {
	tests := []struct {
		name        string
		series      []models.DailyContribution
		wantCurrent int
		wantLongest int
	}{
		{name: "no zero days", series: series("2025-02-01", 1, 2, 3, 4, 5), wantCurrent: 5, wantLongest: 5},
		{name: "ends in zero", series: series("2025-02-01", 1, 2, 0), wantCurrent: 0, wantLongest: 2},
		{name: "empty", series: nil, wantCurrent: 0, wantLongest: 0},
		{name: "two runs", series: series("2025-02-01", 1, 1, 1, 0, 1, 1), wantCurrent: 2, wantLongest: 3},
		{name: "fourteen days", series: fourteenDays(), wantCurrent: 0, wantLongest: 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCurrent, CurrentStreak(tt.series))
			assert.Equal(t, tt.wantLongest, LongestStreak(tt.series))
		})
	}
}

func TestWeeklyPattern(t *testing.T) {
	s := fourteenDays()
	pattern := WeeklyPattern(s)

	require.Len(t, pattern, 7)
	total := 0
	for _, name := range WeekdayNames {
		c, ok := pattern[name]
		require.True(t, ok, name)
		assert.GreaterOrEqual(t, c, 0)
		total += c
	}
	assert.Equal(t, sumCounts(s), total)

	// 2025-01-03 is a Friday and the only day with five contributions.
	assert.Equal(t, 8, pattern["Friday"])
	assert.Equal(t, "Friday", MostActiveDay(pattern))
}

func TestWeeklyPattern_IgnoresWeekdayField(t *testing.T) {
	s := []models.DailyContribution{
		{Date: "2025-06-02", Count: 4, Weekday: 6},
		{Date: "not-a-date", Count: 9},
	}
	pattern := WeeklyPattern(s)

	assert.Equal(t, 4, pattern["Monday"])
	assert.Equal(t, 0, pattern["Saturday"])
}

func TestMostActiveDay(t *testing.T) {
	assert.Equal(t, "Unknown", MostActiveDay(nil))

	tie := map[string]int{"Monday": 2, "Sunday": 2, "Friday": 1}
	assert.Equal(t, "Sunday", MostActiveDay(tie))
}

func TestAnalyzeTrend(t *testing.T) {
	tests := []struct {
		name   string
		series []models.DailyContribution
		want   string
	}{
		{name: "thirteen days", series: series("2025-01-01", 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9), want: "insufficient data"},
		{name: "increasing", series: series("2025-01-01", 1, 1, 1, 1, 1, 1, 1, 2, 2, 2, 2, 2, 2, 2), want: "increasing (+7 vs previous week)"},
		{name: "decreasing", series: series("2025-01-01", 2, 2, 2, 2, 2, 2, 2, 1, 1, 1, 1, 1, 1, 1), want: "decreasing (-7 vs previous week)"},
		{name: "fourteen days", series: fourteenDays(), want: "stable (~18 contributions/week)"},
		{name: "all zero", series: series("2025-01-01", 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0), want: "stable (~0 contributions/week)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AnalyzeTrend(tt.series).String())
		})
	}
}

func TestAnalyzeTrend_ComparesLastTwoWeeks(t *testing.T) {
	s := series("2025-01-01", 50, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 1, 1, 2, 2, 2, 2, 2, 2, 2)
	trend := AnalyzeTrend(s)

	assert.Equal(t, TrendIncreasing, trend.Direction)
	assert.Equal(t, 14, trend.Recent)
	assert.Equal(t, 7, trend.Previous)
}

func TestActivityLevels(t *testing.T) {
	assert.Equal(t, LevelNone, DailyActivityLevel(0))
	assert.Equal(t, LevelLight, DailyActivityLevel(1))
	assert.Equal(t, LevelModerate, DailyActivityLevel(2))
	assert.Equal(t, LevelHigh, DailyActivityLevel(5))
	assert.Equal(t, LevelVeryHigh, DailyActivityLevel(10))

	assert.Equal(t, LevelNone, MonthlyActivityLevel(0))
	assert.Equal(t, LevelLight, MonthlyActivityLevel(14))
	assert.Equal(t, LevelModerate, MonthlyActivityLevel(15))
	assert.Equal(t, LevelHigh, MonthlyActivityLevel(40))
	assert.Equal(t, LevelVeryHigh, MonthlyActivityLevel(80))
}

func TestActiveDayRatio(t *testing.T) {
	assert.Equal(t, 0.0, ActiveDayRatio(nil))
	assert.InDelta(t, 50.0, ActiveDayRatio(series("2025-01-01", 0, 1, 0, 4)), 0.001)
	assert.Equal(t, 12, ActiveDays(fourteenDays()))
}

func TestMonthlyTotals(t *testing.T) {
	s := series("2025-01-30", 1, 2, 3, 4)
	totals := MonthlyTotals(s)

	assert.Equal(t, []MonthTotal{{Month: "2025-01", Total: 3}, {Month: "2025-02", Total: 7}}, totals)
}

func TestMonthKey(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{date: "2025-03-05T10:00:00Z", want: "2025-03"},
		{date: "2025-03-05", want: "2025-03"},
		{date: "2025-03-31T23:30:00-05:00", want: "2025-03"},
		{date: "2025-03-05T10:00", want: "2025-03"},
		{date: "2025-13-xx", want: "2025-13"},
		{date: "2025", want: UnknownMonth},
		{date: "", want: UnknownMonth},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			assert.Equal(t, tt.want, MonthKey(tt.date))
		})
	}

	assert.Equal(t, MonthKey("2025-03-05T10:00:00Z"), MonthKey("2025-03-05"))
}

func TestReadableMonth(t *testing.T) {
	assert.Equal(t, "March 2025", ReadableMonth("2025-03"))
	assert.Equal(t, "unknown", ReadableMonth("unknown"))
	assert.Equal(t, "2025", Year("2025-03"))
}

func TestFoldCommits(t *testing.T) {
	commits := []models.CommitRecord{
		{SHA: "1", Date: "2025-03-05T10:00:00Z", Repository: "a"},
		{SHA: "2", Date: "2025-03-20T10:00:00Z", Repository: "a"},
		{SHA: "3", Date: "2025-04-01T10:00:00Z", Repository: "b"},
	}

	months := FoldCommits("alice", commits)
	require.Len(t, months, 2)

	march := months["2025-03"]
	require.NotNil(t, march)
	assert.Equal(t, 2, march.CommitCount())
	assert.Equal(t, map[string]int{"a": 2}, march.RepositoryCounts)

	april := months["2025-04"]
	require.NotNil(t, april)
	assert.Equal(t, 1, april.CommitCount())
	assert.Equal(t, map[string]int{"b": 1}, april.RepositoryCounts)

	for _, s := range months {
		sum := 0
		for _, c := range s.RepositoryCounts {
			sum += c
		}
		assert.Equal(t, s.CommitCount(), sum)
	}
}

func TestCommitFolder_OrdersMonths(t *testing.T) {
	f := NewCommitFolder("alice")
	month, added := f.Add(models.CommitRecord{SHA: "1", Date: "2025-05-01", Repository: "a"})
	assert.Equal(t, "2025-05", month)
	assert.True(t, added)
	f.Add(models.CommitRecord{SHA: "2", Date: "2025-02-01", Repository: "a"})

	assert.Equal(t, []string{"2025-02", "2025-05"}, f.Months())
	summaries := f.Summaries()
	require.Len(t, summaries, 2)
	assert.Equal(t, 1, summaries[0].CommitCount())
	assert.Equal(t, "alice", summaries[0].Username)
}

func TestCommitFolder_Deduplicates(t *testing.T) {
	f := NewCommitFolder("alice")

	_, added := f.Add(models.CommitRecord{SHA: "1", Date: "2025-02-01", Repository: "a"})
	assert.True(t, added)
	_, added = f.Add(models.CommitRecord{SHA: "1", Date: "2025-02-01", Repository: "a"})
	assert.False(t, added)
	_, added = f.Add(models.CommitRecord{SHA: "1", Date: "2025-02-01", Repository: "b"})
	assert.True(t, added)

	assert.Equal(t, 2, f.Count())
	feb, ok := f.Get("2025-02")
	require.True(t, ok)
	assert.Equal(t, 2, feb.CommitCount())
	assert.Equal(t, map[string]int{"a": 1, "b": 1}, feb.RepositoryCounts)
}

func TestFoldCommits_IgnoresDuplicates(t *testing.T) {
	commit := models.CommitRecord{SHA: "1", Date: "2025-03-05T10:00:00Z", Repository: "a"}

	months := FoldCommits("alice", []models.CommitRecord{commit, commit})

	assert.Equal(t, 1, months["2025-03"].CommitCount())
}

func TestBuildInsights(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	in := InsightInput{
		TotalContributions: 38,
		Commits:            30,
		Issues:             2,
		PullRequests:       4,
		Reviews:            2,
		Restricted:         6,
		Daily:              fourteenDays(),
		Repositories: []RepositoryInfo{
			{Name: "a", PrimaryLanguage: "Go"},
			{Name: "b", PrimaryLanguage: "Go"},
			{Name: "c", PrimaryLanguage: "TypeScript"},
			{Name: "d"},
			{Name: "e", PrimaryLanguage: "Go"},
			{Name: "f", PrimaryLanguage: "Python"},
		},
		RepositoryCommits: []RepositoryCommits{{Name: "a", Commits: 4}, {Name: "b", Commits: 20}, {Name: "c"}},
		PeriodStart:       start,
		AsOf:              start.AddDate(0, 0, 13).Add(15 * time.Hour),
	}

	want := []string{
		"YEAR-TO-DATE SUMMARY (14 days analyzed):",
		"Total contributions: 38",
		"Commits: 30, Issues: 2, Pull Requests: 4, Reviews: 2",
		"Private repository contributions: 6",
		"PRIMARY LANGUAGES: Go (3 repos), Python (1 repos), TypeScript (1 repos)",
		"ACTIVE REPOSITORIES: a, b, c, d, e and 1 more",
		"TOP REPOSITORIES BY COMMITS: b (20 commits), a (4 commits)",
		"Active days: 12 out of 14 (85.7% active)",
		"Average contributions per day: 2.71",
		"Current contribution streak: 0 days",
		"Longest contribution streak: 12 days",
		"Most active day of week: Friday",
		"Recent activity trend: stable (~18 contributions/week)",
		"High-activity days (5+ contributions): 1",
	}
	assert.Equal(t, want, BuildInsights(in))
}

func TestBuildInsights_Empty(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	insights := BuildInsights(InsightInput{PeriodStart: now, AsOf: now})

	assert.Equal(t, "YEAR-TO-DATE SUMMARY (1 days analyzed):", insights[0])
	assert.Contains(t, insights, "Active days: 0 out of 0 (0.0% active)")
	assert.Contains(t, insights, "Recent activity trend: insufficient data")
	assert.Contains(t, insights, "Most active day of week: Sunday")
	for _, line := range insights {
		assert.NotContains(t, line, "PRIMARY LANGUAGES")
		assert.NotContains(t, line, "High-activity")
	}
}

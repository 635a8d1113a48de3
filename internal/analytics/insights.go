package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/models"
)

const activeRepositoriesShown = 5

type RepositoryInfo struct {
	Name            string
	PrimaryLanguage string
}

type RepositoryCommits struct {
	Name    string
	Commits int
}

// InsightInput gathers everything the contribution query returns for one user.
type InsightInput struct {
	TotalContributions int
	Commits            int
	Issues             int
	PullRequests       int
	Reviews            int
	Restricted         int
	Daily              []models.DailyContribution
	Repositories       []RepositoryInfo
	RepositoryCommits  []RepositoryCommits
	PeriodStart        time.Time
	AsOf               time.Time
}

// DaysAnalyzed counts calendar days from PeriodStart through AsOf, both included.
func (in InsightInput) DaysAnalyzed() int {
	if in.AsOf.Before(in.PeriodStart) {
		return 0
	}
	return int(in.AsOf.Sub(in.PeriodStart).Hours()/24) + 1
}

// BuildInsights renders the ordered, human readable findings for a contribution calendar.
func BuildInsights(in InsightInput) []string {
	var insights []string

	insights = append(insights,
		fmt.Sprintf("YEAR-TO-DATE SUMMARY (%d days analyzed):", in.DaysAnalyzed()),
		fmt.Sprintf("Total contributions: %d", in.TotalContributions),
		fmt.Sprintf("Commits: %d, Issues: %d, Pull Requests: %d, Reviews: %d", in.Commits, in.Issues, in.PullRequests, in.Reviews),
	)

	if in.Restricted > 0 {
		insights = append(insights, fmt.Sprintf("Private repository contributions: %d", in.Restricted))
	}

	if langs := languageStats(in.Repositories); langs != "" {
		insights = append(insights, "PRIMARY LANGUAGES: "+langs)
	}

	if len(in.Repositories) > 0 {
		names := make([]string, 0, activeRepositoriesShown)
		for _, r := range in.Repositories[:min(activeRepositoriesShown, len(in.Repositories))] {
			names = append(names, r.Name)
		}
		line := "ACTIVE REPOSITORIES: " + strings.Join(names, ", ")
		if extra := len(in.Repositories) - activeRepositoriesShown; extra > 0 {
			line += fmt.Sprintf(" and %d more", extra)
		}
		insights = append(insights, line)
	}

	if top := topRepositoryCommits(in.RepositoryCommits); top != "" {
		insights = append(insights, "TOP REPOSITORIES BY COMMITS: "+top)
	}

	days := len(in.Daily)
	insights = append(insights,
		fmt.Sprintf("Active days: %d out of %d (%.1f%% active)", ActiveDays(in.Daily), days, ActiveDayRatio(in.Daily)),
		fmt.Sprintf("Average contributions per day: %.2f", float64(in.TotalContributions)/float64(max(1, days))),
		fmt.Sprintf("Current contribution streak: %d days", CurrentStreak(in.Daily)),
		fmt.Sprintf("Longest contribution streak: %d days", LongestStreak(in.Daily)),
		fmt.Sprintf("Most active day of week: %s", MostActiveDay(WeeklyPattern(in.Daily))),
		fmt.Sprintf("Recent activity trend: %s", AnalyzeTrend(in.Daily)),
	)

	if high := HighActivityDays(in.Daily); high > 0 {
		insights = append(insights, fmt.Sprintf("High-activity days (%d+ contributions): %d", highActivityCount, high))
	}

	return insights
}

// languageStats renders "Go (3 repos), TypeScript (1 repos)", most used first.
func languageStats(repos []RepositoryInfo) string {
	counts := make(map[string]int)
	for _, r := range repos {
		if r.PrimaryLanguage != "" {
			counts[r.PrimaryLanguage]++
		}
	}
	if len(counts) == 0 {
		return ""
	}

	langs := make([]string, 0, len(counts))
	for l := range counts {
		langs = append(langs, l)
	}
	sort.Slice(langs, func(i, j int) bool {
		if counts[langs[i]] != counts[langs[j]] {
			return counts[langs[i]] > counts[langs[j]]
		}
		return langs[i] < langs[j]
	})

	parts := make([]string, len(langs))
	for i, l := range langs {
		parts[i] = fmt.Sprintf("%s (%d repos)", l, counts[l])
	}
	return strings.Join(parts, ", ")
}

func topRepositoryCommits(repos []RepositoryCommits) string {
	ranked := make([]RepositoryCommits, 0, len(repos))
	for _, r := range repos {
		if r.Commits > 0 {
			ranked = append(ranked, r)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Commits > ranked[j].Commits })

	parts := make([]string, 0, activeRepositoriesShown)
	for _, r := range ranked[:min(activeRepositoriesShown, len(ranked))] {
		parts = append(parts, fmt.Sprintf("%s (%d commits)", r.Name, r.Commits))
	}
	return strings.Join(parts, ", ")
}

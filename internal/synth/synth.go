// Package synth renders commits, contribution calendars and team notes into
// metadata-tagged documents ready for splitting and indexing.
package synth

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/analytics"
	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/models"
)

const (
	SourceCommits               = "github-commits"
	SourceMonthlySummary        = "github-monthly-summary"
	SourceMonthlyContributions  = "github-monthly-contributions"
	ReinforcementsFileSuffix    = "reinforcements.json"
	contributionSourcePrefix    = "github-graphql-"
	contributionTypePrefix      = "contribution-analysis-"
	daysPerWeekBlock            = 7
	highEngagementThreshold     = 100
	moderateEngagementThreshold = 30
)

var datePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// ExtractDate returns the first YYYY-MM-DD found in a filename.
func ExtractDate(filename string) (string, bool) {
	match := datePattern.FindString(filename)
	return match, match != ""
}

func Commit(username string, c models.CommitRecord) models.Document {
	var b strings.Builder
	b.WriteString("# Commit Activity\n\n")
	fmt.Fprintf(&b, "**Repository:** %s\n", c.Repository)
	fmt.Fprintf(&b, "**Author:** %s\n", c.AuthorName)
	fmt.Fprintf(&b, "**Date:** %s\n", c.Date)
	fmt.Fprintf(&b, "**SHA:** %s\n", c.SHA)
	fmt.Fprintf(&b, "**URL:** %s\n\n", c.URL)
	b.WriteString("**Commit Message:**\n")
	b.WriteString(c.Message)
	b.WriteString("\n\n")
	b.WriteString("This is recent development work committed by the team member.")

	return models.NewDocument(b.String(), map[string]string{
		"type":         models.TypeCommit,
		"username":     username,
		"repository":   c.Repository,
		"commit_sha":   c.SHA,
		"commit_date":  c.Date,
		"commit_month": analytics.MonthKey(c.Date),
		"source":       SourceCommits,
	})
}

func MonthlyCommitSummary(s *models.MonthlyCommitSummary) models.Document {
	repos := s.Repositories()

	var b strings.Builder
	fmt.Fprintf(&b, "# Monthly Commit Summary - %s\n\n", s.Month)
	fmt.Fprintf(&b, "**Developer:** %s\n", s.Username)
	fmt.Fprintf(&b, "**Month:** %s\n", s.Month)
	fmt.Fprintf(&b, "**Total Commits:** %d\n", s.CommitCount())
	fmt.Fprintf(&b, "**Active Repositories:** %d\n\n", len(repos))

	b.WriteString("## Monthly Activity Overview\n")
	fmt.Fprintf(&b, "In %s, %s made %d commits across %d repositories.\n\n", s.Month, s.Username, s.CommitCount(), len(repos))

	b.WriteString("## Repository Breakdown\n")
	for _, repo := range repos {
		fmt.Fprintf(&b, "- **%s:** %d commits\n", repo, s.RepositoryCounts[repo])
	}
	b.WriteString("\n")

	b.WriteString("## Sample Recent Commits\n")
	for _, c := range s.SampleCommits() {
		fmt.Fprintf(&b, "- %s in %s: %s\n", c.Date, c.Repository, firstLine(c.Message))
	}

	b.WriteString("\n## Searchable Context\n")
	fmt.Fprintf(&b, "Monthly commit activity, %s commits, %s development activity, monthly productivity, ", s.Month, s.Username)
	b.WriteString("code contributions by month, repository activity, commit frequency")

	return models.NewDocument(b.String(), map[string]string{
		"type":         models.TypeMonthlyCommitSummary,
		"username":     s.Username,
		"month":        s.Month,
		"year":         analytics.Year(s.Month),
		"commit_count": strconv.Itoa(s.CommitCount()),
		"source":       SourceMonthlySummary,
	})
}

// ContributionAnalysis renders the insights and the week-by-week activity of one
// contribution calendar.
func ContributionAnalysis(cs models.ContributionSummary) models.Document {
	title := cs.Scope.Title()
	lower := strings.ToLower(title)
	start, end := formatDay(cs.PeriodStart), formatDay(cs.PeriodEnd)

	var b strings.Builder
	fmt.Fprintf(&b, "# GitHub Contribution Analysis - %s\n\n", title)
	fmt.Fprintf(&b, "**Developer:** %s\n", cs.Username)
	fmt.Fprintf(&b, "**Analysis Type:** %s repositories\n", title)
	fmt.Fprintf(&b, "**Analysis Period:** %s to %s\n", start, end)
	fmt.Fprintf(&b, "**Total Contributions:** %d\n\n", cs.TotalContributions)

	b.WriteString("## Comprehensive Activity Analysis\n")
	for _, insight := range cs.Insights {
		fmt.Fprintf(&b, "- %s\n", insight)
	}
	b.WriteString("\n")

	b.WriteString("## Detailed Daily Activity Pattern\n")
	b.WriteString("Day-by-day contribution data for pattern analysis:\n\n")

	daily := cs.DailyContributions
	for i := 0; i < len(daily); i += daysPerWeekBlock {
		fmt.Fprintf(&b, "### Week %d:\n", i/daysPerWeekBlock+1)
		for _, day := range daily[i:min(i+daysPerWeekBlock, len(daily))] {
			if day.Count > 0 {
				fmt.Fprintf(&b, "- %s: %d contributions (%s activity)\n", day.Date, day.Count, analytics.DailyActivityLevel(day.Count))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("## Context for Analysis\n")
	fmt.Fprintf(&b, "This %s contribution analysis shows the developer's coding patterns, work consistency and engagement level. ", lower)
	b.WriteString(engagement(cs.TotalContributions))
	fmt.Fprintf(&b, " The data covers public and private repository activity in the %s GitHub environment ", lower)
	fmt.Fprintf(&b, "between %s and %s.\n\n", start, end)

	b.WriteString("## Searchable Keywords\n")
	b.WriteString("Developer activity, coding patterns, contribution frequency, productivity analysis, ")
	b.WriteString("work consistency, development trends, GitHub metrics, commit activity, code contributions, ")
	fmt.Fprintf(&b, "%s performance", cs.Username)

	return models.NewDocument(b.String(), map[string]string{
		"type":                contributionTypePrefix + string(cs.Scope),
		"username":            cs.Username,
		"scope":               string(cs.Scope),
		"total_contributions": strconv.Itoa(cs.TotalContributions),
		"period_start":        start,
		"period_end":          end,
		"source":              contributionSourcePrefix + string(cs.Scope),
	})
}

// MonthlyContributions produces one document per month of the calendar with a nonzero
// total, months ascending.
func MonthlyContributions(cs models.ContributionSummary) []models.Document {
	title := cs.Scope.Title()
	lower := strings.ToLower(title)

	var docs []models.Document
	for _, mt := range analytics.MonthlyTotals(cs.DailyContributions) {
		if mt.Total <= 0 {
			continue
		}
		readable := analytics.ReadableMonth(mt.Month)

		var b strings.Builder
		fmt.Fprintf(&b, "# Monthly Contribution Summary - %s\n\n", mt.Month)
		fmt.Fprintf(&b, "**Developer:** %s\n", cs.Username)
		fmt.Fprintf(&b, "**Month:** %s\n", mt.Month)
		fmt.Fprintf(&b, "**Account Type:** %s\n", title)
		fmt.Fprintf(&b, "**Total Contributions:** %d\n\n", mt.Total)

		b.WriteString("## Summary\n")
		fmt.Fprintf(&b, "In %s, %s made %d contributions to %s repositories. ", readable, cs.Username, mt.Total, lower)
		fmt.Fprintf(&b, "This represents %s activity for the month.\n\n", analytics.MonthlyActivityLevel(mt.Total))

		b.WriteString("## Context for Analysis\n")
		b.WriteString("Tracks productivity trends, seasonal patterns and month-to-month consistency. ")
		fmt.Fprintf(&b, "Counts commits, pull requests, issues and code reviews from %s repositories.\n\n", lower)

		b.WriteString("## Searchable Keywords\n")
		fmt.Fprintf(&b, "%s contributions, %s activity, %s monthly productivity, monthly commits, ", readable, mt.Month, cs.Username)
		fmt.Fprintf(&b, "monthly development activity, %s contributions", lower)

		docs = append(docs, models.NewDocument(b.String(), map[string]string{
			"type":                models.TypeMonthlyContribution,
			"username":            cs.Username,
			"month":               mt.Month,
			"year":                analytics.Year(mt.Month),
			"contributions_count": strconv.Itoa(mt.Total),
			"account_type":        string(cs.Scope),
			"source":              SourceMonthlyContributions,
		}))
	}
	return docs
}

// TeamNote wraps a note file found under a user's directory. The content is kept as is.
func TeamNote(username, path, content string) models.Document {
	filename := filepath.Base(path)

	docType := models.TypeTeamActivity
	if strings.HasSuffix(filename, ReinforcementsFileSuffix) {
		docType = models.TypeReinforcements
	}

	metadata := map[string]string{
		"type":     docType,
		"source":   filename,
		"username": username,
		"filepath": path,
	}
	if date, ok := ExtractDate(filename); ok {
		metadata["date"] = date
	}

	return models.NewDocument(content, metadata)
}

func engagement(total int) string {
	switch {
	case total > highEngagementThreshold:
		return "This developer shows high engagement with frequent contributions."
	case total > moderateEngagementThreshold:
		return "This developer shows moderate but consistent engagement."
	case total > 0:
		return "This developer shows selective engagement patterns."
	default:
		return "This developer shows minimal activity in this period."
	}
}

func firstLine(message string) string {
	line, _, _ := strings.Cut(message, "\n")
	return line
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Format(time.DateOnly)
}

package models

import "time"

// * Scope selects the GitHub account context of a contribution query
type Scope string

const (
	ScopePersonal   Scope = "personal"
	ScopeEnterprise Scope = "enterprise"
)

// Title returns the capitalised scope name used in document text.
func (s Scope) Title() string {
	switch s {
	case ScopePersonal:
		return "Personal"
	case ScopeEnterprise:
		return "Enterprise"
	default:
		return string(s)
	}
}

type DailyContribution struct {
	Date    string `json:"date"`
	Count   int    `json:"count"`
	Weekday int    `json:"weekday"`
}

// * ContributionSummary is the analysed contribution calendar of one user in one scope
type ContributionSummary struct {
	Username           string
	Scope              Scope
	TotalContributions int
	DailyContributions []DailyContribution
	Insights           []string
	PeriodStart        time.Time
	PeriodEnd          time.Time
}

// EmptyContributionSummary is what callers get back when the contribution query fails.
func EmptyContributionSummary(username string, scope Scope) ContributionSummary {
	return ContributionSummary{
		Username:           username,
		Scope:              scope,
		DailyContributions: []DailyContribution{},
		Insights:           []string{},
	}
}

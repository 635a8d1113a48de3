package analytics

import (
	"sort"

	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/models"
)

// CommitFolder groups a user's commits into monthly summaries as they arrive. It is the
// single place commits are deduplicated by SHA and repository.
type CommitFolder struct {
	username  string
	summaries map[string]*models.MonthlyCommitSummary
	seen      map[string]struct{}
}

func NewCommitFolder(username string) *CommitFolder {
	return &CommitFolder{
		username:  username,
		summaries: make(map[string]*models.MonthlyCommitSummary),
		seen:      make(map[string]struct{}),
	}
}

// Add folds one commit and returns the month key it landed in. added is false when the
// commit was already folded, in which case nothing changes.
func (f *CommitFolder) Add(c models.CommitRecord) (month string, added bool) {
	month = MonthKey(c.Date)
	if _, dup := f.seen[c.Key()]; dup {
		return month, false
	}
	f.seen[c.Key()] = struct{}{}

	summary, ok := f.summaries[month]
	if !ok {
		summary = models.NewMonthlyCommitSummary(f.username, month)
		f.summaries[month] = summary
	}
	summary.AddCommit(c)

	return month, true
}

// Count returns the number of distinct commits folded so far.
func (f *CommitFolder) Count() int {
	return len(f.seen)
}

// Months returns the folded month keys in ascending order.
func (f *CommitFolder) Months() []string {
	months := make([]string, 0, len(f.summaries))
	for m := range f.summaries {
		months = append(months, m)
	}
	sort.Strings(months)
	return months
}

// Summaries returns the monthly summaries ordered by month.
func (f *CommitFolder) Summaries() []*models.MonthlyCommitSummary {
	out := make([]*models.MonthlyCommitSummary, 0, len(f.summaries))
	for _, m := range f.Months() {
		out = append(out, f.summaries[m])
	}
	return out
}

func (f *CommitFolder) Get(month string) (*models.MonthlyCommitSummary, bool) {
	s, ok := f.summaries[month]
	return s, ok
}

// FoldCommits is the one-shot form of CommitFolder.
func FoldCommits(username string, commits []models.CommitRecord) map[string]*models.MonthlyCommitSummary {
	f := NewCommitFolder(username)
	for _, c := range commits {
		f.Add(c)
	}
	return f.summaries
}

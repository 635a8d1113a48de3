package models

// * CommitRecord is a commit authored by a tracked user, as fetched from GitHub
type CommitRecord struct {
	SHA        string `json:"sha"`
	Message    string `json:"message"`
	AuthorName string `json:"author_name"`
	Date       string `json:"date"`
	Repository string `json:"repository"`
	URL        string `json:"url"`
}

// Key identifies a commit across repositories.
func (c CommitRecord) Key() string {
	return c.Repository + "@" + c.SHA
}

// * MonthlyCommitSummary folds the commits of one user for one month
type MonthlyCommitSummary struct {
	Username         string
	Month            string
	Commits          []CommitRecord
	RepositoryCounts map[string]int

	repositories []string
}

func NewMonthlyCommitSummary(username, month string) *MonthlyCommitSummary {
	return &MonthlyCommitSummary{
		Username:         username,
		Month:            month,
		RepositoryCounts: make(map[string]int),
	}
}

// AddCommit appends the commit. Callers deduplicate by Key before folding.
func (s *MonthlyCommitSummary) AddCommit(c CommitRecord) {
	s.Commits = append(s.Commits, c)
	if _, ok := s.RepositoryCounts[c.Repository]; !ok {
		s.repositories = append(s.repositories, c.Repository)
	}
	s.RepositoryCounts[c.Repository]++
}

func (s *MonthlyCommitSummary) CommitCount() int {
	return len(s.Commits)
}

// Repositories returns repository names in the order they were first seen.
func (s *MonthlyCommitSummary) Repositories() []string {
	return s.repositories
}

// SampleCommits returns the first five commits added to the month.
func (s *MonthlyCommitSummary) SampleCommits() []CommitRecord {
	return s.Commits[:min(5, len(s.Commits))]
}

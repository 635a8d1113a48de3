package models

import (
	"context"
	"time"
)

// * Indexer stores synthesized documents and answers similarity queries
type Indexer interface {
	Replace(ctx context.Context, scope DocumentScope, docs []Document) error
	Search(ctx context.Context, query string, topK int) ([]Document, error)
}

// * Splitter chunks documents before they are indexed
type Splitter interface {
	Split(docs []Document) []Document
}

// * DocumentScope selects the indexed documents one loader phase owns and rewrites
type DocumentScope struct {
	Types []string
	// * Empty means every user
	Usernames []string
}

var (
	TeamNoteTypes = []string{TypeTeamActivity, TypeReinforcements}
	ActivityTypes = []string{
		TypeCommit,
		TypeMonthlyCommitSummary,
		TypeContributionPersonal,
		TypeContributionEnterprise,
		TypeMonthlyContribution,
	}
)

type CorpusStats struct {
	TotalDocuments int        `json:"total_documents"`
	TeamMembers    int        `json:"team_members"`
	LastUpdated    *time.Time `json:"last_updated,omitempty"`
}

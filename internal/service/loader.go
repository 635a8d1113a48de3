package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/analytics"
	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/models"
	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/reinforcement"
	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/synth"
	"github.com/KOFI-GYIMAH/team-activity-corpus/pkg/errors"
	"github.com/KOFI-GYIMAH/team-activity-corpus/pkg/logger"
)

// * ActivitySource is the GitHub side of the loader; both calls soft-fail to empty results
type ActivitySource interface {
	RecentCommits(ctx context.Context, username string, windowDays int) []models.CommitRecord
	ContributionSummary(ctx context.Context, username string, scope models.Scope) models.ContributionSummary
}

type LoaderConfig struct {
	DocumentsPath string
	Users         []string
	CommitDays    int
}

// * CorpusLoader turns team notes and GitHub activity into indexed documents
type CorpusLoader struct {
	source   ActivitySource
	splitter models.Splitter
	indexer  models.Indexer
	cfg      LoaderConfig
}

// Report describes one Load run.
type Report struct {
	StartedAt         time.Time     `json:"started_at"`
	Duration          time.Duration `json:"duration"`
	TeamFiles         int           `json:"team_files"`
	TeamChunks        int           `json:"team_chunks"`
	ActivityDocuments int           `json:"activity_documents"`
	ActivityChunks    int           `json:"activity_chunks"`
	LoadedUsers       []string      `json:"loaded_users"`
	FailedUsers       []string      `json:"failed_users"`
}

// userResult is the outcome of loading one user's activity.
type userResult struct {
	username string
	docs     []models.Document
	err      error
}

func NewCorpusLoader(source ActivitySource, splitter models.Splitter, indexer models.Indexer, cfg LoaderConfig) *CorpusLoader {
	return &CorpusLoader{
		source:   source,
		splitter: splitter,
		indexer:  indexer,
		cfg:      cfg,
	}
}

// Load runs the team-note phase and then the activity phase. An indexing failure in
// the first phase does not stop the second; the first error seen is returned.
func (l *CorpusLoader) Load(ctx context.Context) (Report, error) {
	report := Report{StartedAt: time.Now(), LoadedUsers: []string{}, FailedUsers: []string{}}

	teamErr := l.LoadTeamNotes(ctx, &report)
	if teamErr != nil {
		logger.Error("Team note phase failed: %v", teamErr)
	}

	activityErr := l.LoadActivity(ctx, &report)
	if activityErr != nil {
		logger.Error("Activity phase failed: %v", activityErr)
	}

	report.Duration = time.Since(report.StartedAt)
	logger.Info("Corpus load finished in %v: %d team chunks, %d activity chunks", report.Duration, report.TeamChunks, report.ActivityChunks)

	if teamErr != nil {
		return report, teamErr
	}
	return report, activityErr
}

// LoadTeamNotes indexes every note file found in the per-user directories of the document root.
func (l *CorpusLoader) LoadTeamNotes(ctx context.Context, report *Report) error {
	entries, err := os.ReadDir(l.cfg.DocumentsPath)
	if err != nil {
		logger.Warn("Documents directory %s is not readable, nothing to load: %v", l.cfg.DocumentsPath, err)
		return nil
	}

	var docs []models.Document
	for _, entry := range entries {
		if !entry.IsDir() || reinforcement.SkipEntry(entry.Name()) {
			continue
		}
		docs = append(docs, l.userNotes(entry.Name())...)
	}

	if len(docs) == 0 {
		logger.Info("No team documents found in %s", l.cfg.DocumentsPath)
		return nil
	}

	chunks, err := l.index(ctx, models.DocumentScope{Types: models.TeamNoteTypes}, docs)
	if err != nil {
		return err
	}

	report.TeamFiles = len(docs)
	report.TeamChunks = chunks
	logger.Info("Loaded %d document chunks from %d team files", chunks, len(docs))
	return nil
}

func (l *CorpusLoader) userNotes(username string) []models.Document {
	dir := filepath.Join(l.cfg.DocumentsPath, username)

	files, err := os.ReadDir(dir)
	if err != nil {
		logger.Warn("Skipping %s: could not read user directory: %v", username, err)
		return nil
	}

	var docs []models.Document
	for _, f := range files {
		if f.IsDir() || !isNoteFile(f.Name()) {
			continue
		}

		path := filepath.Join(dir, f.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("Skipping %s: %v", path, err)
			continue
		}

		docs = append(docs, synth.TeamNote(username, path, string(content)))
		logger.Debug("Loaded document %s for user %s", f.Name(), username)
	}
	return docs
}

func isNoteFile(name string) bool {
	return strings.HasSuffix(name, ".md") || name == reinforcement.FileName
}

// LoadActivity synthesizes commit and contribution documents for every configured user and
// indexes them as one batch, replacing the activity documents of the users that loaded.
// Users that failed keep what a previous run indexed for them.
func (l *CorpusLoader) LoadActivity(ctx context.Context, report *Report) error {
	if len(l.cfg.Users) == 0 {
		logger.Info("No GitHub users configured. Skipping activity loading.")
		return nil
	}

	var batch []models.Document
	for _, username := range l.cfg.Users {
		res := l.loadUser(ctx, username)
		if res.err != nil {
			logger.Error("Error loading activity for %s: %v", username, res.err)
			report.FailedUsers = append(report.FailedUsers, username)
			continue
		}
		batch = append(batch, res.docs...)
		report.LoadedUsers = append(report.LoadedUsers, username)
	}

	if len(report.LoadedUsers) == 0 {
		logger.Info("No activity documents produced")
		return nil
	}

	scope := models.DocumentScope{Types: models.ActivityTypes, Usernames: report.LoadedUsers}
	chunks, err := l.index(ctx, scope, batch)
	if err != nil {
		return err
	}

	report.ActivityDocuments = len(batch)
	report.ActivityChunks = chunks
	logger.Info("Loaded %d activity chunks from %d documents", chunks, len(batch))
	return nil
}

func (l *CorpusLoader) loadUser(ctx context.Context, username string) (res userResult) {
	res.username = username

	if err := ctx.Err(); err != nil {
		res.err = err
		return res
	}

	logger.Info("Loading activity for %s", username)

	commits := l.source.RecentCommits(ctx, username, l.cfg.CommitDays)
	folder := analytics.NewCommitFolder(username)

	for _, c := range commits {
		if _, added := folder.Add(c); added {
			res.docs = append(res.docs, synth.Commit(username, c))
		}
	}
	for _, summary := range folder.Summaries() {
		res.docs = append(res.docs, synth.MonthlyCommitSummary(summary))
	}

	for _, scope := range []models.Scope{models.ScopePersonal, models.ScopeEnterprise} {
		if err := ctx.Err(); err != nil {
			res.docs, res.err = nil, err
			return res
		}

		cs := l.source.ContributionSummary(ctx, username, scope)
		if cs.TotalContributions <= 0 {
			logger.Debug("No %s contributions for %s", scope, username)
			continue
		}

		res.docs = append(res.docs, synth.ContributionAnalysis(cs))
		res.docs = append(res.docs, synth.MonthlyContributions(cs)...)
		logger.Info("Loaded %s contribution analysis for %s (%d contributions)", scope, username, cs.TotalContributions)
	}

	logger.Info("Loaded %d commits for %s", folder.Count(), username)
	return res
}

func (l *CorpusLoader) index(ctx context.Context, scope models.DocumentScope, docs []models.Document) (int, error) {
	chunks := l.splitter.Split(docs)
	if err := l.indexer.Replace(ctx, scope, chunks); err != nil {
		return 0, errors.New(
			"LOADER_INDEX_ERROR",
			"Failed to index documents",
			fmt.Sprintf("Indexer rejected a batch of %d chunks", len(chunks)),
			err,
			errors.LevelError,
		)
	}
	return len(chunks), nil
}

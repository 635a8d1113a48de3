package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/analytics"
	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/models"
	"github.com/KOFI-GYIMAH/team-activity-corpus/pkg/errors"
	"github.com/KOFI-GYIMAH/team-activity-corpus/pkg/logger"
	gh "github.com/google/go-github/v57/github"
)

var (
	baseURL = "https://api.github.com"

	// * Formatted with the organisation name
	enterpriseGraphQLURL = "https://github.%s.com/api/graphql"
)

const (
	perPage      = 100
	userAgent    = "team-activity-corpus"
	requestRate  = 10
	requestBurst = 5
)

// * Client reads user activity from GitHub: REST for events and commits, GraphQL for
// * contribution calendars
type Client struct {
	httpClient    *http.Client
	rest          *gh.Client
	token         string
	personalToken string
	org           string
	now           func() time.Time
}

// NewClient builds a client. token authenticates enterprise GraphQL calls against org;
// personalToken authenticates REST calls and personal GraphQL calls.
func NewClient(token, personalToken, org string) *Client {
	rl := NewRateLimiter(requestRate, requestBurst)

	httpClient := &http.Client{
		Timeout:   30 * time.Second,
		Transport: rl.Middleware(http.DefaultTransport),
	}

	rest := gh.NewClient(httpClient)
	if personalToken != "" {
		rest = rest.WithAuthToken(personalToken)
	}
	if u, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/"); err == nil {
		rest.BaseURL = u
	}
	rest.UserAgent = userAgent

	return &Client{
		httpClient:    httpClient,
		rest:          rest,
		token:         token,
		personalToken: personalToken,
		org:           org,
		now:           time.Now,
	}
}

// RecentRepositories lists the repositories a user pushed to or created within the
// last windowDays, in the order their events were returned.
func (c *Client) RecentRepositories(ctx context.Context, username string, windowDays int) ([]string, error) {
	events, _, err := c.rest.Activity.ListEventsPerformedByUser(ctx, username, false, &gh.ListOptions{PerPage: perPage})
	if err != nil {
		return nil, errors.Upstream(
			"Failed to fetch events from GitHub",
			fmt.Sprintf("Could not retrieve recent events for %s", username),
			err,
		)
	}

	cutoff := c.now().AddDate(0, 0, -windowDays)
	seen := make(map[string]struct{})
	var repos []string

	for _, e := range events {
		event := models.Event{
			Type:      e.GetType(),
			CreatedAt: e.GetCreatedAt().Time,
			RepoName:  e.GetRepo().GetName(),
		}
		if event.CreatedAt.Before(cutoff) || !event.IsRepositoryActivity() || event.RepoName == "" {
			continue
		}
		if _, ok := seen[event.RepoName]; ok {
			continue
		}
		seen[event.RepoName] = struct{}{}
		repos = append(repos, event.RepoName)
	}

	return repos, nil
}

// CommitsSince returns the author's commits in repoFullName ("owner/name") from the last
// windowDays. Failures are logged and yield an empty slice.
func (c *Client) CommitsSince(ctx context.Context, repoFullName, author string, windowDays int) []models.CommitRecord {
	owner, repo, ok := strings.Cut(repoFullName, "/")
	if !ok || owner == "" || repo == "" {
		logger.Warn("Skipping malformed repository name %q", repoFullName)
		return []models.CommitRecord{}
	}

	opts := &gh.CommitsListOptions{
		Author:      author,
		Since:       c.now().AddDate(0, 0, -windowDays),
		ListOptions: gh.ListOptions{PerPage: perPage},
	}

	commits, _, err := c.rest.Repositories.ListCommits(ctx, owner, repo, opts)
	if err != nil {
		logger.Warn("Failed to fetch commits from %s: %v", repoFullName, err)
		return []models.CommitRecord{}
	}

	records := make([]models.CommitRecord, 0, len(commits))
	for _, rc := range commits {
		if rc.GetSHA() == "" || rc.GetCommit() == nil {
			logger.Warn("Skipping commit without data in %s", repoFullName)
			continue
		}

		var date string
		if d := rc.GetCommit().GetAuthor().GetDate(); !d.IsZero() {
			date = d.UTC().Format(time.RFC3339)
		}

		records = append(records, models.CommitRecord{
			SHA:        rc.GetSHA(),
			Message:    rc.GetCommit().GetMessage(),
			AuthorName: rc.GetCommit().GetAuthor().GetName(),
			Date:       date,
			Repository: repoFullName,
			URL:        rc.GetHTMLURL(),
		})
	}

	return records
}

// RecentCommits collects the user's commits across every recently active repository.
// A failing repository never aborts the rest.
func (c *Client) RecentCommits(ctx context.Context, username string, windowDays int) []models.CommitRecord {
	repos, err := c.RecentRepositories(ctx, username, windowDays)
	if err != nil {
		logger.Warn("Could not discover repositories for %s: %v", username, err)
		return []models.CommitRecord{}
	}

	all := []models.CommitRecord{}
	for _, repo := range repos {
		all = append(all, c.CommitsSince(ctx, repo, username, windowDays)...)
	}

	logger.Info("Fetched %d commits for %s across %d repositories", len(all), username, len(repos))
	return all
}

// ContributionSummary queries the year-to-date contribution calendar of a user. Any failure
// is logged and an empty summary returned.
func (c *Client) ContributionSummary(ctx context.Context, username string, scope models.Scope) models.ContributionSummary {
	now := c.now()
	from := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())

	user, err := c.queryContributions(ctx, username, scope, from, now)
	if err != nil {
		logger.Warn("Contribution query (%s) failed for %s: %v", scope, username, err)
		return models.EmptyContributionSummary(username, scope)
	}

	return buildSummary(username, scope, user, from, now)
}

func (c *Client) graphQLTarget(scope models.Scope) (endpoint, token string) {
	if scope == models.ScopeEnterprise {
		if c.org != "" {
			return fmt.Sprintf(enterpriseGraphQLURL, c.org), c.token
		}
		return strings.TrimSuffix(baseURL, "/") + "/graphql", c.token
	}
	return strings.TrimSuffix(baseURL, "/") + "/graphql", c.personalToken
}

func (c *Client) queryContributions(ctx context.Context, username string, scope models.Scope, from, to time.Time) (*userNode, error) {
	payload, err := json.Marshal(graphQLRequest{
		Query: contributionsQuery,
		Variables: map[string]any{
			"username": username,
			"from":     from.Format(time.RFC3339),
			"to":       to.Format(time.RFC3339),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode GraphQL request: %w", err)
	}

	endpoint, token := c.graphQLTarget(scope)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Upstream("GraphQL request failed", "Could not reach "+endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Upstream(
			"GraphQL request failed",
			fmt.Sprintf("GitHub GraphQL returned status %d for %s", resp.StatusCode, username),
			nil,
		)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Upstream("Failed to read GraphQL response", "", err)
	}

	var parsed contributionsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, errors.Parse("Failed to parse GraphQL response", "Could not understand the contribution data", err)
	}

	if parsed.Data.User == nil {
		detail := "no user node in response"
		if len(parsed.Errors) > 0 {
			detail = parsed.Errors[0].Message
		}
		return nil, errors.NotFound("GitHub user not found", detail, nil)
	}

	return parsed.Data.User, nil
}

func buildSummary(username string, scope models.Scope, user *userNode, from, to time.Time) models.ContributionSummary {
	cc := user.ContributionsCollection

	daily := []models.DailyContribution{}
	for _, week := range cc.ContributionCalendar.Weeks {
		for _, day := range week.ContributionDays {
			daily = append(daily, models.DailyContribution{
				Date:    day.Date,
				Count:   day.ContributionCount,
				Weekday: day.Weekday,
			})
		}
	}

	repos := make([]analytics.RepositoryInfo, 0, len(user.Repositories.Nodes))
	for _, r := range user.Repositories.Nodes {
		repos = append(repos, analytics.RepositoryInfo{Name: r.Name, PrimaryLanguage: r.language()})
	}

	repoCommits := make([]analytics.RepositoryCommits, 0, len(cc.CommitContributionsByRepository))
	for _, rc := range cc.CommitContributionsByRepository {
		repoCommits = append(repoCommits, analytics.RepositoryCommits{Name: rc.Repository.Name, Commits: rc.Contributions.TotalCount})
	}

	total := cc.ContributionCalendar.TotalContributions
	insights := analytics.BuildInsights(analytics.InsightInput{
		TotalContributions: total,
		Commits:            cc.TotalCommitContributions,
		Issues:             cc.TotalIssueContributions,
		PullRequests:       cc.TotalPullRequestContributions,
		Reviews:            cc.TotalPullRequestReviewContributions,
		Restricted:         cc.RestrictedContributionsCount,
		Daily:              daily,
		Repositories:       repos,
		RepositoryCommits:  repoCommits,
		PeriodStart:        from,
		AsOf:               to,
	})

	return models.ContributionSummary{
		Username:           username,
		Scope:              scope,
		TotalContributions: total,
		DailyContributions: daily,
		Insights:           insights,
		PeriodStart:        from,
		PeriodEnd:          to,
	}
}

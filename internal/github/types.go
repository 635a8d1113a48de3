package github

// * GraphQL request and response shapes for the contributions query

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type contributionsResponse struct {
	Data struct {
		User *userNode `json:"user"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

type userNode struct {
	ContributionsCollection struct {
		TotalCommitContributions            int `json:"totalCommitContributions"`
		TotalIssueContributions             int `json:"totalIssueContributions"`
		TotalPullRequestContributions       int `json:"totalPullRequestContributions"`
		TotalPullRequestReviewContributions int `json:"totalPullRequestReviewContributions"`
		RestrictedContributionsCount        int `json:"restrictedContributionsCount"`
		ContributionCalendar                struct {
			TotalContributions int `json:"totalContributions"`
			Weeks              []struct {
				ContributionDays []contributionDay `json:"contributionDays"`
			} `json:"weeks"`
		} `json:"contributionCalendar"`
		CommitContributionsByRepository []struct {
			Repository    repositoryNode `json:"repository"`
			Contributions struct {
				TotalCount int `json:"totalCount"`
			} `json:"contributions"`
		} `json:"commitContributionsByRepository"`
	} `json:"contributionsCollection"`
	Repositories struct {
		Nodes []repositoryNode `json:"nodes"`
	} `json:"repositories"`
}

type contributionDay struct {
	Date              string `json:"date"`
	ContributionCount int    `json:"contributionCount"`
	Weekday           int    `json:"weekday"`
}

type repositoryNode struct {
	Name            string `json:"name"`
	PrimaryLanguage *struct {
		Name string `json:"name"`
	} `json:"primaryLanguage"`
}

func (r repositoryNode) language() string {
	if r.PrimaryLanguage == nil {
		return ""
	}
	return r.PrimaryLanguage.Name
}

const contributionsQuery = `query($username: String!, $from: DateTime!, $to: DateTime!) {
  user(login: $username) {
    contributionsCollection(from: $from, to: $to) {
      totalCommitContributions
      totalIssueContributions
      totalPullRequestContributions
      totalPullRequestReviewContributions
      restrictedContributionsCount
      contributionCalendar {
        totalContributions
        weeks {
          contributionDays {
            contributionCount
            date
            weekday
          }
        }
      }
      commitContributionsByRepository(maxRepositories: 10) {
        repository {
          name
          primaryLanguage { name }
        }
        contributions { totalCount }
      }
    }
    repositories(first: 20, orderBy: {field: UPDATED_AT, direction: DESC}) {
      nodes {
        name
        primaryLanguage { name }
      }
    }
  }
}`

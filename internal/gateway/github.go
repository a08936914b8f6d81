// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/rs/zerolog"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
)

// IssueData is the provider-neutral shape of one open issue as returned by
// the gateway, before classification.
type IssueData struct {
	ID           int64
	Number       int
	Title        string
	URL          string
	Author       string
	AuthorAvatar string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Comments     int
	Labels       []string
	Body         string
}

// RepoInfo holds repository-level metadata. OpenIssues excludes pull
// requests, unlike the REST open_issues_count field.
type RepoInfo struct {
	Stars       int
	Forks       int
	Description string
	OpenIssues  int
}

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	FetchOpenIssues(ctx context.Context, owner, name string, perPage int) ([]IssueData, error)
	FetchRepoInfo(ctx context.Context, owner, name string) (RepoInfo, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	logger        zerolog.Logger
}

// repoInfoQuery fetches the repository metadata shown on the dashboard.
// issues(states: OPEN) is used instead of the REST open_issues_count, which
// also counts pull requests.
type repoInfoQuery struct {
	Repository struct {
		StargazerCount githubv4.Int
		ForkCount      githubv4.Int
		Description    githubv4.String
		Issues         struct {
			TotalCount githubv4.Int
		} `graphql:"issues(states: [OPEN])"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
// An empty token yields an anonymous client with a much lower rate limit.
func NewGitHubGateway(token string, logger zerolog.Logger) (Fetcher, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	httpClient := &http.Client{Transport: rateLimitWaiter}
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient.Transport = &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		}
	}
	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		logger:        logger,
	}, nil
}

// FetchOpenIssues lists the newest open issues of a repository via the REST
// API, capped at perPage and with pull requests filtered out. A missing
// repository degrades to an empty result rather than failing the run.
func (g *GitHubGateway) FetchOpenIssues(ctx context.Context, owner, name string, perPage int) ([]IssueData, error) {
	opts := &github.IssueListByRepoOptions{
		State:       "open",
		Sort:        "created",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: perPage},
	}
	issues, resp, err := g.restClient.Issues.ListByRepo(ctx, owner, name, opts)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			g.logger.Warn().Str("repo", owner+"/"+name).Msg("repository not found; skipping")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list issues for %s/%s: %w", owner, name, err)
	}

	out := make([]IssueData, 0, len(issues))
	for _, is := range issues {
		if is.IsPullRequest() {
			continue
		}
		labels := make([]string, 0, len(is.Labels))
		for _, l := range is.Labels {
			labels = append(labels, l.GetName())
		}
		out = append(out, IssueData{
			ID:           is.GetID(),
			Number:       is.GetNumber(),
			Title:        is.GetTitle(),
			URL:          is.GetHTMLURL(),
			Author:       is.GetUser().GetLogin(),
			AuthorAvatar: is.GetUser().GetAvatarURL(),
			CreatedAt:    is.GetCreatedAt().Time,
			UpdatedAt:    is.GetUpdatedAt().Time,
			Comments:     is.GetComments(),
			Labels:       labels,
			Body:         is.GetBody(),
		})
	}
	g.logger.Debug().Str("repo", owner+"/"+name).Int("issues", len(out)).Int("listed", len(issues)).Msg("fetched open issues")
	return out, nil
}

// FetchRepoInfo fetches repository metadata with a single GraphQL query.
func (g *GitHubGateway) FetchRepoInfo(ctx context.Context, owner, name string) (RepoInfo, error) {
	variables := map[string]interface{}{
		"owner": githubv4.String(owner),
		"name":  githubv4.String(name),
	}
	var q repoInfoQuery
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return RepoInfo{}, fmt.Errorf("failed to execute GraphQL query for repo info: %w", err)
	}
	return RepoInfo{
		Stars:       int(q.Repository.StargazerCount),
		Forks:       int(q.Repository.ForkCount),
		Description: string(q.Repository.Description),
		OpenIssues:  int(q.Repository.Issues.TotalCount),
	}, nil
}

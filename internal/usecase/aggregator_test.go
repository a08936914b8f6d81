package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/issuehub/issuehub/internal/config"
	"github.com/issuehub/issuehub/internal/domain"
	"github.com/issuehub/issuehub/internal/gateway"
)

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
// It allows us to simulate the GitHub gateway without real API calls.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchOpenIssues(ctx context.Context, owner, name string, perPage int) ([]gateway.IssueData, error) {
	args := m.Called(ctx, owner, name, perPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]gateway.IssueData), args.Error(1)
}

func (m *mockFetcher) FetchRepoInfo(ctx context.Context, owner, name string) (gateway.RepoInfo, error) {
	args := m.Called(ctx, owner, name)
	return args.Get(0).(gateway.RepoInfo), args.Error(1)
}

// fixedNow pins the new-issue cutoff for all aggregator tests.
var fixedNow = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{
		LookbackDaysNew: 7,
		Categories: []config.Category{
			{Key: "core", Label: "Django Core", Icon: "🐍", Repos: []string{"o/repo-a"}},
			{Key: "rest", Label: "APIs & REST", Icon: "🔌", Repos: []string{"o/repo-b"}},
		},
	}
}

func newTestAggregator(fetcher gateway.Fetcher) *Aggregator {
	a := NewAggregator(fetcher, zerolog.Nop())
	a.Now = func() time.Time { return fixedNow }
	return a
}

func TestAggregator_Aggregate(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	fetcher := new(mockFetcher)

	repoAIssues := []gateway.IssueData{
		{
			ID: 1, Number: 11, Title: "crash on save",
			URL:       "https://github.com/o/repo-a/issues/11",
			Author:    "alice",
			CreatedAt: fixedNow.Add(-3 * 24 * time.Hour),
			Comments:  4,
			Labels:    []string{"bug"},
			Body:      "stack trace attached",
		},
		{
			ID: 2, Number: 5, Title: "add async support",
			URL:       "https://github.com/o/repo-a/issues/5",
			CreatedAt: fixedNow.Add(-27 * 24 * time.Hour),
			Comments:  2,
			Labels:    []string{"enhancement"},
		},
	}
	fetcher.On("FetchOpenIssues", mock.Anything, "o", "repo-a", 30).Return(repoAIssues, nil)
	fetcher.On("FetchRepoInfo", mock.Anything, "o", "repo-a").Return(gateway.RepoInfo{
		Stars: 10, Forks: 5, Description: "Repo A", OpenIssues: 40,
	}, nil)
	fetcher.On("FetchOpenIssues", mock.Anything, "o", "repo-b", 30).Return([]gateway.IssueData{}, nil)
	fetcher.On("FetchRepoInfo", mock.Anything, "o", "repo-b").Return(gateway.RepoInfo{
		Stars: 1, Forks: 1, OpenIssues: 0,
	}, nil)

	snap, err := newTestAggregator(fetcher).Aggregate(ctx, cfg, 30)
	require.NoError(t, err)
	fetcher.AssertExpectations(t)

	// Issues are classified and carry their category.
	require.Len(t, snap.Issues, 2)
	bugIssue := snap.Issues[0]
	assert.Equal(t, "o/repo-a", bugIssue.Repo)
	assert.Equal(t, "core", bugIssue.Category)
	assert.Equal(t, "Django Core", bugIssue.CategoryLabel)
	assert.Equal(t, domain.PriorityHigh, bugIssue.Priority)
	assert.True(t, bugIssue.IsNew)
	assert.Equal(t, "alice", bugIssue.Author)
	assert.Equal(t, "stack trace attached", bugIssue.BodyPreview)

	featureIssue := snap.Issues[1]
	assert.Equal(t, domain.PriorityMedium, featureIssue.Priority)
	assert.False(t, featureIssue.IsNew)
	assert.Equal(t, "unknown", featureIssue.Author)

	// Per-repo grouping covers every tracked repo, even empty ones.
	assert.Len(t, snap.ByRepo["o/repo-a"], 2)
	assert.Empty(t, snap.ByRepo["o/repo-b"])

	// Per-repo stats.
	rsA := snap.Stats.Repos["o/repo-a"]
	assert.Equal(t, 40, rsA.TotalOpenIssues)
	assert.Equal(t, 10, rsA.Stars)
	assert.Equal(t, "Repo A", rsA.Description)
	assert.Equal(t, 2, rsA.FetchedIssues)
	assert.Equal(t, 1, rsA.NewIssues)
	assert.Equal(t, 1, rsA.Bugs)
	assert.Equal(t, 1, rsA.Features)
	assert.InDelta(t, 15.0, rsA.MedianAgeDays, 0.001)
	assert.InDelta(t, 3.0, rsA.MeanComments, 0.001)

	rsB := snap.Stats.Repos["o/repo-b"]
	assert.Equal(t, 0, rsB.FetchedIssues)
	assert.Zero(t, rsB.MedianAgeDays)

	// Global rollups.
	st := snap.Stats
	assert.Equal(t, fixedNow, st.GeneratedAt)
	assert.Equal(t, 7, st.LookbackDaysNew)
	assert.Equal(t, 2, st.TotalRepos)
	assert.Equal(t, 2, st.TotalIssuesFetched)
	assert.Equal(t, 1, st.TotalNewIssues)
	assert.Equal(t, 1, st.TotalBugs)
	assert.Equal(t, 1, st.TotalFeatures)
	assert.Equal(t, 0, st.TotalSecurity)
	assert.Equal(t, map[domain.Priority]int{
		domain.PriorityCritical: 0,
		domain.PriorityHigh:     1,
		domain.PriorityMedium:   1,
		domain.PriorityLow:      0,
	}, st.ByPriority)

	assert.Equal(t, domain.CategoryStats{
		Label: "Django Core", Icon: "🐍", TotalRepos: 1, TotalIssues: 2, NewIssues: 1,
	}, st.ByCategory["core"])
	assert.Equal(t, domain.CategoryStats{
		Label: "APIs & REST", Icon: "🔌", TotalRepos: 1,
	}, st.ByCategory["rest"])
}

func TestAggregator_Aggregate_RepoInfoFailureFallsBack(t *testing.T) {
	cfg := &config.Config{
		LookbackDaysNew: 7,
		Categories: []config.Category{
			{Key: "core", Label: "Django Core", Repos: []string{"o/gone"}},
		},
	}
	fetcher := new(mockFetcher)
	fetcher.On("FetchOpenIssues", mock.Anything, "o", "gone", 30).Return([]gateway.IssueData{
		{ID: 1, Number: 1, Title: "still here", CreatedAt: fixedNow.Add(-time.Hour)},
	}, nil)
	fetcher.On("FetchRepoInfo", mock.Anything, "o", "gone").
		Return(gateway.RepoInfo{}, errors.New("graphql: Could not resolve to a Repository"))

	snap, err := newTestAggregator(fetcher).Aggregate(context.Background(), cfg, 30)
	require.NoError(t, err)

	// The fetched count substitutes for the missing metadata.
	assert.Equal(t, 1, snap.Stats.Repos["o/gone"].TotalOpenIssues)
	assert.Equal(t, 0, snap.Stats.Repos["o/gone"].Stars)
}

func TestAggregator_Aggregate_FetchFailureDegradesToEmpty(t *testing.T) {
	// A 403 or network failure on one repo leaves it with zero issues but
	// does not abort the run; the remaining repos are still aggregated.
	cfg := testConfig()
	fetcher := new(mockFetcher)
	fetcher.On("FetchOpenIssues", mock.Anything, "o", "repo-a", 30).
		Return(nil, errors.New("403 API rate limit exceeded"))
	fetcher.On("FetchRepoInfo", mock.Anything, "o", "repo-a").
		Return(gateway.RepoInfo{Stars: 10, OpenIssues: 40}, nil)
	fetcher.On("FetchOpenIssues", mock.Anything, "o", "repo-b", 30).Return([]gateway.IssueData{
		{ID: 1, Number: 1, Title: "survives", Labels: []string{"bug"}, CreatedAt: fixedNow.Add(-time.Hour)},
	}, nil)
	fetcher.On("FetchRepoInfo", mock.Anything, "o", "repo-b").
		Return(gateway.RepoInfo{OpenIssues: 1}, nil)

	snap, err := newTestAggregator(fetcher).Aggregate(context.Background(), cfg, 30)
	require.NoError(t, err)
	fetcher.AssertExpectations(t)

	require.Len(t, snap.Issues, 1)
	assert.Equal(t, "o/repo-b", snap.Issues[0].Repo)
	assert.Empty(t, snap.ByRepo["o/repo-a"])
	assert.Len(t, snap.ByRepo["o/repo-b"], 1)

	// The failed repo still gets a stats entry from its metadata.
	rsA := snap.Stats.Repos["o/repo-a"]
	assert.Equal(t, 0, rsA.FetchedIssues)
	assert.Equal(t, 40, rsA.TotalOpenIssues)
	assert.Equal(t, 2, snap.Stats.TotalRepos)
	assert.Equal(t, 1, snap.Stats.TotalIssuesFetched)
}

func TestAggregator_Aggregate_ContextCancellationAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := testConfig()
	fetcher := new(mockFetcher)
	fetcher.On("FetchOpenIssues", mock.Anything, "o", "repo-a", 30).
		Return(nil, ctx.Err())

	snap, err := newTestAggregator(fetcher).Aggregate(ctx, cfg, 30)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, snap)
}

func TestAggregator_Aggregate_DeduplicatesRepos(t *testing.T) {
	// The same repo listed in two categories is fetched once and attributed
	// to the first category.
	cfg := &config.Config{
		LookbackDaysNew: 7,
		Categories: []config.Category{
			{Key: "core", Label: "Django Core", Repos: []string{"o/shared"}},
			{Key: "rest", Label: "APIs & REST", Repos: []string{"o/shared"}},
		},
	}
	fetcher := new(mockFetcher)
	fetcher.On("FetchOpenIssues", mock.Anything, "o", "shared", 30).Return([]gateway.IssueData{
		{ID: 1, Number: 1, Title: "one", CreatedAt: fixedNow.Add(-time.Hour)},
	}, nil)
	fetcher.On("FetchRepoInfo", mock.Anything, "o", "shared").Return(gateway.RepoInfo{OpenIssues: 1}, nil)

	snap, err := newTestAggregator(fetcher).Aggregate(context.Background(), cfg, 30)
	require.NoError(t, err)

	fetcher.AssertNumberOfCalls(t, "FetchOpenIssues", 1)
	require.Len(t, snap.Issues, 1)
	assert.Equal(t, "core", snap.Issues[0].Category)
	assert.Equal(t, 1, snap.Stats.TotalRepos)
	assert.Equal(t, 1, snap.Stats.ByCategory["core"].TotalIssues)
	assert.Equal(t, 0, snap.Stats.ByCategory["rest"].TotalIssues)
}

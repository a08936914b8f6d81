// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/rs/zerolog"

	"github.com/issuehub/issuehub/internal/config"
	"github.com/issuehub/issuehub/internal/domain"
	"github.com/issuehub/issuehub/internal/gateway"
)

// Aggregator is the use case for building a full issue snapshot.
// It orchestrates the fetching and classification of data.
type Aggregator struct {
	fetcher gateway.Fetcher
	logger  zerolog.Logger

	// Now is swappable so tests can pin the new-issue cutoff.
	Now func() time.Time
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(fetcher gateway.Fetcher, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		fetcher: fetcher,
		logger:  logger,
		Now:     time.Now,
	}
}

// Aggregate performs the main business logic: a sequential pass over the
// tracked repos, classifying each issue and rolling up per-repo, per-category,
// and global statistics. Fetching is deliberately sequential with a pause
// between repos to stay friendly to the API rate limit.
func (a *Aggregator) Aggregate(ctx context.Context, cfg *config.Config, perRepo int) (*domain.Snapshot, error) {
	repos := cfg.TrackedRepos()
	now := a.Now().UTC()
	cutoff := now.Add(-cfg.Lookback())

	a.logger.Info().
		Int("repos", len(repos)).
		Int("categories", len(cfg.Categories)).
		Msg("starting issue fetch")

	snap := &domain.Snapshot{
		ByRepo: make(map[string][]domain.Issue, len(repos)),
	}
	repoStats := make(map[string]domain.RepoStats, len(repos))

	for i, ref := range repos {
		a.logger.Info().
			Int("index", i+1).
			Int("total", len(repos)).
			Str("repo", ref.FullName()).
			Str("category", ref.CategoryLabel).
			Msg("fetching repo")

		raw, err := a.fetcher.FetchOpenIssues(ctx, ref.Owner, ref.Name, perRepo)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			a.logger.Warn().Err(err).Str("repo", ref.FullName()).Msg("failed to fetch issues; continuing with empty list")
			raw = nil
		}

		processed := make([]domain.Issue, 0, len(raw))
		for _, r := range raw {
			processed = append(processed, buildIssue(r, ref, cutoff))
		}
		snap.Issues = append(snap.Issues, processed...)
		snap.ByRepo[ref.FullName()] = processed

		info, err := a.fetcher.FetchRepoInfo(ctx, ref.Owner, ref.Name)
		if err != nil {
			a.logger.Warn().Err(err).Str("repo", ref.FullName()).Msg("failed to fetch repo metadata; using fetched counts")
			info = gateway.RepoInfo{OpenIssues: len(processed)}
		}
		repoStats[ref.FullName()] = buildRepoStats(ref, info, processed, now)

		if i < len(repos)-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(cfg.RequestDelay()):
			}
		}
	}

	snap.Stats = buildStats(cfg, snap.Issues, repoStats, now)
	a.logger.Info().
		Int("issues", len(snap.Issues)).
		Int("repos", len(repos)).
		Msg("aggregation complete")
	return snap, nil
}

func buildIssue(raw gateway.IssueData, ref config.RepoRef, cutoff time.Time) domain.Issue {
	author := raw.Author
	if author == "" {
		author = "unknown"
	}
	return domain.Issue{
		ID:             raw.ID,
		Repo:           ref.FullName(),
		Category:       ref.Category,
		CategoryLabel:  ref.CategoryLabel,
		Number:         raw.Number,
		Title:          raw.Title,
		URL:            raw.URL,
		Author:         author,
		AuthorAvatar:   raw.AuthorAvatar,
		CreatedAt:      raw.CreatedAt,
		UpdatedAt:      raw.UpdatedAt,
		Comments:       raw.Comments,
		Labels:         raw.Labels,
		BodyPreview:    PreviewBody(raw.Body),
		IsNew:          raw.CreatedAt.After(cutoff),
		Classification: Classify(raw.Labels),
	}
}

func buildRepoStats(ref config.RepoRef, info gateway.RepoInfo, issues []domain.Issue, now time.Time) domain.RepoStats {
	rs := domain.RepoStats{
		Category:        ref.Category,
		CategoryLabel:   ref.CategoryLabel,
		TotalOpenIssues: info.OpenIssues,
		Stars:           info.Stars,
		Forks:           info.Forks,
		Description:     info.Description,
		FetchedIssues:   len(issues),
	}

	ages := make([]float64, 0, len(issues))
	comments := make([]float64, 0, len(issues))
	for _, is := range issues {
		if is.IsNew {
			rs.NewIssues++
		}
		if is.IsBug {
			rs.Bugs++
		}
		if is.IsFeature {
			rs.Features++
		}
		if is.IsGoodFirstIssue {
			rs.GoodFirstIssues++
		}
		if is.IsHelpWanted {
			rs.HelpWanted++
		}
		ages = append(ages, now.Sub(is.CreatedAt).Hours()/24)
		comments = append(comments, float64(is.Comments))
	}

	// stats.Median and stats.Mean error only on empty input.
	if len(issues) > 0 {
		rs.MedianAgeDays, _ = stats.Median(ages)
		rs.MeanComments, _ = stats.Mean(comments)
	}
	return rs
}

func buildStats(cfg *config.Config, issues []domain.Issue, repoStats map[string]domain.RepoStats, now time.Time) domain.Stats {
	st := domain.Stats{
		GeneratedAt:        now,
		LookbackDaysNew:    cfg.LookbackDaysNew,
		TotalRepos:         len(repoStats),
		TotalIssuesFetched: len(issues),
		ByPriority: map[domain.Priority]int{
			domain.PriorityCritical: 0,
			domain.PriorityHigh:     0,
			domain.PriorityMedium:   0,
			domain.PriorityLow:      0,
		},
		ByCategory: make(map[string]domain.CategoryStats, len(cfg.Categories)),
		Repos:      repoStats,
	}

	for _, is := range issues {
		if is.IsNew {
			st.TotalNewIssues++
		}
		if is.IsBug {
			st.TotalBugs++
		}
		if is.IsFeature {
			st.TotalFeatures++
		}
		if is.IsSecurity {
			st.TotalSecurity++
		}
		if is.IsGoodFirstIssue {
			st.TotalGoodFirstIssues++
		}
		if is.IsHelpWanted {
			st.TotalHelpWanted++
		}
		st.ByPriority[is.Priority]++
	}

	for _, cat := range cfg.Categories {
		cs := domain.CategoryStats{
			Label:      cat.Label,
			Icon:       cat.Icon,
			TotalRepos: len(cat.Repos),
		}
		for _, is := range issues {
			if is.Category != cat.Key {
				continue
			}
			cs.TotalIssues++
			if is.IsNew {
				cs.NewIssues++
			}
			if is.IsGoodFirstIssue {
				cs.GoodFirstIssues++
			}
		}
		st.ByCategory[cat.Key] = cs
	}
	return st
}

// Package domain contains the core data structures and domain logic for the application.
package domain

import "time"

// Priority buckets an issue for sorting and rollups. It is derived purely
// from the issue's labels.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Rank returns the sort position of a priority, critical first. Unknown
// values sort last.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// Classification holds the label-derived flags and priority for one issue.
type Classification struct {
	Priority         Priority `json:"priority"`
	IsBug            bool     `json:"is_bug"`
	IsFeature        bool     `json:"is_feature"`
	IsSecurity       bool     `json:"is_security"`
	IsGoodFirstIssue bool     `json:"is_good_first_issue"`
	IsHelpWanted     bool     `json:"is_help_wanted"`
}

// Issue is a single open issue after classification. It is immutable once
// produced; each run fully replaces the previous snapshot.
type Issue struct {
	ID            int64     `json:"id"`
	Repo          string    `json:"repo"`
	Category      string    `json:"category"`
	CategoryLabel string    `json:"category_label"`
	Number        int       `json:"number"`
	Title         string    `json:"title"`
	URL           string    `json:"url"`
	Author        string    `json:"author"`
	AuthorAvatar  string    `json:"author_avatar"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Comments      int       `json:"comments"`
	Labels        []string  `json:"labels"`
	BodyPreview   string    `json:"body_preview"`
	IsNew         bool      `json:"is_new"`
	Classification
}

// RepoStats holds the per-repository aggregate counts. Recomputed on every
// fetch run.
type RepoStats struct {
	Category        string  `json:"category"`
	CategoryLabel   string  `json:"category_label"`
	TotalOpenIssues int     `json:"total_open_issues"`
	Stars           int     `json:"stars"`
	Forks           int     `json:"forks"`
	Description     string  `json:"description"`
	FetchedIssues   int     `json:"fetched_issues"`
	NewIssues       int     `json:"new_issues"`
	Bugs            int     `json:"bugs"`
	Features        int     `json:"features"`
	GoodFirstIssues int     `json:"good_first_issues"`
	HelpWanted      int     `json:"help_wanted"`
	MedianAgeDays   float64 `json:"median_issue_age_days"`
	MeanComments    float64 `json:"mean_comments"`
}

// CategoryStats summarizes one dashboard category.
type CategoryStats struct {
	Label           string `json:"label"`
	Icon            string `json:"icon"`
	TotalRepos      int    `json:"total_repos"`
	TotalIssues     int    `json:"total_issues"`
	NewIssues       int    `json:"new_issues"`
	GoodFirstIssues int    `json:"good_first_issues"`
}

// Stats is the global aggregate written to stats.json.
type Stats struct {
	GeneratedAt          time.Time                `json:"generated_at"`
	LookbackDaysNew      int                      `json:"lookback_days_new"`
	TotalRepos           int                      `json:"total_repos"`
	TotalIssuesFetched   int                      `json:"total_issues_fetched"`
	TotalNewIssues       int                      `json:"total_new_issues"`
	TotalBugs            int                      `json:"total_bugs"`
	TotalFeatures        int                      `json:"total_features"`
	TotalSecurity        int                      `json:"total_security"`
	TotalGoodFirstIssues int                      `json:"total_good_first_issues"`
	TotalHelpWanted      int                      `json:"total_help_wanted"`
	ByPriority           map[Priority]int         `json:"by_priority"`
	ByCategory           map[string]CategoryStats `json:"by_category"`
	Repos                map[string]RepoStats     `json:"repos"`
}

// Snapshot is the full result of one fetch run.
type Snapshot struct {
	Stats  Stats
	Issues []Issue
	ByRepo map[string][]Issue
}

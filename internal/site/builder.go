// Package site renders the static dashboard page from a snapshot.
package site

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"sort"
	"strings"

	"github.com/issuehub/issuehub/internal/config"
	"github.com/issuehub/issuehub/internal/domain"
)

//go:embed templates/index.html.tmpl
var templateFS embed.FS

// Default number of issue rows rendered into the page. More would bloat the
// static HTML without helping anyone scroll.
const DefaultRenderLimit = 500

const topRepoCount = 15

// PageData is everything the HTML template needs, precomputed so the
// template stays purely presentational.
type PageData struct {
	GeneratedAt string
	Stats       domain.Stats
	Categories  []CategoryCard
	TopRepos    []RepoBar
	Issues      []IssueRow
}

// CategoryCard is one clickable category tile.
type CategoryCard struct {
	Key             string
	Label           string
	Icon            string
	Description     string
	TotalRepos      int
	TotalIssues     int
	NewIssues       int
	GoodFirstIssues int
}

// RepoBar is one row of the top-repos bar chart.
type RepoBar struct {
	ShortName string
	Count     int
	Width     float64
}

// LabelChip is a rendered issue label with its color class.
type LabelChip struct {
	Name  string
	Class string
}

// IssueRow is one row of the issue table.
type IssueRow struct {
	domain.Issue
	PriorityDot string
	RepoShort   string
	Date        string
	Chips       []LabelChip
}

// Build assembles the page data: category cards in config order, the
// top-repos chart, and the sorted, capped issue rows.
func Build(st domain.Stats, issues []domain.Issue, cfg *config.Config, limit int) PageData {
	if limit <= 0 {
		limit = DefaultRenderLimit
	}

	page := PageData{
		GeneratedAt: formatGeneratedAt(st),
		Stats:       st,
	}

	for _, cat := range cfg.Categories {
		cs := st.ByCategory[cat.Key]
		page.Categories = append(page.Categories, CategoryCard{
			Key:             cat.Key,
			Label:           cat.Label,
			Icon:            cat.Icon,
			Description:     cat.Description,
			TotalRepos:      len(cat.Repos),
			TotalIssues:     cs.TotalIssues,
			NewIssues:       cs.NewIssues,
			GoodFirstIssues: cs.GoodFirstIssues,
		})
	}

	page.TopRepos = topRepos(st.Repos)

	sorted := sortIssues(issues)
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	for _, is := range sorted {
		page.Issues = append(page.Issues, issueRow(is))
	}
	return page
}

// Render writes the dashboard HTML for the given page data.
func Render(w io.Writer, page PageData) error {
	tmpl, err := template.New("index.html.tmpl").Funcs(template.FuncMap{
		"comma": comma,
	}).ParseFS(templateFS, "templates/index.html.tmpl")
	if err != nil {
		return fmt.Errorf("failed to parse dashboard template: %w", err)
	}
	if err := tmpl.Execute(w, page); err != nil {
		return fmt.Errorf("failed to render dashboard: %w", err)
	}
	return nil
}

// sortIssues orders issues for display: new ones first, then by priority,
// then oldest first within the same bucket.
func sortIssues(issues []domain.Issue) []domain.Issue {
	sorted := make([]domain.Issue, len(issues))
	copy(sorted, issues)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.IsNew != b.IsNew {
			return a.IsNew
		}
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() < b.Priority.Rank()
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return sorted
}

func topRepos(repos map[string]domain.RepoStats) []RepoBar {
	type entry struct {
		name  string
		count int
	}
	entries := make([]entry, 0, len(repos))
	for name, rs := range repos {
		entries = append(entries, entry{name: name, count: rs.TotalOpenIssues})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].name < entries[j].name
	})
	if len(entries) > topRepoCount {
		entries = entries[:topRepoCount]
	}
	if len(entries) == 0 {
		return nil
	}

	maxCount := entries[0].count
	if maxCount < 1 {
		maxCount = 1
	}
	bars := make([]RepoBar, 0, len(entries))
	for _, e := range entries {
		width := float64(e.count) / float64(maxCount) * 100
		if width > 100 {
			width = 100
		}
		bars = append(bars, RepoBar{
			ShortName: shortRepo(e.name),
			Count:     e.count,
			Width:     width,
		})
	}
	return bars
}

func issueRow(is domain.Issue) IssueRow {
	row := IssueRow{
		Issue:       is,
		PriorityDot: priorityDot(is.Priority),
		RepoShort:   shortRepo(is.Repo),
	}
	if !is.CreatedAt.IsZero() {
		row.Date = is.CreatedAt.Format("2006-01-02")
	}
	labels := is.Labels
	if len(labels) > 3 {
		labels = labels[:3]
	}
	for _, l := range labels {
		row.Chips = append(row.Chips, LabelChip{Name: l, Class: labelClass(l)})
	}
	return row
}

func priorityDot(p domain.Priority) string {
	switch p {
	case domain.PriorityCritical:
		return "🔴"
	case domain.PriorityHigh:
		return "🟠"
	case domain.PriorityMedium:
		return "🟡"
	case domain.PriorityLow:
		return "🟢"
	default:
		return "⚪"
	}
}

// labelClass picks the color class for a label chip. Mirrors the keyword
// families used by the classifier, but looser: this is styling, not stats.
func labelClass(label string) string {
	l := strings.ToLower(label)
	switch {
	case containsAny(l, "bug", "defect"):
		return "label label-bug"
	case containsAny(l, "enhancement", "feature"):
		return "label label-feature"
	case containsAny(l, "good first", "beginner", "easy"):
		return "label label-gfi"
	case containsAny(l, "security", "vulnerability"):
		return "label label-security"
	case containsAny(l, "help wanted"):
		return "label label-help"
	default:
		return "label"
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func shortRepo(full string) string {
	if idx := strings.LastIndexByte(full, '/'); idx >= 0 {
		return full[idx+1:]
	}
	return full
}

func formatGeneratedAt(st domain.Stats) string {
	if st.GeneratedAt.IsZero() {
		return "never"
	}
	return st.GeneratedAt.UTC().Format("2006-01-02 15:04") + " UTC"
}

// comma formats an int with thousands separators for the stat cards.
func comma(n int) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

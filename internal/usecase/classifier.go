// Package usecase contains the business logic of the application.
package usecase

import (
	"strings"

	"github.com/issuehub/issuehub/internal/domain"
)

var (
	bugKeywords      = []string{"bug", "defect", "error", "regression"}
	featureKeywords  = []string{"enhancement", "feature", "proposal"}
	securityKeywords = []string{"security", "vulnerability", "cve"}

	goodFirstKeywords = []string{
		"good first issue", "good-first-issue", "easy", "beginner",
		"starter", "first-timers-only", "help wanted", "up-for-grabs",
	}
	helpWantedKeywords = []string{"help wanted", "help-wanted"}
)

// previewLength caps the single-line body preview carried into the snapshot.
const previewLength = 400

// Classify derives type flags and a priority bucket from issue label names.
// Matching is case-insensitive substring matching, so "Type: Bug" and
// "regression-in-5.0" both count as bugs.
func Classify(labels []string) domain.Classification {
	lower := make([]string, len(labels))
	for i, l := range labels {
		lower[i] = strings.ToLower(l)
	}

	c := domain.Classification{
		IsBug:            matchAny(lower, bugKeywords),
		IsFeature:        matchAny(lower, featureKeywords),
		IsSecurity:       matchAny(lower, securityKeywords),
		IsGoodFirstIssue: matchAny(lower, goodFirstKeywords),
		IsHelpWanted:     matchAny(lower, helpWantedKeywords),
	}

	switch {
	case c.IsSecurity:
		c.Priority = domain.PriorityCritical
	case c.IsBug:
		c.Priority = domain.PriorityHigh
	case c.IsFeature:
		c.Priority = domain.PriorityMedium
	default:
		c.Priority = domain.PriorityLow
	}
	return c
}

func matchAny(labels, keywords []string) bool {
	for _, l := range labels {
		for _, k := range keywords {
			if strings.Contains(l, k) {
				return true
			}
		}
	}
	return false
}

// PreviewBody flattens an issue body into a trimmed single-line preview,
// ellipsized when it exceeds the preview length.
func PreviewBody(body string) string {
	runes := []rune(body)
	truncated := len(runes) > previewLength
	if truncated {
		runes = runes[:previewLength]
	}
	preview := strings.TrimSpace(strings.ReplaceAll(string(runes), "\n", " "))
	if truncated {
		preview += "..."
	}
	return preview
}

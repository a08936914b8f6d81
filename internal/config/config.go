// Package config loads the tracked-repository list and fetch tuning knobs
// from a YAML file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/issuehub/issuehub/configs"
)

const (
	defaultLookbackDays   = 7
	defaultRequestDelayMS = 500
)

// Category is one dashboard category with its ordered repo list.
// Categories are a list rather than a map so card order on the dashboard
// is deterministic.
type Category struct {
	Key         string   `yaml:"key"`
	Label       string   `yaml:"label"`
	Icon        string   `yaml:"icon"`
	Description string   `yaml:"description"`
	Repos       []string `yaml:"repos"`
}

// Config represents the application configuration.
type Config struct {
	LookbackDaysNew int        `yaml:"lookback_days_new"`
	RequestDelayMS  int        `yaml:"request_delay_ms"`
	Categories      []Category `yaml:"categories"`
}

// RepoRef identifies a tracked repository and the category it belongs to.
type RepoRef struct {
	Owner         string
	Name          string
	Category      string
	CategoryLabel string
}

// FullName returns the owner/name form used throughout the snapshot files.
func (r RepoRef) FullName() string {
	return r.Owner + "/" + r.Name
}

// Load loads configuration from the specified file path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return parse(data)
}

// Default returns the embedded default configuration.
func Default() (*Config, error) {
	return parse(configs.DefaultConfigYAML)
}

func parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.LookbackDaysNew == 0 {
		cfg.LookbackDaysNew = defaultLookbackDays
	}
	if cfg.RequestDelayMS == 0 {
		cfg.RequestDelayMS = defaultRequestDelayMS
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if len(c.Categories) == 0 {
		return fmt.Errorf("at least one category is required")
	}
	if c.LookbackDaysNew < 0 {
		return fmt.Errorf("lookback_days_new cannot be negative")
	}
	if c.RequestDelayMS < 0 {
		return fmt.Errorf("request_delay_ms cannot be negative")
	}
	seen := make(map[string]struct{}, len(c.Categories))
	for _, cat := range c.Categories {
		if cat.Key == "" {
			return fmt.Errorf("category key cannot be empty")
		}
		if cat.Label == "" {
			return fmt.Errorf("category %q: label cannot be empty", cat.Key)
		}
		if _, ok := seen[cat.Key]; ok {
			return fmt.Errorf("duplicate category key %q", cat.Key)
		}
		seen[cat.Key] = struct{}{}
		for _, repo := range cat.Repos {
			owner, name, ok := splitRepo(repo)
			if !ok || owner == "" || name == "" {
				return fmt.Errorf("category %q: repo %q is not in owner/name form", cat.Key, repo)
			}
		}
	}
	return nil
}

// RequestDelay returns the pause inserted between per-repo API calls.
func (c *Config) RequestDelay() time.Duration {
	return time.Duration(c.RequestDelayMS) * time.Millisecond
}

// Lookback returns the window within which an issue counts as new.
func (c *Config) Lookback() time.Duration {
	return time.Duration(c.LookbackDaysNew) * 24 * time.Hour
}

// TrackedRepos returns the deduplicated repo list in category order. A repo
// listed under several categories belongs to the first one that names it.
func (c *Config) TrackedRepos() []RepoRef {
	seen := make(map[string]struct{})
	var refs []RepoRef
	for _, cat := range c.Categories {
		for _, repo := range cat.Repos {
			if _, ok := seen[repo]; ok {
				continue
			}
			seen[repo] = struct{}{}
			owner, name, _ := splitRepo(repo)
			refs = append(refs, RepoRef{
				Owner:         owner,
				Name:          name,
				Category:      cat.Key,
				CategoryLabel: cat.Label,
			})
		}
	}
	return refs
}

func splitRepo(repo string) (owner, name string, ok bool) {
	owner, name, ok = strings.Cut(repo, "/")
	if !ok || strings.Contains(name, "/") {
		return "", "", false
	}
	return owner, name, true
}

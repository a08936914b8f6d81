// Package snapshot persists fetch results as flat JSON files. Each run
// fully replaces the previous output; there is no incremental update.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/issuehub/issuehub/internal/domain"
)

const (
	issuesFile = "issues.json"
	statsFile  = "stats.json"
	byRepoFile = "issues_by_repo.json"
)

// Write marshals the snapshot into issues.json, stats.json, and
// issues_by_repo.json under dir, creating it if needed.
func Write(dir string, snap *domain.Snapshot) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	if err := writeJSON(filepath.Join(dir, issuesFile), snap.Issues); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, statsFile), snap.Stats); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, byRepoFile), snap.ByRepo)
}

// Load reads a previously written snapshot. A missing snapshot is not an
// error: ok reports whether stats.json was found, so the site builder can
// still render a placeholder page on a fresh deploy.
func Load(dir string) (snap *domain.Snapshot, ok bool, err error) {
	snap = &domain.Snapshot{}
	found := true

	var eg errgroup.Group
	eg.Go(func() error {
		e := readJSON(filepath.Join(dir, statsFile), &snap.Stats)
		if os.IsNotExist(e) {
			found = false
			return nil
		}
		return e
	})
	eg.Go(func() error {
		e := readJSON(filepath.Join(dir, issuesFile), &snap.Issues)
		if os.IsNotExist(e) {
			return nil
		}
		return e
	})

	if err := eg.Wait(); err != nil {
		return nil, false, err
	}
	return snap, found, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

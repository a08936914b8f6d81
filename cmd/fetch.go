// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/issuehub/issuehub/internal/gateway"
	"github.com/issuehub/issuehub/internal/snapshot"
	"github.com/issuehub/issuehub/internal/usecase"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetches and classifies open issues, writing the snapshot JSON files",
	Long: `Fetches open issues and repository metadata for every tracked repo,
classifies and aggregates them, and writes issues.json, stats.json, and
issues_by_repo.json into the data directory. Each run fully replaces the
previous snapshot.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		cfg, err := loadConfig(cmd)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load config")
		}
		dataDir, _ := cmd.Flags().GetString("data-dir")
		perRepo, _ := cmd.Flags().GetInt("per-repo")

		token := os.Getenv("GITHUB_TOKEN")
		if token == "" {
			log.Warn().Msg("GITHUB_TOKEN not set; running anonymously with a low rate limit")
		}

		githubGateway, err := gateway.NewGitHubGateway(token, log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create GitHub gateway")
		}
		aggregator := usecase.NewAggregator(githubGateway, log.Logger)

		snap, err := aggregator.Aggregate(ctx, cfg, perRepo)
		if err != nil {
			log.Fatal().Err(err).Msg("fetch failed")
		}

		if err := snapshot.Write(dataDir, snap); err != nil {
			log.Fatal().Err(err).Msg("failed to write snapshot")
		}

		log.Info().
			Str("data_dir", dataDir).
			Int("issues", snap.Stats.TotalIssuesFetched).
			Int("new", snap.Stats.TotalNewIssues).
			Int("bugs", snap.Stats.TotalBugs).
			Int("features", snap.Stats.TotalFeatures).
			Int("good_first_issues", snap.Stats.TotalGoodFirstIssues).
			Msg("snapshot written")
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().Int("per-repo", 30, "Maximum issues fetched per repository")
}

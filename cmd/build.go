// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/issuehub/issuehub/internal/site"
	"github.com/issuehub/issuehub/internal/snapshot"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Renders the static dashboard page from the snapshot files",
	Long: `Reads the snapshot JSON files and the repo list config and renders the
dashboard to a single static HTML file. When no snapshot exists yet, a
placeholder page is rendered so the first deploy still works.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load config")
		}
		dataDir, _ := cmd.Flags().GetString("data-dir")
		outPath, _ := cmd.Flags().GetString("out")
		limit, _ := cmd.Flags().GetInt("limit")

		snap, ok, err := snapshot.Load(dataDir)
		if err != nil {
			log.Fatal().Err(err).Str("data_dir", dataDir).Msg("failed to load snapshot")
		}
		if !ok {
			log.Warn().Str("data_dir", dataDir).Msg("no snapshot found; rendering placeholder page")
			snap.Stats.TotalRepos = len(cfg.TrackedRepos())
			snap.Stats.GeneratedAt = time.Now().UTC()
		}

		page := site.Build(snap.Stats, snap.Issues, cfg, limit)

		f, err := os.Create(outPath)
		if err != nil {
			log.Fatal().Err(err).Str("out", outPath).Msg("failed to create output file")
		}
		defer f.Close()

		if err := site.Render(f, page); err != nil {
			log.Fatal().Err(err).Msg("failed to render dashboard")
		}

		log.Info().
			Str("out", outPath).
			Int("issues_rendered", len(page.Issues)).
			Int("categories", len(page.Categories)).
			Msg("static site built")
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().String("out", "index.html", "Output path for the rendered dashboard")
	buildCmd.Flags().Int("limit", site.DefaultRenderLimit, "Maximum issue rows rendered into the page")
}

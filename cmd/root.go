// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/issuehub/issuehub/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "issuehub",
	Short: "Tracks and publishes open issues across the Django ecosystem.",
	Long: `issuehub polls the GitHub API for a curated, categorized list of Django
ecosystem repositories, classifies the open issues it finds, and renders a
static dashboard page plus flat JSON data files for GitHub Pages.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		verbose, _ := cmd.Flags().GetBool("verbose")
		if verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

		// .env is optional; the token can come from the environment directly.
		if err := godotenv.Load(); err == nil {
			log.Debug().Msg("loaded .env file")
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().String("config", "", "Path to the repo list YAML (embedded default when unset)")
	rootCmd.PersistentFlags().String("data-dir", "data", "Directory for snapshot JSON files")
}

// loadConfig resolves the --config flag, falling back to the embedded
// default repo list.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.Default()
	}
	return config.Load(path)
}

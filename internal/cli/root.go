// Package cli implements the scoresplit command surface.
package cli

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/local/scoresplit/internal/config"
	"github.com/local/scoresplit/internal/logger"
)

var (
	cfg       config.Config
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "scoresplit",
	Short: "Split sheet music PDFs into per-instrument part files",
	Long: `scoresplit runs OCR over each page of a scanned score, detects the
instrument part printed on it, groups consecutive pages by part and writes
one PDF per part.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; env vars win over file values either way.
		_ = godotenv.Load()
		cfg = config.FromEnv()
		if configDir != "" {
			cfg.ConfigDir = configDir
		}
		return logger.Init(cfg.Logging, cfg.Axiom)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "directory holding instrument_parts.json (default ~/.scoresplit)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/keyword-gap/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "keyword-gap",
	Short: "Keyword gap analysis between a client and a competitor",
	Long:  "Compares two keyword ranking exports, classifies every keyword into opportunity categories, writes CSV/XLSX/JSON reports, and optionally asks a language model for strategic insights.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/biblia-online/biblia/internal/config"
	"github.com/biblia-online/biblia/internal/logger"
)

var (
	configPath string // directory holding main.toml
	cfg        config.Config
)

var rootCmd = &cobra.Command{
	Use:   "biblia",
	Short: "Bíblia Online reads, searches and discusses the Scriptures",
	Long: `Bíblia Online serves bible reading and search backed by a local database,
a legacy MySQL archive and the scripture apis, together with user libraries,
a community board and subscriptions.`,
	Args:         cobra.OnlyValidArgs,
	SilenceUsage: true,
}

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./etc/", "directory of main.toml")
}

// loadConfig reads the configuration and initializes the global logger.
func loadConfig(_ *cobra.Command, _ []string) error {
	var err error

	if cfg, err = config.ReadConfig(configPath); err != nil {
		return err
	}

	return logger.Init(cfg.Log)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

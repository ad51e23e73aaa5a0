// Command server runs the shareit backend API and its maintenance tasks.
package main

import (
	"fmt"
	"io"
	"os"

	"shareit/internal/config"
	"shareit/internal/logging"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var flagConfig string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "shareit-server",
		Short:         "Item sharing backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = "configs/config.yaml"
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", defaultConfig, "path to the YAML config")

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newBackupCmd(),
	)

	return root
}

func loadConfigAndLogger(component string) (*config.Config, zerolog.Logger, io.Closer, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", component).Logger()

	return cfg, logger, closer, nil
}

func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}

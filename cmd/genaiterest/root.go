package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/NethermindEth/genaiterest/pkg/gallery/setup"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "genaiterest",
		Short: "Themed image galleries from LLM-suggested subjects",
		Long: `GenAIterest asks a language model for photography subjects in the
categories you pick, renders every subject with a text-to-image model and
lays the results out in a grid as they complete.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
		SilenceUsage: true,
	}

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newGenerateCmd())

	return cmd
}

// loadSetup reads the configuration, installs the default logger and builds
// the backends. The returned function releases everything.
func loadSetup(ctx context.Context) (*setup.SetupResult, func(), error) {
	config, err := setup.NewConfigFromEnv()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get config from env: %w", err)
	}

	logger, logCloser, err := setup.NewLogger(config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	slog.SetDefault(logger)

	setupResult, err := setup.NewSetupResult(ctx, config, nil)
	if err != nil {
		_ = logCloser.Close()
		return nil, nil, fmt.Errorf("failed to setup: %w", err)
	}

	cleanup := func() {
		closeQuietly("setup", setupResult)
		closeQuietly("log file", logCloser)
	}
	return setupResult, cleanup, nil
}

func closeQuietly(name string, c io.Closer) {
	if err := c.Close(); err != nil {
		slog.Warn("failed to close "+name, "error", err)
	}
}

package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/NethermindEth/genaiterest/pkg/gallery"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the gallery web page",
		Example: `  # Serve on the address from API_IP_PORT (default :8080)
  genaiterest serve

  # Serve on a custom address
  genaiterest serve --addr :3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			setupResult, cleanup, err := loadSetup(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if addr != "" {
				setupResult.Config.ApiIpPort = addr
			}

			client, err := setupResult.NewClient()
			if err != nil {
				return err
			}
			defer client.Close()

			serverConfig, err := gallery.NewServerConfigFromSetupResult(setupResult, client)
			if err != nil {
				return err
			}

			server, err := gallery.NewServer(ctx, serverConfig)
			if err != nil {
				return err
			}

			slog.Info("gallery available", "addr", serverConfig.ApiIpPort)
			if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides API_IP_PORT")

	return cmd
}

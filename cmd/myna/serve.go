package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aleksaelezovic/myna/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP rewrite API",
		Long: `Serve the rewrite API on --addr until interrupted:

  POST   /api/sparql/rewrite
  POST   /api/rdf/rewrite
  GET    /api/runs
  GET    /api/runs/{id}
  GET    /api/runs/{id}/export
  DELETE /api/runs/{id}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, closeStore, err := openService()
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			addr := viper.GetString(serverAddrKey)
			fmt.Fprintf(cmd.OutOrStdout(), "Serving rewrite API at http://%s/api\n", addr)
			return server.NewServer(svc, addr, slog.Default()).Start(ctx)
		},
	}
	cmd.Flags().String(addrFlagName, viper.GetString(serverAddrKey), "listen address")
	return cmd
}

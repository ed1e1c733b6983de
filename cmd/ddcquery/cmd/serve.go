package cmd

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/ddcquery/internal/errors"
	"github.com/Aman-CERP/ddcquery/internal/logging"
	"github.com/Aman-CERP/ddcquery/internal/mcp"
)

func newServeCmd(st *state) *cobra.Command {
	var transport string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol server on stdio.

stdout carries JSON-RPC exclusively; logs go to the configured log file
(default ~/.ddcquery/logs/server.log).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if transport == "" {
				transport = st.cfg.Server.Transport
			}
			return runServe(cmd.Context(), st, transport)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "", "Transport: stdio (default from config)")
	return cmd
}

func runServe(ctx context.Context, st *state, transport string) error {
	cleanup, err := logging.SetupMCPMode(logging.Config{
		Level:     st.cfg.Logging.Level,
		FilePath:  st.cfg.Logging.FilePath,
		MaxSizeMB: st.cfg.Logging.MaxSizeMB,
		MaxFiles:  st.cfg.Logging.MaxFiles,
	})
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, st.cfg)
	if err != nil {
		slog.Error("corpus_load_failed", errors.LogAttrs(err)...)
		return err
	}
	defer a.Close()

	srv, err := mcp.NewServer(a.querier, a.embedder, st.cfg)
	if err != nil {
		return err
	}
	return srv.Serve(ctx, transport)
}

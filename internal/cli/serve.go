package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/clognichain/clogni/internal/audit"
	"github.com/clognichain/clogni/internal/config"
	"github.com/clognichain/clogni/internal/hub"
	"github.com/clognichain/clogni/internal/server"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	cfg, err := config.Load()
	if err != nil {
		slog.Warn("invalid environment config, using defaults", "error", err)
		cfg = config.Default()
	}

	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the function hub over HTTP",
		Long: `Start the HTTP server: POST /v1/call dispatches to the function hub,
GET /v1/functions lists registered names, plus /healthz and /metrics.

Example:
  clogni serve --addr :8095 --log trail.jsonl.gz --db index.db`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", cfg.HTTPAddr, "listen address")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	reg := prometheus.NewRegistry()

	slog.Info("opening audit trail", "log", opts.LogPath, "db", opts.DBPath)
	logger, err := audit.Open(opts.LogPath, opts.DBPath,
		audit.WithMetrics(audit.NewMetrics(reg)))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open audit trail", err)
	}
	defer func() {
		if closeErr := logger.Close(); closeErr != nil {
			slog.Error("error closing audit trail", "error", closeErr)
		}
	}()

	h := hub.New()
	hub.RegisterAuditFuncs(h, logger)

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving on %s. Press Ctrl-C to stop.\n", opts.Addr)

	srv := server.New(h, slog.Default(), reg)
	if err := srv.ListenAndServe(ctx, opts.Addr); err != nil {
		return WrapExitError(ExitFailure, "server error", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/educast/podcast"
	"github.com/dgnsrekt/educast/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the episode synthesis HTTP API",
	Long: paragraph(
		fmt.Sprintf("\nRun the %s: submit scripts over HTTP and poll task records until the episode is ready.", keyword("polling API")),
	),
	Args: cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		cfg, err := podcast.LoadConfig()
		if err != nil {
			return err
		}

		logger := log.Default()
		engine, err := podcast.NewEngine(cfg, logger)
		if err != nil {
			return err
		}

		store, err := openStore(cfg)
		if err != nil {
			return err
		}

		orch, err := podcast.NewOrchestrator(cfg, store, engine, logger)
		if err != nil {
			store.Close() //nolint:errcheck
			return err
		}
		defer orch.Close() //nolint:errcheck

		srv := server.New(cfg.Server.Addr, orch, logger)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() { errCh <- srv.ListenAndServe() }()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

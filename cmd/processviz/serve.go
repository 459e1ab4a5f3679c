package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/timeplus-io/processviz/pkg/api"
	"github.com/timeplus-io/processviz/pkg/pipeline"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the workflow once, then serve the report, rows and charts over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			st, report, err := openAndRun(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeStore(st)

			handler := api.NewAPIHandler(pipeline.NewRunner(st, cfg), st)
			handler.SetReport(report)

			// Use PORT environment variable if available, otherwise use config
			port := os.Getenv("PORT")
			if port == "" {
				port = cfg.Server.Port
			}

			e := api.NewServer(handler, cfg.Server.AllowedOriginList())
			server := &http.Server{
				Addr:         fmt.Sprintf(":%s", port),
				Handler:      e,
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 60 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			serveErr := make(chan error, 1)
			go func() {
				logrus.Infof("Starting server on port %s", port)
				if err := e.StartServer(server); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
				}
				close(serveErr)
			}()

			// Wait for interrupt signal
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			select {
			case err, ok := <-serveErr:
				if ok {
					return fmt.Errorf("failed to start server: %w", err)
				}
				return nil
			case <-quit:
			}
			logrus.Info("Shutting down server...")

			// Create a deadline for graceful shutdown
			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
			defer cancel()

			if err := e.Shutdown(ctx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}

			logrus.Info("Server exited properly")
			return nil
		},
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/CTAG07/wordweaver/pkg/markov"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve generated words from the model registry over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = a.config.ApiAddr
			}

			reg, closeReg, err := a.openRegistry()
			if err != nil {
				return err
			}
			defer closeReg()

			mux := http.NewServeMux()
			NewWordsAPI(reg, func() []markov.Option { return a.chainOptions(nil) }, a.config.ApiMaxLoads, a.logger).RegisterRoutes(mux)
			NewStatsAPI(reg, a.logger).RegisterRoutes(mux)
			limiter := NewClientLimiter(a.config.ApiRate, a.config.ApiBurst)
			server := &http.Server{
				Addr:              addr,
				Handler:           withRequestLogging(limiter.Middleware(mux), a.logger),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errChan := make(chan error, 1)
			go func() {
				a.logger.Info("Starting api server", "address", server.Addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errChan <- err
				}
				close(errChan)
			}()

			select {
			case err = <-errChan:
				return err
			case <-ctx.Done():
				a.logger.Info("OS signal received, initiating shutdown.")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err = server.Shutdown(shutdownCtx); err != nil {
				a.logger.Error("Api server shutdown failed", "error", err)
				return err
			}
			a.logger.Info("HTTP server stopped.")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

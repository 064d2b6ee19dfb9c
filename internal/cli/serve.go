package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"fintrack/internal/cache"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/worker"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const (
	shutdownTimeout      = 30 * time.Second
	defaultSweepInterval = time.Minute
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var secureCookies bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts, secureCookies)
		},
	}
	cmd.Flags().BoolVar(&secureCookies, "secure-cookies", false, "mark the session cookie Secure (serve behind TLS)")
	return cmd
}

func runServe(parent context.Context, opts *rootOptions, secureCookies bool) error {
	logger := opts.logger
	ctx, cancel := ShutdownContext(parent, logger)
	defer cancel()

	instanceID := uuid.NewString()
	app, err := opts.openApp(ctx, instanceID)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	sweep := opts.cfg.CacheTTL
	if sweep <= 0 {
		sweep = defaultSweepInterval
	}
	caches := cache.NewManager(logger)
	caches.Register(app.Dashboard.Cache())
	caches.StartCleanup(sweep)
	defer caches.Stop()

	if app.Backend.Events != nil {
		invalidator := worker.NewInvalidationWorker(app.Dashboard, logger)
		go func() {
			if err := invalidator.Run(ctx, app.Backend.Events); err != nil {
				logger.Error("Record event consumer stopped", log.FieldError, err)
			}
		}()
	}

	events, unsubscribe := app.Auth.Subscribe()
	defer unsubscribe()
	go logSessionEvents(ctx, logger, events)

	srv := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + opts.cfg.Port,
		Gateways:           app.Gateways,
		Dashboard:          app.Dashboard,
		Auth:               app.Auth,
		Store:              app.Backend.Store,
		Schemas:            &app.Schemas,
		RateLimitPerMinute: opts.cfg.RateLimitPerMinute,
		SecureCookies:      secureCookies,
		Logger:             logger,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting fintrack server",
			"port", opts.cfg.Port,
			log.FieldBackend, opts.cfg.DataBackend,
			"instance_id", instanceID,
			"events", app.Backend.Events != nil)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", log.FieldError, err)
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}

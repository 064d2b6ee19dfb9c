package cli

import (
	"context"
	"fmt"

	"fintrack/internal/auth"
	"fintrack/internal/backend"
	"fintrack/internal/config"
	"fintrack/internal/form"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/services"
)

// App is everything a command needs once configuration is loaded.
type App struct {
	Config    *config.Config
	Logger    *log.Logger
	Backend   *backend.BackendResult
	Gateways  *services.Gateways
	Dashboard *services.Dashboard
	Auth      *auth.Service
	Schemas   form.Schemas

	throttle *ratelimit.Limiter
}

// NewApp opens the configured backend and wires the services over it.
// instanceID is set by long-running processes that consume record events.
func NewApp(ctx context.Context, cfg *config.Config, logger *log.Logger, instanceID string) (*App, error) {
	if err := ensureSecret(cfg, logger); err != nil {
		return nil, err
	}
	rates, err := cfg.CurrencyRates()
	if err != nil {
		return nil, err
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	bcfg.InstanceID = instanceID

	result, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", bcfg.Type, err)
	}

	gateways := services.NewGateways(result.Store, services.Deps{
		Publisher: result.Publisher(),
		Logger:    logger,
	})
	dashboard := services.NewDashboard(gateways, services.DashboardOptions{
		CacheTTL: cfg.CacheTTL,
		Rates:    rates,
		Logger:   logger,
	})
	gateways.SetInvalidator(dashboard)

	throttle := ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.AuthMaxAttemptsPerMinute})
	authSvc := auth.NewService(result.Store.Users(), auth.Options{
		Secret:         []byte(cfg.JWTSecret),
		TTL:            cfg.SessionTTL,
		AllowedDomains: cfg.AllowedEmailDomains,
		Throttle:       throttle,
		Logger:         logger,
	})

	return &App{
		Config:    cfg,
		Logger:    logger,
		Backend:   result,
		Gateways:  gateways,
		Dashboard: dashboard,
		Auth:      authSvc,
		Schemas:   form.NewSchemas(cfg.Suggestions.Categories, cfg.Suggestions.Methods),
		throttle:  throttle,
	}, nil
}

// Close stops the sign-in throttle and releases the backend.
func (a *App) Close() error {
	a.throttle.Stop()
	if a.Backend.Cleanup == nil {
		return nil
	}
	return a.Backend.Cleanup()
}

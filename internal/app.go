// Package internal wires configuration, data loading and the HTTP server
// into one runnable application.
package internal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"shoplens/internal/analytics"
	"shoplens/internal/cache"
	"shoplens/internal/config"
	"shoplens/internal/dataset"
	shttp "shoplens/internal/http"
	"shoplens/internal/pkg/logging"
)

// Application holds the running server and its loaded dataset.
type Application struct {
	Config *config.Config
	Logger *slog.Logger
	Data   *dataset.Dataset
	Cache  *cache.Cache

	fiber *fiber.App
}

// NewApp builds the application from the default configuration.
func NewApp() (*Application, error) {
	return NewAppWithConfig(config.GetConfig())
}

// NewAppWithConfig builds the application: logger, dataset, funnel rules
// and HTTP routes. The dataset is loaded once; filters never mutate it.
func NewAppWithConfig(cfg *config.Config) (*Application, error) {
	logger := logging.NewLogger(cfg)

	data, err := dataset.Load(logger, cfg.DataDirectory)
	if err != nil {
		return nil, fmt.Errorf("loading dataset from %s: %w", cfg.DataDirectory, err)
	}

	var rules []analytics.StageRule
	if cfg.FunnelRulesPath != "" {
		rules, err = analytics.LoadStageRules(cfg.FunnelRulesPath)
		if err != nil {
			return nil, fmt.Errorf("loading funnel rules: %w", err)
		}
		logger.Info("loaded custom funnel rules", "path", cfg.FunnelRulesPath, "stages", len(rules))
	}

	resultCache := cache.New()

	app := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		DisableStartupMessage: cfg.IsProduction(),
	})
	api := shttp.NewAPI(logger, data, resultCache, rules, cfg.WorkerCount)
	api.RegisterRoutes(app)

	return &Application{
		Config: cfg,
		Logger: logger,
		Data:   data,
		Cache:  resultCache,
		fiber:  app,
	}, nil
}

// StartAsync begins serving in a background goroutine.
func (a *Application) StartAsync() error {
	go func() {
		addr := ":" + a.Config.AppPort
		a.Logger.Info("listening", "addr", addr, "env", a.Config.Environment)
		if err := a.fiber.Listen(addr); err != nil {
			a.Logger.Error("server stopped", "error", err)
		}
	}()
	return nil
}

// Shutdown stops the HTTP server, honoring the context deadline.
func (a *Application) Shutdown(ctx context.Context) error {
	deadline, ok := ctx.Deadline()
	if !ok {
		return a.fiber.Shutdown()
	}
	return a.fiber.ShutdownWithTimeout(time.Until(deadline))
}

// Fiber exposes the underlying fiber app for tests.
func (a *Application) Fiber() *fiber.App {
	return a.fiber
}

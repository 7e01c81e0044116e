// Package http exposes the analytics engine as a JSON API. Handlers parse
// query params into a filter selection, run the aggregators and shape the
// response; all business logic lives in the analytics package.
package http

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"shoplens/internal/analytics"
	"shoplens/internal/cache"
	"shoplens/internal/dataset"
)

// API holds the handler dependencies: the loaded dataset, the result cache
// and the funnel stage rules.
type API struct {
	logger      *slog.Logger
	data        *dataset.Dataset
	cache       *cache.Cache
	rules       []analytics.StageRule
	workerCount int
}

// NewAPI wires the handlers. A nil rules slice falls back to the default
// purchase funnel.
func NewAPI(logger *slog.Logger, data *dataset.Dataset, resultCache *cache.Cache, rules []analytics.StageRule, workerCount int) *API {
	if rules == nil {
		rules = analytics.DefaultStageRules()
	}
	if workerCount < 1 {
		workerCount = 1
	}
	return &API{
		logger:      logger,
		data:        data,
		cache:       resultCache,
		rules:       rules,
		workerCount: workerCount,
	}
}

// RegisterRoutes mounts all endpoints on the fiber app.
func (a *API) RegisterRoutes(app *fiber.App) {
	app.Get("/_health", a.handleHealth)

	v1 := app.Group("/api/v1")
	v1.Get("/meta", a.handleMeta)
	v1.Get("/overview", a.handleOverview)
	v1.Get("/website", a.handleWebsite)
	v1.Get("/marketing", a.handleMarketing)
	v1.Get("/products", a.handleProducts)
}

func (a *API) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"dataset": shortVersion(a.data.Version),
	})
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
}

func shortVersion(version string) string {
	if len(version) > 12 {
		return version[:12]
	}
	return version
}

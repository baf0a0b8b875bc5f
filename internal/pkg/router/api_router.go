package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/donote/donote/app/controllers"
	"github.com/donote/donote/internal/pkg/middleware"
)

type ApiRouter struct {
	deps *Dependencies
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", h.deps.RateLimiter)
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	webhooks := controllers.NewWebhookController(h.deps.Reconciler)
	api.Post("/webhook/portone", webhooks.HandlePortOneWebhook)

	settlements := controllers.NewSettlementController(h.deps.Settlement)
	api.Get("/cron/settlement", middleware.RequireCronSecret(h.deps.CronSecret), settlements.HandleSettlementCron)

	reports := controllers.NewAdminReportController(h.deps.Reports, h.deps.Archiver, h.deps.WebhookStats)
	admin := api.Group("/admin", middleware.RequireAdminAPIKey(h.deps.AdminAPIKey))
	admin.Get("/reports/settlements", reports.HandleSettlementReport)
	admin.Post("/reports/settlements/archive", reports.HandleSettlementReportArchive)
	admin.Get("/webhooks/stats", reports.HandleWebhookStats)
}

func NewApiRouter(deps *Dependencies) *ApiRouter {
	return &ApiRouter{deps: deps}
}

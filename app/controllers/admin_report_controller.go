package controllers

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/donote/donote/internal/pkg/report"
)

// WebhookStats exposes the webhook outcome counters
type WebhookStats interface {
	Snapshot(ctx context.Context) (map[string]int64, error)
}

// AdminReportController serves settlement reports and webhook statistics
type AdminReportController struct {
	reports  *report.Service
	archiver *report.Archiver
	stats    WebhookStats
}

// NewAdminReportController creates a new admin report controller. archiver
// and stats may be nil when the backing service is not configured.
func NewAdminReportController(reports *report.Service, archiver *report.Archiver, stats WebhookStats) *AdminReportController {
	return &AdminReportController{
		reports:  reports,
		archiver: archiver,
		stats:    stats,
	}
}

func monthQuery(c *fiber.Ctx) string {
	month := strings.TrimSpace(c.Query("month"))
	if month == "" {
		month = time.Now().UTC().Format("2006-01")
	}
	return month
}

// HandleSettlementReport handles GET /api/admin/reports/settlements
func (arc *AdminReportController) HandleSettlementReport(c *fiber.Ctx) error {
	month, err := report.ParseMonth(monthQuery(c))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	rep, err := arc.reports.Monthly(c.UserContext(), month)
	if err != nil {
		log.Errorf("[Report] Monthly report failed: %v", err)
		return internalError(c, "Report generation failed", err)
	}

	switch strings.ToLower(c.Query("format", "json")) {
	case "csv":
		body, err := report.CSV(rep)
		if err != nil {
			return internalError(c, "Report generation failed", err)
		}
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="settlements-`+rep.Month+`.csv"`)
		return c.Status(fiber.StatusOK).Send(body)
	case "json":
		return c.Status(fiber.StatusOK).JSON(rep)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "format must be csv or json"})
	}
}

// HandleSettlementReportArchive handles POST /api/admin/reports/settlements/archive
func (arc *AdminReportController) HandleSettlementReportArchive(c *fiber.Ctx) error {
	if arc.archiver == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "report archiving is disabled"})
	}

	month := monthQuery(c)
	if _, err := report.ParseMonth(month); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	res, err := arc.archiver.ArchiveMonth(c.UserContext(), arc.reports, month)
	if err != nil {
		log.Errorf("[Report] Archive of %s failed: %v", month, err)
		return internalError(c, "Report archive failed", err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "archive": res})
}

// HandleWebhookStats handles GET /api/admin/webhooks/stats
func (arc *AdminReportController) HandleWebhookStats(c *fiber.Ctx) error {
	if arc.stats == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "webhook counters are unavailable"})
	}
	counts, err := arc.stats.Snapshot(c.UserContext())
	if err != nil {
		log.Errorf("[Report] Webhook stats failed: %v", err)
		return internalError(c, "Webhook stats unavailable", err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"outcomes": counts})
}

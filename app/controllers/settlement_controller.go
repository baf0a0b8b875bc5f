package controllers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/donote/donote/internal/pkg/settlement"
)

const settlementTimeout = 5 * time.Minute

// SettlementRunner runs one settlement batch
type SettlementRunner interface {
	Run(ctx context.Context) (*settlement.Result, error)
}

// SettlementController handles the settlement cron trigger
type SettlementController struct {
	job SettlementRunner
}

// NewSettlementController creates a new settlement controller
func NewSettlementController(job SettlementRunner) *SettlementController {
	return &SettlementController{job: job}
}

// HandleSettlementCron handles GET /api/cron/settlement
func (sc *SettlementController) HandleSettlementCron(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), settlementTimeout)
	defer cancel()

	res, err := sc.job.Run(ctx)
	if err != nil {
		if errors.Is(err, settlement.ErrRunInProgress) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "settlement already running"})
		}
		log.Errorf("[Settlement] Cron run failed: %v", err)
		return internalError(c, "Settlement job failed", err)
	}

	body := fiber.Map{
		"success":            true,
		"message":            fmt.Sprintf("Processed %d settlements", res.Processed),
		"processed":          res.Processed,
		"totalSettledAmount": res.TotalSettledAmount,
		"batchId":            res.BatchID,
	}
	if len(res.Errors) > 0 {
		body["errors"] = res.Errors
	}
	return c.Status(fiber.StatusOK).JSON(body)
}

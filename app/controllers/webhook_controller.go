package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/donote/donote/internal/pkg/reconciliation"
)

const webhookTimeout = 15 * time.Second

// WebhookReconciler applies a verified gateway webhook
type WebhookReconciler interface {
	HandleWebhook(ctx context.Context, payload reconciliation.WebhookPayload) (*reconciliation.Result, error)
}

// WebhookController handles PortOne payment webhooks
type WebhookController struct {
	reconciler WebhookReconciler
}

// NewWebhookController creates a new webhook controller
func NewWebhookController(reconciler WebhookReconciler) *WebhookController {
	return &WebhookController{reconciler: reconciler}
}

// HandlePortOneWebhook handles POST /api/webhook/portone
func (wc *WebhookController) HandlePortOneWebhook(c *fiber.Ctx) error {
	var payload reconciliation.WebhookPayload
	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON body"})
	}
	if err := getValidator().Struct(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "imp_uid and merchant_uid are required"})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), webhookTimeout)
	defer cancel()

	res, err := wc.reconciler.HandleWebhook(ctx, payload)
	if err != nil {
		if errors.Is(err, reconciliation.ErrAmountMismatch) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Payment amount mismatch, possible tampering detected",
			})
		}
		log.Errorf("[Webhook] Processing %s failed: %v", payload.ImpUID, err)
		return internalError(c, "Webhook processing failed", err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  res.Status,
		"message": res.Message,
	})
}

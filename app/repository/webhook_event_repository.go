package repository

import (
	"context"
	"time"

	"github.com/donote/donote/app/models"
	"gorm.io/gorm"
)

type webhookEventRepository struct {
	db *gorm.DB
}

// NewWebhookEventRepository creates a new webhook event repository instance
func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepository{db: db}
}

func (r *webhookEventRepository) Create(ctx context.Context, event *models.PaymentWebhookEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *webhookEventRepository) MarkProcessed(ctx context.Context, id uint, gatewayStatus, outcome, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"gateway_status":   gatewayStatus,
		"outcome":          outcome,
		"processing_error": processingError,
		"processed_at":     &now,
	}
	return r.db.WithContext(ctx).Model(&models.PaymentWebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}

package models

import "time"

// Webhook outcomes, also used as the "status" field of webhook responses.
const (
	WebhookOutcomeSuccess          = "success"
	WebhookOutcomeIgnored          = "ignored"
	WebhookOutcomeAlreadyProcessed = "already_processed"
	WebhookOutcomeUnknown          = "unknown"
	WebhookOutcomeRejected         = "rejected"
	WebhookOutcomeError            = "error"
)

// PaymentWebhookEvent is an audit row for each gateway webhook delivery.
// It is never used to decide whether a delivery is a duplicate.
type PaymentWebhookEvent struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	ImpUID          string     `gorm:"type:varchar(191);not null;index" json:"imp_uid"`
	MerchantUID     string     `gorm:"type:varchar(191);not null;default:''" json:"merchant_uid"`
	EventStatus     string     `gorm:"type:varchar(32);not null;default:''" json:"event_status"`
	GatewayStatus   string     `gorm:"type:varchar(32);not null;default:''" json:"gateway_status"`
	PayloadJSON     string     `gorm:"type:text" json:"payload_json"`
	Outcome         string     `gorm:"type:varchar(32);not null;default:'';index" json:"outcome"`
	ProcessingError string     `gorm:"type:text" json:"processing_error"`
	ProcessedAt     *time.Time `gorm:"type:timestamp;default:null" json:"processed_at,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

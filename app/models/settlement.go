package models

import "time"

// SettlementStatus is the review state of a settlement payout.
type SettlementStatus string

const (
	SettlementStatusPending   SettlementStatus = "pending"
	SettlementStatusApproved  SettlementStatus = "approved"
	SettlementStatusRejected  SettlementStatus = "rejected"
	SettlementStatusCompleted SettlementStatus = "completed"
)

const (
	// SettlementFeeBasisPoints is the platform fee (5%) in 1/100 of a percent.
	SettlementFeeBasisPoints = 500
	// MinSettlementAmount is the smallest available balance that is paid out.
	MinSettlementAmount int64 = 10000
)

// SettlementFee returns round(amount * 5%) with half-up rounding, computed
// in integers so that fee + net always equals amount.
func SettlementFee(amount int64) int64 {
	if amount <= 0 {
		return 0
	}
	return (amount*SettlementFeeBasisPoints + 5000) / 10000
}

// Settlement is a payout record for a creator. Rows are append-only from the
// point of view of this service.
type Settlement struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	CreatorID   string           `gorm:"type:varchar(191);not null;index:idx_settlements_creator_status,priority:1" json:"creator_id"`
	Amount      int64            `gorm:"not null" json:"amount"`
	Fee         int64            `gorm:"not null" json:"fee"`
	NetAmount   int64            `gorm:"not null" json:"net_amount"`
	Status      SettlementStatus `gorm:"type:varchar(16);not null;default:'pending';index:idx_settlements_creator_status,priority:2" json:"status"`
	IsAuto      bool             `gorm:"default:false" json:"is_auto"`
	BatchID     string           `gorm:"type:varchar(36);default:'';index" json:"batch_id"`
	RequestedAt time.Time        `gorm:"not null;index" json:"requested_at"`
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

// NewAutoSettlement builds an approved settlement for the given gross amount.
func NewAutoSettlement(creatorID string, amount int64, batchID string, now time.Time) *Settlement {
	fee := SettlementFee(amount)
	return &Settlement{
		CreatorID:   creatorID,
		Amount:      amount,
		Fee:         fee,
		NetAmount:   amount - fee,
		Status:      SettlementStatusApproved,
		IsAuto:      true,
		BatchID:     batchID,
		RequestedAt: now,
	}
}

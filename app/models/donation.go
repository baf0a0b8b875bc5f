package models

import "time"

// DonationStatus is the lifecycle state of a donation.
type DonationStatus string

const (
	DonationStatusPending   DonationStatus = "pending"
	DonationStatusCompleted DonationStatus = "completed"
	DonationStatusCancelled DonationStatus = "cancelled"
	DonationStatusFailed    DonationStatus = "failed"
)

// donationTransitions lists the only legal status moves. Everything else is
// rejected before a write is attempted.
var donationTransitions = map[DonationStatus][]DonationStatus{
	DonationStatusPending:   {DonationStatusCompleted, DonationStatusFailed},
	DonationStatusCompleted: {DonationStatusCancelled},
}

// Valid reports whether s is one of the known statuses.
func (s DonationStatus) Valid() bool {
	switch s {
	case DonationStatusPending, DonationStatusCompleted, DonationStatusCancelled, DonationStatusFailed:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether a donation in status s may move to next.
func (s DonationStatus) CanTransitionTo(next DonationStatus) bool {
	for _, allowed := range donationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Donation is a single supporter payment to a creator. Amount is in KRW
// (minor unit) and never changes after the row is created.
type Donation struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	PaymentID   string         `gorm:"type:varchar(191);not null;uniqueIndex:ux_donations_payment_id" json:"payment_id"`
	MerchantUID string         `gorm:"type:varchar(191);not null;index" json:"merchant_uid"`
	CreatorID   string         `gorm:"type:varchar(191);not null;index:idx_donations_creator_status,priority:1" json:"creator_id"`
	Amount      int64          `gorm:"not null" json:"amount"`
	Status      DonationStatus `gorm:"type:varchar(16);not null;default:'pending';index:idx_donations_creator_status,priority:2" json:"status"`
	DonorName   string         `gorm:"type:varchar(100);default:''" json:"donor_name"`
	Message     string         `gorm:"type:text" json:"message"`
	Sticker     string         `gorm:"type:varchar(100);default:''" json:"sticker"`
	PaidAt      *time.Time     `gorm:"type:timestamp;default:null" json:"paid_at,omitempty"`
	CancelledAt *time.Time     `gorm:"type:timestamp;default:null" json:"cancelled_at,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

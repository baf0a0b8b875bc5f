package models

import (
	"strings"
	"time"
)

const (
	BusinessTypeIndividual = "individual"
	BusinessTypeBusiness   = "business"
)

// CreatorSettlementInfo holds the bank and tax identity a creator registered
// for payouts. Only creators with a row here are settled automatically.
type CreatorSettlementInfo struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	CreatorID         string    `gorm:"type:varchar(191);not null;uniqueIndex" json:"creator_id"`
	AccountHolder     string    `gorm:"type:varchar(100);not null" json:"account_holder"`
	BankName          string    `gorm:"type:varchar(50);not null" json:"bank_name"`
	AccountNumber     string    `gorm:"type:varchar(50);not null" json:"-"`
	BusinessType      string    `gorm:"type:varchar(20);not null;default:'individual'" json:"business_type"`
	BusinessRegNumber string    `gorm:"type:varchar(20);default:''" json:"business_reg_number"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// MaskedAccountNumber keeps the last four digits visible.
func (i *CreatorSettlementInfo) MaskedAccountNumber() string {
	n := strings.TrimSpace(i.AccountNumber)
	if len(n) <= 4 {
		return n
	}
	return strings.Repeat("*", len(n)-4) + n[len(n)-4:]
}

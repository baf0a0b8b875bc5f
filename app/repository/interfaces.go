package repository

import (
	"context"
	"errors"
	"time"

	"github.com/donote/donote/app/models"
	"gorm.io/gorm"
)

// ErrIllegalTransition is returned when a status change is not allowed by the
// donation transition table.
var ErrIllegalTransition = errors.New("illegal donation status transition")

// DonationRepository defines the ledger operations on donations
type DonationRepository interface {
	GetByPaymentID(ctx context.Context, paymentID string) (*models.Donation, error)
	// CreateIfNotExists inserts d unless a donation with the same payment id
	// exists. It reports whether a row was inserted.
	CreateIfNotExists(ctx context.Context, d *models.Donation) (bool, error)
	// TransitionStatus moves the donation from -> to only if it is currently
	// in status from, and reports whether a row changed.
	TransitionStatus(ctx context.Context, paymentID string, from, to models.DonationStatus, at time.Time) (bool, error)
	SumCompletedByCreator(ctx context.Context, creatorID string) (int64, error)
}

// SettlementRepository defines the ledger operations on settlements
type SettlementRepository interface {
	Create(ctx context.Context, s *models.Settlement) error
	SumUnrejectedByCreator(ctx context.Context, creatorID string) (int64, error)
	ListUnrejectedBetween(ctx context.Context, from, to time.Time) ([]models.Settlement, error)
}

// CreatorSettlementInfoRepository reads creator payout identities
type CreatorSettlementInfoRepository interface {
	ListCreatorIDs(ctx context.Context) ([]string, error)
	GetByCreatorIDs(ctx context.Context, creatorIDs []string) (map[string]models.CreatorSettlementInfo, error)
}

// WebhookEventRepository persists the webhook delivery audit log
type WebhookEventRepository interface {
	Create(ctx context.Context, event *models.PaymentWebhookEvent) error
	MarkProcessed(ctx context.Context, id uint, gatewayStatus, outcome, processingError string) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	db *gorm.DB

	Donation     DonationRepository
	Settlement   SettlementRepository
	CreatorInfo  CreatorSettlementInfoRepository
	WebhookEvent WebhookEventRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:           db,
		Donation:     NewDonationRepository(db),
		Settlement:   NewSettlementRepository(db),
		CreatorInfo:  NewCreatorSettlementInfoRepository(db),
		WebhookEvent: NewWebhookEventRepository(db),
	}
}

// Transaction runs fn with repositories bound to a single database
// transaction. The transaction is rolled back when fn returns an error.
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

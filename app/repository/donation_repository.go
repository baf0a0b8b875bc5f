package repository

import (
	"context"
	"time"

	"github.com/donote/donote/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// donationRepository implements the DonationRepository interface
type donationRepository struct {
	db *gorm.DB
}

// NewDonationRepository creates a new donation repository instance
func NewDonationRepository(db *gorm.DB) DonationRepository {
	return &donationRepository{db: db}
}

// GetByPaymentID returns gorm.ErrRecordNotFound when no donation matches
func (r *donationRepository) GetByPaymentID(ctx context.Context, paymentID string) (*models.Donation, error) {
	var d models.Donation
	if err := r.db.WithContext(ctx).Where("payment_id = ?", paymentID).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *donationRepository) CreateIfNotExists(ctx context.Context, d *models.Donation) (bool, error) {
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "payment_id"}},
		DoNothing: true,
	}).Create(d)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *donationRepository) TransitionStatus(ctx context.Context, paymentID string, from, to models.DonationStatus, at time.Time) (bool, error) {
	if !from.CanTransitionTo(to) {
		return false, ErrIllegalTransition
	}

	updates := map[string]interface{}{
		"status":     to,
		"updated_at": at,
	}
	switch to {
	case models.DonationStatusCompleted:
		updates["paid_at"] = at
	case models.DonationStatusCancelled:
		updates["cancelled_at"] = at
	}

	tx := r.db.WithContext(ctx).Model(&models.Donation{}).
		Where("payment_id = ? AND status = ?", paymentID, from).
		Updates(updates)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

func (r *donationRepository) SumCompletedByCreator(ctx context.Context, creatorID string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Donation{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("creator_id = ? AND status = ?", creatorID, models.DonationStatusCompleted).
		Scan(&total).Error
	return total, err
}

package repository

import (
	"context"
	"time"

	"github.com/donote/donote/app/models"
	"gorm.io/gorm"
)

// settlementRepository implements the SettlementRepository interface
type settlementRepository struct {
	db *gorm.DB
}

// NewSettlementRepository creates a new settlement repository instance
func NewSettlementRepository(db *gorm.DB) SettlementRepository {
	return &settlementRepository{db: db}
}

func (r *settlementRepository) Create(ctx context.Context, s *models.Settlement) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// SumUnrejectedByCreator sums every settlement of the creator that still
// counts against the balance (anything but rejected).
func (r *settlementRepository) SumUnrejectedByCreator(ctx context.Context, creatorID string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Settlement{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("creator_id = ? AND status <> ?", creatorID, models.SettlementStatusRejected).
		Scan(&total).Error
	return total, err
}

// ListUnrejectedBetween returns settlements requested in [from, to), ordered
// by creator and id.
func (r *settlementRepository) ListUnrejectedBetween(ctx context.Context, from, to time.Time) ([]models.Settlement, error) {
	var out []models.Settlement
	err := r.db.WithContext(ctx).
		Where("requested_at >= ? AND requested_at < ? AND status <> ?", from.UTC(), to.UTC(), models.SettlementStatusRejected).
		Order("creator_id ASC, id ASC").
		Find(&out).Error
	return out, err
}

package repository

import (
	"context"

	"github.com/donote/donote/app/models"
	"gorm.io/gorm"
)

type creatorSettlementInfoRepository struct {
	db *gorm.DB
}

// NewCreatorSettlementInfoRepository creates a new settlement info repository instance
func NewCreatorSettlementInfoRepository(db *gorm.DB) CreatorSettlementInfoRepository {
	return &creatorSettlementInfoRepository{db: db}
}

// ListCreatorIDs returns the creators that registered payout details, sorted.
func (r *creatorSettlementInfoRepository) ListCreatorIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.CreatorSettlementInfo{}).
		Order("creator_id ASC").
		Pluck("creator_id", &ids).Error
	return ids, err
}

func (r *creatorSettlementInfoRepository) GetByCreatorIDs(ctx context.Context, creatorIDs []string) (map[string]models.CreatorSettlementInfo, error) {
	out := make(map[string]models.CreatorSettlementInfo, len(creatorIDs))
	if len(creatorIDs) == 0 {
		return out, nil
	}

	var rows []models.CreatorSettlementInfo
	if err := r.db.WithContext(ctx).Where("creator_id IN ?", creatorIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.CreatorID] = row
	}
	return out, nil
}

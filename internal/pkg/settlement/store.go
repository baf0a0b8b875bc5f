package settlement

import (
	"context"

	"github.com/donote/donote/app/models"
	"github.com/donote/donote/app/repository"
)

// Ledger is the per-creator view used inside one settlement transaction.
type Ledger interface {
	SumCompletedDonations(ctx context.Context, creatorID string) (int64, error)
	SumUnrejectedSettlements(ctx context.Context, creatorID string) (int64, error)
	CreateSettlement(ctx context.Context, s *models.Settlement) error
}

// Store lists settleable creators and opens ledger transactions.
type Store interface {
	ListCreatorIDs(ctx context.Context) ([]string, error)
	InTransaction(ctx context.Context, fn func(Ledger) error) error
}

type repositoryStore struct {
	repos *repository.Repositories
}

// NewStore adapts the repositories to the settlement Store.
func NewStore(repos *repository.Repositories) Store {
	return &repositoryStore{repos: repos}
}

func (s *repositoryStore) ListCreatorIDs(ctx context.Context) ([]string, error) {
	return s.repos.CreatorInfo.ListCreatorIDs(ctx)
}

func (s *repositoryStore) InTransaction(ctx context.Context, fn func(Ledger) error) error {
	return s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		return fn(repositoryLedger{tx})
	})
}

type repositoryLedger struct {
	repos *repository.Repositories
}

func (l repositoryLedger) SumCompletedDonations(ctx context.Context, creatorID string) (int64, error) {
	return l.repos.Donation.SumCompletedByCreator(ctx, creatorID)
}

func (l repositoryLedger) SumUnrejectedSettlements(ctx context.Context, creatorID string) (int64, error) {
	return l.repos.Settlement.SumUnrejectedByCreator(ctx, creatorID)
}

func (l repositoryLedger) CreateSettlement(ctx context.Context, s *models.Settlement) error {
	return l.repos.Settlement.Create(ctx, s)
}

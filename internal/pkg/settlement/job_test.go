package settlement

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/donote/donote/app/models"
	"github.com/donote/donote/app/repository"
	"github.com/donote/donote/internal/pkg/database"
)

func newLedgerDB(t *testing.T) (*gorm.DB, *repository.Repositories) {
	t.Helper()
	db, err := database.OpenInMemory(uuid.NewString())
	require.NoError(t, err)
	return db, repository.NewRepositories(db)
}

func addCreator(t *testing.T, db *gorm.DB, creatorID string, donations ...int64) {
	t.Helper()
	require.NoError(t, db.Create(&models.CreatorSettlementInfo{
		CreatorID:     creatorID,
		AccountHolder: "holder",
		BankName:      "KB",
		AccountNumber: "1234567890",
		BusinessType:  models.BusinessTypeIndividual,
	}).Error)
	for _, amount := range donations {
		require.NoError(t, db.Create(&models.Donation{
			PaymentID:   "imp_" + uuid.NewString(),
			MerchantUID: "donation_" + creatorID + "_1700000000",
			CreatorID:   creatorID,
			Amount:      amount,
			Status:      models.DonationStatusCompleted,
		}).Error)
	}
}

func settlementsOf(t *testing.T, db *gorm.DB, creatorID string) []models.Settlement {
	t.Helper()
	var out []models.Settlement
	require.NoError(t, db.Where("creator_id = ?", creatorID).Order("id").Find(&out).Error)
	return out
}

func TestRunSettlesAvailableBalance(t *testing.T) {
	db, repos := newLedgerDB(t)
	addCreator(t, db, "c1", 30000, 20000)

	res, err := NewJob(NewStore(repos), nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, int64(50000), res.TotalSettledAmount)
	assert.Empty(t, res.Errors)
	assert.NotEmpty(t, res.BatchID)

	rows := settlementsOf(t, db, "c1")
	require.Len(t, rows, 1)
	assert.Equal(t, int64(50000), rows[0].Amount)
	assert.Equal(t, int64(2500), rows[0].Fee)
	assert.Equal(t, int64(47500), rows[0].NetAmount)
	assert.Equal(t, models.SettlementStatusApproved, rows[0].Status)
	assert.True(t, rows[0].IsAuto)
	assert.Equal(t, res.BatchID, rows[0].BatchID)
}

func TestRunSkipsBelowMinimumAndCarriesForward(t *testing.T) {
	db, repos := newLedgerDB(t)
	addCreator(t, db, "small", 9999)
	job := NewJob(NewStore(repos), nil)

	res, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Processed)
	assert.Equal(t, 1, res.Skipped)
	assert.Empty(t, settlementsOf(t, db, "small"))

	// a later donation lifts the carried balance over the minimum
	require.NoError(t, db.Create(&models.Donation{
		PaymentID: "imp_late", MerchantUID: "donation_small_1700000001", CreatorID: "small",
		Amount: 1, Status: models.DonationStatusCompleted,
	}).Error)

	res, err = job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)
	rows := settlementsOf(t, db, "small")
	require.Len(t, rows, 1)
	assert.Equal(t, int64(10000), rows[0].Amount)
	assert.Equal(t, int64(500), rows[0].Fee)
}

func TestRunIsNotRepeatedOnSettledBalance(t *testing.T) {
	db, repos := newLedgerDB(t)
	addCreator(t, db, "c1", 50000)
	job := NewJob(NewStore(repos), nil)

	_, err := job.Run(context.Background())
	require.NoError(t, err)
	res, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Processed)
	assert.Len(t, settlementsOf(t, db, "c1"), 1)
}

func TestRunIgnoresRejectedSettlements(t *testing.T) {
	db, repos := newLedgerDB(t)
	addCreator(t, db, "c1", 40000)
	require.NoError(t, db.Create(&models.Settlement{
		CreatorID: "c1", Amount: 25000, Fee: 1250, NetAmount: 23750,
		Status: models.SettlementStatusRejected, RequestedAt: time.Now().UTC(),
	}).Error)
	require.NoError(t, db.Create(&models.Settlement{
		CreatorID: "c1", Amount: 15000, Fee: 750, NetAmount: 14250,
		Status: models.SettlementStatusCompleted, RequestedAt: time.Now().UTC(),
	}).Error)

	res, err := NewJob(NewStore(repos), nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(25000), res.TotalSettledAmount)
}

func TestRunOnlyCoversCreatorsWithSettlementInfo(t *testing.T) {
	db, repos := newLedgerDB(t)
	require.NoError(t, db.Create(&models.Donation{
		PaymentID: "imp_x", MerchantUID: "donation_noinfo_1", CreatorID: "noinfo",
		Amount: 90000, Status: models.DonationStatusCompleted,
	}).Error)

	res, err := NewJob(NewStore(repos), nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Processed)
	assert.Empty(t, settlementsOf(t, db, "noinfo"))
}

func TestFeePlusNetEqualsAmountForCreatedSettlements(t *testing.T) {
	db, repos := newLedgerDB(t)
	amounts := []int64{10000, 10010, 12345, 12350, 99999, 1234567}
	for i, a := range amounts {
		addCreator(t, db, "c"+string(rune('a'+i)), a)
	}

	res, err := NewJob(NewStore(repos), nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(amounts), res.Processed)

	var rows []models.Settlement
	require.NoError(t, db.Find(&rows).Error)
	for _, s := range rows {
		assert.Equal(t, s.Amount, s.Fee+s.NetAmount)
		assert.Equal(t, models.SettlementFee(s.Amount), s.Fee)
	}
}

type fakeStore struct {
	creators []string
	listErr  error
	balances map[string]int64
	failing  map[string]error
	created  []*models.Settlement
}

func (s *fakeStore) ListCreatorIDs(ctx context.Context) ([]string, error) {
	return s.creators, s.listErr
}

func (s *fakeStore) InTransaction(ctx context.Context, fn func(Ledger) error) error {
	return fn(s)
}

func (s *fakeStore) SumCompletedDonations(ctx context.Context, creatorID string) (int64, error) {
	if err := s.failing[creatorID]; err != nil {
		return 0, err
	}
	return s.balances[creatorID], nil
}

func (s *fakeStore) SumUnrejectedSettlements(ctx context.Context, creatorID string) (int64, error) {
	return 0, nil
}

func (s *fakeStore) CreateSettlement(ctx context.Context, st *models.Settlement) error {
	s.created = append(s.created, st)
	return nil
}

func TestRunContinuesAfterCreatorFailure(t *testing.T) {
	store := &fakeStore{
		creators: []string{"a", "b", "c"},
		balances: map[string]int64{"a": 20000, "c": 30000},
		failing:  map[string]error{"b": errors.New("connection reset")},
	}

	res, err := NewJob(store, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Processed)
	assert.Equal(t, int64(50000), res.TotalSettledAmount)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "creator b")
	assert.Contains(t, res.Errors[0], "connection reset")
	assert.Len(t, store.created, 2)
}

func TestRunFailsWhenCreatorsCannotBeListed(t *testing.T) {
	store := &fakeStore{listErr: errors.New("db down")}
	_, err := NewJob(store, nil).Run(context.Background())
	assert.Error(t, err)
}

type fakeLocker struct {
	mu       sync.Mutex
	held     bool
	acquired int
	released int
}

type fakeLock struct{ l *fakeLocker }

func (f fakeLock) Release(ctx context.Context) error {
	f.l.mu.Lock()
	defer f.l.mu.Unlock()
	f.l.held = false
	f.l.released++
	return nil
}

func (f *fakeLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (Lock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held {
		return nil, ErrRunInProgress
	}
	f.held = true
	f.acquired++
	return fakeLock{l: f}, nil
}

func TestRunHoldsAndReleasesLock(t *testing.T) {
	locker := &fakeLocker{}
	store := &fakeStore{creators: []string{"a"}, balances: map[string]int64{"a": 10000}}

	_, err := NewJob(store, locker).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, locker.acquired)
	assert.Equal(t, 1, locker.released)
	assert.False(t, locker.held)
}

func TestRunRejectsOverlappingRun(t *testing.T) {
	locker := &fakeLocker{held: true}
	store := &fakeStore{creators: []string{"a"}, balances: map[string]int64{"a": 10000}}

	_, err := NewJob(store, locker).Run(context.Background())
	assert.ErrorIs(t, err, ErrRunInProgress)
	assert.Empty(t, store.created)
}

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/donote/donote/app/models"
	"github.com/donote/donote/internal/pkg/database"
)

func newTestRepos(t *testing.T) (*Repositories, *gorm.DB) {
	t.Helper()
	db, err := database.OpenInMemory(uuid.NewString())
	require.NoError(t, err)
	return NewRepositories(db), db
}

func seedDonation(t *testing.T, db *gorm.DB, paymentID, creatorID string, amount int64, status models.DonationStatus) {
	t.Helper()
	require.NoError(t, db.Create(&models.Donation{
		PaymentID:   paymentID,
		MerchantUID: "donation_" + creatorID + "_1700000000000",
		CreatorID:   creatorID,
		Amount:      amount,
		Status:      status,
	}).Error)
}

func TestDonationGetByPaymentID(t *testing.T) {
	repos, db := newTestRepos(t)
	ctx := context.Background()
	seedDonation(t, db, "imp_1", "c1", 5000, models.DonationStatusPending)

	d, err := repos.Donation.GetByPaymentID(ctx, "imp_1")
	require.NoError(t, err)
	assert.Equal(t, "c1", d.CreatorID)
	assert.Equal(t, int64(5000), d.Amount)

	_, err = repos.Donation.GetByPaymentID(ctx, "imp_missing")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestDonationCreateIfNotExists(t *testing.T) {
	repos, _ := newTestRepos(t)
	ctx := context.Background()

	first := &models.Donation{PaymentID: "imp_1", MerchantUID: "donation_c1_1", CreatorID: "c1", Amount: 1000, Status: models.DonationStatusCompleted}
	created, err := repos.Donation.CreateIfNotExists(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)

	dup := &models.Donation{PaymentID: "imp_1", MerchantUID: "donation_c1_1", CreatorID: "c1", Amount: 9999, Status: models.DonationStatusPending}
	created, err = repos.Donation.CreateIfNotExists(ctx, dup)
	require.NoError(t, err)
	assert.False(t, created)

	stored, err := repos.Donation.GetByPaymentID(ctx, "imp_1")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), stored.Amount)
	assert.Equal(t, models.DonationStatusCompleted, stored.Status)
}

func TestDonationTransitionStatus(t *testing.T) {
	repos, db := newTestRepos(t)
	ctx := context.Background()
	seedDonation(t, db, "imp_1", "c1", 5000, models.DonationStatusPending)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	changed, err := repos.Donation.TransitionStatus(ctx, "imp_1", models.DonationStatusPending, models.DonationStatusCompleted, at)
	require.NoError(t, err)
	assert.True(t, changed)

	// second attempt from pending matches nothing
	changed, err = repos.Donation.TransitionStatus(ctx, "imp_1", models.DonationStatusPending, models.DonationStatusCompleted, at.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)

	d, err := repos.Donation.GetByPaymentID(ctx, "imp_1")
	require.NoError(t, err)
	assert.Equal(t, models.DonationStatusCompleted, d.Status)
	require.NotNil(t, d.PaidAt)
	assert.True(t, at.Equal(*d.PaidAt))

	changed, err = repos.Donation.TransitionStatus(ctx, "imp_1", models.DonationStatusCompleted, models.DonationStatusCancelled, at)
	require.NoError(t, err)
	assert.True(t, changed)

	d, err = repos.Donation.GetByPaymentID(ctx, "imp_1")
	require.NoError(t, err)
	assert.Equal(t, models.DonationStatusCancelled, d.Status)
	assert.NotNil(t, d.CancelledAt)
}

func TestDonationTransitionStatusRejectsIllegalMove(t *testing.T) {
	repos, db := newTestRepos(t)
	seedDonation(t, db, "imp_1", "c1", 5000, models.DonationStatusPending)

	_, err := repos.Donation.TransitionStatus(context.Background(), "imp_1", models.DonationStatusPending, models.DonationStatusCancelled, time.Now())
	assert.ErrorIs(t, err, ErrIllegalTransition)

	d, err := repos.Donation.GetByPaymentID(context.Background(), "imp_1")
	require.NoError(t, err)
	assert.Equal(t, models.DonationStatusPending, d.Status)
}

func TestDonationSumCompletedByCreator(t *testing.T) {
	repos, db := newTestRepos(t)
	ctx := context.Background()
	seedDonation(t, db, "imp_1", "c1", 30000, models.DonationStatusCompleted)
	seedDonation(t, db, "imp_2", "c1", 20000, models.DonationStatusCompleted)
	seedDonation(t, db, "imp_3", "c1", 7000, models.DonationStatusPending)
	seedDonation(t, db, "imp_4", "c1", 9000, models.DonationStatusCancelled)
	seedDonation(t, db, "imp_5", "c2", 1000, models.DonationStatusCompleted)

	total, err := repos.Donation.SumCompletedByCreator(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(50000), total)

	total, err = repos.Donation.SumCompletedByCreator(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestSettlementSumAndList(t *testing.T) {
	repos, _ := newTestRepos(t)
	ctx := context.Background()
	march := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	april := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)

	rows := []*models.Settlement{
		{CreatorID: "c2", Amount: 20000, Fee: 1000, NetAmount: 19000, Status: models.SettlementStatusApproved, RequestedAt: march},
		{CreatorID: "c1", Amount: 10000, Fee: 500, NetAmount: 9500, Status: models.SettlementStatusCompleted, RequestedAt: march},
		{CreatorID: "c1", Amount: 40000, Fee: 2000, NetAmount: 38000, Status: models.SettlementStatusRejected, RequestedAt: march},
		{CreatorID: "c1", Amount: 15000, Fee: 750, NetAmount: 14250, Status: models.SettlementStatusPending, RequestedAt: april},
	}
	for _, s := range rows {
		require.NoError(t, repos.Settlement.Create(ctx, s))
	}

	total, err := repos.Settlement.SumUnrejectedByCreator(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(25000), total)

	list, err := repos.Settlement.ListUnrejectedBetween(ctx, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c1", list[0].CreatorID)
	assert.Equal(t, "c2", list[1].CreatorID)
}

func TestCreatorSettlementInfo(t *testing.T) {
	repos, db := newTestRepos(t)
	ctx := context.Background()
	for _, id := range []string{"c3", "c1", "c2"} {
		require.NoError(t, db.Create(&models.CreatorSettlementInfo{
			CreatorID:     id,
			AccountHolder: "holder " + id,
			BankName:      "KB",
			AccountNumber: "1234567890",
			BusinessType:  models.BusinessTypeIndividual,
		}).Error)
	}

	ids, err := repos.CreatorInfo.ListCreatorIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2", "c3"}, ids)

	infos, err := repos.CreatorInfo.GetByCreatorIDs(ctx, []string{"c1", "c3", "missing"})
	require.NoError(t, err)
	assert.Len(t, infos, 2)
	assert.Equal(t, "holder c3", infos["c3"].AccountHolder)

	empty, err := repos.CreatorInfo.GetByCreatorIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestWebhookEventCreateAndMarkProcessed(t *testing.T) {
	repos, db := newTestRepos(t)
	ctx := context.Background()

	ev := &models.PaymentWebhookEvent{ImpUID: "imp_1", MerchantUID: "donation_c1_1", EventStatus: "paid", PayloadJSON: `{"imp_uid":"imp_1"}`}
	require.NoError(t, repos.WebhookEvent.Create(ctx, ev))
	require.NotZero(t, ev.ID)

	require.NoError(t, repos.WebhookEvent.MarkProcessed(ctx, ev.ID, "paid", models.WebhookOutcomeSuccess, ""))

	var stored models.PaymentWebhookEvent
	require.NoError(t, db.First(&stored, ev.ID).Error)
	assert.Equal(t, "paid", stored.GatewayStatus)
	assert.Equal(t, models.WebhookOutcomeSuccess, stored.Outcome)
	assert.NotNil(t, stored.ProcessedAt)
}

func TestTransactionRollsBack(t *testing.T) {
	repos, _ := newTestRepos(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := repos.Transaction(ctx, func(tx *Repositories) error {
		if err := tx.Settlement.Create(ctx, models.NewAutoSettlement("c1", 20000, "b1", time.Now().UTC())); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	total, err := repos.Settlement.SumUnrejectedByCreator(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestFactorySingleton(t *testing.T) {
	_, db := newTestRepos(t)
	f := NewFactory(db)
	assert.Same(t, f.GetRepositories(), f.GetRepositories())
}

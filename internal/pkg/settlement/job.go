package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/donote/donote/app/models"
)

// ErrRunInProgress is returned when another settlement run holds the lock.
var ErrRunInProgress = errors.New("settlement already running")

const defaultLockTTL = 10 * time.Minute

// Result summarizes one settlement run.
type Result struct {
	BatchID            string   `json:"batchId"`
	Processed          int      `json:"processed"`
	Skipped            int      `json:"skipped"`
	TotalSettledAmount int64    `json:"totalSettledAmount"`
	Errors             []string `json:"errors,omitempty"`
}

// Job creates approved auto settlements for every creator whose available
// balance reached the minimum payout.
type Job struct {
	store   Store
	locker  Locker
	lockTTL time.Duration
	now     func() time.Time
}

// NewJob returns a Job. A nil locker disables run locking.
func NewJob(store Store, locker Locker) *Job {
	return &Job{
		store:   store,
		locker:  locker,
		lockTTL: defaultLockTTL,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Run settles all creators sequentially. Per-creator failures are collected
// in Result.Errors; only failures before iteration are returned as errors.
func (j *Job) Run(ctx context.Context) (*Result, error) {
	if j.locker != nil {
		lock, err := j.locker.Acquire(ctx, RunLockKey, j.lockTTL)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
				log.Warnf("[Settlement] Failed to release run lock: %v", err)
			}
		}()
	}

	creatorIDs, err := j.store.ListCreatorIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list creators: %w", err)
	}

	res := &Result{BatchID: uuid.NewString()}
	log.Infof("[Settlement] Batch %s started for %d creators", res.BatchID, len(creatorIDs))

	for _, creatorID := range creatorIDs {
		if err := ctx.Err(); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("run aborted: %v", err))
			break
		}

		settled, err := j.settleCreator(ctx, creatorID, res.BatchID)
		if err != nil {
			log.Errorf("[Settlement] Creator %s failed: %v", creatorID, err)
			res.Errors = append(res.Errors, fmt.Sprintf("creator %s: %v", creatorID, err))
			continue
		}
		if settled == nil {
			res.Skipped++
			continue
		}
		res.Processed++
		res.TotalSettledAmount += settled.Amount
	}

	log.Infof("[Settlement] Batch %s finished: processed=%d skipped=%d total=%d errors=%d",
		res.BatchID, res.Processed, res.Skipped, res.TotalSettledAmount, len(res.Errors))
	return res, nil
}

// settleCreator returns the created settlement, or nil when the available
// balance is below the minimum.
func (j *Job) settleCreator(ctx context.Context, creatorID, batchID string) (*models.Settlement, error) {
	var created *models.Settlement
	err := j.store.InTransaction(ctx, func(l Ledger) error {
		donated, err := l.SumCompletedDonations(ctx, creatorID)
		if err != nil {
			return fmt.Errorf("sum donations: %w", err)
		}
		settled, err := l.SumUnrejectedSettlements(ctx, creatorID)
		if err != nil {
			return fmt.Errorf("sum settlements: %w", err)
		}

		available := donated - settled
		if available < models.MinSettlementAmount {
			return nil
		}

		s := models.NewAutoSettlement(creatorID, available, batchID, j.now())
		if err := l.CreateSettlement(ctx, s); err != nil {
			return fmt.Errorf("create settlement: %w", err)
		}
		created = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

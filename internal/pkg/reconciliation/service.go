package reconciliation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/donote/donote/app/models"
	"github.com/donote/donote/app/repository"
	"github.com/donote/donote/internal/pkg/portone"
)

// OutcomeRecorder counts webhook outcomes.
type OutcomeRecorder interface {
	RecordWebhookOutcome(ctx context.Context, outcome string) error
}

// Service applies gateway-verified payment state to the donation ledger.
type Service struct {
	gateway   portone.Gateway
	donations repository.DonationRepository
	events    repository.WebhookEventRepository
	recorder  OutcomeRecorder
	now       func() time.Time
}

// NewService wires the reconciliation service. events and recorder may be nil.
func NewService(gateway portone.Gateway, donations repository.DonationRepository, events repository.WebhookEventRepository, recorder OutcomeRecorder) *Service {
	return &Service{
		gateway:   gateway,
		donations: donations,
		events:    events,
		recorder:  recorder,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// HandleWebhook verifies the delivery against the gateway and applies the
// authoritative status. Returned errors are either ErrAmountMismatch or
// infrastructure failures.
func (s *Service) HandleWebhook(ctx context.Context, payload WebhookPayload) (*Result, error) {
	event := s.recordReceived(ctx, payload)

	res, err := s.reconcile(ctx, payload)

	outcome := models.WebhookOutcomeError
	gatewayStatus := ""
	processingError := ""
	switch {
	case err == nil:
		outcome = res.Status
		gatewayStatus = res.GatewayStatus
	case errors.Is(err, ErrAmountMismatch):
		outcome = models.WebhookOutcomeRejected
		gatewayStatus = portone.PaymentStatusPaid
		processingError = err.Error()
	default:
		processingError = err.Error()
	}
	s.recordProcessed(ctx, event, gatewayStatus, outcome, processingError)

	return res, err
}

func (s *Service) reconcile(ctx context.Context, payload WebhookPayload) (*Result, error) {
	token, err := s.gateway.GetAccessToken(ctx)
	if err != nil {
		return nil, err
	}
	payment, err := s.gateway.GetPayment(ctx, payload.ImpUID, token)
	if err != nil {
		return nil, err
	}

	var res *Result
	switch payment.Status {
	case portone.PaymentStatusPaid:
		res, err = s.applyPaid(ctx, payment)
	case portone.PaymentStatusCancelled:
		res, err = s.applyCancelled(ctx, payment)
	case portone.PaymentStatusReady:
		res = &Result{Status: models.WebhookOutcomeSuccess, Message: "virtual account issued"}
	case portone.PaymentStatusFailed:
		res = s.applyFailed(ctx, payment)
	default:
		log.Warnf("[Webhook] Unknown gateway status %q for %s", payment.Status, payment.ImpUID)
		res = &Result{Status: models.WebhookOutcomeUnknown, Message: "unknown payment status"}
	}
	if err != nil {
		return nil, err
	}
	res.GatewayStatus = payment.Status
	return res, nil
}

func (s *Service) applyPaid(ctx context.Context, payment *portone.PaymentRecord) (*Result, error) {
	creatorID, ok := ParseMerchantUID(payment.MerchantUID)
	if !ok {
		return &Result{Status: models.WebhookOutcomeIgnored, Message: "not a donation payment"}, nil
	}

	donation, err := s.donations.GetByPaymentID(ctx, payment.ImpUID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		donation, err = s.createFromPayment(ctx, creatorID, payment)
		if err != nil {
			return nil, err
		}
		if donation == nil {
			return &Result{Status: models.WebhookOutcomeSuccess, Message: "donation recorded"}, nil
		}
	} else if err != nil {
		return nil, fmt.Errorf("load donation %s: %w", payment.ImpUID, err)
	}

	if donation.Status == models.DonationStatusCompleted {
		return &Result{Status: models.WebhookOutcomeAlreadyProcessed, Message: "donation already completed"}, nil
	}

	if donation.Amount != payment.Amount {
		log.Warnf("[Webhook] Tamper suspected for %s: donation amount=%d gateway amount=%d", payment.ImpUID, donation.Amount, payment.Amount)
		return nil, fmt.Errorf("%w: donation=%d gateway=%d", ErrAmountMismatch, donation.Amount, payment.Amount)
	}

	if !donation.Status.CanTransitionTo(models.DonationStatusCompleted) {
		log.Warnf("[Webhook] Ignoring paid event for %s in status %s", payment.ImpUID, donation.Status)
		return &Result{Status: models.WebhookOutcomeIgnored, Message: fmt.Sprintf("donation is %s", donation.Status)}, nil
	}

	changed, err := s.donations.TransitionStatus(ctx, payment.ImpUID, donation.Status, models.DonationStatusCompleted, s.now())
	if err != nil {
		return nil, fmt.Errorf("complete donation %s: %w", payment.ImpUID, err)
	}
	if !changed {
		// another delivery moved the row between our read and write
		return s.reread(ctx, payment.ImpUID, models.DonationStatusCompleted)
	}

	log.Infof("[Webhook] Donation %s completed (creator=%s amount=%d)", payment.ImpUID, donation.CreatorID, donation.Amount)
	return &Result{Status: models.WebhookOutcomeSuccess, Message: "donation completed"}, nil
}

// createFromPayment inserts a completed donation for a paid payment that has
// no ledger row yet. It returns the existing row when a concurrent delivery
// inserted first, and nil when our insert won.
func (s *Service) createFromPayment(ctx context.Context, creatorID string, payment *portone.PaymentRecord) (*models.Donation, error) {
	custom := payment.ParseDonationCustomData()
	paidAt := s.now()
	d := &models.Donation{
		PaymentID:   payment.ImpUID,
		MerchantUID: payment.MerchantUID,
		CreatorID:   creatorID,
		Amount:      payment.Amount,
		Status:      models.DonationStatusCompleted,
		DonorName:   payment.BuyerName,
		Message:     custom.Message,
		Sticker:     custom.Sticker,
		PaidAt:      &paidAt,
	}

	created, err := s.donations.CreateIfNotExists(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("create donation %s: %w", payment.ImpUID, err)
	}
	if created {
		log.Infof("[Webhook] Donation %s created from gateway record (creator=%s amount=%d)", payment.ImpUID, creatorID, payment.Amount)
		return nil, nil
	}

	existing, err := s.donations.GetByPaymentID(ctx, payment.ImpUID)
	if err != nil {
		return nil, fmt.Errorf("reload donation %s: %w", payment.ImpUID, err)
	}
	return existing, nil
}

func (s *Service) applyCancelled(ctx context.Context, payment *portone.PaymentRecord) (*Result, error) {
	donation, err := s.donations.GetByPaymentID(ctx, payment.ImpUID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Result{Status: models.WebhookOutcomeSuccess, Message: "no matching donation"}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load donation %s: %w", payment.ImpUID, err)
	}

	if donation.Status == models.DonationStatusCancelled {
		return &Result{Status: models.WebhookOutcomeAlreadyProcessed, Message: "donation already cancelled"}, nil
	}
	if !donation.Status.CanTransitionTo(models.DonationStatusCancelled) {
		log.Warnf("[Webhook] Ignoring cancel event for %s in status %s", payment.ImpUID, donation.Status)
		return &Result{Status: models.WebhookOutcomeIgnored, Message: fmt.Sprintf("donation is %s", donation.Status)}, nil
	}

	changed, err := s.donations.TransitionStatus(ctx, payment.ImpUID, donation.Status, models.DonationStatusCancelled, s.now())
	if err != nil {
		return nil, fmt.Errorf("cancel donation %s: %w", payment.ImpUID, err)
	}
	if !changed {
		return s.reread(ctx, payment.ImpUID, models.DonationStatusCancelled)
	}

	log.Infof("[Webhook] Donation %s cancelled", payment.ImpUID)
	return &Result{Status: models.WebhookOutcomeSuccess, Message: "donation cancelled"}, nil
}

// applyFailed never returns an error; write failures are logged so the
// gateway does not retry.
func (s *Service) applyFailed(ctx context.Context, payment *portone.PaymentRecord) *Result {
	ack := &Result{Status: models.WebhookOutcomeSuccess, Message: "payment failure recorded"}

	changed, err := s.donations.TransitionStatus(ctx, payment.ImpUID, models.DonationStatusPending, models.DonationStatusFailed, s.now())
	if err != nil {
		log.Errorf("[Webhook] Failed to mark donation %s as failed: %v", payment.ImpUID, err)
		return ack
	}
	if !changed {
		log.Warnf("[Webhook] No pending donation for failed payment %s (reason=%s)", payment.ImpUID, payment.FailReason)
		return ack
	}
	log.Infof("[Webhook] Donation %s failed: %s", payment.ImpUID, payment.FailReason)
	return ack
}

// reread resolves a lost conditional update by looking at the current row.
func (s *Service) reread(ctx context.Context, paymentID string, target models.DonationStatus) (*Result, error) {
	current, err := s.donations.GetByPaymentID(ctx, paymentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Result{Status: models.WebhookOutcomeSuccess, Message: "no matching donation"}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reload donation %s: %w", paymentID, err)
	}
	if current.Status == target {
		return &Result{Status: models.WebhookOutcomeAlreadyProcessed, Message: fmt.Sprintf("donation already %s", target)}, nil
	}
	log.Warnf("[Webhook] Donation %s moved to %s concurrently, %s not applied", paymentID, current.Status, target)
	return &Result{Status: models.WebhookOutcomeIgnored, Message: fmt.Sprintf("donation is %s", current.Status)}, nil
}

func (s *Service) recordReceived(ctx context.Context, payload WebhookPayload) *models.PaymentWebhookEvent {
	if s.events == nil {
		return nil
	}
	raw, _ := json.Marshal(payload)
	event := &models.PaymentWebhookEvent{
		ImpUID:      payload.ImpUID,
		MerchantUID: payload.MerchantUID,
		EventStatus: payload.Status,
		PayloadJSON: string(raw),
	}
	if err := s.events.Create(ctx, event); err != nil {
		log.Errorf("[Webhook] Failed to record event for %s: %v", payload.ImpUID, err)
		return nil
	}
	return event
}

func (s *Service) recordProcessed(ctx context.Context, event *models.PaymentWebhookEvent, gatewayStatus, outcome, processingError string) {
	ctx = context.WithoutCancel(ctx)
	if s.recorder != nil {
		if err := s.recorder.RecordWebhookOutcome(ctx, outcome); err != nil {
			log.Warnf("[Webhook] Failed to count outcome %s: %v", outcome, err)
		}
	}
	if event == nil {
		return
	}
	if err := s.events.MarkProcessed(ctx, event.ID, gatewayStatus, outcome, processingError); err != nil {
		log.Errorf("[Webhook] Failed to update event %d: %v", event.ID, err)
	}
}

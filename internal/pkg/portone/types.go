package portone

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Payment statuses reported by the gateway.
const (
	PaymentStatusReady     = "ready"
	PaymentStatusPaid      = "paid"
	PaymentStatusCancelled = "cancelled"
	PaymentStatusFailed    = "failed"
)

// envelope wraps every gateway response.
type envelope struct {
	Code     int             `json:"code"`
	Message  string          `json:"message"`
	Response json.RawMessage `json:"response"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	Now         int64  `json:"now"`
	ExpiredAt   int64  `json:"expired_at"`
}

type paymentResponse struct {
	ImpUID      string      `json:"imp_uid"`
	MerchantUID string      `json:"merchant_uid"`
	Status      string      `json:"status"`
	Amount      json.Number `json:"amount"`
	BuyerName   string      `json:"buyer_name"`
	CustomData  string      `json:"custom_data"`
	PaidAt      int64       `json:"paid_at"`
	CancelledAt int64       `json:"cancelled_at"`
	FailReason  string      `json:"fail_reason"`
}

// PaymentRecord is the authoritative view of a payment as the gateway sees it.
type PaymentRecord struct {
	ImpUID      string
	MerchantUID string
	Status      string
	Amount      int64
	BuyerName   string
	CustomData  string
	PaidAt      *time.Time
	CancelledAt *time.Time
	FailReason  string
}

// DonationCustomData is the optional JSON the checkout page attaches to a
// donation payment.
type DonationCustomData struct {
	Message string `json:"message"`
	Sticker string `json:"sticker"`
}

// ParseDonationCustomData decodes CustomData. Empty or malformed data yields
// the zero value.
func (p *PaymentRecord) ParseDonationCustomData() DonationCustomData {
	var out DonationCustomData
	raw := strings.TrimSpace(p.CustomData)
	if raw == "" {
		return out
	}
	_ = json.Unmarshal([]byte(raw), &out)
	return out
}

func (r *paymentResponse) toRecord() (*PaymentRecord, error) {
	amount, err := parseAmount(r.Amount)
	if err != nil {
		return nil, err
	}
	return &PaymentRecord{
		ImpUID:      r.ImpUID,
		MerchantUID: r.MerchantUID,
		Status:      r.Status,
		Amount:      amount,
		BuyerName:   r.BuyerName,
		CustomData:  r.CustomData,
		PaidAt:      unixOrNil(r.PaidAt),
		CancelledAt: unixOrNil(r.CancelledAt),
		FailReason:  r.FailReason,
	}, nil
}

// parseAmount accepts integral amounts, including "5000.0".
func parseAmount(n json.Number) (int64, error) {
	if n == "" {
		return 0, nil
	}
	if v, err := n.Int64(); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("portone: non-integral amount %q", string(n))
	}
	return int64(f), nil
}

func unixOrNil(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}

package reconciliation

import (
	"errors"
	"strings"
)

// ErrAmountMismatch flags a stored donation whose amount differs from the
// gateway record. The donation is left untouched.
var ErrAmountMismatch = errors.New("payment amount does not match donation")

const merchantUIDPrefix = "donation"

// WebhookPayload is the body PortOne posts to the webhook endpoint. Only the
// identifiers are used; status is re-read from the gateway.
type WebhookPayload struct {
	ImpUID         string `json:"imp_uid" validate:"required"`
	MerchantUID    string `json:"merchant_uid" validate:"required"`
	Status         string `json:"status"`
	CancellationID string `json:"cancellation_id,omitempty"`
}

// Result is the acknowledgement returned to the gateway.
type Result struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	GatewayStatus string `json:"-"`
}

// ParseMerchantUID extracts the creator id from donation_{creatorId}_{ts}.
func ParseMerchantUID(merchantUID string) (string, bool) {
	if !strings.HasPrefix(merchantUID, merchantUIDPrefix) {
		return "", false
	}
	parts := strings.Split(merchantUID, "_")
	if len(parts) != 3 || parts[0] != merchantUIDPrefix || parts[1] == "" || parts[2] == "" {
		return "", false
	}
	return parts[1], true
}

package portone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/donote/donote/internal/pkg/env"
)

const defaultAPIBaseURL = "https://api.iamport.kr"

// Gateway is the subset of the PortOne REST API used for reconciliation.
type Gateway interface {
	GetAccessToken(ctx context.Context) (string, error)
	GetPayment(ctx context.Context, impUID, token string) (*PaymentRecord, error)
}

// Client talks to the PortOne (Iamport) REST API.
type Client struct {
	APIKey     string
	APISecret  string
	APIBaseURL string

	HTTPClient *http.Client
}

func NewClientFromEnv() *Client {
	return &Client{
		APIKey:     strings.TrimSpace(env.GetEnv("PORTONE_API_KEY", "")),
		APISecret:  strings.TrimSpace(env.GetEnv("PORTONE_API_SECRET", "")),
		APIBaseURL: strings.TrimSpace(env.GetEnv("PORTONE_API_BASE_URL", defaultAPIBaseURL)),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// GetAccessToken exchanges the API key pair for a short lived access token.
func (c *Client) GetAccessToken(ctx context.Context) (string, error) {
	if c.APIKey == "" || c.APISecret == "" {
		return "", &GatewayAuthError{Code: -1, Message: "PORTONE_API_KEY/PORTONE_API_SECRET are not configured"}
	}

	payload, err := json.Marshal(map[string]string{
		"imp_key":    c.APIKey,
		"imp_secret": c.APISecret,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/users/getToken"), bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	out, err := c.do(req, "access token request")
	if err != nil {
		return "", err
	}
	if out.Code != 0 {
		return "", &GatewayAuthError{Code: out.Code, Message: out.Message}
	}

	var tok tokenResponse
	if err := json.Unmarshal(out.Response, &tok); err != nil {
		return "", fmt.Errorf("portone: decode access token: %w", err)
	}
	if strings.TrimSpace(tok.AccessToken) == "" {
		return "", &GatewayAuthError{Code: out.Code, Message: "empty access_token"}
	}
	return tok.AccessToken, nil
}

// GetPayment fetches the payment record for impUID.
func (c *Client) GetPayment(ctx context.Context, impUID, token string) (*PaymentRecord, error) {
	if strings.TrimSpace(impUID) == "" {
		return nil, &GatewayLookupError{ImpUID: impUID, Code: -1, Message: "imp_uid is required"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/payments/"+url.PathEscape(impUID)), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", token)
	req.Header.Set("Accept", "application/json")

	out, err := c.do(req, "payment lookup")
	if err != nil {
		return nil, err
	}
	if out.Code != 0 {
		return nil, &GatewayLookupError{ImpUID: impUID, Code: out.Code, Message: out.Message}
	}

	var raw paymentResponse
	dec := json.NewDecoder(bytes.NewReader(out.Response))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("portone: decode payment %s: %w", impUID, err)
	}
	return raw.toRecord()
}

func (c *Client) endpoint(path string) string {
	base := strings.TrimRight(c.APIBaseURL, "/")
	if base == "" {
		base = defaultAPIBaseURL
	}
	return base + path
}

// do executes req and decodes the gateway envelope. Non-2xx responses with a
// decodable envelope are returned as-is so callers map the gateway code.
func (c *Client) do(req *http.Request, what string) (*envelope, error) {
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("portone %s: %w", what, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var out envelope
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("portone %s failed: status=%d body=%s", what, resp.StatusCode, excerpt(body))
	}
	if (resp.StatusCode < 200 || resp.StatusCode >= 300) && out.Code == 0 {
		out.Code = resp.StatusCode
	}
	return &out, nil
}

func excerpt(body []byte) string {
	const limit = 256
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}

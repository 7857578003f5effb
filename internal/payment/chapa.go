package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"
)

// ChapaClient implements Client against a Chapa-compatible HTTP API:
// POST /v1/transaction/initialize opens a hosted checkout session and
// GET /v1/transaction/verify/{tx_ref} reports the outcome.  Amounts are
// decimal strings on the wire and cents internally.
type ChapaClient struct {
	baseURL   string
	secretKey string
	http      *http.Client
}

// NewChapaClient builds a client for the given gateway endpoint.  The
// timeout bounds every call; the reconciliation service never waits on the
// gateway longer than this.
func NewChapaClient(baseURL, secretKey string, timeout time.Duration) *ChapaClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ChapaClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		http:      &http.Client{Timeout: timeout},
	}
}

type initializeRequest struct {
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	TxRef     string `json:"tx_ref"`
	ReturnURL string `json:"return_url,omitempty"`
}

type initializeResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		CheckoutURL string `json:"checkout_url"`
	} `json:"data"`
}

type verifyResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status   string  `json:"status"`
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
	} `json:"data"`
}

func centsToDecimal(cents uint32) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

func decimalToCents(amount float64) uint32 {
	return uint32(math.Round(amount * 100))
}

// CreateSession opens a hosted checkout session.  It is called exactly
// once per payment reference; the booking store's attach guard enforces
// that, not the gateway.
func (c *ChapaClient) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	body, err := json.Marshal(initializeRequest{
		Amount:    centsToDecimal(req.AmountCents),
		Currency:  req.Currency,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		TxRef:     req.TxRef,
		ReturnURL: req.ReturnURL,
	})
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnreachable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: gateway returned %d", ErrGatewayUnreachable, resp.StatusCode)
	}
	var out initializeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrGatewayUnreachable, err)
	}
	if resp.StatusCode != http.StatusOK || out.Status != "success" || out.Data.CheckoutURL == "" {
		return nil, fmt.Errorf("gateway rejected session for %s: %s", req.TxRef, out.Message)
	}
	return &Session{TxRef: req.TxRef, CheckoutURL: out.Data.CheckoutURL}, nil
}

// Verify asks the gateway for the outcome of a transaction reference.  It
// is repeat-safe: the gateway answers from its own ledger, so the same
// reference yields the same final result on every call.
func (c *ChapaClient) Verify(ctx context.Context, txRef string) (*VerifyResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/v1/transaction/verify/"+txRef, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnreachable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: gateway returned %d", ErrGatewayUnreachable, resp.StatusCode)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrInvalidReference, txRef)
	}
	var out verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrGatewayUnreachable, err)
	}
	if out.Status != "success" {
		// Chapa reports unknown references with a failed envelope status.
		return nil, fmt.Errorf("%w: %s", ErrInvalidReference, out.Message)
	}
	return &VerifyResult{
		Success:     out.Data.Status == "success",
		AmountCents: decimalToCents(out.Data.Amount),
		RawStatus:   out.Data.Status,
	}, nil
}

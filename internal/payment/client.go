// Package payment talks to the external payment gateway.  The gateway
// hosts the checkout page; this service only initialises a session for a
// merchant-minted transaction reference and later verifies the outcome by
// that same reference.
package payment

import (
	"context"
	"errors"
)

// ErrGatewayUnreachable indicates a transport-level failure talking to the
// gateway.  It is retryable and must never change booking state; the
// caller (client redirect or webhook re-delivery) retries with backoff.
var ErrGatewayUnreachable = errors.New("payment gateway unreachable")

// ErrInvalidReference indicates the gateway does not recognise the
// transaction reference.  Fatal for the payment attempt; the booking is
// marked failed and a fresh session is required.
var ErrInvalidReference = errors.New("transaction reference not recognised by gateway")

// SessionRequest carries everything the gateway needs to open a hosted
// checkout session for one booking.
type SessionRequest struct {
	TxRef       string // merchant-minted reference, bound 1:1 to the booking
	AmountCents uint32
	Currency    string
	Email       string // guest contact shown on the checkout page
	FirstName   string
	LastName    string
	ReturnURL   string // where the gateway redirects the browser afterwards
}

// Session is the gateway's answer to a successful initialisation.  It is
// ephemeral: nothing beyond the TxRef is persisted.
type Session struct {
	TxRef       string
	CheckoutURL string
}

// VerifyResult is the gateway's answer to a verification call.  RawStatus
// preserves the gateway's own status string for logging and for deciding
// whether the outcome is final; Success is true only for a final,
// successful payment.
type VerifyResult struct {
	Success     bool
	AmountCents uint32
	RawStatus   string
}

// Final reports whether the gateway has settled on an outcome.  A
// non-final result means the guest has not finished checkout; callers
// should retry later rather than fail the booking.
func (v *VerifyResult) Final() bool {
	return v.RawStatus != "pending" && v.RawStatus != "created"
}

// Client is the gateway contract consumed by the reconciliation service.
// Verify must be safe to call any number of times for the same reference
// and must return the same result once the gateway has a final status.
type Client interface {
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
	Verify(ctx context.Context, txRef string) (*VerifyResult, error)
}

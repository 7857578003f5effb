// Package service implements the reconciliation layer: it turns a guest's
// room request into a pending booking with a hosted checkout session, and
// merges asynchronous payment outcomes back into booking state.
package service

import "errors"

// ErrAmountMismatch is returned when the gateway confirms a payment whose
// amount does not match the booking's expected total.  Treated as
// fraud/error: the booking is marked failed, flagged for manual review and
// never auto-confirmed.
var ErrAmountMismatch = errors.New("verified amount does not match booking total")

// ErrPaymentDeclined is returned when the gateway reports a final,
// unsuccessful outcome for the current payment reference.  The booking
// stays pending; the guest may open a fresh session with PayAgain.
var ErrPaymentDeclined = errors.New("payment declined by gateway")

// ErrPaymentNotSettled is returned when the gateway has no final outcome
// yet for the reference.  Retryable: booking state is untouched and the
// caller (redirect handler or webhook re-delivery) should try again later.
var ErrPaymentNotSettled = errors.New("payment not settled yet")

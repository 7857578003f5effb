package service

import (
	"time"

	"github.com/amanuel-asmare/meserte-hotel-booking/internal/model"
)

// RefundPolicy computes refund eligibility and amount on cancellation.  It
// never mutates state; it only advises the cancellation path on how much
// to report as refunded.
type RefundPolicy struct {
	// FeePercent is the flat cancellation fee deducted from any completed
	// payment when cancellation happens before check-in.
	FeePercent uint32
}

// ComputeRefund returns the refund in cents for cancelling the booking at
// cancelTime.  Nothing is owed unless the payment completed.  Before
// check-in the fee percentage is deducted; once check-in has passed the
// stay counts as a no-show and the refund is zero.
func (p RefundPolicy) ComputeRefund(b *model.Booking, cancelTime time.Time) uint32 {
	if b.PaymentState != model.PaymentCompleted {
		return 0
	}
	if !cancelTime.UTC().Before(b.CheckIn) {
		return 0
	}
	fee := p.FeePercent
	if fee > 100 {
		fee = 100
	}
	// Widen before multiplying: total × percent does not fit in 32 bits
	// for long stays.
	return uint32(uint64(b.TotalCents) * uint64(100-fee) / 100)
}

package model

import "time"

// Status is the lifecycle state of a booking.  The values are part of the
// frontend data contract and must not be renamed.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// PaymentStatus tracks the payment side of a booking independently of its
// lifecycle state.  Also part of the frontend contract.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// transitions enumerates every legal status change.  cancelled and
// completed are terminal.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// CanTransitionTo reports whether moving from s to next is a legal state
// change.  Any move not listed in the transition table is rejected,
// including self-transitions.
func (s Status) CanTransitionTo(next Status) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further status changes are allowed.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// Booking records one reservation attempt and its lifecycle.  A booking in
// pending, confirmed or completed status holds its room for the half-open
// range [CheckIn, CheckOut); a cancelled booking holds nothing.
//
// Invariants:
//  PaymentStatus == completed implies Status ∈ {confirmed, completed}.
//  Status == cancelled implies the room's date range has been released.
//  TxRef is bound 1:1 to the current payment session; superseded
//  references are never reusable for confirmation.
type Booking struct {
	ID           uint64        `json:"id"`           // bookings.id
	GuestID      uint64        `json:"guestId"`      // bookings.guest_id
	RoomID       uint64        `json:"roomId"`       // bookings.room_id
	CheckIn      time.Time     `json:"checkIn"`      // bookings.check_in (date, UTC midnight)
	CheckOut     time.Time     `json:"checkOut"`     // bookings.check_out (date, UTC midnight)
	Guests       uint32        `json:"guests"`       // bookings.guests
	TotalCents   uint32        `json:"totalPrice"`   // bookings.total_cents
	Status       Status        `json:"status"`       // bookings.status
	PaymentState PaymentStatus `json:"paymentStatus"` // bookings.payment_status
	TxRef        *string       `json:"txRef,omitempty"` // bookings.tx_ref (nullable)
	RefundCents  uint32        `json:"refundAmount"` // bookings.refund_cents
	NeedsReview  bool          `json:"needsReview"`  // bookings.needs_review
	CreatedAt    time.Time     `json:"createdAt"`    // bookings.created_at
	UpdatedAt    time.Time     `json:"updatedAt"`    // bookings.updated_at
}

// Nights returns the number of nights covered by the booking.  Check-in and
// check-out are stored as UTC midnights, so the division is exact.
func (b *Booking) Nights() uint32 {
	n := b.CheckOut.Sub(b.CheckIn) / (24 * time.Hour)
	if n < 0 {
		return 0
	}
	return uint32(n)
}

// HoldsRoom reports whether the booking currently occupies its room's date
// range.  Pending bookings hold the room so that an in-flight checkout
// cannot be raced by another guest.
func (b *Booking) HoldsRoom() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed || b.Status == StatusCompleted
}

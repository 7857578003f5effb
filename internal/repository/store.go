package repository

import (
	"context"
	"database/sql"
	"math"
	"time"

	"github.com/amanuel-asmare/meserte-hotel-booking/internal/model"
)

// Store composes the booking repository, the room repository and the
// availability ledger into the transactional operations the booking
// lifecycle needs.  Creating a booking and cancelling one each span rooms
// and bookings and must be atomic; everything else delegates to the
// individual repositories.
type Store struct {
	db       *sql.DB
	Rooms    *RoomRepo
	Bookings *BookingRepo
	Ledger   *AvailabilityLedger
}

// NewStore wires a Store over a single database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:       db,
		Rooms:    NewRoomRepo(db),
		Bookings: NewBookingRepo(db),
		Ledger:   NewAvailabilityLedger(db),
	}
}

// CreateParams carries a guest's reservation request.
type CreateParams struct {
	GuestID  uint64
	RoomID   uint64
	CheckIn  time.Time
	CheckOut time.Time
	Guests   uint32
}

// CreateBooking validates the request and reserves the room for the
// half-open range [CheckIn, CheckOut), creating the booking in pending
// status with payment pending and the total computed as nightly rate times
// nights.  The room row is locked for the duration of the transaction and
// the overlap rule is re-checked immediately before the insert, so of two
// concurrent calls for overlapping ranges on the same room exactly one
// succeeds; the other gets ErrRoomUnavailable and no record is created.
func (s *Store) CreateBooking(ctx context.Context, p CreateParams) (*model.Booking, error) {
	checkIn := p.CheckIn.UTC().Truncate(24 * time.Hour)
	checkOut := p.CheckOut.UTC().Truncate(24 * time.Hour)
	if !checkIn.Before(checkOut) {
		return nil, ErrInvalidDateRange
	}
	if p.Guests == 0 {
		return nil, ErrCapacityExceeded
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	room, err := s.Rooms.GetForUpdateTx(ctx, tx, p.RoomID)
	if err != nil {
		return nil, err
	}
	if p.Guests > room.Capacity {
		return nil, ErrCapacityExceeded
	}
	if !room.Bookable() {
		return nil, ErrRoomNotReservable
	}
	if err := s.Ledger.ReserveTx(ctx, tx, p.RoomID, checkIn, checkOut, 0); err != nil {
		return nil, err
	}

	nights := uint64(checkOut.Sub(checkIn) / (24 * time.Hour))
	total := uint64(room.NightlyRateCents) * nights
	if total > math.MaxUint32 {
		// Totals are stored in 32 bits; a stay priced beyond that is
		// rejected rather than silently wrapped.
		return nil, ErrInvalidDateRange
	}
	b := &model.Booking{
		GuestID:      p.GuestID,
		RoomID:       p.RoomID,
		CheckIn:      checkIn,
		CheckOut:     checkOut,
		Guests:       p.Guests,
		TotalCents:   uint32(total),
		Status:       model.StatusPending,
		PaymentState: model.PaymentPending,
	}
	if err := s.Bookings.CreateTx(ctx, tx, b); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return b, nil
}

// RefundFunc computes the refund for a booking about to be cancelled.  It
// is invoked with the booking row locked, so the payment status it sees
// cannot change underneath the cancellation.  It returns the amount in
// cents and whether a refund was actually issued.
type RefundFunc func(b *model.Booking) (refundCents uint32, refunded bool)

// CancelBooking applies the cancellation transition and releases the room
// in one transaction.  Allowed only from pending or confirmed; terminal
// states yield ErrInvalidTransition.  The refund callback decides what to
// report as refunded; when it reports a refund the payment status flips to
// refunded.
func (s *Store) CancelBooking(ctx context.Context, bookingID uint64, refund RefundFunc) (*model.Booking, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := s.Bookings.GetForUpdateTx(ctx, tx, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.Status.CanTransitionTo(model.StatusCancelled) {
		return nil, ErrInvalidTransition
	}
	refundCents, refunded := uint32(0), false
	if refund != nil {
		refundCents, refunded = refund(b)
	}
	if err := s.Bookings.CancelTx(ctx, tx, bookingID, refundCents, refunded); err != nil {
		return nil, err
	}
	// The status flip above is the release; verify the hold is gone.
	if err := s.Ledger.ReleaseTx(ctx, tx, b.RoomID, bookingID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return s.Bookings.GetByID(ctx, bookingID)
}

// ExpireBooking cancels a booking only if it is still pending, with no
// refund.  A booking that was confirmed after being selected for expiry is
// left alone and ErrInvalidTransition is returned.
func (s *Store) ExpireBooking(ctx context.Context, bookingID uint64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := s.Bookings.GetForUpdateTx(ctx, tx, bookingID)
	if err != nil {
		return err
	}
	if b.Status != model.StatusPending {
		return ErrInvalidTransition
	}
	if err := s.Bookings.CancelTx(ctx, tx, bookingID, 0, false); err != nil {
		return err
	}
	if err := s.Ledger.ReleaseTx(ctx, tx, b.RoomID, bookingID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// The remaining operations need no cross-repository transaction; the
// passthroughs below give callers one surface for the whole lifecycle.

func (s *Store) GetBooking(ctx context.Context, bookingID uint64) (*model.Booking, error) {
	return s.Bookings.GetByID(ctx, bookingID)
}

func (s *Store) BookingByTxRef(ctx context.Context, txRef string) (*model.Booking, error) {
	return s.Bookings.GetByTxRef(ctx, txRef)
}

func (s *Store) AttachPaymentRef(ctx context.Context, bookingID uint64, txRef string) error {
	return s.Bookings.AttachPaymentRef(ctx, bookingID, txRef)
}

func (s *Store) SupersedePaymentRef(ctx context.Context, bookingID uint64, txRef string) error {
	return s.Bookings.SupersedePaymentRef(ctx, bookingID, txRef)
}

func (s *Store) ConfirmByTxRef(ctx context.Context, txRef string) (bool, error) {
	return s.Bookings.ConfirmByTxRef(ctx, txRef)
}

func (s *Store) MarkPaymentFailed(ctx context.Context, bookingID uint64, needsReview bool) error {
	return s.Bookings.MarkPaymentFailed(ctx, bookingID, needsReview)
}

func (s *Store) CompleteBooking(ctx context.Context, bookingID uint64, now time.Time) error {
	return s.Bookings.Complete(ctx, bookingID, now)
}

func (s *Store) ListBookingsByGuest(ctx context.Context, guestID uint64) ([]model.Booking, error) {
	return s.Bookings.ListByGuest(ctx, guestID)
}

func (s *Store) ListAllBookings(ctx context.Context) ([]model.Booking, error) {
	return s.Bookings.ListAll(ctx)
}

func (s *Store) ListExpiredPending(ctx context.Context, cutoff time.Time) ([]model.Booking, error) {
	return s.Bookings.ListExpiredPending(ctx, cutoff)
}

func (s *Store) GetRoom(ctx context.Context, roomID uint64) (*model.Room, error) {
	return s.Rooms.GetByID(ctx, roomID)
}

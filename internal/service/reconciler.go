package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/amanuel-asmare/meserte-hotel-booking/internal/model"
	"github.com/amanuel-asmare/meserte-hotel-booking/internal/payment"
	"github.com/amanuel-asmare/meserte-hotel-booking/internal/queue"
	"github.com/amanuel-asmare/meserte-hotel-booking/internal/repository"
)

// Store is the persistence surface the reconciler needs.  It is satisfied
// by *repository.Store; tests substitute an in-memory fake.
type Store interface {
	CreateBooking(ctx context.Context, p repository.CreateParams) (*model.Booking, error)
	CancelBooking(ctx context.Context, bookingID uint64, refund repository.RefundFunc) (*model.Booking, error)
	GetBooking(ctx context.Context, bookingID uint64) (*model.Booking, error)
	BookingByTxRef(ctx context.Context, txRef string) (*model.Booking, error)
	AttachPaymentRef(ctx context.Context, bookingID uint64, txRef string) error
	SupersedePaymentRef(ctx context.Context, bookingID uint64, txRef string) error
	ConfirmByTxRef(ctx context.Context, txRef string) (bool, error)
	MarkPaymentFailed(ctx context.Context, bookingID uint64, needsReview bool) error
	CompleteBooking(ctx context.Context, bookingID uint64, now time.Time) error
	ListBookingsByGuest(ctx context.Context, guestID uint64) ([]model.Booking, error)
	ListAllBookings(ctx context.Context) ([]model.Booking, error)
	ListExpiredPending(ctx context.Context, cutoff time.Time) ([]model.Booking, error)
	ExpireBooking(ctx context.Context, bookingID uint64) error
	GetRoom(ctx context.Context, roomID uint64) (*model.Room, error)
}

// Config carries the reconciliation policy knobs.
type Config struct {
	Currency      string        // gateway currency code, e.g. ETB
	ReturnURL     string        // where the gateway sends the browser after checkout
	GracePeriod   time.Duration // how long an unpaid pending booking holds its room
	SweepInterval time.Duration // how often the expiry sweeper runs
	FeePercent    uint32        // flat cancellation fee percent
}

// Actor identifies who is performing an operation.  Staff may act on any
// booking; guests only on their own.
type Actor struct {
	GuestID uint64
	Staff   bool
}

// Reconciler orchestrates the booking lifecycle: it creates bookings,
// opens payment sessions, verifies external payment results and applies
// the resulting transitions to booking and room state.  It is stateless
// between calls; the store is the only source of truth.
type Reconciler struct {
	store   Store
	gateway payment.Client
	policy  RefundPolicy
	cfg     Config
	log     *logrus.Logger

	// Publish is invoked after a booking is confirmed for the first time.
	// Nil disables event publishing.  Failures are logged, never surfaced.
	Publish func(ctx context.Context, ev queue.BookingConfirmedEvent) error
}

// NewReconciler wires a Reconciler.  store and gateway must be non-nil.
func NewReconciler(store Store, gateway payment.Client, cfg Config, log *logrus.Logger) *Reconciler {
	if store == nil || gateway == nil {
		panic("nil dependency passed to NewReconciler")
	}
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = 30 * time.Minute
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Reconciler{
		store:   store,
		gateway: gateway,
		policy:  RefundPolicy{FeePercent: cfg.FeePercent},
		cfg:     cfg,
		log:     log,
	}
}

// InitiateParams carries a guest's booking request plus the contact details
// the gateway shows on its checkout page.
type InitiateParams struct {
	GuestID   uint64
	RoomID    uint64
	CheckIn   time.Time
	CheckOut  time.Time
	Guests    uint32
	Email     string
	FirstName string
	LastName  string
}

// mintTxRef builds a merchant-side transaction reference.  The uuid makes
// superseded references for the same booking distinguishable forever.
func mintTxRef(bookingID uint64) string {
	return fmt.Sprintf("BK-%d-%s", bookingID, uuid.NewString())
}

// InitiateBooking composes create → createSession → attachPaymentReference.
// If any later step fails the earlier ones are rolled back (booking
// cancelled, room released) so no pending booking is left with no way to
// pay.  On success the guest is handed the checkout URL.
func (r *Reconciler) InitiateBooking(ctx context.Context, p InitiateParams) (*model.Booking, string, error) {
	b, err := r.store.CreateBooking(ctx, repository.CreateParams{
		GuestID:  p.GuestID,
		RoomID:   p.RoomID,
		CheckIn:  p.CheckIn,
		CheckOut: p.CheckOut,
		Guests:   p.Guests,
	})
	if err != nil {
		return nil, "", err
	}

	sess, err := r.gateway.CreateSession(ctx, payment.SessionRequest{
		TxRef:       mintTxRef(b.ID),
		AmountCents: b.TotalCents,
		Currency:    r.cfg.Currency,
		Email:       p.Email,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		ReturnURL:   r.cfg.ReturnURL,
	})
	if err != nil {
		r.rollbackInitiate(b.ID, "create session", err)
		return nil, "", err
	}

	if err := r.store.AttachPaymentRef(ctx, b.ID, sess.TxRef); err != nil {
		r.rollbackInitiate(b.ID, "attach payment reference", err)
		return nil, "", err
	}

	b, err = r.store.GetBooking(ctx, b.ID)
	if err != nil {
		return nil, "", err
	}
	r.log.WithFields(logrus.Fields{
		"booking_id": b.ID,
		"guest_id":   b.GuestID,
		"room_id":    b.RoomID,
		"total":      b.TotalCents,
		"tx_ref":     sess.TxRef,
	}).Info("booking initiated")
	return b, sess.CheckoutURL, nil
}

// rollbackInitiate undoes a half-initiated booking.  It runs on a fresh
// context: a client disconnect mid-initiate must still release the room,
// so the rollback cannot ride the (possibly cancelled) request context.
func (r *Reconciler) rollbackInitiate(bookingID uint64, step string, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := r.store.CancelBooking(ctx, bookingID, nil); err != nil {
		r.log.WithError(err).WithField("booking_id", bookingID).
			Error("rollback of half-initiated booking failed; room may stay held until expiry")
		return
	}
	r.log.WithError(cause).WithFields(logrus.Fields{
		"booking_id": bookingID,
		"step":       step,
	}).Warn("booking rolled back")
}

// VerifyAndConfirm reconciles an external payment outcome with booking
// state.  It is idempotent: repeated calls with an already-confirmed
// reference return the confirmed booking without error, so the browser
// redirect and the gateway webhook may race freely.  Exactly-once
// confirmation is guaranteed by the store's conditional update.
func (r *Reconciler) VerifyAndConfirm(ctx context.Context, txRef string) (*model.Booking, error) {
	b, err := r.store.BookingByTxRef(ctx, txRef)
	if err != nil {
		return nil, err
	}
	if b.Status == model.StatusConfirmed || b.Status == model.StatusCompleted {
		return b, nil
	}

	res, err := r.gateway.Verify(ctx, txRef)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidReference) {
			if mfErr := r.store.MarkPaymentFailed(ctx, b.ID, false); mfErr != nil {
				r.log.WithError(mfErr).WithField("booking_id", b.ID).Error("mark failed after invalid reference")
			}
			r.log.WithField("tx_ref", txRef).Warn("gateway rejected transaction reference")
		}
		// GatewayUnreachable passes through untouched: retryable, no state change.
		return nil, err
	}

	if !res.Final() {
		return nil, fmt.Errorf("%w: gateway status %q", ErrPaymentNotSettled, res.RawStatus)
	}
	if !res.Success {
		if err := r.store.MarkPaymentFailed(ctx, b.ID, false); err != nil {
			return nil, err
		}
		r.log.WithFields(logrus.Fields{
			"booking_id": b.ID,
			"tx_ref":     txRef,
			"raw_status": res.RawStatus,
		}).Info("payment declined")
		return nil, fmt.Errorf("%w: gateway status %q", ErrPaymentDeclined, res.RawStatus)
	}
	if res.AmountCents != b.TotalCents {
		if err := r.store.MarkPaymentFailed(ctx, b.ID, true); err != nil {
			return nil, err
		}
		r.log.WithFields(logrus.Fields{
			"booking_id": b.ID,
			"tx_ref":     txRef,
			"expected":   b.TotalCents,
			"paid":       res.AmountCents,
		}).Error("verified amount mismatch; booking flagged for manual review")
		return nil, fmt.Errorf("%w: expected %d, gateway reports %d", ErrAmountMismatch, b.TotalCents, res.AmountCents)
	}

	confirmedNow, err := r.store.ConfirmByTxRef(ctx, txRef)
	if err != nil {
		return nil, err
	}
	b, err = r.store.BookingByTxRef(ctx, txRef)
	if err != nil {
		return nil, err
	}
	if confirmedNow {
		r.log.WithFields(logrus.Fields{
			"booking_id": b.ID,
			"tx_ref":     txRef,
		}).Info("booking confirmed")
		r.publishConfirmed(ctx, b, txRef)
	}
	return b, nil
}

func (r *Reconciler) publishConfirmed(ctx context.Context, b *model.Booking, txRef string) {
	if r.Publish == nil {
		return
	}
	ev := queue.BookingConfirmedEvent{
		BookingID:   b.ID,
		GuestID:     b.GuestID,
		RoomID:      b.RoomID,
		CheckIn:     b.CheckIn.Format("2006-01-02"),
		CheckOut:    b.CheckOut.Format("2006-01-02"),
		TotalCents:  b.TotalCents,
		TxRef:       txRef,
		ConfirmedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if room, err := r.store.GetRoom(ctx, b.RoomID); err == nil {
		ev.RoomNumber = room.RoomNumber
	}
	if err := r.Publish(ctx, ev); err != nil {
		r.log.WithError(err).WithField("booking_id", b.ID).Warn("booking.confirmed event not published")
	}
}

// PayAgain opens a fresh payment session for a pending booking whose
// previous attempt failed.  The new reference supersedes the old one,
// which becomes permanently unusable for confirmation.
func (r *Reconciler) PayAgain(ctx context.Context, bookingID uint64, actor Actor, email, firstName, lastName string) (string, error) {
	b, err := r.store.GetBooking(ctx, bookingID)
	if err != nil {
		return "", err
	}
	if !actor.Staff && b.GuestID != actor.GuestID {
		return "", repository.ErrForbidden
	}
	if b.Status != model.StatusPending || b.PaymentState != model.PaymentFailed {
		return "", repository.ErrInvalidTransition
	}

	sess, err := r.gateway.CreateSession(ctx, payment.SessionRequest{
		TxRef:       mintTxRef(b.ID),
		AmountCents: b.TotalCents,
		Currency:    r.cfg.Currency,
		Email:       email,
		FirstName:   firstName,
		LastName:    lastName,
		ReturnURL:   r.cfg.ReturnURL,
	})
	if err != nil {
		return "", err
	}
	if err := r.store.SupersedePaymentRef(ctx, b.ID, sess.TxRef); err != nil {
		return "", err
	}
	r.log.WithFields(logrus.Fields{
		"booking_id": b.ID,
		"tx_ref":     sess.TxRef,
	}).Info("payment session superseded")
	return sess.CheckoutURL, nil
}

// Cancel cancels a booking on behalf of its guest or a staff member,
// computing the refund under the booking's row lock and releasing the
// room.  Allowed only from pending or confirmed.
func (r *Reconciler) Cancel(ctx context.Context, bookingID uint64, actor Actor) (*model.Booking, error) {
	b, err := r.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.Staff && b.GuestID != actor.GuestID {
		return nil, repository.ErrForbidden
	}
	now := time.Now().UTC()
	cancelled, err := r.store.CancelBooking(ctx, bookingID, func(locked *model.Booking) (uint32, bool) {
		refund := r.policy.ComputeRefund(locked, now)
		return refund, refund > 0
	})
	if err != nil {
		return nil, err
	}
	r.log.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"refund":     cancelled.RefundCents,
		"by_staff":   actor.Staff,
	}).Info("booking cancelled")
	return cancelled, nil
}

// Complete marks a confirmed booking completed after check-out.  A
// receptionist action; payment status is untouched.
func (r *Reconciler) Complete(ctx context.Context, bookingID uint64) (*model.Booking, error) {
	if err := r.store.CompleteBooking(ctx, bookingID, time.Now().UTC()); err != nil {
		return nil, err
	}
	return r.store.GetBooking(ctx, bookingID)
}

// Booking returns one booking, enforcing ownership for non-staff actors.
func (r *Reconciler) Booking(ctx context.Context, bookingID uint64, actor Actor) (*model.Booking, error) {
	b, err := r.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.Staff && b.GuestID != actor.GuestID {
		return nil, repository.ErrForbidden
	}
	return b, nil
}

// GuestBookings lists the actor's own bookings.
func (r *Reconciler) GuestBookings(ctx context.Context, guestID uint64) ([]model.Booking, error) {
	return r.store.ListBookingsByGuest(ctx, guestID)
}

// AllBookings lists every booking for the reception/admin view.
func (r *Reconciler) AllBookings(ctx context.Context) ([]model.Booking, error) {
	return r.store.ListAllBookings(ctx)
}

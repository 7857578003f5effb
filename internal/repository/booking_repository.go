package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/amanuel-asmare/meserte-hotel-booking/internal/model"
)

// BookingRepo provides CRUD operations for bookings and implements the
// booking state machine at the SQL level.  Every transition is a
// conditional UPDATE guarded by the current status, so a transition either
// applies exactly once or affects zero rows; callers diagnose zero-row
// outcomes into the sentinel errors of this package.  All timestamp fields
// are stored in UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle for callers that open transactions
// spanning bookings and rooms.
func (r *BookingRepo) DB() *sql.DB { return r.db }

const bookingColumns = `id, guest_id, room_id, check_in, check_out, guests, total_cents,
	status, payment_status, tx_ref, refund_cents, needs_review, created_at, updated_at`

func scanBooking(row interface{ Scan(...interface{}) error }) (*model.Booking, error) {
	var b model.Booking
	var txRef sql.NullString
	err := row.Scan(
		&b.ID, &b.GuestID, &b.RoomID, &b.CheckIn, &b.CheckOut, &b.Guests, &b.TotalCents,
		&b.Status, &b.PaymentState, &txRef, &b.RefundCents, &b.NeedsReview,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if txRef.Valid {
		ref := txRef.String
		b.TxRef = &ref
	}
	return &b, nil
}

// CreateTx inserts a new booking within the scope of an existing
// transaction and reads the full row back to populate timestamps and
// defaults.  The caller must have locked the room row and passed the
// ledger's overlap re-check before calling this; the insert is what makes
// the hold visible to other transactions once committed.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings
		(guest_id, room_id, check_in, check_out, guests, total_cents, status, payment_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		b.GuestID, b.RoomID,
		b.CheckIn.UTC().Format("2006-01-02"), b.CheckOut.UTC().Format("2006-01-02"),
		b.Guests, b.TotalCents, string(b.Status), string(b.PaymentState),
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	const sel = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	got, err := scanBooking(tx.QueryRowContext(ctx, sel, b.ID))
	if err != nil {
		return err
	}
	*b = *got
	return nil
}

// GetByID returns a single booking or ErrBookingNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, bookingID uint64) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	return scanBooking(r.db.QueryRowContext(ctx, q, bookingID))
}

// GetForUpdateTx loads a booking inside the given transaction with a
// row-level write lock.  Cancellation and completion lock the booking row
// so that racing transitions serialise.
func (r *BookingRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, bookingID uint64) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ? FOR UPDATE`
	return scanBooking(tx.QueryRowContext(ctx, q, bookingID))
}

// GetByTxRef looks a booking up by its current payment transaction
// reference.  Superseded references no longer match any row, which is what
// makes an old tx_ref permanently unusable for confirmation.
func (r *BookingRepo) GetByTxRef(ctx context.Context, txRef string) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE tx_ref = ?`
	return scanBooking(r.db.QueryRowContext(ctx, q, txRef))
}

// AttachPaymentRef binds a freshly created payment session to a booking.
// It succeeds only when no reference is attached yet; a second call for
// the same booking returns ErrAlreadyAttached so that a client retry
// cannot open a duplicate session.
func (r *BookingRepo) AttachPaymentRef(ctx context.Context, bookingID uint64, txRef string) error {
	const q = `UPDATE bookings SET tx_ref = ? WHERE id = ? AND tx_ref IS NULL`
	res, err := r.db.ExecContext(ctx, q, txRef, bookingID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	if _, err := r.GetByID(ctx, bookingID); err != nil {
		return err
	}
	return ErrAlreadyAttached
}

// SupersedePaymentRef replaces the payment reference of a pending booking
// whose previous attempt failed, resetting payment status to pending.  The
// old reference stops matching GetByTxRef from this point on.
func (r *BookingRepo) SupersedePaymentRef(ctx context.Context, bookingID uint64, txRef string) error {
	const q = `UPDATE bookings SET tx_ref = ?, payment_status = 'pending'
	           WHERE id = ? AND status = 'pending' AND payment_status = 'failed'`
	res, err := r.db.ExecContext(ctx, q, txRef, bookingID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	if _, err := r.GetByID(ctx, bookingID); err != nil {
		return err
	}
	return ErrInvalidTransition
}

// ConfirmByTxRef applies the pending → confirmed transition for the booking
// bound to txRef, setting payment status to completed.  The conditional
// UPDATE makes the transition happen exactly once even when the browser
// redirect and the gateway webhook race: the first caller gets
// confirmedNow == true, every later caller gets false with no error and
// observes the already-confirmed row.  A booking that left pending by any
// other route (cancelled by expiry, for instance) yields
// ErrInvalidTransition.
func (r *BookingRepo) ConfirmByTxRef(ctx context.Context, txRef string) (confirmedNow bool, err error) {
	const q = `UPDATE bookings SET status = 'confirmed', payment_status = 'completed'
	           WHERE tx_ref = ? AND status = 'pending'`
	res, err := r.db.ExecContext(ctx, q, txRef)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 1 {
		return true, nil
	}
	b, err := r.GetByTxRef(ctx, txRef)
	if err != nil {
		return false, err
	}
	if b.Status == model.StatusConfirmed || b.Status == model.StatusCompleted {
		return false, nil
	}
	return false, ErrInvalidTransition
}

// MarkPaymentFailed records a failed payment attempt.  The booking stays
// pending so the guest may retry, and the room stays held until explicit
// cancellation or expiry.  needsReview is set for outcomes that require a
// human look (amount mismatches).
func (r *BookingRepo) MarkPaymentFailed(ctx context.Context, bookingID uint64, needsReview bool) error {
	const q = `UPDATE bookings SET payment_status = 'failed', needs_review = needs_review OR ?
	           WHERE id = ? AND status = 'pending'`
	res, err := r.db.ExecContext(ctx, q, needsReview, bookingID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	if _, err := r.GetByID(ctx, bookingID); err != nil {
		return err
	}
	return ErrInvalidTransition
}

// CancelTx applies the → cancelled transition inside the caller's
// transaction.  Allowed only from pending or confirmed.  When refunded is
// true the payment status flips to refunded and refundCents records the
// amount reported back to the guest.  Cancelling releases the room: once
// the row leaves the active status set it stops counting toward occupancy.
func (r *BookingRepo) CancelTx(ctx context.Context, tx *sql.Tx, bookingID uint64, refundCents uint32, refunded bool) error {
	const q = `UPDATE bookings
	           SET status = 'cancelled',
	               refund_cents = ?,
	               payment_status = IF(?, 'refunded', payment_status)
	           WHERE id = ? AND status IN ('pending','confirmed')`
	res, err := tx.ExecContext(ctx, q, refundCents, refunded, bookingID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	if _, err := scanBooking(tx.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, bookingID)); err != nil {
		return err
	}
	return ErrInvalidTransition
}

// Complete applies the confirmed → completed transition.  It is a
// receptionist action allowed only once the check-out date has passed.
// Payment status is left untouched.
func (r *BookingRepo) Complete(ctx context.Context, bookingID uint64, now time.Time) error {
	const q = `UPDATE bookings SET status = 'completed'
	           WHERE id = ? AND status = 'confirmed' AND check_out <= ?`
	res, err := r.db.ExecContext(ctx, q, bookingID, now.UTC().Format("2006-01-02"))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	if _, err := r.GetByID(ctx, bookingID); err != nil {
		return err
	}
	return ErrInvalidTransition
}

// ListByGuest returns all bookings created by the given guest, newest
// first.  When none exist an empty slice is returned.
func (r *BookingRepo) ListByGuest(ctx context.Context, guestID uint64) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE guest_id = ? ORDER BY created_at DESC`
	return r.list(ctx, q, guestID)
}

// ListAll returns every booking, newest first.  Used by the receptionist
// and admin views.
func (r *BookingRepo) ListAll(ctx context.Context) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings ORDER BY created_at DESC`
	return r.list(ctx, q)
}

// ListExpiredPending returns pending bookings without a completed payment
// created at or before the cutoff.  The expiry sweeper cancels each one
// through the ordinary cancellation path.
func (r *BookingRepo) ListExpiredPending(ctx context.Context, cutoff time.Time) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings
	           WHERE status = 'pending' AND payment_status <> 'completed' AND created_at <= ?
	           ORDER BY created_at`
	return r.list(ctx, q, cutoff.UTC().Format("2006-01-02 15:04:05"))
}

func (r *BookingRepo) list(ctx context.Context, query string, args ...interface{}) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Booking, 0)
	for rows.Next() {
		var b model.Booking
		var txRef sql.NullString
		if err := rows.Scan(
			&b.ID, &b.GuestID, &b.RoomID, &b.CheckIn, &b.CheckOut, &b.Guests, &b.TotalCents,
			&b.Status, &b.PaymentState, &txRef, &b.RefundCents, &b.NeedsReview,
			&b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if txRef.Valid {
			ref := txRef.String
			b.TxRef = &ref
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

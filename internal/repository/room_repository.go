package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/amanuel-asmare/meserte-hotel-booking/internal/model"
)

// RoomRepo provides CRUD access to the rooms table.  Occupancy is not
// stored on the room row; it is derived from active bookings by the
// AvailabilityLedger.  All timestamps are stored in UTC.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo returns a new RoomRepo bound to the given database.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

// DB exposes the underlying handle so that callers can begin transactions
// spanning rooms and bookings.
func (r *RoomRepo) DB() *sql.DB { return r.db }

const roomColumns = `id, room_number, room_type, nightly_rate_cents, capacity, housekeeping_status, is_reservable, created_at, updated_at`

func scanRoom(row interface{ Scan(...interface{}) error }) (*model.Room, error) {
	var rm model.Room
	err := row.Scan(
		&rm.ID, &rm.RoomNumber, &rm.RoomType, &rm.NightlyRateCents, &rm.Capacity,
		&rm.HousekeepingStatus, &rm.Reservable, &rm.CreatedAt, &rm.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &rm, nil
}

// GetByID returns a single room or ErrRoomNotFound.
func (r *RoomRepo) GetByID(ctx context.Context, roomID uint64) (*model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`
	return scanRoom(r.db.QueryRowContext(ctx, q, roomID))
}

// GetForUpdateTx loads a room inside the given transaction with a row-level
// write lock.  Every availability decision for the room serialises on this
// lock, so two concurrent reservations for overlapping ranges resolve
// deterministically.
func (r *RoomRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, roomID uint64) (*model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ? FOR UPDATE`
	return scanRoom(tx.QueryRowContext(ctx, q, roomID))
}

// List returns all rooms ordered by room number.  The catalog handler
// augments each row with derived availability when a date range is given.
func (r *RoomRepo) List(ctx context.Context) ([]model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms ORDER BY room_number`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Room, 0)
	for rows.Next() {
		var rm model.Room
		if err := rows.Scan(
			&rm.ID, &rm.RoomNumber, &rm.RoomType, &rm.NightlyRateCents, &rm.Capacity,
			&rm.HousekeepingStatus, &rm.Reservable, &rm.CreatedAt, &rm.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateFlags mutates the administrative state of a room.  Either field may
// be nil to leave it unchanged.  Housekeeping writes come from the external
// housekeeping workflow; the reservable flag is flipped by reception.
func (r *RoomRepo) UpdateFlags(ctx context.Context, roomID uint64, reservable *bool, housekeeping *string) (*model.Room, error) {
	if housekeeping != nil {
		switch *housekeeping {
		case model.HousekeepingClean, model.HousekeepingDirty, model.HousekeepingMaintenance:
		default:
			return nil, ErrRoomNotReservable
		}
	}
	const q = `UPDATE rooms
	           SET is_reservable = COALESCE(?, is_reservable),
	               housekeeping_status = COALESCE(?, housekeeping_status)
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, reservable, housekeeping, roomID)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// MySQL reports 0 rows for a no-op update too, so distinguish a
		// missing room from an unchanged one.
		if _, getErr := r.GetByID(ctx, roomID); getErr != nil {
			return nil, getErr
		}
	}
	return r.GetByID(ctx, roomID)
}

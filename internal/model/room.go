package model

import "time"

// Housekeeping states a room can be in.  A room is only bookable while
// clean; dirty and maintenance rooms stay visible in the catalog but
// cannot accept new reservations.
const (
	HousekeepingClean       = "clean"
	HousekeepingDirty       = "dirty"
	HousekeepingMaintenance = "maintenance"
)

// Room describes a single hotel room.  Date-based occupancy is not stored
// here; it is derived from active bookings.  Reservable is an
// administrative flag distinct from availability: a room can be free for a
// date range yet blocked from booking (e.g. under renovation).
//
// Fields:
//  ID                 – primary key identifier.
//  RoomNumber         – human-facing room number, unique per property.
//  RoomType           – category label (single, double, suite, ...).
//  NightlyRateCents   – price per night in cents.
//  Capacity           – maximum number of guests.
//  HousekeepingStatus – clean, dirty or maintenance.
//  Reservable         – administrative bookability flag.
type Room struct {
	ID                 uint64    `json:"id"`                 // rooms.id
	RoomNumber         string    `json:"roomNumber"`         // rooms.room_number
	RoomType           string    `json:"type"`               // rooms.room_type
	NightlyRateCents   uint32    `json:"price"`              // rooms.nightly_rate_cents
	Capacity           uint32    `json:"capacity"`           // rooms.capacity
	HousekeepingStatus string    `json:"housekeepingStatus"` // rooms.housekeeping_status
	Reservable         bool      `json:"reservable"`         // rooms.is_reservable
	CreatedAt          time.Time `json:"createdAt"`          // rooms.created_at
	UpdatedAt          time.Time `json:"updatedAt"`          // rooms.updated_at
}

// Bookable reports whether the room's administrative state allows new
// reservations.  Date-range availability is checked separately against
// active bookings.
func (r *Room) Bookable() bool {
	return r.Reservable && r.HousekeepingStatus == HousekeepingClean
}

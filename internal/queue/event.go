// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published when a booking's payment has been
// verified and the booking transitioned to confirmed.  It carries enough
// information for downstream consumers to log or notify without querying
// the primary database.
type BookingConfirmedEvent struct {
	BookingID   uint64 `json:"booking_id"`
	GuestID     uint64 `json:"guest_id"`
	RoomID      uint64 `json:"room_id"`
	RoomNumber  string `json:"room_number"`
	CheckIn     string `json:"check_in"`
	CheckOut    string `json:"check_out"`
	TotalCents  uint32 `json:"total_cents"`
	TxRef       string `json:"tx_ref"`
	ConfirmedAt string `json:"confirmed_at"`
}

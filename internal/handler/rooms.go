package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/amanuel-asmare/meserte-hotel-booking/internal/repository"
)

// RoomHandler serves the public room catalog and availability lookups.
// Both endpoints sit behind the response cache, so lookups are advisory:
// the authoritative overlap check happens again when a booking is created.
type RoomHandler struct {
	Rooms  *repository.RoomRepo
	Ledger *repository.AvailabilityLedger
}

// NewRoomHandler constructs a RoomHandler.  Dependencies must be non-nil.
func NewRoomHandler(rooms *repository.RoomRepo, ledger *repository.AvailabilityLedger) *RoomHandler {
	if rooms == nil || ledger == nil {
		panic("nil repository passed to NewRoomHandler")
	}
	return &RoomHandler{Rooms: rooms, Ledger: ledger}
}

// List handles GET /v1/rooms.  It returns the full catalog; rooms flagged
// unreservable or under maintenance are included so the frontend can show
// them greyed out.
func (h *RoomHandler) List(c echo.Context) error {
	rooms, err := h.Rooms.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"rooms": rooms})
}

// Availability handles GET /v1/rooms/:id/availability.  Query parameters
// check_in and check_out are calendar dates; the range is half-open, so a
// booking ending on check_in does not conflict.
func (h *RoomHandler) Availability(c echo.Context) error {
	roomID, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	checkIn, err1 := time.Parse("2006-01-02", c.QueryParam("check_in"))
	checkOut, err2 := time.Parse("2006-01-02", c.QueryParam("check_out"))
	if err1 != nil || err2 != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_in and check_out must be YYYY-MM-DD"})
	}
	if !checkIn.Before(checkOut) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_out must be after check_in"})
	}

	ctx := c.Request().Context()
	room, err := h.Rooms.GetByID(ctx, roomID)
	if err != nil {
		return respondError(c, err)
	}
	free, err := h.Ledger.IsAvailable(ctx, roomID, checkIn, checkOut)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"roomId":    room.ID,
		"checkIn":   checkIn.Format("2006-01-02"),
		"checkOut":  checkOut.Format("2006-01-02"),
		"available": free && room.Bookable(),
	})
}

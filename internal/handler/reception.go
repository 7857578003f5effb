package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/amanuel-asmare/meserte-hotel-booking/internal/model"
	"github.com/amanuel-asmare/meserte-hotel-booking/internal/repository"
	"github.com/amanuel-asmare/meserte-hotel-booking/internal/service"
)

// ReceptionHandler serves the staff surface: the full booking board,
// check-out completion and room flag management.  Routes are guarded by
// role middleware; handlers still build a staff actor so the service layer
// skips ownership checks.
type ReceptionHandler struct {
	Svc   *service.Reconciler
	Rooms *repository.RoomRepo
}

// NewReceptionHandler constructs a ReceptionHandler.
func NewReceptionHandler(svc *service.Reconciler, rooms *repository.RoomRepo) *ReceptionHandler {
	if svc == nil || rooms == nil {
		panic("nil dependency passed to NewReceptionHandler")
	}
	return &ReceptionHandler{Svc: svc, Rooms: rooms}
}

// ListAll handles GET /v1/bookings.  Bookings flagged for manual review
// surface here with needsReview set.
func (h *ReceptionHandler) ListAll(c echo.Context) error {
	bookings, err := h.Svc.AllBookings(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": bookings})
}

// Complete handles POST /v1/bookings/:id/complete, marking a confirmed
// booking completed at check-out.
func (h *ReceptionHandler) Complete(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	booking, err := h.Svc.Complete(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, booking)
}

// AdminCancel handles DELETE /v1/admin/bookings/:id.  Staff cancellations
// follow the same refund policy as guest ones.
func (h *ReceptionHandler) AdminCancel(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	booking, err := h.Svc.Cancel(c.Request().Context(), id, actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, booking)
}

type updateRoomRequest struct {
	Reservable         *bool   `json:"reservable"`
	HousekeepingStatus *string `json:"housekeepingStatus"`
}

// UpdateRoom handles PATCH /v1/admin/rooms/:id.  Only the fields present
// in the body change; flipping reservable off or setting a non-clean
// housekeeping status keeps existing bookings but blocks new ones.
func (h *ReceptionHandler) UpdateRoom(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	var body updateRoomRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Reservable == nil && body.HousekeepingStatus == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}
	if body.HousekeepingStatus != nil {
		switch *body.HousekeepingStatus {
		case model.HousekeepingClean, model.HousekeepingDirty, model.HousekeepingMaintenance:
		default:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid housekeeping status"})
		}
	}
	room, err := h.Rooms.UpdateFlags(c.Request().Context(), id, body.Reservable, body.HousekeepingStatus)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, room)
}

package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/amanuel-asmare/meserte-hotel-booking/internal/service"
)

// BookingHandler serves the guest-facing booking lifecycle.  All routes
// assume JWT authentication ran first; ownership is enforced by the
// service layer so staff tokens can also reach guest bookings through the
// same paths.
type BookingHandler struct {
	Svc *service.Reconciler
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(svc *service.Reconciler) *BookingHandler {
	if svc == nil {
		panic("nil service passed to NewBookingHandler")
	}
	return &BookingHandler{Svc: svc}
}

type createBookingRequest struct {
	RoomID    uint64 `json:"roomId"`
	CheckIn   string `json:"checkIn"`
	CheckOut  string `json:"checkOut"`
	Guests    uint32 `json:"guests"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Create handles POST /v1/bookings.  It reserves the room, opens a payment
// session and returns the pending booking together with the gateway
// checkout URL.  A room held by an overlapping booking yields 409 with no
// record created.
func (h *BookingHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body createBookingRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.RoomID == 0 || body.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "roomId and email are required"})
	}
	checkIn, err1 := time.Parse("2006-01-02", body.CheckIn)
	checkOut, err2 := time.Parse("2006-01-02", body.CheckOut)
	if err1 != nil || err2 != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "checkIn and checkOut must be YYYY-MM-DD"})
	}

	booking, checkoutURL, err := h.Svc.InitiateBooking(c.Request().Context(), service.InitiateParams{
		GuestID:   userID,
		RoomID:    body.RoomID,
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Guests:    body.Guests,
		Email:     body.Email,
		FirstName: body.FirstName,
		LastName:  body.LastName,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"booking":     booking,
		"checkoutUrl": checkoutURL,
	})
}

// MyBookings handles GET /v1/my-bookings.
func (h *BookingHandler) MyBookings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookings, err := h.Svc.GuestBookings(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": bookings})
}

// Get handles GET /v1/bookings/:id.  Guests see only their own bookings.
func (h *BookingHandler) Get(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	booking, err := h.Svc.Booking(c.Request().Context(), id, actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, booking)
}

type payAgainRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// PayAgain handles POST /v1/bookings/:id/pay.  Allowed only while the
// booking is pending with a failed payment; the previous transaction
// reference is superseded and can never confirm the booking.
func (h *BookingHandler) PayAgain(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var body payAgainRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email is required"})
	}
	checkoutURL, err := h.Svc.PayAgain(c.Request().Context(), id, actor, body.Email, body.FirstName, body.LastName)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"checkoutUrl": checkoutURL})
}

// Cancel handles DELETE /v1/bookings/:id.  The refund, if any, follows the
// cancellation policy and is reported on the returned booking.
func (h *BookingHandler) Cancel(c echo.Context) error {
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

package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/amanuel-asmare/meserte-hotel-booking/internal/middleware"
	"github.com/amanuel-asmare/meserte-hotel-booking/internal/payment"
	"github.com/amanuel-asmare/meserte-hotel-booking/internal/repository"
	"github.com/amanuel-asmare/meserte-hotel-booking/internal/service"
)

// getUserID extracts the user_id stored by the JWT middleware and converts
// it to uint64.  Claims decode numbers as float64, so several types are
// accepted.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// actorFrom builds the service-level actor for the authenticated caller.
// Receptionists and admins act as staff.
func actorFrom(c echo.Context) (service.Actor, error) {
	uid, err := getUserID(c)
	if err != nil {
		return service.Actor{}, err
	}
	role, _ := c.Get("role").(string)
	return service.Actor{
		GuestID: uid,
		Staff:   role == middleware.RoleReceptionist || role == middleware.RoleAdmin,
	}, nil
}

// pathID parses a numeric :id path parameter.
func pathID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id != 0
}

// respondError maps lifecycle sentinels to HTTP responses.  Anything not
// recognized is a 500 with a generic message; details stay in the logs.
func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrBookingNotFound),
		errors.Is(err, repository.ErrRoomNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrInvalidDateRange),
		errors.Is(err, repository.ErrCapacityExceeded):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrRoomUnavailable),
		errors.Is(err, repository.ErrRoomNotReservable),
		errors.Is(err, repository.ErrInvalidTransition),
		errors.Is(err, repository.ErrAlreadyAttached),
		errors.Is(err, service.ErrAmountMismatch):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, service.ErrPaymentDeclined):
		return c.JSON(http.StatusPaymentRequired, echo.Map{"error": err.Error()})
	case errors.Is(err, payment.ErrGatewayUnreachable):
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "payment gateway unreachable, retry shortly"})
	default:
		c.Logger().Errorf("internal error: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

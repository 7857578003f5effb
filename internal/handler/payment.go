package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/amanuel-asmare/meserte-hotel-booking/internal/payment"
	"github.com/amanuel-asmare/meserte-hotel-booking/internal/repository"
	"github.com/amanuel-asmare/meserte-hotel-booking/internal/service"
)

// PaymentHandler reconciles gateway outcomes delivered over two channels:
// the guest's browser returning from checkout and the gateway's webhook.
// Both funnel into the same idempotent verify-and-confirm, so whichever
// arrives first wins and the other is a no-op.
type PaymentHandler struct {
	Svc           *service.Reconciler
	WebhookSecret string // empty disables signature verification
	Log           *logrus.Logger
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(svc *service.Reconciler, webhookSecret string, log *logrus.Logger) *PaymentHandler {
	if svc == nil {
		panic("nil service passed to NewPaymentHandler")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &PaymentHandler{Svc: svc, WebhookSecret: webhookSecret, Log: log}
}

// Return handles GET /v1/payments/return.  The gateway redirects the
// guest's browser here after checkout with the transaction reference in
// the query string.  The booking state in the response is what the guest
// sees on the "payment complete" page.
func (h *PaymentHandler) Return(c echo.Context) error {
	txRef := c.QueryParam("tx_ref")
	if txRef == "" {
		txRef = c.QueryParam("trx_ref") // some gateway versions use this name
	}
	if txRef == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tx_ref is required"})
	}
	booking, err := h.Svc.VerifyAndConfirm(c.Request().Context(), txRef)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentNotSettled):
			return c.JSON(http.StatusAccepted, echo.Map{"status": "pending", "message": "payment not settled yet, retry shortly"})
		case errors.Is(err, payment.ErrGatewayUnreachable):
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "payment gateway unreachable, retry shortly"})
		case errors.Is(err, payment.ErrInvalidReference):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown transaction reference"})
		default:
			return respondError(c, err)
		}
	}
	return c.JSON(http.StatusOK, booking)
}

type webhookPayload struct {
	TxRef  string `json:"tx_ref"`
	Status string `json:"status"`
}

// Webhook handles POST /v1/payments/webhook.  The payload's status field
// is never trusted; the reference is re-verified against the gateway
// before any state changes.  Terminal outcomes return 200 so the gateway
// stops retrying; only a transient verification failure returns 5xx.
func (h *PaymentHandler) Webhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable body"})
	}
	if h.WebhookSecret != "" {
		sig := c.Request().Header.Get("Chapa-Signature")
		if !validSignature(h.WebhookSecret, body, sig) {
			h.Log.WithField("remote", c.RealIP()).Warn("webhook signature rejected")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid signature"})
		}
	}
	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil || payload.TxRef == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payload"})
	}

	_, err = h.Svc.VerifyAndConfirm(c.Request().Context(), payload.TxRef)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"status": "processed"})
	case errors.Is(err, payment.ErrGatewayUnreachable),
		errors.Is(err, service.ErrPaymentNotSettled):
		// Transient: a non-2xx makes the gateway redeliver later.
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "verification unavailable"})
	case errors.Is(err, repository.ErrBookingNotFound):
		h.Log.WithField("tx_ref", payload.TxRef).Warn("webhook for unknown transaction reference")
		return c.JSON(http.StatusOK, echo.Map{"status": "ignored"})
	default:
		// Declined, mismatched or superseded: recorded, nothing to retry.
		h.Log.WithError(err).WithField("tx_ref", payload.TxRef).Info("webhook reconciled without confirmation")
		return c.JSON(http.StatusOK, echo.Map{"status": "recorded"})
	}
}

func validSignature(secret string, body []byte, got string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	want := hex.EncodeToString(mac.Sum(nil))
	return got != "" && hmac.Equal([]byte(want), []byte(got))
}

package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionReq() SessionRequest {
	return SessionRequest{
		TxRef:       "BK-1-abc",
		AmountCents: 500_050,
		Currency:    "ETB",
		Email:       "guest@example.com",
		FirstName:   "Abebe",
		LastName:    "Kebede",
		ReturnURL:   "https://hotel.test/payments/return",
	}
}

func TestCreateSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/transaction/initialize", r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "5000.50", body["amount"])
		assert.Equal(t, "ETB", body["currency"])
		assert.Equal(t, "BK-1-abc", body["tx_ref"])

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "success",
			"message": "Hosted Link",
			"data":    map[string]string{"checkout_url": "https://checkout.chapa.co/pay/xyz"},
		})
	}))
	defer srv.Close()

	c := NewChapaClient(srv.URL, "sk-test", 0)
	sess, err := c.CreateSession(context.Background(), sessionReq())
	require.NoError(t, err)
	assert.Equal(t, "BK-1-abc", sess.TxRef)
	assert.Equal(t, "https://checkout.chapa.co/pay/xyz", sess.CheckoutURL)
}

func TestCreateSessionRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "failed", "message": "invalid currency"})
	}))
	defer srv.Close()

	c := NewChapaClient(srv.URL, "sk-test", 0)
	_, err := c.CreateSession(context.Background(), sessionReq())
	require.Error(t, err)
	// A rejection is final, not a transport failure.
	assert.NotErrorIs(t, err, ErrGatewayUnreachable)
}

func TestCreateSessionServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewChapaClient(srv.URL, "sk-test", 0)
	_, err := c.CreateSession(context.Background(), sessionReq())
	assert.ErrorIs(t, err, ErrGatewayUnreachable)
}

func TestCreateSessionConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	c := NewChapaClient(srv.URL, "sk-test", 0)
	_, err := c.CreateSession(context.Background(), sessionReq())
	assert.ErrorIs(t, err, ErrGatewayUnreachable)
}

func TestVerifySuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/v1/transaction/verify/BK-1-abc", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "success",
			"data":   map[string]interface{}{"status": "success", "amount": 5000.50, "currency": "ETB"},
		})
	}))
	defer srv.Close()

	c := NewChapaClient(srv.URL, "sk-test", 0)
	res, err := c.Verify(context.Background(), "BK-1-abc")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, res.Final())
	assert.Equal(t, uint32(500_050), res.AmountCents)
}

func TestVerifyPendingNotFinal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "success",
			"data":   map[string]interface{}{"status": "pending", "amount": 0.0},
		})
	}))
	defer srv.Close()

	c := NewChapaClient(srv.URL, "sk-test", 0)
	res, err := c.Verify(context.Background(), "BK-1-abc")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.False(t, res.Final())
}

func TestVerifyUnknownReference(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewChapaClient(srv.URL, "sk-test", 0)
	_, err := c.Verify(context.Background(), "BK-9-nope")
	assert.ErrorIs(t, err, ErrInvalidReference)
}

func TestVerifyFailedEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "failed", "message": "invalid transaction reference"})
	}))
	defer srv.Close()

	c := NewChapaClient(srv.URL, "sk-test", 0)
	_, err := c.Verify(context.Background(), "BK-9-nope")
	assert.ErrorIs(t, err, ErrInvalidReference)
}

func TestCentsRoundTrip(t *testing.T) {
	assert.Equal(t, "0.05", centsToDecimal(5))
	assert.Equal(t, "12.00", centsToDecimal(1200))
	assert.Equal(t, uint32(5), decimalToCents(0.05))
	assert.Equal(t, uint32(99999), decimalToCents(999.99))
}

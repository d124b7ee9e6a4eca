package paymentgateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-EventBooking/internal/domain"
)

func TestCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/payments/orders", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req CreateOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(300000), req.Amount)
		assert.Equal(t, "INR", req.Currency)
		assert.Equal(t, "7", req.Receipt)

		_, _ = w.Write([]byte(`{"orderId":"order_abc","amount":300000,"currency":"INR"}`))
	}))
	defer srv.Close()

	orderID, err := NewClient(srv.URL, "secret", time.Second).CreateOrder(context.Background(), 300000, "INR", "7")
	require.NoError(t, err)
	assert.Equal(t, "order_abc", orderID)
}

func TestCreateOrder_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		err    error
	}{
		{name: "gateway error", status: http.StatusBadGateway, body: "down", err: ErrGateway},
		{name: "empty order id", status: http.StatusOK, body: `{"amount":100}`, err: ErrInvalidResponse},
		{name: "amount mismatch", status: http.StatusOK, body: `{"orderId":"o","amount":1}`, err: ErrInvalidResponse},
		{name: "broken json", status: http.StatusOK, body: `{`, err: ErrInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, "", time.Second).CreateOrder(context.Background(), 100, "INR", "7")
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestVerify(t *testing.T) {
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payments/verify", r.URL.Path)

		var req VerifyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "pay_1", req.PaymentID)
		assert.Equal(t, "order_1", req.OrderID)
		assert.Equal(t, "sig", req.Signature)

		w.WriteHeader(status)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second)
	conf := domain.PaymentConfirmation{OrderID: "order_1", PaymentID: "pay_1", Signature: "sig"}

	require.NoError(t, c.Verify(context.Background(), conf))

	status = http.StatusBadRequest
	assert.ErrorIs(t, c.Verify(context.Background(), conf), ErrVerificationRejected)
}

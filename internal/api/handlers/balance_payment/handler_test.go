package balance_payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-EventBooking/internal/api/middleware"
	"github.com/m04kA/SMC-EventBooking/internal/domain"
	"github.com/m04kA/SMC-EventBooking/internal/payment"
	payBalance "github.com/m04kA/SMC-EventBooking/internal/usecase/pay_balance"
)

type mockUseCase struct {
	mock.Mock
}

func (m *mockUseCase) Open(ctx context.Context, req *payBalance.OpenRequest) (*payBalance.SessionResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*payBalance.SessionResponse)
	return resp, args.Error(1)
}

func (m *mockUseCase) Complete(ctx context.Context, req *payBalance.CompleteRequest) (*payBalance.Response, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*payBalance.Response)
	return resp, args.Error(1)
}

func (m *mockUseCase) Dismiss(ctx context.Context, req *payBalance.DismissRequest) error {
	return m.Called(ctx, req).Error(0)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

var owner = domain.Actor{UserID: 42, Role: domain.RoleClient}

func router(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/bookings/{bookingId}/balance-payment", h.Open).Methods(http.MethodPost)
	r.HandleFunc("/bookings/{bookingId}/balance-payment/{orderId}/complete", h.Complete).Methods(http.MethodPost)
	r.HandleFunc("/bookings/{bookingId}/balance-payment/{orderId}/dismiss", h.Dismiss).Methods(http.MethodPost)
	return r
}

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req = req.WithContext(middleware.WithActor(req.Context(), owner))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestOpen(t *testing.T) {
	uc := &mockUseCase{}
	uc.On("Open", mock.Anything, &payBalance.OpenRequest{BookingID: 5, Actor: owner}).
		Return(&payBalance.SessionResponse{
			Session:          domain.PaymentSession{OrderID: "order_bal_1", Amount: 400000, Currency: "INR"},
			InstallmentIndex: 2,
			Amount:           4000,
			DueAfter:         3000,
		}, nil)
	uc.On("Open", mock.Anything, &payBalance.OpenRequest{BookingID: 6, Actor: owner}).Return(nil, payment.ErrNothingDue)
	uc.On("Open", mock.Anything, &payBalance.OpenRequest{BookingID: 7, Actor: owner}).Return(nil, payBalance.ErrBookingCancelled)
	uc.On("Open", mock.Anything, &payBalance.OpenRequest{BookingID: 8, Actor: owner}).Return(nil, payBalance.ErrAccessDenied)

	r := router(NewHandler(uc, nopLogger{}))

	rec := post(r, "/bookings/5/balance-payment", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var body SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.InstallmentIndex)
	assert.Equal(t, int64(3000), body.DueAfter)

	assert.Equal(t, http.StatusConflict, post(r, "/bookings/6/balance-payment", "").Code)
	assert.Equal(t, http.StatusConflict, post(r, "/bookings/7/balance-payment", "").Code)
	assert.Equal(t, http.StatusForbidden, post(r, "/bookings/8/balance-payment", "").Code)
}

func TestComplete(t *testing.T) {
	uc := &mockUseCase{}
	uc.On("Complete", mock.Anything, &payBalance.CompleteRequest{
		BookingID: 5, Actor: owner, OrderID: "order_bal_1", PaymentID: "pay_2", Signature: "sig",
	}).Return(&payBalance.Response{
		BookingID: 5, InvoiceID: 101, InstallmentIndex: 2, PaidAmount: 7000, DueAmount: 3000, PaymentStatus: "partially_paid",
	}, nil)
	uc.On("Complete", mock.Anything, mock.MatchedBy(func(req *payBalance.CompleteRequest) bool {
		return req.OrderID == "order_bal_2"
	})).Return(nil, fmt.Errorf("%w: conflict", payment.ErrReconciliationRequired))

	r := router(NewHandler(uc, nopLogger{}))
	payload := `{"paymentId":"pay_2","signature":"sig"}`

	rec := post(r, "/bookings/5/balance-payment/order_bal_1/complete", payload)
	require.Equal(t, http.StatusOK, rec.Code)
	var body InstallmentRecordedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(101), body.InvoiceID)
	assert.Equal(t, int64(3000), body.DueAmount)

	assert.Equal(t, http.StatusInternalServerError, post(r, "/bookings/5/balance-payment/order_bal_2/complete", payload).Code)
}

func TestDismiss(t *testing.T) {
	uc := &mockUseCase{}
	uc.On("Dismiss", mock.Anything, &payBalance.DismissRequest{BookingID: 5, Actor: owner, OrderID: "order_bal_1"}).Return(nil)

	rec := post(router(NewHandler(uc, nopLogger{})), "/bookings/5/balance-payment/order_bal_1/dismiss", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "notice")
}

package get_booking

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-EventBooking/internal/api/middleware"
	"github.com/m04kA/SMC-EventBooking/internal/domain"
	"github.com/m04kA/SMC-EventBooking/internal/service/bookings"
	"github.com/m04kA/SMC-EventBooking/internal/service/bookings/models"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) GetByID(ctx context.Context, id int64, actor domain.Actor) (*models.BookingResponse, error) {
	args := m.Called(ctx, id, actor)
	resp, _ := args.Get(0).(*models.BookingResponse)
	return resp, args.Error(1)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func serve(h *Handler, path string, actor *domain.Actor) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/bookings/{bookingId}", h.Handle)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if actor != nil {
		req = req.WithContext(middleware.WithActor(req.Context(), *actor))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandle(t *testing.T) {
	client := domain.Actor{UserID: 42, Role: domain.RoleClient}

	svc := &mockService{}
	svc.On("GetByID", mock.Anything, int64(5), client).
		Return(&models.BookingResponse{ID: 5, UserID: 42, TotalFormatted: "INR 10,000"}, nil)
	svc.On("GetByID", mock.Anything, int64(6), client).Return(nil, bookings.ErrAccessDenied)
	svc.On("GetByID", mock.Anything, int64(7), client).Return(nil, bookings.ErrBookingNotFound)
	svc.On("GetByID", mock.Anything, int64(8), client).Return(nil, fmt.Errorf("%w: db down", bookings.ErrInternal))

	h := NewHandler(svc, nopLogger{})

	rec := serve(h, "/bookings/5", &client)
	require.Equal(t, http.StatusOK, rec.Code)
	var body models.BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INR 10,000", body.TotalFormatted)

	assert.Equal(t, http.StatusForbidden, serve(h, "/bookings/6", &client).Code)
	assert.Equal(t, http.StatusNotFound, serve(h, "/bookings/7", &client).Code)
	assert.Equal(t, http.StatusInternalServerError, serve(h, "/bookings/8", &client).Code)
	assert.Equal(t, http.StatusBadRequest, serve(h, "/bookings/abc", &client).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(h, "/bookings/5", nil).Code)

	svc.AssertExpectations(t)
}

package cancel_booking

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/m04kA/SMC-EventBooking/internal/api/middleware"
	"github.com/m04kA/SMC-EventBooking/internal/domain"
	"github.com/m04kA/SMC-EventBooking/internal/service/bookings"
	"github.com/m04kA/SMC-EventBooking/internal/service/bookings/models"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) error {
	return m.Called(ctx, bookingID, req).Error(0)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func serve(h *Handler, path, body string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/bookings/{bookingId}/cancel", h.Handle).Methods(http.MethodPatch)

	req := httptest.NewRequest(http.MethodPatch, path, strings.NewReader(body))
	req = req.WithContext(middleware.WithActor(req.Context(), domain.Actor{UserID: 42, Role: domain.RoleClient}))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandle(t *testing.T) {
	svc := &mockService{}
	svc.On("Cancel", mock.Anything, int64(5), mock.MatchedBy(func(req *models.CancelBookingRequest) bool {
		return req.Actor.UserID == 42 && req.CancellationReason == "plans changed"
	})).Return(nil)
	svc.On("Cancel", mock.Anything, int64(6), mock.MatchedBy(func(req *models.CancelBookingRequest) bool {
		return req.CancellationReason == ""
	})).Return(bookings.ErrCannotCancel)
	svc.On("Cancel", mock.Anything, int64(7), mock.Anything).Return(bookings.ErrAccessDenied)

	h := NewHandler(svc, nopLogger{})

	assert.Equal(t, http.StatusOK, serve(h, "/bookings/5/cancel", `{"cancellationReason":"plans changed"}`).Code)
	assert.Equal(t, http.StatusConflict, serve(h, "/bookings/6/cancel", "").Code)
	assert.Equal(t, http.StatusForbidden, serve(h, "/bookings/7/cancel", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(h, "/bookings/5/cancel", `{"userId":1}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(h, "/bookings/0/cancel", `{}`).Code)

	svc.AssertExpectations(t)
}

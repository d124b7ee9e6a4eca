package update_booking_status

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

func (m *mockService) UpdateStatus(ctx context.Context, bookingID int64, req *models.UpdateStatusRequest) error {
	return m.Called(ctx, bookingID, req).Error(0)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func serve(h *Handler, path, body string, withActor bool) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/bookings/{bookingId}/status", h.Handle).Methods(http.MethodPut)

	req := httptest.NewRequest(http.MethodPut, path, strings.NewReader(body))
	if withActor {
		req = req.WithContext(middleware.WithActor(req.Context(), domain.Actor{UserID: 1, Role: domain.RoleAdmin}))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandle(t *testing.T) {
	svc := &mockService{}
	svc.On("UpdateStatus", mock.Anything, int64(5), mock.MatchedBy(func(req *models.UpdateStatusRequest) bool {
		return req.Actor.IsAdmin() && req.Status == "confirmed"
	})).Return(nil)
	svc.On("UpdateStatus", mock.Anything, int64(6), mock.Anything).Return(bookings.ErrInvalidTransition)
	svc.On("UpdateStatus", mock.Anything, int64(7), mock.Anything).Return(bookings.ErrInvalidStatus)
	svc.On("UpdateStatus", mock.Anything, int64(8), mock.Anything).Return(bookings.ErrBookingNotFound)

	h := NewHandler(svc, nopLogger{})

	assert.Equal(t, http.StatusOK, serve(h, "/bookings/5/status", `{"status":"confirmed"}`, true).Code)
	assert.Equal(t, http.StatusConflict, serve(h, "/bookings/6/status", `{"status":"pending"}`, true).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, serve(h, "/bookings/7/status", `{"status":"cancelled_by_admin"}`, true).Code)
	assert.Equal(t, http.StatusNotFound, serve(h, "/bookings/8/status", `{"status":"confirmed"}`, true).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(h, "/bookings/5/status", `{"status":"confirmed"}`, false).Code)

	svc.AssertExpectations(t)
}

package update_assignment_status

import (
	"context"

	"github.com/m04kA/SMC-EventBooking/internal/service/bookings/models"
)

type BookingService interface {
	UpdateAssignmentStatus(ctx context.Context, bookingID int64, req *models.UpdateAssignmentStatusRequest) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

package assign_partner

import (
	"context"

	"github.com/m04kA/SMC-EventBooking/internal/service/bookings/models"
)

type BookingService interface {
	AssignPartner(ctx context.Context, bookingID int64, req *models.AssignPartnerRequest) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

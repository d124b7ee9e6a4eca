package get_invoice_pdf

import (
	"context"

	"github.com/m04kA/SMC-EventBooking/internal/domain"
	"github.com/m04kA/SMC-EventBooking/internal/service/bookings/models"
)

type BookingService interface {
	InvoicePDF(ctx context.Context, bookingID, invoiceID int64, actor domain.Actor) (*models.InvoiceDocument, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

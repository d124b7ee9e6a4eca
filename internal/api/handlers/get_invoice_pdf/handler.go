package get_invoice_pdf

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-EventBooking/internal/api/handlers"
	"github.com/m04kA/SMC-EventBooking/internal/api/middleware"
	"github.com/m04kA/SMC-EventBooking/internal/service/bookings"
)

const (
	msgInvalidBookingID = "некорректный ID бронирования"
	msgInvalidInvoiceID = "некорректный ID счета"
	msgMissingUserID    = "отсутствует ID пользователя"
	msgBookingNotFound  = "бронирование не найдено"
	msgInvoiceNotFound  = "счет не найден"
	msgForbidden        = "доступ запрещен"

	contentTypePDF = "application/pdf"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/bookings/{bookingId}/invoices/{invoiceId}/pdf
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := handlers.PathInt64(r, "bookingId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}
	invoiceID, err := handlers.PathInt64(r, "invoiceId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidInvoiceID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	doc, err := h.service.InvoicePDF(r.Context(), bookingID, invoiceID, actor)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, bookings.ErrInvoiceNotFound):
			handlers.RespondNotFound(w, msgInvoiceNotFound)

		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("GET /bookings/{id}/invoices/{invoiceId}/pdf - Access denied: booking_id=%d, user_id=%d",
				bookingID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /bookings/{id}/invoices/{invoiceId}/pdf - Failed to render: booking_id=%d, invoice_id=%d, error=%v",
				bookingID, invoiceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /bookings/{id}/invoices/{invoiceId}/pdf - Invoice rendered: booking_id=%d, invoice_id=%d, size=%d",
		bookingID, invoiceID, len(doc.Content))
	handlers.RespondFile(w, contentTypePDF, doc.FileName, doc.Content)
}

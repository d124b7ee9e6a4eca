package balance_payment

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-EventBooking/internal/api/handlers"
	"github.com/m04kA/SMC-EventBooking/internal/api/middleware"
	payBalance "github.com/m04kA/SMC-EventBooking/internal/usecase/pay_balance"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgMissingPaymentID   = "отсутствуют данные платежа"
	msgNotFound           = "бронирование не найдено"
	msgForbidden          = "доступ запрещен"
	msgCancelled          = "бронирование отменено"
	msgOrderMismatch      = "заказ не относится к этому бронированию"
)

type Handler struct {
	useCase PayBalanceUseCase
	logger  Logger
}

func NewHandler(useCase PayBalanceUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Open POST /api/v1/bookings/{bookingId}/balance-payment
func (h *Handler) Open(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := h.bookingID(w, r)
	if !ok {
		return
	}
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	result, err := h.useCase.Open(r.Context(), &payBalance.OpenRequest{BookingID: bookingID, Actor: actor})
	if err != nil {
		h.respondError(w, "POST /bookings/{id}/balance-payment", bookingID, err)
		return
	}

	h.logger.Info("POST /bookings/{id}/balance-payment - Session opened: booking_id=%d, order_id=%s, installment=%d",
		bookingID, result.Session.OrderID, result.InstallmentIndex)
	handlers.RespondJSON(w, http.StatusCreated, fromSession(result))
}

// Complete POST /api/v1/bookings/{bookingId}/balance-payment/{orderId}/complete
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := h.bookingID(w, r)
	if !ok {
		return
	}
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CompleteRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if req.PaymentID == "" || req.Signature == "" {
		handlers.RespondBadRequest(w, msgMissingPaymentID)
		return
	}

	result, err := h.useCase.Complete(r.Context(), &payBalance.CompleteRequest{
		BookingID: bookingID,
		Actor:     actor,
		OrderID:   handlers.PathString(r, "orderId"),
		PaymentID: req.PaymentID,
		Signature: req.Signature,
	})
	if err != nil {
		h.respondError(w, "POST /bookings/{id}/balance-payment/{orderId}/complete", bookingID, err)
		return
	}

	h.logger.Info("POST /bookings/{id}/balance-payment/{orderId}/complete - Installment recorded: booking_id=%d, invoice_id=%d, due=%d",
		bookingID, result.InvoiceID, result.DueAmount)
	handlers.RespondJSON(w, http.StatusOK, InstallmentRecordedResponse(*result))
}

// Dismiss POST /api/v1/bookings/{bookingId}/balance-payment/{orderId}/dismiss
func (h *Handler) Dismiss(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := h.bookingID(w, r)
	if !ok {
		return
	}
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	err := h.useCase.Dismiss(r.Context(), &payBalance.DismissRequest{
		BookingID: bookingID,
		Actor:     actor,
		OrderID:   handlers.PathString(r, "orderId"),
	})
	if err != nil {
		h.respondError(w, "POST /bookings/{id}/balance-payment/{orderId}/dismiss", bookingID, err)
		return
	}
	handlers.RespondNotice(w, handlers.MsgPaymentNotCompleted)
}

func (h *Handler) bookingID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	bookingID, err := handlers.PathInt64(r, "bookingId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return 0, false
	}
	return bookingID, true
}

func (h *Handler) respondError(w http.ResponseWriter, op string, bookingID int64, err error) {
	if handlers.RespondPaymentError(w, err) {
		h.logger.Warn("%s - Payment error: booking_id=%d, error=%v", op, bookingID, err)
		return
	}

	switch {
	case errors.Is(err, payBalance.ErrBookingNotFound):
		handlers.RespondNotFound(w, msgNotFound)
	case errors.Is(err, payBalance.ErrAccessDenied):
		h.logger.Warn("%s - Access denied: booking_id=%d", op, bookingID)
		handlers.RespondForbidden(w, msgForbidden)
	case errors.Is(err, payBalance.ErrOrderMismatch):
		handlers.RespondForbidden(w, msgOrderMismatch)
	case errors.Is(err, payBalance.ErrBookingCancelled):
		handlers.RespondConflict(w, msgCancelled)
	default:
		h.logger.Error("%s - Unexpected error: booking_id=%d, error=%v", op, bookingID, err)
		handlers.RespondInternalError(w)
	}
}

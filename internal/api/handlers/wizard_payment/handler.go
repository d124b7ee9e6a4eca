package wizard_payment

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-EventBooking/internal/api/handlers"
	"github.com/m04kA/SMC-EventBooking/internal/api/middleware"
	submitBooking "github.com/m04kA/SMC-EventBooking/internal/usecase/submit_booking"
	"github.com/m04kA/SMC-EventBooking/internal/wizard"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgMissingPaymentID   = "отсутствуют данные платежа"
	msgWizardNotFound     = "мастер бронирования не найден или истек"
	msgForbidden          = "доступ запрещен"
	msgNotOnPayment       = "оплата доступна только на последнем шаге"
	msgIncomplete         = "не все шаги заполнены"
	msgCompleted          = "бронирование уже оформлено"
	msgOrderMismatch      = "заказ не относится к этому бронированию"
)

type Handler struct {
	useCase SubmitBookingUseCase
	logger  Logger
}

func NewHandler(useCase SubmitBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Open POST /api/v1/wizards/{wizardId}/payment
func (h *Handler) Open(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}
	wizardID := handlers.PathString(r, "wizardId")

	result, err := h.useCase.OpenPayment(r.Context(), &submitBooking.OpenPaymentRequest{WizardID: wizardID, UserID: userID})
	if err != nil {
		h.respondError(w, "POST /wizards/{id}/payment", wizardID, err)
		return
	}

	h.logger.Info("POST /wizards/{id}/payment - Payment session opened: wizard_id=%s, order_id=%s, amount=%d",
		wizardID, result.Session.OrderID, result.Installment)
	handlers.RespondJSON(w, http.StatusCreated, FromSession(result))
}

// Complete POST /api/v1/wizards/{wizardId}/payment/{orderId}/complete
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}
	wizardID := handlers.PathString(r, "wizardId")
	orderID := handlers.PathString(r, "orderId")

	var req CompletePaymentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /wizards/{id}/payment/{orderId}/complete - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if req.PaymentID == "" || req.Signature == "" {
		handlers.RespondBadRequest(w, msgMissingPaymentID)
		return
	}

	result, err := h.useCase.CompletePayment(r.Context(), &submitBooking.CompletePaymentRequest{
		WizardID:  wizardID,
		UserID:    userID,
		OrderID:   orderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
	})
	if err != nil {
		h.respondError(w, "POST /wizards/{id}/payment/{orderId}/complete", wizardID, err)
		return
	}

	h.logger.Info("POST /wizards/{id}/payment/{orderId}/complete - Booking created: booking_id=%d, wizard_id=%s, user_id=%d",
		result.BookingID, wizardID, userID)
	handlers.RespondJSON(w, http.StatusCreated, FromResponse(result))
}

// Dismiss POST /api/v1/wizards/{wizardId}/payment/{orderId}/dismiss
func (h *Handler) Dismiss(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}
	wizardID := handlers.PathString(r, "wizardId")
	orderID := handlers.PathString(r, "orderId")

	err := h.useCase.DismissPayment(r.Context(), &submitBooking.DismissPaymentRequest{
		WizardID: wizardID,
		UserID:   userID,
		OrderID:  orderID,
	})
	if err != nil {
		h.respondError(w, "POST /wizards/{id}/payment/{orderId}/dismiss", wizardID, err)
		return
	}

	h.logger.Info("POST /wizards/{id}/payment/{orderId}/dismiss - Payment dismissed: wizard_id=%s, order_id=%s", wizardID, orderID)
	handlers.RespondNotice(w, handlers.MsgPaymentNotCompleted)
}

func (h *Handler) respondError(w http.ResponseWriter, op, wizardID string, err error) {
	if handlers.RespondPaymentError(w, err) {
		h.logger.Warn("%s - Payment error: wizard_id=%s, error=%v", op, wizardID, err)
		return
	}

	switch {
	case errors.Is(err, wizard.ErrWizardNotFound):
		handlers.RespondNotFound(w, msgWizardNotFound)
	case errors.Is(err, wizard.ErrAccessDenied):
		h.logger.Warn("%s - Access denied: wizard_id=%s", op, wizardID)
		handlers.RespondForbidden(w, msgForbidden)
	case errors.Is(err, submitBooking.ErrOrderMismatch):
		h.logger.Warn("%s - Order mismatch: wizard_id=%s", op, wizardID)
		handlers.RespondForbidden(w, msgOrderMismatch)
	case errors.Is(err, wizard.ErrNotOnPaymentStep):
		handlers.RespondUnprocessable(w, msgNotOnPayment)
	case errors.Is(err, wizard.ErrIncomplete), errors.Is(err, wizard.ErrStepInvalid):
		handlers.RespondUnprocessable(w, msgIncomplete)
	case errors.Is(err, wizard.ErrCompleted):
		handlers.RespondConflict(w, msgCompleted)
	default:
		h.logger.Error("%s - Unexpected error: wizard_id=%s, error=%v", op, wizardID, err)
		handlers.RespondInternalError(w)
	}
}

package assign_partner

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-EventBooking/internal/api/handlers"
	"github.com/m04kA/SMC-EventBooking/internal/api/middleware"
	"github.com/m04kA/SMC-EventBooking/internal/service/bookings"
	"github.com/m04kA/SMC-EventBooking/internal/service/bookings/models"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgNotFound           = "бронирование не найдено"
	msgForbidden          = "доступ запрещен"
	msgPartnerRequired    = "не указан партнер"
	msgInactive           = "бронирование отменено или завершено"
	msgAlreadyInWork      = "партнер уже приступил к работе"
)

// AssignPartnerRequest HTTP request model
type AssignPartnerRequest struct {
	PartnerID int64 `json:"partnerId"`
}

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

// Handle PUT /api/v1/bookings/{bookingId}/assignment
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := handlers.PathInt64(r, "bookingId")
	if err != nil {
		h.logger.Warn("PUT /bookings/{id}/assignment - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req AssignPartnerRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /bookings/{id}/assignment - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	err = h.service.AssignPartner(r.Context(), bookingID, &models.AssignPartnerRequest{Actor: actor, PartnerID: req.PartnerID})
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("PUT /bookings/{id}/assignment - Access denied: booking_id=%d, user_id=%d", bookingID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, bookings.ErrInvalidInput):
			handlers.RespondUnprocessable(w, msgPartnerRequired)

		case errors.Is(err, bookings.ErrInvalidTransition):
			handlers.RespondConflict(w, msgInactive)

		case errors.Is(err, bookings.ErrAlreadyAssigned):
			h.logger.Warn("PUT /bookings/{id}/assignment - Already in work: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgAlreadyInWork)

		default:
			h.logger.Error("PUT /bookings/{id}/assignment - Failed to assign partner: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /bookings/{id}/assignment - Partner assigned: booking_id=%d, partner_id=%d", bookingID, req.PartnerID)
	handlers.RespondJSON(w, http.StatusOK, nil)
}

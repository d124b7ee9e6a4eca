package booking_wizard

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-EventBooking/internal/api/handlers"
	"github.com/m04kA/SMC-EventBooking/internal/api/middleware"
	wizardFlow "github.com/m04kA/SMC-EventBooking/internal/usecase/wizard_flow"
	"github.com/m04kA/SMC-EventBooking/internal/wizard"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidPackageID   = "некорректный ID пакета"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgWizardNotFound     = "мастер бронирования не найден или истек"
	msgForbidden          = "доступ запрещен"
	msgPackageNotFound    = "пакет не найден или недоступен"
	msgFormNotFound       = "форма мероприятия не найдена"
	msgStepInvalid        = "заполните обязательные поля"
	msgAlreadyFirst       = "это первый шаг"
	msgAlreadyLast        = "это последний шаг"
	msgSectionNotActive   = "секция не относится к текущему шагу"
	msgUnknownField       = "неизвестное поле формы"
	msgInvalidFieldValue  = "некорректное значение поля"
	msgPaymentInFlight    = "идет оплата, изменения недоступны"
	msgCompleted          = "бронирование уже оформлено"
)

type Handler struct {
	useCase WizardUseCase
	logger  Logger
}

func NewHandler(useCase WizardUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Start POST /api/v1/wizards
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req StartWizardRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /wizards - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if req.PackageID <= 0 {
		handlers.RespondBadRequest(w, msgInvalidPackageID)
		return
	}

	view, err := h.useCase.Start(r.Context(), &wizardFlow.StartRequest{UserID: userID, PackageID: req.PackageID})
	if err != nil {
		switch {
		case errors.Is(err, wizardFlow.ErrPackageNotFound):
			handlers.RespondNotFound(w, msgPackageNotFound)
		case errors.Is(err, wizardFlow.ErrFormNotFound):
			handlers.RespondNotFound(w, msgFormNotFound)
		case errors.Is(err, wizardFlow.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidPackageID)
		default:
			h.logger.Error("POST /wizards - Failed to start wizard: user_id=%d, package_id=%d, error=%v",
				userID, req.PackageID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /wizards - Wizard started: wizard_id=%s, user_id=%d, package_id=%d", view.ID, userID, req.PackageID)
	handlers.RespondJSON(w, http.StatusCreated, FromView(view))
}

// Get GET /api/v1/wizards/{wizardId}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	wizardID, userID, ok := h.identify(w, r)
	if !ok {
		return
	}

	view, err := h.useCase.Get(r.Context(), wizardID, userID)
	if err != nil {
		h.respondError(w, "GET /wizards/{id}", wizardID, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, FromView(view))
}

// Discard DELETE /api/v1/wizards/{wizardId}
func (h *Handler) Discard(w http.ResponseWriter, r *http.Request) {
	wizardID, userID, ok := h.identify(w, r)
	if !ok {
		return
	}

	if err := h.useCase.Discard(r.Context(), wizardID, userID); err != nil {
		h.respondError(w, "DELETE /wizards/{id}", wizardID, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetFields PATCH /api/v1/wizards/{wizardId}/fields
func (h *Handler) SetFields(w http.ResponseWriter, r *http.Request) {
	wizardID, userID, ok := h.identify(w, r)
	if !ok {
		return
	}

	var req SetFieldsRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /wizards/{id}/fields - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	view, err := h.useCase.SetFields(r.Context(), &wizardFlow.FieldsRequest{
		WizardID: wizardID,
		UserID:   userID,
		Section:  req.Section,
		Values:   req.Values,
		Scroll:   req.ScrollOffset,
	})
	if err != nil {
		h.respondError(w, "PATCH /wizards/{id}/fields", wizardID, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, FromView(view))
}

// Next POST /api/v1/wizards/{wizardId}/next
func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	wizardID, userID, ok := h.identify(w, r)
	if !ok {
		return
	}

	view, err := h.useCase.Next(r.Context(), wizardID, userID)
	if err != nil {
		// Вместе с ошибкой отдаем мастер, чтобы подсветить незаполненные поля
		if errors.Is(err, wizard.ErrStepInvalid) && view != nil {
			handlers.RespondJSON(w, http.StatusUnprocessableEntity, InvalidStepResponse{
				Error:  msgStepInvalid,
				Wizard: FromView(view),
			})
			return
		}
		h.respondError(w, "POST /wizards/{id}/next", wizardID, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, FromView(view))
}

// Previous POST /api/v1/wizards/{wizardId}/previous
func (h *Handler) Previous(w http.ResponseWriter, r *http.Request) {
	wizardID, userID, ok := h.identify(w, r)
	if !ok {
		return
	}

	view, err := h.useCase.Previous(r.Context(), wizardID, userID)
	if err != nil {
		h.respondError(w, "POST /wizards/{id}/previous", wizardID, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, FromView(view))
}

func (h *Handler) identify(w http.ResponseWriter, r *http.Request) (string, int64, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return "", 0, false
	}
	return handlers.PathString(r, "wizardId"), userID, true
}

func (h *Handler) respondError(w http.ResponseWriter, op, wizardID string, err error) {
	switch {
	case errors.Is(err, wizard.ErrWizardNotFound):
		handlers.RespondNotFound(w, msgWizardNotFound)
	case errors.Is(err, wizard.ErrAccessDenied):
		h.logger.Warn("%s - Access denied: wizard_id=%s", op, wizardID)
		handlers.RespondForbidden(w, msgForbidden)
	case errors.Is(err, wizard.ErrStepInvalid):
		handlers.RespondUnprocessable(w, msgStepInvalid)
	case errors.Is(err, wizard.ErrAlreadyFirstStep):
		handlers.RespondConflict(w, msgAlreadyFirst)
	case errors.Is(err, wizard.ErrAlreadyLastStep):
		handlers.RespondConflict(w, msgAlreadyLast)
	case errors.Is(err, wizard.ErrSectionNotActive):
		handlers.RespondBadRequest(w, msgSectionNotActive)
	case errors.Is(err, wizard.ErrUnknownField):
		handlers.RespondBadRequest(w, msgUnknownField)
	case errors.Is(err, wizard.ErrInvalidFieldValue):
		handlers.RespondUnprocessable(w, msgInvalidFieldValue)
	case errors.Is(err, wizard.ErrPaymentInFlight):
		handlers.RespondConflict(w, msgPaymentInFlight)
	case errors.Is(err, wizard.ErrCompleted):
		handlers.RespondConflict(w, msgCompleted)
	default:
		h.logger.Error("%s - Unexpected error: wizard_id=%s, error=%v", op, wizardID, err)
		handlers.RespondInternalError(w)
	}
}

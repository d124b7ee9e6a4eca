package handlers

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-EventBooking/internal/payment"
)

const (
	MsgPaymentNotCompleted = "платеж не завершен, вы можете попробовать снова"

	msgPaymentInitFailed   = "не удалось инициировать платеж, попробуйте позже"
	msgVerificationFailed  = "платеж не подтвержден. Если деньги были списаны, они вернутся в течение 5-7 рабочих дней. При вопросах обратитесь в поддержку"
	msgReconciliation      = "платеж получен, но бронирование пока не сохранено. Мы уже разбираемся, при необходимости обратитесь в поддержку"
	msgPaymentInFlight     = "платеж уже проверяется"
	msgSessionNotFound     = "платежная сессия не найдена или уже закрыта"
	msgNothingDue          = "задолженности по бронированию нет"
	msgInvalidInstallments = "неподдерживаемый план рассрочки"
)

// RespondPaymentError отвечает на ошибки платежной сессии.
// Возвращает false, если ошибка не относится к оплате
func RespondPaymentError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, payment.ErrSessionCreation):
		RespondError(w, http.StatusBadGateway, msgPaymentInitFailed)
	case errors.Is(err, payment.ErrVerificationFailed):
		RespondError(w, http.StatusPaymentRequired, msgVerificationFailed)
	case errors.Is(err, payment.ErrReconciliationRequired):
		RespondError(w, http.StatusInternalServerError, msgReconciliation)
	case errors.Is(err, payment.ErrPaymentInFlight):
		RespondConflict(w, msgPaymentInFlight)
	case errors.Is(err, payment.ErrSessionNotFound), payment.IsAbandoned(err):
		RespondNotFound(w, msgSessionNotFound)
	case errors.Is(err, payment.ErrNothingDue):
		RespondConflict(w, msgNothingDue)
	case errors.Is(err, payment.ErrInvalidPlan), errors.Is(err, payment.ErrInvalidAmount):
		RespondUnprocessable(w, msgInvalidInstallments)
	default:
		return false
	}
	return true
}

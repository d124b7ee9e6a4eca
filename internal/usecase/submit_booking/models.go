package submit_booking

import (
	"time"

	"github.com/m04kA/SMC-EventBooking/internal/domain"
)

// OpenPaymentRequest запрос на открытие оплаты первого платежа
type OpenPaymentRequest struct {
	WizardID string
	UserID   int64
}

// PaymentSessionResponse параметры для виджета оплаты
type PaymentSessionResponse struct {
	Session         domain.PaymentSession
	InstallmentPlan int
	Installment     int64  // сумма платежа в основных единицах
	Due             int64  // остаток после платежа
	Formatted       string // сумма для отображения
}

// CompletePaymentRequest подтверждение оплаты от виджета
type CompletePaymentRequest struct {
	WizardID  string
	UserID    int64
	OrderID   string
	PaymentID string
	Signature string
}

// DismissPaymentRequest пользователь закрыл виджет без оплаты
type DismissPaymentRequest struct {
	WizardID string
	UserID   int64
	OrderID  string
}

// Response результат успешного бронирования
type Response struct {
	BookingID     int64
	PaidAmount    int64
	DueAmount     int64
	Currency      string
	RedirectPath  string
	RedirectDelay time.Duration
}

// submission данные одной оплаты мастера, общие для продолжений сессии
type submission struct {
	wizardID string
	userID   int64
	orderID  string
	plan     domain.InstallmentPlan
	amount   int64
	due      int64

	snapshot *domain.WizardState
	booking  *domain.Booking
}

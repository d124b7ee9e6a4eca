package payment

import "errors"

var (
	// ErrInvalidPlan возвращается при неподдерживаемом плане рассрочки
	ErrInvalidPlan = errors.New("payment: invalid installment plan")

	// ErrInvalidAmount возвращается при неположительной сумме
	ErrInvalidAmount = errors.New("payment: invalid amount")

	// ErrNothingDue возвращается, когда бронирование полностью оплачено
	ErrNothingDue = errors.New("payment: nothing is due")

	// ErrSessionCreation возвращается, когда платежный шлюз не создал заказ
	ErrSessionCreation = errors.New("payment: failed to initiate payment")

	// ErrVerificationFailed возвращается, когда шлюз не подтвердил платеж
	ErrVerificationFailed = errors.New("payment: verification failed")

	// ErrPaymentInFlight возвращается, пока идет проверка платежа
	ErrPaymentInFlight = errors.New("payment: verification is in progress")

	// ErrSessionNotFound возвращается для неизвестного или уже закрытого заказа
	ErrSessionNotFound = errors.New("payment: session not found")

	// ErrSessionAbandoned исход сессии, закрытой без оплаты
	ErrSessionAbandoned = errors.New("payment: session abandoned")

	// ErrReconciliationRequired платеж прошел, но бронирование не сохранено
	ErrReconciliationRequired = errors.New("payment: payment captured but booking was not saved")
)

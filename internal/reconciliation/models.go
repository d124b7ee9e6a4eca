package reconciliation

import "github.com/m04kA/SMC-EventBooking/internal/domain"

// Kind что именно не удалось записать после оплаты
type Kind string

const (
	KindBooking     Kind = "booking"
	KindInstallment Kind = "installment"
	// платеж проведен, но бронирование из мастера собрать не удалось
	KindOrphanPayment Kind = "orphan_payment"
)

// Request проведенный шлюзом платеж, который нужно довести до записи в БД
type Request struct {
	Kind      Kind   `json:"kind"`
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	UserID    int64  `json:"userId"`

	// KindBooking: бронирование, собранное из черновика мастера
	Booking *domain.Booking `json:"booking,omitempty"`

	// KindInstallment: очередной платеж существующего бронирования
	BookingID int64          `json:"bookingId,omitempty"`
	Invoice   domain.Invoice `json:"invoice"`

	// KindOrphanPayment: копия мастера и сумма платежа для ручного разбора
	Wizard *domain.WizardState `json:"wizard,omitempty"`
	Amount int64               `json:"amount,omitempty"`
	Reason string              `json:"reason,omitempty"`
}

// Result итог сверки
type Result struct {
	BookingID int64 `json:"bookingId"`
}

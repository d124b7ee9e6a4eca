package pay_balance

import (
	"github.com/m04kA/SMC-EventBooking/internal/domain"
)

// OpenRequest запрос на оплату следующего платежа
type OpenRequest struct {
	BookingID int64
	Actor     domain.Actor
}

// CompleteRequest подтверждение оплаты от виджета
type CompleteRequest struct {
	BookingID int64
	Actor     domain.Actor
	OrderID   string
	PaymentID string
	Signature string
}

// DismissRequest пользователь закрыл виджет без оплаты
type DismissRequest struct {
	BookingID int64
	Actor     domain.Actor
	OrderID   string
}

// SessionResponse параметры для виджета оплаты
type SessionResponse struct {
	Session          domain.PaymentSession
	InstallmentIndex int
	Amount           int64
	DueAfter         int64
	Formatted        string
}

// Response результат записи платежа
type Response struct {
	BookingID        int64
	InvoiceID        int64
	InstallmentIndex int
	PaidAmount       int64
	DueAmount        int64
	PaymentStatus    string
}

type installment struct {
	bookingID int64
	userID    int64
	orderID   string
	index     int
	amount    int64
	method    string

	booking *domain.Booking
	invoice *domain.Invoice
}

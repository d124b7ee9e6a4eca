package balance_payment

import (
	payBalance "github.com/m04kA/SMC-EventBooking/internal/usecase/pay_balance"
)

// SessionResponse параметры для открытия виджета оплаты
type SessionResponse struct {
	OrderID          string `json:"orderId"`
	Key              string `json:"key"`
	Amount           int64  `json:"amount"` // в минимальных единицах валюты
	Currency         string `json:"currency"`
	Receipt          string `json:"receipt"`
	InstallmentIndex int    `json:"installmentIndex"`
	Installment      int64  `json:"installmentAmount"`
	DueAfter         int64  `json:"dueAfterPayment"`
	Formatted        string `json:"installmentFormatted"`
}

// CompleteRequest HTTP request model
type CompleteRequest struct {
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
}

// InstallmentRecordedResponse HTTP response model
type InstallmentRecordedResponse struct {
	BookingID        int64  `json:"bookingId"`
	InvoiceID        int64  `json:"invoiceId"`
	InstallmentIndex int    `json:"installmentIndex"`
	PaidAmount       int64  `json:"paidAmount"`
	DueAmount        int64  `json:"dueAmount"`
	PaymentStatus    string `json:"paymentStatus"`
}

func fromSession(resp *payBalance.SessionResponse) *SessionResponse {
	return &SessionResponse{
		OrderID:          resp.Session.OrderID,
		Key:              resp.Session.GatewayKey,
		Amount:           resp.Session.Amount,
		Currency:         resp.Session.Currency,
		Receipt:          resp.Session.Receipt,
		InstallmentIndex: resp.InstallmentIndex,
		Installment:      resp.Amount,
		DueAfter:         resp.DueAfter,
		Formatted:        resp.Formatted,
	}
}

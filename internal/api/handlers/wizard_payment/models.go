package wizard_payment

import (
	submitBooking "github.com/m04kA/SMC-EventBooking/internal/usecase/submit_booking"
)

// PaymentSessionResponse параметры для открытия виджета оплаты
type PaymentSessionResponse struct {
	OrderID         string `json:"orderId"`
	Key             string `json:"key"`
	Amount          int64  `json:"amount"` // в минимальных единицах валюты
	Currency        string `json:"currency"`
	Receipt         string `json:"receipt"`
	InstallmentPlan int    `json:"installmentPlan"`
	Installment     int64  `json:"installmentAmount"`
	Due             int64  `json:"dueAmount"`
	Formatted       string `json:"installmentFormatted"`
}

// CompletePaymentRequest HTTP request model
type CompletePaymentRequest struct {
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
}

// BookingCreatedResponse HTTP response model
type BookingCreatedResponse struct {
	BookingID       int64  `json:"bookingId"`
	PaidAmount      int64  `json:"paidAmount"`
	DueAmount       int64  `json:"dueAmount"`
	Currency        string `json:"currency"`
	RedirectPath    string `json:"redirectPath"`
	RedirectDelayMs int64  `json:"redirectDelayMs"`
}

// FromSession конвертирует ответ use case в HTTP response
func FromSession(resp *submitBooking.PaymentSessionResponse) *PaymentSessionResponse {
	return &PaymentSessionResponse{
		OrderID:         resp.Session.OrderID,
		Key:             resp.Session.GatewayKey,
		Amount:          resp.Session.Amount,
		Currency:        resp.Session.Currency,
		Receipt:         resp.Session.Receipt,
		InstallmentPlan: resp.InstallmentPlan,
		Installment:     resp.Installment,
		Due:             resp.Due,
		Formatted:       resp.Formatted,
	}
}

// FromResponse конвертирует результат бронирования в HTTP response
func FromResponse(resp *submitBooking.Response) *BookingCreatedResponse {
	return &BookingCreatedResponse{
		BookingID:       resp.BookingID,
		PaidAmount:      resp.PaidAmount,
		DueAmount:       resp.DueAmount,
		Currency:        resp.Currency,
		RedirectPath:    resp.RedirectPath,
		RedirectDelayMs: resp.RedirectDelay.Milliseconds(),
	}
}

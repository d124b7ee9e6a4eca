package wizard_payment

import (
	"context"

	submitBooking "github.com/m04kA/SMC-EventBooking/internal/usecase/submit_booking"
)

type SubmitBookingUseCase interface {
	OpenPayment(ctx context.Context, req *submitBooking.OpenPaymentRequest) (*submitBooking.PaymentSessionResponse, error)
	CompletePayment(ctx context.Context, req *submitBooking.CompletePaymentRequest) (*submitBooking.Response, error)
	DismissPayment(ctx context.Context, req *submitBooking.DismissPaymentRequest) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

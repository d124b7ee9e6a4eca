package balance_payment

import (
	"context"

	payBalance "github.com/m04kA/SMC-EventBooking/internal/usecase/pay_balance"
)

type PayBalanceUseCase interface {
	Open(ctx context.Context, req *payBalance.OpenRequest) (*payBalance.SessionResponse, error)
	Complete(ctx context.Context, req *payBalance.CompleteRequest) (*payBalance.Response, error)
	Dismiss(ctx context.Context, req *payBalance.DismissRequest) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

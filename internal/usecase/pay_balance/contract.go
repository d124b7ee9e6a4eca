package pay_balance

import (
	"context"

	"github.com/m04kA/SMC-EventBooking/internal/domain"
	"github.com/m04kA/SMC-EventBooking/internal/payment"
	"github.com/m04kA/SMC-EventBooking/internal/reconciliation"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
}

// PaymentAdapter интерфейс адаптера платежных сессий
type PaymentAdapter interface {
	Open(ctx context.Context, req payment.OpenRequest, cont payment.Continuations) (*payment.Session, error)
	Complete(ctx context.Context, confirmation domain.PaymentConfirmation) (*payment.Session, error)
	Dismiss(orderID string) error
}

// InstallmentRecorder интерфейс записи очередного платежа
type InstallmentRecorder interface {
	RecordInstallment(ctx context.Context, bookingID int64, invoice domain.Invoice) (*domain.Booking, error)
}

// Notifier интерфейс рассылки уведомлений
type Notifier interface {
	InstallmentPaid(ctx context.Context, b *domain.Booking, inv domain.Invoice) error
	PaymentNotRecorded(ctx context.Context, userID int64, orderID, paymentID, reason string) error
}

// Reconciler интерфейс запуска сверки
type Reconciler interface {
	Start(ctx context.Context, req reconciliation.Request) error
}

// Metrics интерфейс бизнес-метрик
type Metrics interface {
	RecordInvoiceAppended()
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

package submit_booking

import (
	"context"

	"github.com/m04kA/SMC-EventBooking/internal/domain"
	"github.com/m04kA/SMC-EventBooking/internal/integrations/userservice"
	"github.com/m04kA/SMC-EventBooking/internal/payment"
	"github.com/m04kA/SMC-EventBooking/internal/reconciliation"
)

// PaymentAdapter интерфейс адаптера платежных сессий
type PaymentAdapter interface {
	Open(ctx context.Context, req payment.OpenRequest, cont payment.Continuations) (*payment.Session, error)
	Complete(ctx context.Context, confirmation domain.PaymentConfirmation) (*payment.Session, error)
	Dismiss(orderID string) error
}

// BookingRecorder интерфейс идемпотентной записи бронирования
type BookingRecorder interface {
	RecordBooking(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
}

// UserServiceClient интерфейс клиента для UserService
type UserServiceClient interface {
	GetUserWithGracefulDegradation(ctx context.Context, userID int64) (*userservice.User, error)
}

// Notifier интерфейс рассылки уведомлений
type Notifier interface {
	BookingCreated(ctx context.Context, b *domain.Booking) error
	PaymentNotRecorded(ctx context.Context, userID int64, orderID, paymentID, reason string) error
}

// Reconciler интерфейс запуска сверки
type Reconciler interface {
	Start(ctx context.Context, req reconciliation.Request) error
}

// Metrics интерфейс бизнес-метрик
type Metrics interface {
	RecordBookingCreated()
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

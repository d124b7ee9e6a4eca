package ledger

import (
	"context"

	"github.com/m04kA/SMC-EventBooking/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByGatewayOrderID(ctx context.Context, orderID string) (*domain.Booking, error)
	InsertInvoice(ctx context.Context, invoice *domain.Invoice) error
	UpdatePayment(ctx context.Context, booking *domain.Booking) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

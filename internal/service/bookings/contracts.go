package bookings

import (
	"context"

	"github.com/m04kA/SMC-EventBooking/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByFilter(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error
	UpdateAssignment(ctx context.Context, id int64, partnerID int64, status domain.AssignmentStatus) error
	Cancel(ctx context.Context, id int64, status domain.BookingStatus, reason string) error
	AppendStatusHistory(ctx context.Context, bookingID int64, kind string, entry domain.StatusHistoryEntry) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

package reconciliation

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/temporal"

	"github.com/m04kA/SMC-EventBooking/internal/domain"
	"github.com/m04kA/SMC-EventBooking/internal/ledger"
)

// Recorder идемпотентная запись оплаченных бронирований и платежей
type Recorder interface {
	RecordBooking(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	RecordInstallment(ctx context.Context, bookingID int64, invoice domain.Invoice) (*domain.Booking, error)
}

// Notifier уведомления по итогам сверки
type Notifier interface {
	BookingCreated(ctx context.Context, b *domain.Booking) error
	InstallmentPaid(ctx context.Context, b *domain.Booking, inv domain.Invoice) error
	PaymentNotRecorded(ctx context.Context, userID int64, orderID, paymentID, reason string) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Тип ошибки, которую Temporal не повторяет
const permanentErrorType = "PermanentLedgerError"

// Activities шаги сверки
type Activities struct {
	recorder Recorder
	notifier Notifier
	logger   Logger
}

func NewActivities(recorder Recorder, notifier Notifier, logger Logger) *Activities {
	return &Activities{recorder: recorder, notifier: notifier, logger: logger}
}

// Persist записывает бронирование или платеж. Повтор безопасен
func (a *Activities) Persist(ctx context.Context, req Request) (*domain.Booking, error) {
	var (
		booking *domain.Booking
		err     error
	)

	switch req.Kind {
	case KindBooking:
		if req.Booking == nil {
			return nil, temporal.NewNonRetryableApplicationError("booking payload is missing", permanentErrorType, nil)
		}
		booking, err = a.recorder.RecordBooking(ctx, req.Booking)
	case KindInstallment:
		booking, err = a.recorder.RecordInstallment(ctx, req.BookingID, req.Invoice)
	case KindOrphanPayment:
		// записать нечего, идентификаторы остаются в истории workflow
		a.logger.Error("reconciliation: order %s payment %s amount=%d has no booking: %s", req.OrderID, req.PaymentID, req.Amount, req.Reason)
		return nil, temporal.NewNonRetryableApplicationError("payment has no booking: "+req.Reason, permanentErrorType, nil)
	default:
		return nil, temporal.NewNonRetryableApplicationError(fmt.Sprintf("unknown kind %q", req.Kind), permanentErrorType, nil)
	}

	if err != nil {
		a.logger.Warn("reconciliation: persist order %s failed: %v", req.OrderID, err)
		if ledger.IsPermanent(err) {
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), permanentErrorType, err)
		}
		return nil, err
	}

	a.logger.Info("reconciliation: order %s recorded in booking id=%d", req.OrderID, booking.ID)
	return booking, nil
}

// NotifyRecorded отправляет обычные уведомления после успешной записи
func (a *Activities) NotifyRecorded(ctx context.Context, req Request, booking *domain.Booking) error {
	if req.Kind == KindInstallment {
		for _, inv := range booking.Invoices {
			if inv.GatewayOrderID == req.OrderID {
				return a.notifier.InstallmentPaid(ctx, booking, inv)
			}
		}
		return nil
	}
	return a.notifier.BookingCreated(ctx, booking)
}

// AlertOperator сообщает оператору, что платеж требует ручной обработки
func (a *Activities) AlertOperator(ctx context.Context, req Request, reason string) error {
	a.logger.Error("reconciliation: order %s payment %s needs manual handling: %s", req.OrderID, req.PaymentID, reason)
	return a.notifier.PaymentNotRecorded(ctx, req.UserID, req.OrderID, req.PaymentID, reason)
}

package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-EventBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-EventBooking/internal/infra/storage/booking"
)

// Ledger записывает оплаченные бронирования и платежи.
// Обе операции идемпотентны по идентификатору заказа в платежном шлюзе
type Ledger struct {
	repo      BookingRepository
	txManager TransactionManager
}

func New(repo BookingRepository, txManager TransactionManager) *Ledger {
	return &Ledger{repo: repo, txManager: txManager}
}

// RecordBooking сохраняет бронирование вместе с первым платежом и историей.
// Повторная запись того же заказа возвращает уже сохраненное бронирование
func (l *Ledger) RecordBooking(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	var created *domain.Booking
	err := l.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		created, err = l.repo.Create(ctx, booking)
		return err
	})
	if err == nil {
		return created, nil
	}

	if errors.Is(err, bookingRepo.ErrDuplicateOrder) {
		existing, getErr := l.repo.GetByGatewayOrderID(ctx, booking.GatewayOrderID)
		if getErr != nil {
			return nil, fmt.Errorf("%w: RecordBooking - lookup duplicate order %s: %v", ErrInternal, booking.GatewayOrderID, getErr)
		}
		return existing, nil
	}

	return nil, fmt.Errorf("%w: RecordBooking - %v", ErrInternal, err)
}

// RecordInstallment добавляет платеж к бронированию и уменьшает остаток.
// Строка бронирования блокируется на время транзакции (FOR UPDATE)
func (l *Ledger) RecordInstallment(ctx context.Context, bookingID int64, invoice domain.Invoice) (*domain.Booking, error) {
	var updated *domain.Booking
	err := l.txManager.Do(ctx, func(ctx context.Context) error {
		booking, err := l.repo.GetByID(ctx, bookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		for _, inv := range booking.Invoices {
			if inv.GatewayOrderID == invoice.GatewayOrderID {
				updated = booking
				return nil
			}
		}

		if booking.IsCancelled() {
			return ErrBookingCancelled
		}
		if invoice.InstallmentIndex != booking.PaidInstallments+1 {
			return fmt.Errorf("%w: expected installment %d, got %d", ErrInstallmentConflict, booking.PaidInstallments+1, invoice.InstallmentIndex)
		}
		if invoice.PaidAmount <= 0 || invoice.PaidAmount > booking.DueAmount {
			return fmt.Errorf("%w: amount %d exceeds due %d", ErrInstallmentConflict, invoice.PaidAmount, booking.DueAmount)
		}

		invoice.BookingID = booking.ID
		invoice.DueAmount = booking.DueAmount - invoice.PaidAmount
		if err := l.repo.InsertInvoice(ctx, &invoice); err != nil {
			return err
		}

		booking.PaidAmount += invoice.PaidAmount
		booking.DueAmount = invoice.DueAmount
		booking.PaidInstallments = invoice.InstallmentIndex
		booking.PaymentStatus = domain.PaymentPartiallyPaid
		if booking.IsFullyPaid() {
			booking.PaymentStatus = domain.PaymentPaid
		}
		if err := l.repo.UpdatePayment(ctx, booking); err != nil {
			return err
		}

		booking.Invoices = append(booking.Invoices, invoice)
		updated = booking
		return nil
	})
	if err == nil {
		return updated, nil
	}

	if IsPermanent(err) {
		return nil, err
	}
	if errors.Is(err, bookingRepo.ErrDuplicateOrder) {
		// платеж уже записан параллельным вызовом
		existing, getErr := l.repo.GetByID(ctx, bookingID)
		if getErr != nil {
			return nil, fmt.Errorf("%w: RecordInstallment - reload booking %d: %v", ErrInternal, bookingID, getErr)
		}
		return existing, nil
	}

	return nil, fmt.Errorf("%w: RecordInstallment - %v", ErrInternal, err)
}

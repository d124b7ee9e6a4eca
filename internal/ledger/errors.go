package ledger

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование для доплаты не найдено
	ErrBookingNotFound = errors.New("ledger: booking not found")

	// ErrBookingCancelled возвращается при доплате по отмененному бронированию
	ErrBookingCancelled = errors.New("ledger: booking is cancelled")

	// ErrInstallmentConflict возвращается, когда платеж не соответствует состоянию бронирования
	ErrInstallmentConflict = errors.New("ledger: installment does not match booking state")

	// ErrInternal возвращается при ошибках хранилища
	ErrInternal = errors.New("ledger: internal error")
)

// IsPermanent true для ошибок, которые не исчезнут при повторе
func IsPermanent(err error) bool {
	return errors.Is(err, ErrBookingNotFound) ||
		errors.Is(err, ErrBookingCancelled) ||
		errors.Is(err, ErrInstallmentConflict)
}

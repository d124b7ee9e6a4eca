package pay_balance

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("pay_balance: booking not found")

	// ErrAccessDenied возвращается, когда доплату вносит не владелец бронирования
	ErrAccessDenied = errors.New("pay_balance: access denied")

	// ErrBookingCancelled возвращается для отмененного бронирования
	ErrBookingCancelled = errors.New("pay_balance: booking is cancelled")

	// ErrOrderMismatch возвращается, когда заказ не относится к бронированию
	ErrOrderMismatch = errors.New("pay_balance: order does not belong to this booking")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("pay_balance: internal error")
)

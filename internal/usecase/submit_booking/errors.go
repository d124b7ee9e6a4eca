package submit_booking

import "errors"

var (
	// ErrOrderMismatch возвращается, когда заказ не принадлежит мастеру
	ErrOrderMismatch = errors.New("submit_booking: order does not belong to this wizard")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("submit_booking: internal error")
)

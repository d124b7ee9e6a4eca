package wizard_flow

import "errors"

var (
	// ErrPackageNotFound возвращается, когда пакет не найден или снят с продажи
	ErrPackageNotFound = errors.New("wizard_flow: package not found")

	// ErrFormNotFound возвращается, когда у мероприятия нет формы
	ErrFormNotFound = errors.New("wizard_flow: event form not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("wizard_flow: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("wizard_flow: internal error")
)

package forms

import "errors"

var (
	// ErrUnknownField возвращается при изменении поля, которого нет в описании формы
	ErrUnknownField = errors.New("forms: unknown field")

	// ErrInvalidOption возвращается, когда значение select не входит в список опций
	ErrInvalidOption = errors.New("forms: value is not one of the declared options")

	// ErrInvalidNumber возвращается, когда значение numeric поля не является числом
	ErrInvalidNumber = errors.New("forms: value is not a number")

	// ErrInvalidDate возвращается, когда значение date поля не в формате YYYY-MM-DD
	ErrInvalidDate = errors.New("forms: value is not a date")

	// ErrInvalidValue возвращается при значении неподдерживаемого типа
	ErrInvalidValue = errors.New("forms: unsupported value type")

	// ErrValueTooLong возвращается при слишком длинном значении
	ErrValueTooLong = errors.New("forms: value is too long")
)

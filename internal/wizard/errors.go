package wizard

import "errors"

var (
	// ErrWizardNotFound возвращается, когда мастер не найден (истек или завершен)
	ErrWizardNotFound = errors.New("wizard: not found")

	// ErrAccessDenied возвращается при обращении к чужому мастеру
	ErrAccessDenied = errors.New("wizard: access denied")

	// ErrStepInvalid возвращается, когда текущий шаг не прошел валидацию
	ErrStepInvalid = errors.New("wizard: current step is not valid")

	// ErrAlreadyFirstStep возвращается при попытке вернуться с первого шага
	ErrAlreadyFirstStep = errors.New("wizard: already at the first step")

	// ErrAlreadyLastStep возвращается при попытке перейти дальше последнего шага
	ErrAlreadyLastStep = errors.New("wizard: already at the last step")

	// ErrSectionNotActive возвращается при изменении полей не текущего шага
	ErrSectionNotActive = errors.New("wizard: section does not belong to the current step")

	// ErrUnknownField возвращается при изменении неизвестного поля
	ErrUnknownField = errors.New("wizard: unknown field")

	// ErrInvalidFieldValue возвращается при некорректном значении поля
	ErrInvalidFieldValue = errors.New("wizard: invalid field value")

	// ErrPaymentInFlight возвращается при изменении мастера во время оплаты
	ErrPaymentInFlight = errors.New("wizard: payment is in progress")

	// ErrNotOnPaymentStep возвращается при попытке оплаты не с шага оплаты
	ErrNotOnPaymentStep = errors.New("wizard: not on the payment step")

	// ErrCompleted возвращается при обращении к завершенному мастеру
	ErrCompleted = errors.New("wizard: already completed")

	// ErrIncomplete возвращается при сборке черновика, когда не все шаги пройдены
	ErrIncomplete = errors.New("wizard: not all steps have been passed")
)

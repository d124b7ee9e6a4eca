package validator

import (
	"strings"

	"github.com/m04kA/SMC-EventBooking/internal/domain"
)

// Обязательные поля шага "Детали мероприятия"
var EventDetailsRequired = []string{
	"eventName",
	"eventDate",
	"startTime",
	"endTime",
	"venueName",
	"venueAddressLine1",
	"venueCity",
	"venuePincode",
	"numberOfGuests",
}

// Обязательные поля шага "Адрес доставки", если адрес не совпадает с адресом клиента
var DeliveryAddressRequired = []string{
	"recipientName",
	"addressLine1",
	"city",
	"state",
	"pincode",
	"contactNumber",
}

// Согласия, без которых нельзя открыть оплату
var PaymentConsents = []string{
	"agreeToTerms",
	"confirmBookingDetails",
}

// Result результат проверки шага
type Result struct {
	Valid   bool
	Missing []string // незаполненные поля в порядке объявления
}

// IsStepValid проверяет, можно ли покинуть шаг вперед.
// Чистая функция: состояние формы не изменяется, результат зависит только от аргументов
func IsStepValid(step domain.WizardStep, values domain.FormValues, descriptors []domain.FieldDescriptor) Result {
	switch step {
	case domain.StepDynamicFields:
		return validateDynamicFields(section(values, domain.SectionDynamicFields), descriptors)
	case domain.StepEventDetails:
		return requireAll(section(values, domain.SectionEventDetails), EventDetailsRequired)
	case domain.StepDeliveryAddress:
		sec := section(values, domain.SectionDeliveryAddress)
		if isTrue(sec["sameAsClientAddress"]) {
			return Result{Valid: true}
		}
		return requireAll(sec, DeliveryAddressRequired)
	case domain.StepPayment:
		return validatePayment(section(values, domain.SectionPayment))
	default:
		return Result{Valid: false}
	}
}

// validateDynamicFields шаг валиден, когда число заполненных полей равно числу дескрипторов
// Учитываются только объявленные поля
func validateDynamicFields(sec map[string]interface{}, descriptors []domain.FieldDescriptor) Result {
	populatedCount := 0
	var missing []string

	for _, d := range descriptors {
		if isPopulated(sec[d.Name]) {
			populatedCount++
			continue
		}
		missing = append(missing, d.Name)
	}

	return Result{
		Valid:   populatedCount == len(descriptors),
		Missing: missing,
	}
}

func validatePayment(sec map[string]interface{}) Result {
	var missing []string
	for _, name := range PaymentConsents {
		if !isTrue(sec[name]) {
			missing = append(missing, name)
		}
	}
	return Result{Valid: len(missing) == 0, Missing: missing}
}

func requireAll(sec map[string]interface{}, fields []string) Result {
	var missing []string
	for _, name := range fields {
		if !isPopulated(sec[name]) {
			missing = append(missing, name)
		}
	}
	return Result{Valid: len(missing) == 0, Missing: missing}
}

// section возвращает секцию только для чтения (без создания)
func section(values domain.FormValues, name string) map[string]interface{} {
	if sec, ok := values[name].(map[string]interface{}); ok {
		return sec
	}
	return map[string]interface{}{}
}

func isPopulated(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(val) != ""
	default:
		return true
	}
}

func isTrue(v interface{}) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return strings.EqualFold(strings.TrimSpace(val), "true")
	default:
		return false
	}
}

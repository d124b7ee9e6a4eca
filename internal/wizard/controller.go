package wizard

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/m04kA/SMC-EventBooking/internal/domain"
	"github.com/m04kA/SMC-EventBooking/internal/wizard/forms"
	"github.com/m04kA/SMC-EventBooking/internal/wizard/validator"
)

// NewState создает состояние нового мастера бронирования на первом шаге
func NewState(id string, userID int64, def domain.FormDefinition, pkg domain.PackageSnapshot, now time.Time) *domain.WizardState {
	return &domain.WizardState{
		ID:          id,
		UserID:      userID,
		EventID:     pkg.EventID,
		PackageID:   pkg.ID,
		FormTitle:   def.FormTitle,
		Descriptors: append([]domain.FieldDescriptor(nil), def.Fields...),
		Package:     pkg,
		CurrentStep: domain.StepDynamicFields,
		FormValues:  domain.FormValues{},
		PassedSteps: make(map[domain.WizardStep]bool),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Controller управляет навигацией и изменением одного мастера.
// Не потокобезопасен: вызывающий (Store) сериализует доступ
type Controller struct {
	state *domain.WizardState
	now   func() time.Time
}

func NewController(state *domain.WizardState) *Controller {
	return &Controller{state: state, now: time.Now}
}

// State возвращает управляемое состояние
func (c *Controller) State() *domain.WizardState {
	return c.state
}

// Controls строит контролы динамической формы поверх текущего состояния
func (c *Controller) Controls() []*forms.Control {
	return forms.Render(c.state.Descriptors, c.state.FormValues.Section(domain.SectionDynamicFields))
}

// Validate проверяет текущий шаг, не изменяя состояние
func (c *Controller) Validate() validator.Result {
	return validator.IsStepValid(c.state.CurrentStep, c.state.FormValues, c.state.Descriptors)
}

// Next переходит на следующий шаг, если текущий валиден
func (c *Controller) Next() (validator.Result, error) {
	if err := c.checkMutable(); err != nil {
		return validator.Result{}, err
	}
	if c.state.CurrentStep.IsLast() {
		return validator.Result{}, ErrAlreadyLastStep
	}

	res := c.Validate()
	if !res.Valid {
		return res, fmt.Errorf("%w: %s", ErrStepInvalid, c.state.CurrentStep)
	}

	c.state.PassedSteps[c.state.CurrentStep] = true
	c.state.CurrentStep++
	c.state.ScrollOffset = 0
	c.touch()

	return res, nil
}

// Previous возвращает на предыдущий шаг без валидации
func (c *Controller) Previous() error {
	if err := c.checkMutable(); err != nil {
		return err
	}
	if c.state.CurrentStep.IsFirst() {
		return ErrAlreadyFirstStep
	}

	c.state.CurrentStep--
	c.state.ScrollOffset = 0
	c.touch()

	return nil
}

// SetFields применяет изменения полей секции текущего шага
// Изменения применяются целиком или не применяются вовсе
func (c *Controller) SetFields(section string, changes map[string]interface{}) error {
	if err := c.checkMutable(); err != nil {
		return err
	}
	if section != domain.SectionForStep(c.state.CurrentStep) {
		return fmt.Errorf("%w: %s", ErrSectionNotActive, section)
	}
	if len(changes) == 0 {
		return nil
	}

	sec := c.state.FormValues.Section(section)

	if section == domain.SectionDynamicFields {
		if err := forms.Apply(c.state.Descriptors, sec, changes); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidFieldValue, err)
		}
	} else if err := applyStatic(section, sec, changes); err != nil {
		return err
	}

	c.touch()
	return nil
}

// SetScroll запоминает позицию прокрутки текущего шага
func (c *Controller) SetScroll(offset int) {
	if offset < 0 {
		offset = 0
	}
	c.state.ScrollOffset = offset
}

// InstallmentPlan выбранный план оплаты (по умолчанию полная оплата)
func (c *Controller) InstallmentPlan() domain.InstallmentPlan {
	v, ok := c.state.FormValues.Get(domain.SectionPayment + ".installmentPlan")
	if !ok {
		return domain.PlanFull
	}
	f, ok := v.(float64)
	if !ok || f < 1 {
		return domain.PlanFull
	}
	return domain.InstallmentPlan(f)
}

// ReadyForPayment проверяет, что мастер можно отправить на оплату
func (c *Controller) ReadyForPayment() error {
	if c.state.Completed {
		return ErrCompleted
	}
	if !c.state.CurrentStep.IsLast() {
		return ErrNotOnPaymentStep
	}
	if err := c.ensureAllStepsValid(); err != nil {
		return err
	}
	if !c.InstallmentPlan().IsValid() {
		return fmt.Errorf("%w: installmentPlan", ErrInvalidFieldValue)
	}
	return nil
}

// BeginPayment фиксирует открытую сессию. Пока она открыта, мастер не изменяется
func (c *Controller) BeginPayment(orderID string) error {
	if err := c.ReadyForPayment(); err != nil {
		return err
	}

	c.state.ActiveOrderID = orderID
	c.touch()
	return nil
}

// EndPayment снимает блокировку после отмены или неудачи оплаты
func (c *Controller) EndPayment(orderID string) {
	if c.state.ActiveOrderID == orderID {
		c.state.ActiveOrderID = ""
		c.touch()
	}
}

// Complete помечает мастер завершенным после создания бронирования
func (c *Controller) Complete(bookingID *int64) {
	c.state.Completed = true
	c.state.ActiveOrderID = ""
	c.state.BookingID = bookingID
	c.touch()
}

// AssembleDraft собирает черновик бронирования из состояния мастера.
// clientAddress используется, если выбран адрес клиента
func (c *Controller) AssembleDraft(first domain.Invoice, clientAddress *domain.DeliveryAddress) (domain.BookingDraft, error) {
	if err := c.ensureAllStepsValid(); err != nil {
		return domain.BookingDraft{}, err
	}

	values := c.state.FormValues.Clone()

	var details domain.EventDetails
	if err := decodeSection(values, domain.SectionEventDetails, &details); err != nil {
		return domain.BookingDraft{}, err
	}

	var address domain.DeliveryAddress
	if err := decodeSection(values, domain.SectionDeliveryAddress, &address); err != nil {
		return domain.BookingDraft{}, err
	}
	if address.SameAsClientAddress && clientAddress != nil {
		address = *clientAddress
		address.SameAsClientAddress = true
	}

	var prefs domain.PaymentPreferences
	if err := decodeSection(values, domain.SectionPayment, &prefs); err != nil {
		return domain.BookingDraft{}, err
	}
	if prefs.InstallmentPlan == 0 {
		prefs.InstallmentPlan = domain.PlanFull
	}

	dynamic := values.Section(domain.SectionDynamicFields)

	return domain.BookingDraft{
		WizardID:        c.state.ID,
		UserID:          c.state.UserID,
		EventID:         c.state.EventID,
		PackageID:       c.state.PackageID,
		DynamicFields:   dynamic,
		EventDetails:    details,
		DeliveryAddress: address,
		Payment:         prefs,
		Package:         c.state.Package,
		FirstInvoice:    first,
		TotalAmount:     c.state.Package.Price,
		Currency:        c.state.Package.Currency,
	}, nil
}

// ensureAllStepsValid все шаги должны быть валидны на момент оплаты
func (c *Controller) ensureAllStepsValid() error {
	for _, step := range domain.WizardSteps {
		if !step.IsLast() && !c.state.PassedSteps[step] {
			return fmt.Errorf("%w: %s", ErrIncomplete, step)
		}
		res := validator.IsStepValid(step, c.state.FormValues, c.state.Descriptors)
		if !res.Valid {
			return fmt.Errorf("%w: %s: %v", ErrStepInvalid, step, res.Missing)
		}
	}
	return nil
}

func (c *Controller) checkMutable() error {
	if c.state.Completed {
		return ErrCompleted
	}
	if c.state.ActiveOrderID != "" {
		return ErrPaymentInFlight
	}
	return nil
}

func (c *Controller) touch() {
	c.state.UpdatedAt = c.now()
}

func decodeSection(values domain.FormValues, name string, dst interface{}) error {
	raw, err := json.Marshal(values.Section(name))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidFieldValue, name, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidFieldValue, name, err)
	}
	return nil
}

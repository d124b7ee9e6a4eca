package wizard_flow

import (
	"time"

	"github.com/m04kA/SMC-EventBooking/internal/domain"
	"github.com/m04kA/SMC-EventBooking/internal/payment"
	"github.com/m04kA/SMC-EventBooking/internal/wizard"
	"github.com/m04kA/SMC-EventBooking/pkg/money"
)

// StartRequest запрос на запуск мастера бронирования
type StartRequest struct {
	UserID    int64
	PackageID int64
}

// FieldsRequest изменение полей одной секции формы
type FieldsRequest struct {
	WizardID string
	UserID   int64
	Section  string
	Values   map[string]interface{}
	Scroll   *int
}

// Control поле динамической формы
type Control struct {
	Name     string
	Label    string
	Kind     string
	Required bool
	Options  []string
	Value    interface{}
	Default  string
}

// Installment расчет первого платежа по выбранному плану
type Installment struct {
	Plan            int
	Amount          int64
	Due             int64
	AmountFormatted string
	DueFormatted    string
	TotalFormatted  string
	Currency        string
}

// View представление мастера для клиента
type View struct {
	ID           string
	Step         string
	StepIndex    int
	IsFirstStep  bool
	IsLastStep   bool
	FormTitle    string
	Controls     []Control
	FormValues   map[string]interface{}
	PassedSteps  []string
	Missing      []string
	StepValid    bool
	ScrollOffset int

	PackageID   int64
	PackageName string
	EventID     int64
	Installment *Installment

	ActiveOrderID string
	Completed     bool
	BookingID     *int64

	UpdatedAt time.Time
}

// buildView строит представление под блокировкой мастера
func buildView(c *wizard.Controller) *View {
	state := c.State()
	result := c.Validate()

	view := &View{
		ID:            state.ID,
		Step:          state.CurrentStep.String(),
		StepIndex:     int(state.CurrentStep),
		IsFirstStep:   state.CurrentStep.IsFirst(),
		IsLastStep:    state.CurrentStep.IsLast(),
		FormTitle:     state.FormTitle,
		FormValues:    state.FormValues.Clone(),
		Missing:       result.Missing,
		StepValid:     result.Valid,
		ScrollOffset:  state.ScrollOffset,
		PackageID:     state.PackageID,
		PackageName:   state.Package.Name,
		EventID:       state.EventID,
		ActiveOrderID: state.ActiveOrderID,
		Completed:     state.Completed,
		BookingID:     state.BookingID,
		UpdatedAt:     state.UpdatedAt,
	}

	for _, ctrl := range c.Controls() {
		view.Controls = append(view.Controls, Control{
			Name:     ctrl.Name,
			Label:    ctrl.Label,
			Kind:     string(ctrl.Kind),
			Required: ctrl.Required,
			Options:  ctrl.Options,
			Value:    ctrl.Value,
			Default:  ctrl.Default,
		})
	}

	for _, step := range domain.WizardSteps {
		if state.PassedSteps[step] {
			view.PassedSteps = append(view.PassedSteps, step.String())
		}
	}

	// Расчет показывается только на шаге оплаты
	if state.CurrentStep.IsLast() {
		plan := c.InstallmentPlan()
		if amount, due, err := payment.ComputeInstallment(state.Package.Price, plan); err == nil {
			currency := state.Package.Currency
			view.Installment = &Installment{
				Plan:            int(plan),
				Amount:          amount,
				Due:             due,
				AmountFormatted: money.Format(amount, currency),
				DueFormatted:    money.Format(due, currency),
				TotalFormatted:  money.Format(state.Package.Price, currency),
				Currency:        currency,
			}
		}
	}

	return view
}

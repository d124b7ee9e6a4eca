package booking_wizard

import (
	"time"

	wizardFlow "github.com/m04kA/SMC-EventBooking/internal/usecase/wizard_flow"
)

// StartWizardRequest HTTP request model
type StartWizardRequest struct {
	PackageID int64 `json:"packageId"`
}

// SetFieldsRequest HTTP request model
type SetFieldsRequest struct {
	Section      string                 `json:"section"`
	Values       map[string]interface{} `json:"values,omitempty"`
	ScrollOffset *int                   `json:"scrollOffset,omitempty"`
}

// ControlResponse поле динамической формы
type ControlResponse struct {
	Name     string      `json:"name"`
	Label    string      `json:"label"`
	Kind     string      `json:"inputType"`
	Required bool        `json:"required"`
	Options  []string    `json:"options,omitempty"`
	Value    interface{} `json:"value,omitempty"`
	Default  string      `json:"defaultValue,omitempty"`
}

// InstallmentResponse расчет платежа на шаге оплаты
type InstallmentResponse struct {
	Plan            int    `json:"installmentPlan"`
	Amount          int64  `json:"installmentAmount"`
	Due             int64  `json:"dueAmount"`
	AmountFormatted string `json:"installmentFormatted"`
	DueFormatted    string `json:"dueFormatted"`
	TotalFormatted  string `json:"totalFormatted"`
	Currency        string `json:"currency"`
}

// WizardResponse HTTP response model
type WizardResponse struct {
	ID           string                 `json:"id"`
	Step         string                 `json:"step"`
	StepIndex    int                    `json:"stepIndex"`
	IsFirstStep  bool                   `json:"isFirstStep"`
	IsLastStep   bool                   `json:"isLastStep"`
	FormTitle    string                 `json:"formTitle"`
	Controls     []ControlResponse      `json:"controls"`
	FormValues   map[string]interface{} `json:"formValues"`
	PassedSteps  []string               `json:"passedSteps"`
	Missing      []string               `json:"missingFields,omitempty"`
	StepValid    bool                   `json:"stepValid"`
	ScrollOffset int                    `json:"scrollOffset"`

	PackageID   int64                `json:"packageId"`
	PackageName string               `json:"packageName"`
	EventID     int64                `json:"eventId"`
	Installment *InstallmentResponse `json:"installment,omitempty"`

	ActiveOrderID string `json:"activeOrderId,omitempty"`
	Completed     bool   `json:"completed"`
	BookingID     *int64 `json:"bookingId,omitempty"`

	UpdatedAt string `json:"updatedAt"`
}

// InvalidStepResponse ответ на переход с незаполненными полями
type InvalidStepResponse struct {
	Error  string          `json:"error"`
	Wizard *WizardResponse `json:"wizard"`
}

// FromView конвертирует представление мастера в HTTP response
func FromView(v *wizardFlow.View) *WizardResponse {
	if v == nil {
		return nil
	}

	resp := &WizardResponse{
		ID:            v.ID,
		Step:          v.Step,
		StepIndex:     v.StepIndex,
		IsFirstStep:   v.IsFirstStep,
		IsLastStep:    v.IsLastStep,
		FormTitle:     v.FormTitle,
		Controls:      make([]ControlResponse, 0, len(v.Controls)),
		FormValues:    v.FormValues,
		PassedSteps:   v.PassedSteps,
		Missing:       v.Missing,
		StepValid:     v.StepValid,
		ScrollOffset:  v.ScrollOffset,
		PackageID:     v.PackageID,
		PackageName:   v.PackageName,
		EventID:       v.EventID,
		ActiveOrderID: v.ActiveOrderID,
		Completed:     v.Completed,
		BookingID:     v.BookingID,
		UpdatedAt:     v.UpdatedAt.Format(time.RFC3339),
	}
	if resp.PassedSteps == nil {
		resp.PassedSteps = []string{}
	}

	for _, c := range v.Controls {
		resp.Controls = append(resp.Controls, ControlResponse(c))
	}

	if v.Installment != nil {
		inst := InstallmentResponse(*v.Installment)
		resp.Installment = &inst
	}

	return resp
}

package domain

import (
	"strings"
	"time"
)

// WizardStep one of the ordered booking wizard steps
type WizardStep int

const (
	StepDynamicFields WizardStep = iota
	StepEventDetails
	StepDeliveryAddress
	StepPayment
)

// WizardSteps all steps in navigation order
var WizardSteps = []WizardStep{
	StepDynamicFields,
	StepEventDetails,
	StepDeliveryAddress,
	StepPayment,
}

func (s WizardStep) String() string {
	switch s {
	case StepDynamicFields:
		return "dynamic_fields"
	case StepEventDetails:
		return "event_details"
	case StepDeliveryAddress:
		return "delivery_address"
	case StepPayment:
		return "payment"
	default:
		return "unknown"
	}
}

// IsFirst returns true for the initial step
func (s WizardStep) IsFirst() bool {
	return s == StepDynamicFields
}

// IsLast returns true for the final step
func (s WizardStep) IsLast() bool {
	return s == StepPayment
}

// Form value sections, one per wizard step
const (
	SectionDynamicFields   = "dynamicFields"
	SectionEventDetails    = "eventDetails"
	SectionDeliveryAddress = "deliveryAddress"
	SectionPayment         = "payment"
)

// SectionForStep returns the form section edited on the given step
func SectionForStep(s WizardStep) string {
	switch s {
	case StepDynamicFields:
		return SectionDynamicFields
	case StepEventDetails:
		return SectionEventDetails
	case StepDeliveryAddress:
		return SectionDeliveryAddress
	default:
		return SectionPayment
	}
}

// InputKind type of a dynamic form control
type InputKind string

const (
	InputText     InputKind = "text"
	InputNumber   InputKind = "number"
	InputDate     InputKind = "date"
	InputSelect   InputKind = "select"
	InputTextarea InputKind = "textarea"
)

// IsValid returns true for a known input kind
func (k InputKind) IsValid() bool {
	switch k {
	case InputText, InputNumber, InputDate, InputSelect, InputTextarea:
		return true
	}
	return false
}

// FieldDescriptor server-supplied description of one dynamic form field
type FieldDescriptor struct {
	Name      string    `json:"name"`
	Label     string    `json:"label"`
	InputKind InputKind `json:"type"`
	Required  bool      `json:"required"`
	Options   []string  `json:"options,omitempty"`
}

// FormDefinition dynamic form of an event
type FormDefinition struct {
	FormTitle string            `json:"formTitle"`
	Fields    []FieldDescriptor `json:"fields"`
}

// FormValues nested form state: section -> field -> value
// Paths are dot separated ("eventDetails.venueCity")
type FormValues map[string]interface{}

// Section returns the map of a section, creating it when missing
func (v FormValues) Section(name string) map[string]interface{} {
	if sec, ok := v[name].(map[string]interface{}); ok {
		return sec
	}
	sec := make(map[string]interface{})
	v[name] = sec
	return sec
}

// Get returns the value stored at a dot separated path
func (v FormValues) Get(path string) (interface{}, bool) {
	parts := strings.Split(path, ".")
	var cur interface{} = map[string]interface{}(v)
	for _, p := range parts {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Set stores a value at a dot separated path, creating intermediate maps
func (v FormValues) Set(path string, value interface{}) {
	parts := strings.Split(path, ".")
	cur := map[string]interface{}(v)
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur[p].(map[string]interface{})
		if !ok {
			next = make(map[string]interface{})
			cur[p] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = value
}

// Clone returns a deep copy of nested maps
func (v FormValues) Clone() FormValues {
	return FormValues(cloneMap(v))
}

func cloneMap(src map[string]interface{}) map[string]interface{} {
	dst := make(map[string]interface{}, len(src))
	for k, val := range src {
		if nested, ok := val.(map[string]interface{}); ok {
			dst[k] = cloneMap(nested)
			continue
		}
		dst[k] = val
	}
	return dst
}

// WizardState server-held state of one booking wizard session
type WizardState struct {
	ID          string
	UserID      int64
	EventID     int64
	PackageID   int64
	FormTitle   string
	Descriptors []FieldDescriptor
	Package     PackageSnapshot

	CurrentStep  WizardStep
	FormValues   FormValues
	PassedSteps  map[WizardStep]bool
	ScrollOffset int

	ActiveOrderID string // открытая платежная сессия
	Completed     bool
	BookingID     *int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

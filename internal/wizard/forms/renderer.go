package forms

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/m04kA/SMC-EventBooking/internal/domain"
)

// Control одно поле формы, привязанное к общему состоянию значений
type Control struct {
	Name     string
	Label    string
	Kind     domain.InputKind
	Required bool
	Options  []string

	// Value текущее значение (nil, если поле еще не заполнялось)
	Value interface{}
	// Default значение, которое показывается в select до первого выбора.
	// В состояние формы не записывается
	Default string

	values map[string]interface{}
}

// Render строит по одному контролу на каждый дескриптор в исходном порядке.
// values - секция состояния формы, в которую контролы пишут изменения
func Render(descriptors []domain.FieldDescriptor, values map[string]interface{}) []*Control {
	controls := make([]*Control, 0, len(descriptors))

	for _, d := range descriptors {
		c := &Control{
			Name:     d.Name,
			Label:    d.Label,
			Kind:     d.InputKind,
			Required: d.Required,
			values:   values,
		}

		if d.InputKind == domain.InputSelect {
			c.Options = append([]string(nil), d.Options...)
			if len(c.Options) > 0 {
				c.Default = c.Options[0]
			}
		}

		if v, ok := values[d.Name]; ok {
			c.Value = v
		}

		controls = append(controls, c)
	}

	return controls
}

// Set обрабатывает событие изменения: нормализует значение и пишет values[name].
// Соседние поля не затрагиваются
func (c *Control) Set(raw interface{}) error {
	value, err := c.normalize(raw)
	if err != nil {
		return fmt.Errorf("%w: field %q", err, c.Name)
	}
	c.values[c.Name] = value
	c.Value = value
	return nil
}

// Apply применяет набор изменений через контролы формы
// Все изменения валидируются до записи: при ошибке состояние не меняется
func Apply(descriptors []domain.FieldDescriptor, values map[string]interface{}, changes map[string]interface{}) error {
	controls := Render(descriptors, values)
	byName := make(map[string]*Control, len(controls))
	for _, c := range controls {
		byName[c.Name] = c
	}

	normalized := make(map[string]interface{}, len(changes))
	for name, raw := range changes {
		c, ok := byName[name]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownField, name)
		}
		value, err := c.normalize(raw)
		if err != nil {
			return fmt.Errorf("%w: field %q", err, name)
		}
		normalized[name] = value
	}

	for name, value := range normalized {
		byName[name].values[name] = value
		byName[name].Value = value
	}
	return nil
}

func (c *Control) normalize(raw interface{}) (interface{}, error) {
	if raw == nil {
		return "", nil
	}

	switch c.Kind {
	case domain.InputNumber:
		return normalizeNumber(raw)
	case domain.InputDate:
		s, err := asString(raw)
		if err != nil {
			return nil, err
		}
		if s == "" {
			return "", nil
		}
		if _, err := time.Parse(domain.DateFormat, s); err != nil {
			return nil, ErrInvalidDate
		}
		return s, nil
	case domain.InputSelect:
		s, err := asString(raw)
		if err != nil {
			return nil, err
		}
		if s == "" {
			return "", nil
		}
		for _, opt := range c.Options {
			if opt == s {
				return s, nil
			}
		}
		return nil, ErrInvalidOption
	default:
		s, err := asString(raw)
		if err != nil {
			return nil, err
		}
		if len(s) > domain.MaxFieldValueLength {
			return nil, ErrValueTooLong
		}
		return s, nil
	}
}

func normalizeNumber(raw interface{}) (interface{}, error) {
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return "", nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, ErrInvalidNumber
		}
		f = parsed
	default:
		return nil, ErrInvalidNumber
	}

	// ParseFloat принимает "NaN" и "Inf", в JSON такие значения не сохраняются
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, ErrInvalidNumber
	}
	return f, nil
}

func asString(raw interface{}) (string, error) {
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", ErrInvalidValue
	}
}

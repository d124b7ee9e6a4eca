package wizard

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/m04kA/SMC-EventBooking/internal/domain"
	"github.com/m04kA/SMC-EventBooking/pkg/types"
)

type fieldKind int

const (
	kindString fieldKind = iota
	kindDate
	kindTime
	kindInt
	kindBool
)

// Схемы статических секций формы
var sectionSchemas = map[string]map[string]fieldKind{
	domain.SectionEventDetails: {
		"eventName":         kindString,
		"eventDate":         kindDate,
		"startTime":         kindTime,
		"endTime":           kindTime,
		"venueName":         kindString,
		"venueAddressLine1": kindString,
		"venueAddressLine2": kindString,
		"venueCity":         kindString,
		"venuePincode":      kindString,
		"numberOfGuests":    kindInt,
		"specialRequests":   kindString,
	},
	domain.SectionDeliveryAddress: {
		"sameAsClientAddress": kindBool,
		"recipientName":       kindString,
		"addressLine1":        kindString,
		"addressLine2":        kindString,
		"city":                kindString,
		"state":               kindString,
		"pincode":             kindString,
		"contactNumber":       kindString,
	},
	domain.SectionPayment: {
		"installmentPlan":       kindInt,
		"paymentMethod":         kindString,
		"agreeToTerms":          kindBool,
		"confirmBookingDetails": kindBool,
	},
}

// applyStatic валидирует и применяет изменения статической секции (все или ничего)
func applyStatic(section string, sec map[string]interface{}, changes map[string]interface{}) error {
	schema, ok := sectionSchemas[section]
	if !ok {
		return fmt.Errorf("%w: section %q", ErrUnknownField, section)
	}

	normalized := make(map[string]interface{}, len(changes))
	for name, raw := range changes {
		kind, ok := schema[name]
		if !ok {
			return fmt.Errorf("%w: %s.%s", ErrUnknownField, section, name)
		}
		value, err := normalizeStatic(kind, raw)
		if err != nil {
			return fmt.Errorf("%w: %s.%s: %v", ErrInvalidFieldValue, section, name, err)
		}
		normalized[name] = value
	}

	for name, value := range normalized {
		if value == nil {
			delete(sec, name)
			continue
		}
		sec[name] = value
	}
	return nil
}

func normalizeStatic(kind fieldKind, raw interface{}) (interface{}, error) {
	if raw == nil {
		switch kind {
		case kindBool:
			return false, nil
		case kindInt:
			// очищенное числовое поле удаляется из состояния
			return nil, nil
		}
		return "", nil
	}

	switch kind {
	case kindBool:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case string:
			return strconv.ParseBool(strings.TrimSpace(v))
		}
		return nil, fmt.Errorf("expected boolean, got %T", raw)

	case kindInt:
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
				return nil, nil
			}
			parsed, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, err
			}
			f = parsed
		default:
			return nil, fmt.Errorf("expected number, got %T", raw)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("expected finite number, got %v", f)
		}
		if f < 0 || f != math.Trunc(f) {
			return nil, fmt.Errorf("expected non-negative integer, got %v", f)
		}
		return f, nil

	default:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", raw)
		}
		s = strings.TrimSpace(s)
		if len(s) > domain.MaxFieldValueLength {
			return nil, fmt.Errorf("value is too long")
		}
		if s == "" {
			return s, nil
		}
		switch kind {
		case kindDate:
			if _, err := time.Parse(domain.DateFormat, s); err != nil {
				return nil, err
			}
		case kindTime:
			if _, err := types.NewTimeStringFromString(s); err != nil {
				return nil, err
			}
		}
		return s, nil
	}
}

package formservice

import (
	"fmt"

	"github.com/m04kA/SMC-EventBooking/internal/domain"
)

// FormResponse ответ сервиса форм
type FormResponse struct {
	FormTitle string          `json:"formTitle"`
	Fields    []FieldResponse `json:"fields"`
}

// FieldResponse описание одного поля
type FieldResponse struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Type     string   `json:"type"`
	Required bool     `json:"required"`
	Options  []string `json:"options"`
}

func (f FormResponse) toDomain() (*domain.FormDefinition, error) {
	def := &domain.FormDefinition{
		FormTitle: f.FormTitle,
		Fields:    make([]domain.FieldDescriptor, 0, len(f.Fields)),
	}

	seen := make(map[string]bool, len(f.Fields))
	for _, field := range f.Fields {
		kind := domain.InputKind(field.Type)
		if field.Name == "" || !kind.IsValid() {
			return nil, fmt.Errorf("%w: bad field %q of type %q", ErrInvalidResponse, field.Name, field.Type)
		}
		if seen[field.Name] {
			return nil, fmt.Errorf("%w: duplicate field %q", ErrInvalidResponse, field.Name)
		}
		if kind == domain.InputSelect && len(field.Options) == 0 {
			return nil, fmt.Errorf("%w: select field %q has no options", ErrInvalidResponse, field.Name)
		}
		seen[field.Name] = true

		label := field.Label
		if label == "" {
			label = field.Name
		}
		def.Fields = append(def.Fields, domain.FieldDescriptor{
			Name:      field.Name,
			Label:     label,
			InputKind: kind,
			Required:  field.Required,
			Options:   field.Options,
		})
	}

	return def, nil
}

package submission

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/layout"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Visible returns the fields shown on the public form in display order.
func Visible(form model.Form) []model.Field {
	return layout.Group(form.Fields, form.Rows).Visible()
}

// ValidateRequired reports every visible required field without a usable
// value. Multi-value fields need at least one non-blank entry; a toggle needs
// to be switched on.
func ValidateRequired(form model.Form, values map[string]any) map[string][]string {
	var out map[string][]string
	for _, field := range Visible(form) {
		if !field.Required {
			continue
		}
		if message := CheckRequired(field, values[field.ID]); message != "" {
			if out == nil {
				out = make(map[string][]string)
			}
			out[field.ID] = []string{message}
		}
	}
	return out
}

// CheckRequired returns the message for a required field with an empty value,
// or "" when the field is optional or filled in.
func CheckRequired(field model.Field, value any) string {
	if !field.Required || !IsEmpty(field, value) {
		return ""
	}
	return fmt.Sprintf("%s is required", fieldName(field))
}

// IsEmpty reports whether value counts as no answer for field.
func IsEmpty(field model.Field, value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		if field.Type == model.FieldTypeToggle {
			return !truthy(v)
		}
		return strings.TrimSpace(v) == ""
	case bool:
		return !v
	case []string:
		for _, item := range v {
			if strings.TrimSpace(item) != "" {
				return false
			}
		}
		return true
	case []any:
		for _, item := range v {
			if !IsEmpty(model.Field{Type: model.FieldTypeText}, item) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func fieldName(field model.Field) string {
	if label := strings.TrimSpace(field.Label); label != "" {
		return label
	}
	return field.Type.DisplayName()
}

func truthy(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "on", "yes", "1":
		return true
	default:
		return false
	}
}

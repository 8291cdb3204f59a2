package submission

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/widgets"
)

// FormLevelKey collects messages that belong to no single field.
const FormLevelKey = "_form"

const (
	patternTime     = `^([01][0-9]|2[0-3]):[0-5][0-9](:[0-5][0-9])?$`
	patternDateTime = `^[0-9]{4}-(0[1-9]|1[0-2])-(0[1-9]|[12][0-9]|3[01])T([01][0-9]|2[0-3]):[0-5][0-9](:[0-5][0-9])?$`
	patternURL      = `^[a-zA-Z][a-zA-Z0-9+.-]*://[^\s]+$`
	patternPhone    = `^[0-9+()\-.\s]{3,}$`
)

// Schema describes the public submission payload of form as an OpenAPI
// object schema keyed by field id. Only visible fields are listed.
func Schema(form model.Form) *openapi3.Schema {
	schema := openapi3.NewObjectSchema()
	schema.Title = form.Title
	schema.Description = form.Description

	var required []string
	for _, field := range Visible(form) {
		property := fieldSchema(field)
		property.Title = fieldName(field)
		schema.WithProperty(field.ID, property)
		if field.Required {
			required = append(required, field.ID)
		}
	}
	if len(required) > 0 {
		schema.WithRequired(required)
	}
	return schema
}

func fieldSchema(field model.Field) *openapi3.Schema {
	widget := widgets.Default().Resolve(field)

	switch field.Type {
	case model.FieldTypeNumber:
		return openapi3.NewFloat64Schema()
	case model.FieldTypeRange:
		schema := openapi3.NewFloat64Schema()
		if lo, err := strconv.ParseFloat(widget.Attr("min"), 64); err == nil {
			schema.WithMin(lo)
		}
		if hi, err := strconv.ParseFloat(widget.Attr("max"), 64); err == nil {
			schema.WithMax(hi)
		}
		return schema
	case model.FieldTypeRating:
		schema := openapi3.NewIntegerSchema().WithMin(1)
		if hi, err := strconv.ParseFloat(widget.Attr("max"), 64); err == nil {
			schema.WithMax(hi)
		}
		return schema
	case model.FieldTypeToggle:
		return openapi3.NewBoolSchema()
	case model.FieldTypeCheckbox, model.FieldTypeMultiSelect:
		return openapi3.NewArraySchema().WithItems(enumSchema(field.Options))
	case model.FieldTypeSelect, model.FieldTypeRadio:
		return enumSchema(field.Options)
	case model.FieldTypeEmail:
		return openapi3.NewStringSchema().WithFormat("email").WithPattern(openapi3.FormatOfStringForEmail)
	case model.FieldTypeURL:
		return openapi3.NewStringSchema().WithFormat("uri").WithPattern(patternURL)
	case model.FieldTypePhone:
		return openapi3.NewStringSchema().WithPattern(patternPhone)
	case model.FieldTypeDate:
		return openapi3.NewStringSchema().WithFormat("date")
	case model.FieldTypeTime:
		return openapi3.NewStringSchema().WithPattern(patternTime)
	case model.FieldTypeDateTime:
		return openapi3.NewStringSchema().WithPattern(patternDateTime)
	default:
		return openapi3.NewStringSchema()
	}
}

func enumSchema(options []string) *openapi3.Schema {
	schema := openapi3.NewStringSchema()
	if len(options) == 0 {
		return schema
	}
	values := make([]any, 0, len(options))
	for _, option := range options {
		values = append(values, option)
	}
	return schema.WithEnum(values...)
}

// Coerce converts raw submitted values (strings from an HTML form, decoded
// JSON, prompt answers) into the JSON shapes Schema expects. Values for
// fields that are not visible are dropped, as are blank answers. Values that
// cannot be converted are kept as submitted so validation reports them.
func Coerce(form model.Form, values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for _, field := range Visible(form) {
		raw, ok := values[field.ID]
		if !ok || (IsEmpty(field, raw) && field.Type != model.FieldTypeToggle) {
			continue
		}
		if value, keep := coerceValue(field, raw); keep {
			out[field.ID] = value
		}
	}
	return out
}

func coerceValue(field model.Field, raw any) (any, bool) {
	switch field.Type {
	case model.FieldTypeCheckbox, model.FieldTypeMultiSelect:
		list := stringList(raw)
		if len(list) == 0 {
			return nil, false
		}
		items := make([]any, len(list))
		for i, item := range list {
			items[i] = item
		}
		return items, true
	case model.FieldTypeNumber, model.FieldTypeRange, model.FieldTypeRating:
		return number(raw), true
	case model.FieldTypeToggle:
		switch v := raw.(type) {
		case bool:
			return v, true
		case nil:
			return false, true
		case string:
			return truthy(v), true
		default:
			return v, true
		}
	default:
		switch v := raw.(type) {
		case string:
			return strings.TrimSpace(v), true
		case []string:
			return strings.Join(v, ", "), true
		default:
			return fmt.Sprint(v), true
		}
	}
}

func number(raw any) any {
	switch v := raw.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return v
		}
		return parsed
	default:
		return raw
	}
}

func stringList(raw any) []string {
	var out []string
	push := func(value string) {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	switch v := raw.(type) {
	case []string:
		for _, item := range v {
			push(item)
		}
	case []any:
		for _, item := range v {
			push(fmt.Sprint(item))
		}
	case string:
		push(v)
	case nil:
	default:
		push(fmt.Sprint(v))
	}
	return out
}

// Validate runs the required check and the schema check over values and
// returns a *Error listing every problem, or nil.
func Validate(form model.Form, values map[string]any) error {
	result := &Error{}
	for id, messages := range ValidateRequired(form, values) {
		result.add(id, messages...)
	}

	fields := make(map[string]model.Field, len(form.Fields))
	for _, field := range form.Fields {
		fields[field.ID] = field
	}
	err := Schema(form).VisitJSON(Coerce(form, values), openapi3.MultiErrors(), openapi3.VisitAsRequest())
	collectSchemaErrors(err, fields, result)
	return result.orNil()
}

func collectSchemaErrors(err error, fields map[string]model.Field, out *Error) {
	switch e := err.(type) {
	case nil:
	case openapi3.MultiError:
		for _, inner := range e {
			collectSchemaErrors(inner, fields, out)
		}
	case *openapi3.SchemaError:
		if e.SchemaField == "required" {
			return
		}
		path := e.JSONPointer()
		if len(path) == 0 {
			out.add(FormLevelKey, e.Reason)
			return
		}
		field, ok := fields[path[0]]
		if !ok {
			out.add(FormLevelKey, e.Reason)
			return
		}
		out.add(field.ID, schemaMessage(field, e))
	default:
		out.add(FormLevelKey, err.Error())
	}
}

func schemaMessage(field model.Field, err *openapi3.SchemaError) string {
	name := fieldName(field)
	switch err.SchemaField {
	case "enum":
		return fmt.Sprintf("%s must be one of the available options", name)
	case "minimum":
		if err.Schema != nil && err.Schema.Min != nil {
			return fmt.Sprintf("%s must be at least %s", name, formatNumber(*err.Schema.Min))
		}
	case "maximum":
		if err.Schema != nil && err.Schema.Max != nil {
			return fmt.Sprintf("%s must be at most %s", name, formatNumber(*err.Schema.Max))
		}
	case "type":
		return fmt.Sprintf("%s %s", name, typeMessage(field))
	case "pattern", "format":
		return fmt.Sprintf("%s %s", name, formatMessage(field))
	}
	return fmt.Sprintf("%s: %s", name, err.Reason)
}

func typeMessage(field model.Field) string {
	switch field.Type {
	case model.FieldTypeNumber, model.FieldTypeRange:
		return "must be a number"
	case model.FieldTypeRating:
		return "must be a whole number"
	case model.FieldTypeToggle:
		return "must be on or off"
	case model.FieldTypeCheckbox, model.FieldTypeMultiSelect:
		return "must be a list of options"
	default:
		return "must be text"
	}
}

func formatMessage(field model.Field) string {
	switch field.Type {
	case model.FieldTypeEmail:
		return "must be a valid email address"
	case model.FieldTypeURL:
		return "must be a valid URL"
	case model.FieldTypePhone:
		return "must be a valid phone number"
	case model.FieldTypeDate:
		return "must be a date (YYYY-MM-DD)"
	case model.FieldTypeTime:
		return "must be a time (HH:MM)"
	case model.FieldTypeDateTime:
		return "must be a date and time (YYYY-MM-DDTHH:MM)"
	default:
		return "has an invalid format"
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ValidateField checks a single answer with the same rules Validate applies
// to a whole payload and returns the messages for that field.
func ValidateField(field model.Field, value any) []string {
	field.RowID = nil
	err := Validate(model.Form{Fields: []model.Field{field}}, map[string]any{field.ID: value})
	var subErr *Error
	if errors.As(err, &subErr) {
		return subErr.Fields[field.ID]
	}
	return nil
}

package model

import (
	"time"

	"github.com/goliatone/go-formbuilder/internal/labels"
)

// FieldType is the closed enumeration of input kinds a form can hold. It
// serialises as its string value so exported JSON stays readable.
type FieldType string

const (
	FieldTypeText        FieldType = "text"
	FieldTypeEmail       FieldType = "email"
	FieldTypeNumber      FieldType = "number"
	FieldTypeTextarea    FieldType = "textarea"
	FieldTypeSelect      FieldType = "select"
	FieldTypeMultiSelect FieldType = "multiselect"
	FieldTypeRadio       FieldType = "radio"
	FieldTypeCheckbox    FieldType = "checkbox"
	FieldTypePhone       FieldType = "phone"
	FieldTypeURL         FieldType = "url"
	FieldTypePassword    FieldType = "password"
	FieldTypeDate        FieldType = "date"
	FieldTypeTime        FieldType = "time"
	FieldTypeDateTime    FieldType = "datetime"
	FieldTypeRating      FieldType = "rating"
	FieldTypeFile        FieldType = "file"
	FieldTypeAddress     FieldType = "address"
	FieldTypeRange       FieldType = "range"
	FieldTypeToggle      FieldType = "toggle"
)

type fieldTypeInfo struct {
	label    string
	choice   bool
	multi    bool
	advanced bool
}

// fieldTypes is the single source of truth for type traits. Adding a field
// type means adding one entry here plus one widget in pkg/widgets.
var fieldTypes = map[FieldType]fieldTypeInfo{
	FieldTypeText:        {label: "Text Input"},
	FieldTypeEmail:       {label: "Email"},
	FieldTypeNumber:      {label: "Number"},
	FieldTypeTextarea:    {label: "Text Area"},
	FieldTypeSelect:      {label: "Dropdown", choice: true},
	FieldTypeMultiSelect: {label: "Multi Select", choice: true, multi: true, advanced: true},
	FieldTypeRadio:       {label: "Radio Buttons", choice: true},
	FieldTypeCheckbox:    {label: "Checkboxes", choice: true, multi: true},
	FieldTypePhone:       {label: "Phone"},
	FieldTypeURL:         {label: "Website"},
	FieldTypePassword:    {label: "Password"},
	FieldTypeDate:        {label: "Date", advanced: true},
	FieldTypeTime:        {label: "Time", advanced: true},
	FieldTypeDateTime:    {label: "Date & Time", advanced: true},
	FieldTypeRating:      {label: "Rating", advanced: true},
	FieldTypeFile:        {label: "File Upload", advanced: true},
	FieldTypeAddress:     {label: "Address", advanced: true},
	FieldTypeRange:       {label: "Range Slider", advanced: true},
	FieldTypeToggle:      {label: "Toggle"},
}

var fieldTypeOrder = []FieldType{
	FieldTypeText,
	FieldTypeEmail,
	FieldTypeNumber,
	FieldTypeTextarea,
	FieldTypeSelect,
	FieldTypeMultiSelect,
	FieldTypeRadio,
	FieldTypeCheckbox,
	FieldTypePhone,
	FieldTypeURL,
	FieldTypePassword,
	FieldTypeDate,
	FieldTypeTime,
	FieldTypeDateTime,
	FieldTypeRating,
	FieldTypeFile,
	FieldTypeAddress,
	FieldTypeRange,
	FieldTypeToggle,
}

// AllFieldTypes returns the palette in display order.
func AllFieldTypes() []FieldType {
	return append([]FieldType(nil), fieldTypeOrder...)
}

// Known reports whether t belongs to the enumeration.
func (t FieldType) Known() bool {
	_, ok := fieldTypes[t]
	return ok
}

// IsChoice reports whether the type carries an options list.
func (t FieldType) IsChoice() bool {
	return fieldTypes[t].choice
}

// IsMultiValue reports whether submissions for the type are arrays.
func (t FieldType) IsMultiValue() bool {
	return fieldTypes[t].multi
}

// IsAdvanced reports whether the type counts towards the "advanced" bucket of
// the export complexity classification.
func (t FieldType) IsAdvanced() bool {
	return fieldTypes[t].advanced
}

// DisplayName returns the palette label for the type. Unknown types are
// humanised from their raw value.
func (t FieldType) DisplayName() string {
	if info, ok := fieldTypes[t]; ok {
		return info.label
	}
	return labels.Humanize(string(t))
}

// Field is a single form input. RowID is a weak reference: rows never hold
// their fields, fields point at rows. A nil RowID means the field is not
// placed on the canvas.
type Field struct {
	ID          string    `json:"id"`
	Type        FieldType `json:"type"`
	Label       string    `json:"label"`
	Placeholder string    `json:"placeholder,omitempty"`
	Required    bool      `json:"required"`
	Options     []string  `json:"options,omitempty"`
	RowID       *string   `json:"rowId,omitempty"`
	ColumnIndex int       `json:"columnIndex"`
	Width       int       `json:"width"`
}

// Placed reports whether the field references a row.
func (f Field) Placed() bool {
	return f.RowID != nil && *f.RowID != ""
}

// RowRef returns the referenced row id or "" when unattached.
func (f Field) RowRef() string {
	if f.RowID == nil {
		return ""
	}
	return *f.RowID
}

// Clone returns a deep copy of the field.
func (f Field) Clone() Field {
	out := f
	if f.Options != nil {
		out.Options = append([]string(nil), f.Options...)
	}
	if f.RowID != nil {
		id := *f.RowID
		out.RowID = &id
	}
	return out
}

// Row is a horizontal layout band with 1-4 column slots. Rows display in
// ascending Order; values need not be contiguous.
type Row struct {
	ID      string `json:"id"`
	Order   int    `json:"order"`
	Columns int    `json:"columns"`
}

// Form is the aggregate root handled by the builder.
type Form struct {
	ID          string     `json:"id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	ThemeColor  string     `json:"themeColor"`
	Fields      []Field    `json:"fields"`
	Rows        []Row      `json:"rows"`
	IsPublished bool       `json:"isPublished"`
	ShareID     string     `json:"shareId,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// Clone returns a deep copy of the form.
func (f Form) Clone() Form {
	out := f
	out.Fields = CloneFields(f.Fields)
	out.Rows = CloneRows(f.Rows)
	return out
}

// Field returns the field with the supplied id.
func (f *Form) Field(id string) (*Field, bool) {
	if f == nil {
		return nil, false
	}
	for i := range f.Fields {
		if f.Fields[i].ID == id {
			return &f.Fields[i], true
		}
	}
	return nil, false
}

// Row returns the row with the supplied id.
func (f *Form) Row(id string) (*Row, bool) {
	if f == nil {
		return nil, false
	}
	for i := range f.Rows {
		if f.Rows[i].ID == id {
			return &f.Rows[i], true
		}
	}
	return nil, false
}

// FormResponse is one public submission. Responses are keyed by field id;
// values are strings for scalar types and []string for multi-value types.
// Responses are immutable once constructed through NewFormResponse.
type FormResponse struct {
	ID          string         `json:"id,omitempty"`
	FormID      string         `json:"formId"`
	Responses   map[string]any `json:"responses"`
	SubmittedAt time.Time      `json:"submittedAt"`
	IPAddress   string         `json:"ipAddress,omitempty"`
	UserAgent   string         `json:"userAgent,omitempty"`
}

// CloneFields deep copies a field slice, preserving nil.
func CloneFields(fields []Field) []Field {
	if fields == nil {
		return nil
	}
	out := make([]Field, len(fields))
	for i, field := range fields {
		out[i] = field.Clone()
	}
	return out
}

// CloneRows copies a row slice, preserving nil.
func CloneRows(rows []Row) []Row {
	if rows == nil {
		return nil
	}
	return append([]Row(nil), rows...)
}

// StringPtr returns a pointer to a copy of s.
func StringPtr(s string) *string {
	return &s
}

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// MaxColumns is the upper bound for Row.Columns.
	MaxColumns = 4
	// MaxWidth is the upper bound for Field.Width.
	MaxWidth = 4
	// DefaultThemeColor is applied when a form carries no theme colour.
	DefaultThemeColor = "#3b82f6"
	// DefaultOptionCount is the number of placeholder options seeded on
	// choice fields.
	DefaultOptionCount = 3
)

// IDGenerator produces opaque unique identifiers.
type IDGenerator func() string

// Factory constructs rows, fields and forms with fresh identifiers.
type Factory struct {
	ids IDGenerator
	now func() time.Time
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithIDGenerator overrides uuid-based identifiers.
func WithIDGenerator(gen IDGenerator) FactoryOption {
	return func(f *Factory) {
		if gen != nil {
			f.ids = gen
		}
	}
}

// WithClock overrides time.Now for response timestamps.
func WithClock(now func() time.Time) FactoryOption {
	return func(f *Factory) {
		if now != nil {
			f.now = now
		}
	}
}

// NewFactory returns a Factory using uuid v4 identifiers by default.
func NewFactory(options ...FactoryOption) *Factory {
	f := &Factory{
		ids: uuid.NewString,
		now: time.Now,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(f)
	}
	return f
}

var defaultFactory = NewFactory()

// NewID returns a fresh identifier.
func (f *Factory) NewID() string {
	return f.ids()
}

// NewRow creates a row at the supplied order. Columns are clamped to
// [1, MaxColumns].
func (f *Factory) NewRow(order, columns int) Row {
	return Row{
		ID:      f.ids(),
		Order:   order,
		Columns: ClampColumns(columns),
	}
}

// NewField creates a field of the given type placed at (rowID, columnIndex).
// An empty rowID yields an unattached field. Choice types are seeded with
// placeholder options; other types carry none.
func (f *Factory) NewField(fieldType FieldType, rowID string, columnIndex, width int) Field {
	field := Field{
		ID:          f.ids(),
		Type:        fieldType,
		Label:       fieldType.DisplayName(),
		ColumnIndex: max(columnIndex, 0),
		Width:       ClampWidth(width),
	}
	if strings.TrimSpace(rowID) != "" {
		field.RowID = StringPtr(rowID)
	}
	if fieldType.IsChoice() {
		field.Options = DefaultOptions()
	}
	return field
}

// NewForm creates a draft form holding one single-column row.
func (f *Factory) NewForm(title string) Form {
	return Form{
		Title:      title,
		ThemeColor: DefaultThemeColor,
		Fields:     []Field{},
		Rows:       []Row{f.NewRow(0, 1)},
	}
}

// NewFormResponse captures a submission. The responses map is copied so later
// caller mutations do not leak into the record.
func (f *Factory) NewFormResponse(formID string, responses map[string]any, ip, userAgent string) FormResponse {
	copied := make(map[string]any, len(responses))
	for key, value := range responses {
		if values, ok := value.([]string); ok {
			value = append([]string(nil), values...)
		}
		copied[key] = value
	}
	return FormResponse{
		ID:          f.ids(),
		FormID:      formID,
		Responses:   copied,
		SubmittedAt: f.now().UTC(),
		IPAddress:   strings.TrimSpace(ip),
		UserAgent:   strings.TrimSpace(userAgent),
	}
}

// NewRow creates a row using uuid identifiers.
func NewRow(order, columns int) Row {
	return defaultFactory.NewRow(order, columns)
}

// NewField creates a field using uuid identifiers.
func NewField(fieldType FieldType, rowID string, columnIndex, width int) Field {
	return defaultFactory.NewField(fieldType, rowID, columnIndex, width)
}

// NewForm creates a draft form using uuid identifiers.
func NewForm(title string) Form {
	return defaultFactory.NewForm(title)
}

// NewFormResponse captures a submission using uuid identifiers.
func NewFormResponse(formID string, responses map[string]any, ip, userAgent string) FormResponse {
	return defaultFactory.NewFormResponse(formID, responses, ip, userAgent)
}

// DefaultOptions returns the placeholder options seeded on choice fields.
func DefaultOptions() []string {
	return []string{"Option 1", "Option 2", "Option 3"}
}

// ClampColumns bounds a row column count to [1, MaxColumns].
func ClampColumns(columns int) int {
	return min(max(columns, 1), MaxColumns)
}

// ClampWidth bounds a field width to [1, MaxWidth].
func ClampWidth(width int) int {
	return min(max(width, 1), MaxWidth)
}

// ClampColumnIndex bounds index to the slots of a row with the given columns.
func ClampColumnIndex(index, columns int) int {
	return min(max(index, 0), ClampColumns(columns)-1)
}

// SlotWidthPercent is the share of the row each column slot occupies.
func SlotWidthPercent(columns int) int {
	return 100 / ClampColumns(columns)
}

// WidthPercent is the rendered width of a field spanning Width slots inside a
// row, capped at 100.
func WidthPercent(field Field, row Row) int {
	return min(ClampWidth(field.Width)*SlotWidthPercent(row.Columns), 100)
}

// NormalizeThemeColor returns color when it is a #RGB or #RRGGBB hex value
// and DefaultThemeColor otherwise.
func NormalizeThemeColor(color string) string {
	color = strings.TrimSpace(color)
	if !isHexColor(color) {
		return DefaultThemeColor
	}
	return color
}

func isHexColor(color string) bool {
	if len(color) != 4 && len(color) != 7 {
		return false
	}
	if color[0] != '#' {
		return false
	}
	for _, r := range color[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

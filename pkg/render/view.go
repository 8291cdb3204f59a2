package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/layout"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/widgets"
)

// View is the render-ready projection of a form shared by every adapter.
// It is built from layout.Group, so canvas, preview and public output list
// the same fields in the same slots.
type View struct {
	FormID      string `json:"formId"`
	ShareID     string `json:"shareId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ThemeColor  string `json:"themeColor"`
	// Flat is set when the form has no rows; Fields then holds every field.
	Flat     bool        `json:"flat"`
	Rows     []RowView   `json:"rows"`
	Fields   []FieldView `json:"fields"`
	Unplaced []FieldView `json:"unplaced"`

	FormErrors   []string      `json:"formErrors"`
	Hidden       []HiddenField `json:"hidden"`
	Action       string        `json:"action"`
	SubmitLabel  string        `json:"submitLabel"`
	ThemeStyle   string        `json:"themeStyle"`
	ThemeName    string        `json:"themeName"`
	ThemeVariant string        `json:"themeVariant"`
	// ThemeStylesheet is the theme's stylesheet asset URL, if it ships one.
	ThemeStylesheet string `json:"themeStylesheet"`
}

// RowView is one row with all of its column slots.
type RowView struct {
	ID          string       `json:"id"`
	Order       int          `json:"order"`
	ColumnCount int          `json:"columnCount"`
	Slots       []ColumnView `json:"slots"`
	First       bool         `json:"first"`
	Last        bool         `json:"last"`
}

// ColumnView is one column slot.
type ColumnView struct {
	Index        int         `json:"index"`
	WidthPercent int         `json:"widthPercent"`
	Fields       []FieldView `json:"fields"`
}

// Empty reports whether no field sits in the slot.
func (c ColumnView) Empty() bool {
	return len(c.Fields) == 0
}

// FieldView carries everything a template needs to draw one field.
type FieldView struct {
	ID           string          `json:"id"`
	Type         model.FieldType `json:"type"`
	TypeName     string          `json:"typeName"`
	Label        string          `json:"label"`
	Placeholder  string          `json:"placeholder"`
	Required     bool            `json:"required"`
	Options      []OptionView    `json:"options"`
	Widget       widgets.Widget  `json:"widget"`
	RowID        string          `json:"rowId"`
	ColumnIndex  int             `json:"columnIndex"`
	Width        int             `json:"width"`
	WidthPercent int             `json:"widthPercent"`
	Value        string          `json:"value"`
	Values       []string        `json:"values"`
	Errors       []string        `json:"errors"`
	// Scale lists the selectable points of a rating widget.
	Scale []string `json:"scale,omitempty"`
}

// OptionView is one choice of a choice field.
type OptionView struct {
	Value    string `json:"value"`
	Index    int    `json:"index"`
	Selected bool   `json:"selected"`
}

// HasErrors reports whether validation messages are attached.
func (f FieldView) HasErrors() bool {
	return len(f.Errors) > 0
}

// BuildView groups the form and resolves widgets, values and errors. A nil
// table uses widgets.Default().
func BuildView(form model.Form, table *widgets.Table, options RenderOptions) View {
	if table == nil {
		table = widgets.Default()
	}
	cfg := options.ThemeOrDefault(form.ThemeColor)

	view := View{
		FormID:       form.ID,
		ShareID:      form.ShareID,
		Title:        form.Title,
		Description:  form.Description,
		ThemeColor:   model.NormalizeThemeColor(form.ThemeColor),
		FormErrors:   normalizeMessages(options.FormErrors),
		Hidden:       SortedHiddenFields(options.HiddenFields),
		Action:       options.Action,
		SubmitLabel:  options.SubmitLabel,
		ThemeStyle:   CSSVarsStyle(cfg.CSSVars),
		ThemeName:    cfg.Theme,
		ThemeVariant: cfg.Variant,
	}
	if cfg.AssetURL != nil {
		view.ThemeStylesheet = cfg.AssetURL(StylesheetKey)
	}
	if view.SubmitLabel == "" {
		view.SubmitLabel = "Submit"
	}

	grid := layout.Group(form.Fields, form.Rows)
	build := func(field model.Field, columns int) FieldView {
		return buildField(field, columns, table, options)
	}

	if grid.IsFlat() {
		view.Flat = true
		view.Fields = make([]FieldView, 0, len(grid.Flat))
		for _, field := range grid.Flat {
			view.Fields = append(view.Fields, build(field, 1))
		}
		return view
	}

	view.Rows = make([]RowView, 0, len(grid.Rows))
	for i, group := range grid.Rows {
		count := len(group.Columns)
		row := RowView{
			ID:          group.Row.ID,
			Order:       group.Row.Order,
			ColumnCount: count,
			Slots:       make([]ColumnView, 0, count),
			First:       i == 0,
			Last:        i == len(grid.Rows)-1,
		}
		for _, column := range group.Columns {
			slot := ColumnView{
				Index:        column.Index,
				WidthPercent: model.SlotWidthPercent(count),
				Fields:       make([]FieldView, 0, len(column.Fields)),
			}
			for _, field := range column.Fields {
				slot.Fields = append(slot.Fields, build(field, count))
			}
			row.Slots = append(row.Slots, slot)
		}
		view.Rows = append(view.Rows, row)
	}
	for _, field := range grid.Unplaced {
		view.Unplaced = append(view.Unplaced, build(field, 1))
	}
	return view
}

// FieldIDs projects the view the same way layout.Grid.FieldIDs does.
func (v View) FieldIDs() [][][]string {
	if v.Flat {
		ids := make([]string, 0, len(v.Fields))
		for _, field := range v.Fields {
			ids = append(ids, field.ID)
		}
		return [][][]string{{ids}}
	}
	out := make([][][]string, len(v.Rows))
	for i, row := range v.Rows {
		out[i] = make([][]string, len(row.Slots))
		for j, slot := range row.Slots {
			ids := make([]string, 0, len(slot.Fields))
			for _, field := range slot.Fields {
				ids = append(ids, field.ID)
			}
			out[i][j] = ids
		}
	}
	return out
}

// AllFields returns the rendered fields in display order.
func (v View) AllFields() []FieldView {
	if v.Flat {
		return append([]FieldView(nil), v.Fields...)
	}
	var out []FieldView
	for _, row := range v.Rows {
		for _, slot := range row.Slots {
			out = append(out, slot.Fields...)
		}
	}
	return out
}

func buildField(field model.Field, columns int, table *widgets.Table, options RenderOptions) FieldView {
	view := FieldView{
		ID:           field.ID,
		Type:         field.Type,
		TypeName:     field.Type.DisplayName(),
		Label:        field.Label,
		Placeholder:  field.Placeholder,
		Required:     field.Required,
		Widget:       table.Resolve(field),
		RowID:        field.RowRef(),
		ColumnIndex:  field.ColumnIndex,
		Width:        model.ClampWidth(field.Width),
		WidthPercent: model.WidthPercent(field, model.Row{Columns: columns}),
		Errors:       normalizeMessages(options.Errors[field.ID]),
	}

	if raw, ok := options.Values[field.ID]; ok {
		if view.Widget.Multiple {
			view.Values = valueList(raw)
		} else {
			view.Value = valueString(raw)
		}
	}

	if view.Widget.Component == widgets.ComponentRating {
		points, err := strconv.Atoi(view.Widget.Attr("max"))
		if err != nil || points < 1 {
			points = 5
		}
		for i := 1; i <= points; i++ {
			view.Scale = append(view.Scale, strconv.Itoa(i))
		}
	}

	selected := make(map[string]struct{}, len(view.Values))
	for _, value := range view.Values {
		selected[value] = struct{}{}
	}
	if view.Widget.Choices {
		for i, option := range field.Options {
			_, isSelected := selected[option]
			if !view.Widget.Multiple {
				isSelected = option == view.Value
			}
			view.Options = append(view.Options, OptionView{Value: option, Index: i, Selected: isSelected})
		}
	}
	return view
}

func valueString(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return strings.Join(v, ", ")
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func valueList(raw any) []string {
	switch v := raw.(type) {
	case nil:
		return nil
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, valueString(item))
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	default:
		return []string{fmt.Sprint(v)}
	}
}

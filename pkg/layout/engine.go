package layout

import (
	"slices"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// ChangeKind labels a mutation reported to observers.
type ChangeKind string

const (
	ChangeFieldAdded   ChangeKind = "field.added"
	ChangeFieldUpdated ChangeKind = "field.updated"
	ChangeFieldMoved   ChangeKind = "field.moved"
	ChangeFieldRemoved ChangeKind = "field.removed"
	ChangeRowAdded     ChangeKind = "row.added"
	ChangeRowUpdated   ChangeKind = "row.updated"
	ChangeRowRemoved   ChangeKind = "row.removed"
	ChangeRowMoved     ChangeKind = "row.moved"
)

// Change describes an applied mutation.
type Change struct {
	Kind    ChangeKind
	FieldID string
	RowID   string
	// Affected counts cascaded or clamped fields for row operations.
	Affected int
}

// Direction selects the neighbour MoveRow swaps with.
type Direction int

const (
	Up Direction = iota
	Down
)

// Option configures an Engine.
type Option func(*Engine)

// WithFactory overrides the factory used to build rows and fields.
func WithFactory(factory *model.Factory) Option {
	return func(e *Engine) {
		if factory != nil {
			e.factory = factory
		}
	}
}

// WithObserver registers a callback invoked after every applied mutation.
func WithObserver(fn func(Change)) Option {
	return func(e *Engine) {
		if fn != nil {
			e.observers = append(e.observers, fn)
		}
	}
}

// Engine applies builder mutations to a form it does not own exclusively but
// must be the only writer of. It is not safe for concurrent use.
type Engine struct {
	form      *model.Form
	factory   *model.Factory
	observers []func(Change)
}

// NewEngine binds an engine to form. A nil form is replaced by an empty
// draft.
func NewEngine(form *model.Form, options ...Option) *Engine {
	e := &Engine{form: form, factory: model.NewFactory()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	if e.form == nil {
		draft := e.factory.NewForm("")
		e.form = &draft
	}
	return e
}

// Form returns the form being edited.
func (e *Engine) Form() *model.Form {
	return e.form
}

// AddField appends a new field of the given type. An empty rowID targets the
// first row's first column; when the form has no rows a default row is
// created first. Unknown rows fall back the same way.
func (e *Engine) AddField(fieldType model.FieldType, rowID string, columnIndex int) model.Field {
	row, ok := e.form.Row(rowID)
	if !ok {
		row = e.firstRow()
		columnIndex = 0
	}
	field := e.factory.NewField(fieldType, row.ID, model.ClampColumnIndex(columnIndex, row.Columns), 1)
	e.form.Fields = append(e.form.Fields, field)
	e.emit(Change{Kind: ChangeFieldAdded, FieldID: field.ID, RowID: row.ID})
	return field.Clone()
}

// FieldPatch carries a partial field update. Nil members are left unchanged.
// Setting RowID or ColumnIndex moves the field; siblings are not reflowed.
type FieldPatch struct {
	Type        *model.FieldType
	Label       *string
	Placeholder *string
	Required    *bool
	Options     []string
	RowID       *string
	ColumnIndex *int
	Width       *int
}

// UpdateField merges patch into the field. It reports false when the field
// does not exist or the patch targets a row that does not exist.
func (e *Engine) UpdateField(fieldID string, patch FieldPatch) bool {
	field, ok := e.form.Field(fieldID)
	if !ok {
		return false
	}

	moved := patch.RowID != nil || patch.ColumnIndex != nil
	targetRow := field.RowRef()
	if patch.RowID != nil {
		targetRow = *patch.RowID
	}
	var row *model.Row
	if moved && targetRow != "" {
		if row, ok = e.form.Row(targetRow); !ok {
			return false
		}
	}

	if patch.Type != nil && *patch.Type != field.Type {
		field.Type = *patch.Type
		switch {
		case !field.Type.IsChoice():
			field.Options = nil
		case len(field.Options) == 0:
			field.Options = model.DefaultOptions()
		}
	}
	if patch.Label != nil {
		field.Label = *patch.Label
	}
	if patch.Placeholder != nil {
		field.Placeholder = *patch.Placeholder
	}
	if patch.Required != nil {
		field.Required = *patch.Required
	}
	if patch.Options != nil && field.Type.IsChoice() {
		field.Options = append([]string(nil), patch.Options...)
	}
	if patch.Width != nil {
		field.Width = model.ClampWidth(*patch.Width)
	}

	kind := ChangeFieldUpdated
	if moved {
		kind = ChangeFieldMoved
		index := field.ColumnIndex
		if patch.ColumnIndex != nil {
			index = *patch.ColumnIndex
		}
		if row != nil {
			field.RowID = model.StringPtr(row.ID)
			field.ColumnIndex = model.ClampColumnIndex(index, row.Columns)
		} else {
			field.RowID = nil
			field.ColumnIndex = max(index, 0)
		}
	}
	e.emit(Change{Kind: kind, FieldID: field.ID, RowID: field.RowRef()})
	return true
}

// MoveField relocates a field to (rowID, columnIndex), appending it to the
// end of the target column.
func (e *Engine) MoveField(fieldID, rowID string, columnIndex int) bool {
	index := slices.IndexFunc(e.form.Fields, func(f model.Field) bool { return f.ID == fieldID })
	if index < 0 {
		return false
	}
	if !e.UpdateField(fieldID, FieldPatch{RowID: &rowID, ColumnIndex: &columnIndex}) {
		return false
	}
	// Stack order within a column is slice order, so re-append the field to
	// land below its new siblings.
	field := e.form.Fields[index]
	e.form.Fields = append(slices.Delete(e.form.Fields, index, index+1), field)
	return true
}

// MoveFieldWithinColumn shifts a field up (delta < 0) or down (delta > 0)
// among the fields sharing its (row, column) slot. Ordering is carried by the
// fields slice, so the field swaps slice positions with its neighbour.
func (e *Engine) MoveFieldWithinColumn(fieldID string, delta int) bool {
	index := slices.IndexFunc(e.form.Fields, func(f model.Field) bool { return f.ID == fieldID })
	if index < 0 || delta == 0 || !e.form.Fields[index].Placed() {
		return false
	}
	current := e.form.Fields[index]
	var siblings []int
	for i, f := range e.form.Fields {
		if f.RowRef() == current.RowRef() && f.ColumnIndex == current.ColumnIndex {
			siblings = append(siblings, i)
		}
	}
	pos := slices.Index(siblings, index)
	target := pos + delta
	if target < 0 || target >= len(siblings) {
		return false
	}
	other := siblings[target]
	e.form.Fields[index], e.form.Fields[other] = e.form.Fields[other], e.form.Fields[index]
	e.emit(Change{Kind: ChangeFieldMoved, FieldID: fieldID, RowID: current.RowRef()})
	return true
}

// RemoveField deletes a field. Row structure is untouched.
func (e *Engine) RemoveField(fieldID string) bool {
	before := len(e.form.Fields)
	e.form.Fields = slices.DeleteFunc(e.form.Fields, func(f model.Field) bool { return f.ID == fieldID })
	if len(e.form.Fields) == before {
		return false
	}
	e.emit(Change{Kind: ChangeFieldRemoved, FieldID: fieldID})
	return true
}

// AddRow appends a single-column row after the current last row.
func (e *Engine) AddRow() model.Row {
	return e.AddRowWithColumns(1)
}

// AddRowWithColumns appends a row with the given column count.
func (e *Engine) AddRowWithColumns(columns int) model.Row {
	order := 0
	if len(e.form.Rows) > 0 {
		order = maxOrder(e.form.Rows) + 1
	}
	row := e.factory.NewRow(order, columns)
	e.form.Rows = append(e.form.Rows, row)
	e.emit(Change{Kind: ChangeRowAdded, RowID: row.ID})
	return row
}

// RowPatch carries a partial row update.
type RowPatch struct {
	Columns *int
	Order   *int
}

// UpdateRow merges patch into the row. Reducing Columns clamps every field in
// a removed slot onto the last remaining column.
func (e *Engine) UpdateRow(rowID string, patch RowPatch) bool {
	row, ok := e.form.Row(rowID)
	if !ok {
		return false
	}
	if patch.Order != nil {
		row.Order = *patch.Order
	}
	clamped := 0
	if patch.Columns != nil {
		row.Columns = model.ClampColumns(*patch.Columns)
		for i := range e.form.Fields {
			field := &e.form.Fields[i]
			if field.RowRef() != row.ID || field.ColumnIndex < row.Columns {
				continue
			}
			field.ColumnIndex = row.Columns - 1
			clamped++
		}
	}
	e.emit(Change{Kind: ChangeRowUpdated, RowID: rowID, Affected: clamped})
	return true
}

// RemoveRow deletes the row and every field placed on it.
func (e *Engine) RemoveRow(rowID string) bool {
	before := len(e.form.Rows)
	e.form.Rows = slices.DeleteFunc(e.form.Rows, func(r model.Row) bool { return r.ID == rowID })
	if len(e.form.Rows) == before {
		return false
	}
	fields := len(e.form.Fields)
	e.form.Fields = slices.DeleteFunc(e.form.Fields, func(f model.Field) bool { return f.RowRef() == rowID })
	e.emit(Change{Kind: ChangeRowRemoved, RowID: rowID, Affected: fields - len(e.form.Fields)})
	return true
}

// MoveRow swaps the row's order with its neighbour in display order. Moving
// the first row up or the last row down is a no-op.
func (e *Engine) MoveRow(rowID string, dir Direction) bool {
	sorted := SortedRows(e.form.Rows)
	pos := slices.IndexFunc(sorted, func(r model.Row) bool { return r.ID == rowID })
	if pos < 0 {
		return false
	}
	neighbour := pos - 1
	if dir == Down {
		neighbour = pos + 1
	}
	if neighbour < 0 || neighbour >= len(sorted) {
		return false
	}

	if !strictlyOrdered(sorted) {
		// Ties sort by id, so swapping a shared order can reorder rows other
		// than the pair. Renumber to display positions first.
		for i, r := range sorted {
			row, _ := e.form.Row(r.ID)
			row.Order = i
		}
	}
	current, _ := e.form.Row(rowID)
	other, _ := e.form.Row(sorted[neighbour].ID)
	current.Order, other.Order = other.Order, current.Order
	e.emit(Change{Kind: ChangeRowMoved, RowID: rowID})
	return true
}

func strictlyOrdered(sorted []model.Row) bool {
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Order <= sorted[i-1].Order {
			return false
		}
	}
	return true
}

// firstRow returns the first row in display order, creating a default row
// when the form has none.
func (e *Engine) firstRow() *model.Row {
	if len(e.form.Rows) == 0 {
		e.AddRow()
	}
	first := SortedRows(e.form.Rows)[0]
	row, _ := e.form.Row(first.ID)
	return row
}

func (e *Engine) emit(change Change) {
	for _, fn := range e.observers {
		fn(change)
	}
}

func maxOrder(rows []model.Row) int {
	highest := rows[0].Order
	for _, row := range rows[1:] {
		highest = max(highest, row.Order)
	}
	return highest
}

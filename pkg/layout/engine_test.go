package layout

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

func newTestEngine(t *testing.T, form *model.Form, options ...Option) *Engine {
	t.Helper()
	n := 0
	factory := model.NewFactory(model.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}))
	if form == nil {
		draft := factory.NewForm("Draft")
		form = &draft
	}
	return NewEngine(form, append([]Option{WithFactory(factory)}, options...)...)
}

func assertColumnInvariant(t *testing.T, form *model.Form) {
	t.Helper()
	for _, field := range form.Fields {
		if !field.Placed() {
			continue
		}
		row, ok := form.Row(field.RowRef())
		if !ok {
			t.Fatalf("field %q references missing row %q", field.ID, field.RowRef())
		}
		if field.ColumnIndex < 0 || field.ColumnIndex >= row.Columns {
			t.Fatalf("field %q column %d outside row %q (%d columns)", field.ID, field.ColumnIndex, row.ID, row.Columns)
		}
	}
}

func TestEngine_AddRowDropSelectRemoveRowScenario(t *testing.T) {
	engine := newTestEngine(t, nil)
	form := engine.Form()

	row2 := engine.AddRowWithColumns(2)
	if len(form.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(form.Rows))
	}
	if row2.Order != 1 || row2.Columns != 2 {
		t.Fatalf("unexpected row: %+v", row2)
	}

	drag := NewDragSession()
	drag.StartPalette(model.FieldTypeSelect)
	result := drag.Drop(engine, Target{RowID: row2.ID, ColumnIndex: 1})
	if !result.Applied || result.Kind != PayloadPalette {
		t.Fatalf("expected palette drop to apply, got %+v", result)
	}
	if result.Field.RowRef() != row2.ID || result.Field.ColumnIndex != 1 {
		t.Fatalf("unexpected placement: %+v", result.Field)
	}
	if diff := cmp.Diff([]string{"Option 1", "Option 2", "Option 3"}, result.Field.Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}

	fieldsBefore := len(form.Fields)
	if !engine.RemoveRow(row2.ID) {
		t.Fatalf("expected row removal")
	}
	if len(form.Fields) != fieldsBefore-1 {
		t.Fatalf("expected field count to drop by one, got %d", len(form.Fields))
	}
	if len(form.Rows) != 1 {
		t.Fatalf("expected row count back to 1, got %d", len(form.Rows))
	}
}

func TestEngine_AddFieldDefaultsToFirstRow(t *testing.T) {
	form := &model.Form{Rows: []model.Row{
		{ID: "late", Order: 5, Columns: 2},
		{ID: "early", Order: 1, Columns: 3},
	}}
	engine := newTestEngine(t, form)

	field := engine.AddField(model.FieldTypeText, "", 2)
	if field.RowRef() != "early" || field.ColumnIndex != 0 {
		t.Fatalf("expected first row, first column; got row %q col %d", field.RowRef(), field.ColumnIndex)
	}

	clamped := engine.AddField(model.FieldTypeText, "late", 7)
	if clamped.ColumnIndex != 1 {
		t.Fatalf("expected column clamped to 1, got %d", clamped.ColumnIndex)
	}
	assertColumnInvariant(t, form)
}

func TestEngine_AddFieldCreatesRowWhenEmpty(t *testing.T) {
	form := &model.Form{}
	engine := newTestEngine(t, form)

	field := engine.AddField(model.FieldTypeEmail, "", 0)
	if len(form.Rows) != 1 {
		t.Fatalf("expected a default row, got %d", len(form.Rows))
	}
	if field.RowRef() != form.Rows[0].ID {
		t.Fatalf("field not attached to default row")
	}
}

func TestEngine_UpdateFieldMergesAndMoves(t *testing.T) {
	engine := newTestEngine(t, nil)
	form := engine.Form()
	first := form.Rows[0]
	second := engine.AddRowWithColumns(3)

	a := engine.AddField(model.FieldTypeSelect, first.ID, 0)
	b := engine.AddField(model.FieldTypeText, first.ID, 0)

	label := "Country"
	required := true
	if !engine.UpdateField(a.ID, FieldPatch{Label: &label, Required: &required, Options: []string{"NL", "PT"}}) {
		t.Fatalf("expected update to apply")
	}
	got, _ := form.Field(a.ID)
	if got.Label != "Country" || !got.Required || len(got.Options) != 2 {
		t.Fatalf("patch not merged: %+v", got)
	}

	rowID := second.ID
	column := 2
	if !engine.UpdateField(b.ID, FieldPatch{RowID: &rowID, ColumnIndex: &column}) {
		t.Fatalf("expected move to apply")
	}
	moved, _ := form.Field(b.ID)
	if moved.RowRef() != second.ID || moved.ColumnIndex != 2 {
		t.Fatalf("unexpected placement after move: %+v", moved)
	}
	// Siblings are independently positioned and stay where they were.
	untouched, _ := form.Field(a.ID)
	if untouched.RowRef() != first.ID || untouched.ColumnIndex != 0 {
		t.Fatalf("sibling was reflowed: %+v", untouched)
	}

	missing := "nope"
	if engine.UpdateField(b.ID, FieldPatch{RowID: &missing}) {
		t.Fatalf("expected move to unknown row to be rejected")
	}
	if engine.UpdateField("ghost", FieldPatch{Label: &label}) {
		t.Fatalf("expected unknown field to be rejected")
	}
	assertColumnInvariant(t, form)
}

func TestEngine_UpdateFieldTypeAdjustsOptions(t *testing.T) {
	engine := newTestEngine(t, nil)
	field := engine.AddField(model.FieldTypeRadio, "", 0)

	text := model.FieldTypeText
	engine.UpdateField(field.ID, FieldPatch{Type: &text})
	got, _ := engine.Form().Field(field.ID)
	if got.Options != nil {
		t.Fatalf("expected options dropped for text, got %v", got.Options)
	}

	checkbox := model.FieldTypeCheckbox
	engine.UpdateField(field.ID, FieldPatch{Type: &checkbox})
	got, _ = engine.Form().Field(field.ID)
	if len(got.Options) != model.DefaultOptionCount {
		t.Fatalf("expected default options seeded, got %v", got.Options)
	}

	engine.UpdateField(field.ID, FieldPatch{Options: []string{}})
	got, _ = engine.Form().Field(field.ID)
	if len(got.Options) != 0 {
		t.Fatalf("expected explicit empty options to apply, got %v", got.Options)
	}
}

func TestEngine_SharedSlotStacksInInsertionOrder(t *testing.T) {
	engine := newTestEngine(t, nil)
	row := engine.Form().Rows[0]
	a := engine.AddField(model.FieldTypeText, row.ID, 0)
	b := engine.AddField(model.FieldTypeText, row.ID, 0)
	c := engine.AddField(model.FieldTypeText, row.ID, 0)

	grid := Group(engine.Form().Fields, engine.Form().Rows)
	want := [][][]string{{{a.ID, b.ID, c.ID}}}
	if diff := cmp.Diff(want, grid.FieldIDs()); diff != "" {
		t.Fatalf("grouping mismatch (-want +got):\n%s", diff)
	}

	if !engine.MoveFieldWithinColumn(c.ID, -1) {
		t.Fatalf("expected reorder")
	}
	if engine.MoveFieldWithinColumn(a.ID, -1) {
		t.Fatalf("expected top field not to move up")
	}
	grid = Group(engine.Form().Fields, engine.Form().Rows)
	want = [][][]string{{{a.ID, c.ID, b.ID}}}
	if diff := cmp.Diff(want, grid.FieldIDs()); diff != "" {
		t.Fatalf("grouping mismatch after reorder (-want +got):\n%s", diff)
	}
}

func TestEngine_UpdateRowShrinkClampsFields(t *testing.T) {
	engine := newTestEngine(t, nil)
	row := engine.AddRowWithColumns(4)
	a := engine.AddField(model.FieldTypeText, row.ID, 0)
	b := engine.AddField(model.FieldTypeText, row.ID, 2)
	c := engine.AddField(model.FieldTypeText, row.ID, 3)

	var changes []Change
	engine.observers = append(engine.observers, func(ch Change) { changes = append(changes, ch) })

	columns := 2
	if !engine.UpdateRow(row.ID, RowPatch{Columns: &columns}) {
		t.Fatalf("expected update")
	}
	assertColumnInvariant(t, engine.Form())

	grid := Group(engine.Form().Fields, engine.Form().Rows)
	want := [][][]string{{{}}, {{a.ID}, {b.ID, c.ID}}}
	if diff := cmp.Diff(want, grid.FieldIDs()); diff != "" {
		t.Fatalf("grouping mismatch (-want +got):\n%s", diff)
	}
	if len(changes) != 1 || changes[0].Affected != 2 {
		t.Fatalf("expected one change with 2 clamped fields, got %+v", changes)
	}

	zero := 0
	engine.UpdateRow(row.ID, RowPatch{Columns: &zero})
	got, _ := engine.Form().Row(row.ID)
	if got.Columns != 1 {
		t.Fatalf("expected columns clamped to 1, got %d", got.Columns)
	}
	assertColumnInvariant(t, engine.Form())
}

func TestEngine_RemoveFieldLeavesRows(t *testing.T) {
	engine := newTestEngine(t, nil)
	field := engine.AddField(model.FieldTypeText, "", 0)
	if !engine.RemoveField(field.ID) {
		t.Fatalf("expected removal")
	}
	if engine.RemoveField(field.ID) {
		t.Fatalf("expected second removal to be a no-op")
	}
	if len(engine.Form().Rows) != 1 {
		t.Fatalf("row structure changed")
	}
}

func TestEngine_RemoveRowCascades(t *testing.T) {
	engine := newTestEngine(t, nil)
	keep := engine.Form().Rows[0]
	drop := engine.AddRowWithColumns(2)
	engine.AddField(model.FieldTypeText, keep.ID, 0)
	engine.AddField(model.FieldTypeText, drop.ID, 0)
	engine.AddField(model.FieldTypeText, drop.ID, 1)

	engine.RemoveRow(drop.ID)
	for _, field := range engine.Form().Fields {
		if field.RowRef() == drop.ID {
			t.Fatalf("field %q still references deleted row", field.ID)
		}
	}
	if len(engine.Form().Fields) != 1 {
		t.Fatalf("expected one surviving field, got %d", len(engine.Form().Fields))
	}
	if engine.RemoveRow("ghost") {
		t.Fatalf("expected unknown row removal to be a no-op")
	}
}

func TestEngine_MoveRow(t *testing.T) {
	engine := newTestEngine(t, nil)
	first := engine.Form().Rows[0]
	second := engine.AddRow()
	third := engine.AddRow()

	order := func() []string {
		var ids []string
		for _, row := range SortedRows(engine.Form().Rows) {
			ids = append(ids, row.ID)
		}
		return ids
	}

	if engine.MoveRow(first.ID, Up) {
		t.Fatalf("first row must not move up")
	}
	if engine.MoveRow(third.ID, Down) {
		t.Fatalf("last row must not move down")
	}
	if !engine.MoveRow(third.ID, Up) {
		t.Fatalf("expected move")
	}
	if diff := cmp.Diff([]string{first.ID, third.ID, second.ID}, order()); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if !engine.MoveRow(first.ID, Down) {
		t.Fatalf("expected move")
	}
	if diff := cmp.Diff([]string{third.ID, first.ID, second.ID}, order()); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_MoveRowWithTiedOrders(t *testing.T) {
	form := &model.Form{Rows: []model.Row{
		{ID: "a", Order: 3, Columns: 1},
		{ID: "b", Order: 3, Columns: 1},
	}}
	engine := newTestEngine(t, form)

	if !engine.MoveRow("b", Up) {
		t.Fatalf("expected move")
	}
	sorted := SortedRows(form.Rows)
	if sorted[0].ID != "b" || sorted[1].ID != "a" {
		t.Fatalf("expected b before a, got %+v", sorted)
	}
}

func TestEngine_MoveRowSwapsOnlyNeighbours(t *testing.T) {
	tests := []struct {
		name string
		rows []model.Row
		move string
		dir  Direction
		want []string
	}{
		{
			name: "tie behind the neighbour",
			rows: []model.Row{{ID: "x", Order: 0}, {ID: "b", Order: 1}, {ID: "a", Order: 1}},
			move: "a", dir: Up,
			want: []string{"a", "x", "b"},
		},
		{
			name: "tie ahead of the neighbour",
			rows: []model.Row{{ID: "a", Order: 0}, {ID: "b", Order: 0}, {ID: "c", Order: 1}},
			move: "c", dir: Up,
			want: []string{"a", "c", "b"},
		},
		{
			name: "tie elsewhere",
			rows: []model.Row{{ID: "a", Order: 0}, {ID: "b", Order: 2}, {ID: "c", Order: 5}, {ID: "d", Order: 5}},
			move: "a", dir: Down,
			want: []string{"b", "a", "c", "d"},
		},
		{
			name: "distinct gaps",
			rows: []model.Row{{ID: "a", Order: 0}, {ID: "b", Order: 4}, {ID: "c", Order: 9}},
			move: "b", dir: Down,
			want: []string{"a", "c", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := range tt.rows {
				tt.rows[i].Columns = 1
			}
			form := &model.Form{Rows: tt.rows}
			engine := newTestEngine(t, form)

			if !engine.MoveRow(tt.move, tt.dir) {
				t.Fatalf("expected move")
			}
			var got []string
			for _, row := range SortedRows(form.Rows) {
				got = append(got, row.ID)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

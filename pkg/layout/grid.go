package layout

import (
	"cmp"
	"slices"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Column is one slot of a row together with the fields stacked in it.
type Column struct {
	Index  int           `json:"index"`
	Fields []model.Field `json:"fields"`
}

// RowGroup is a row with every one of its column slots, empty or not.
type RowGroup struct {
	Row     model.Row `json:"row"`
	Columns []Column  `json:"columns"`
}

// Grid is the grouped projection of (fields, rows). When the form has no
// rows the grid is flat: Flat lists every field in slice order and Rows is
// empty. Otherwise Unplaced lists fields whose row reference does not resolve
// or whose column lies outside their row; renderers skip them.
type Grid struct {
	Rows     []RowGroup    `json:"rows,omitempty"`
	Flat     []model.Field `json:"flat,omitempty"`
	Unplaced []model.Field `json:"unplaced,omitempty"`
}

// IsFlat reports whether the grid fell back to the rowless layout.
func (g Grid) IsFlat() bool {
	return len(g.Rows) == 0
}

// FieldIDs projects the grid onto field ids per row and column. A flat grid
// is reported as a single row with a single column.
func (g Grid) FieldIDs() [][][]string {
	if g.IsFlat() {
		return [][][]string{{fieldIDs(g.Flat)}}
	}
	out := make([][][]string, len(g.Rows))
	for i, row := range g.Rows {
		out[i] = make([][]string, len(row.Columns))
		for j, column := range row.Columns {
			out[i][j] = fieldIDs(column.Fields)
		}
	}
	return out
}

// Visible returns the fields a respondent sees, in display order. Unplaced
// fields are excluded.
func (g Grid) Visible() []model.Field {
	if g.IsFlat() {
		return append([]model.Field(nil), g.Flat...)
	}
	var out []model.Field
	for _, row := range g.Rows {
		for _, column := range row.Columns {
			out = append(out, column.Fields...)
		}
	}
	return out
}

// Group sorts rows by order and buckets fields by (row, column), preserving
// slice order inside each bucket. Every column index from 0 to Columns-1 is
// emitted so empty slots remain addressable.
func Group(fields []model.Field, rows []model.Row) Grid {
	if len(rows) == 0 {
		return Grid{Flat: model.CloneFields(fields)}
	}

	sorted := SortedRows(rows)
	columns := make(map[string]int, len(sorted))
	for _, row := range sorted {
		columns[row.ID] = model.ClampColumns(row.Columns)
	}

	buckets := make(map[string]map[int][]model.Field, len(sorted))
	var unplaced []model.Field
	for _, field := range fields {
		rowID := field.RowRef()
		count, ok := columns[rowID]
		if !ok || field.ColumnIndex < 0 || field.ColumnIndex >= count {
			unplaced = append(unplaced, field.Clone())
			continue
		}
		if buckets[rowID] == nil {
			buckets[rowID] = make(map[int][]model.Field)
		}
		buckets[rowID][field.ColumnIndex] = append(buckets[rowID][field.ColumnIndex], field.Clone())
	}

	grid := Grid{Rows: make([]RowGroup, 0, len(sorted)), Unplaced: unplaced}
	for _, row := range sorted {
		count := columns[row.ID]
		group := RowGroup{Row: row, Columns: make([]Column, count)}
		for index := 0; index < count; index++ {
			group.Columns[index] = Column{Index: index, Fields: buckets[row.ID][index]}
		}
		grid.Rows = append(grid.Rows, group)
	}
	return grid
}

// SortedRows returns a copy of rows sorted by ascending order, ties broken by
// id so the result is deterministic.
func SortedRows(rows []model.Row) []model.Row {
	sorted := model.CloneRows(rows)
	slices.SortStableFunc(sorted, func(a, b model.Row) int {
		if c := cmp.Compare(a.Order, b.Order); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return sorted
}

func fieldIDs(fields []model.Field) []string {
	ids := make([]string, 0, len(fields))
	for _, field := range fields {
		ids = append(ids, field.ID)
	}
	return ids
}

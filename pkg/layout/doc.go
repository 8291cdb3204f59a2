// Package layout mutates the fields/rows aggregate of a form in response to
// builder actions and derives the row → column → fields grouping every
// renderer consumes.
//
// Engine operations are synchronous and never fail. Targets that do not exist
// turn the operation into a no-op, and placement is clamped so the column
// invariant (0 <= ColumnIndex < row.Columns for every placed field) holds
// after every call. When a row shrinks, fields in removed slots move to the
// last remaining column.
//
// DragSession models a single drag-and-drop interaction. Drop is the only
// commit point; hover state is transient and a drop with an unknown payload or
// target leaves the form untouched.
package layout

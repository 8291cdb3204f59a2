// Package model defines the form builder data model: the closed FieldType
// enumeration, Field and Row placement records, the Form aggregate and
// immutable FormResponse submissions.
//
// Placement is a two-level hierarchy. Rows are horizontal bands sorted by
// Order, each exposing 1-4 column slots. Fields point at a row through RowID
// and at a slot through ColumnIndex; several fields may share a slot and stack
// in slice (insertion) order. Rows never own fields, so deleting a row is a
// layout concern handled in pkg/layout.
//
// Constructors live on Factory so id generation can be swapped for
// deterministic values in tests. The package performs no I/O.
package model

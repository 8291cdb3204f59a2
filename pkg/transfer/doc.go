// Package transfer converts forms to and from the versioned JSON export
// envelope.
//
// Exports are wrapped as
//
//	{"version": "1.0.0", "exportedAt": "...", "formData": {...}}
//
// where formData carries the title, description, theme colour, fields, rows
// and a metadata block (field count, row count and a complexity bucket).
// Imports accept either the wrapped envelope or a bare formData object. By
// default an import rewrites every row and field id, re-links field rowIds
// through the row id map and detaches fields whose row is unknown. Both
// directions are checked against JSON Schemas embedded in this package.
//
// ValidateFormCompatibility runs the same checks as a dry-run and reports the
// issues without producing a form. The file helpers cover the browser-style
// download and upload flows: a filename derived from the title, and reading
// with lenient MIME sniffing.
package transfer

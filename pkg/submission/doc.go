// Package submission validates public form payloads and turns accepted ones
// into immutable model.FormResponse records.
//
// Only fields visible on the public form take part: fields whose row is
// missing or whose column index falls outside the row are never rendered, so
// they are neither required nor accepted.
package submission

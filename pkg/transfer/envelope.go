package transfer

import (
	"github.com/goliatone/go-formbuilder/pkg/model"
)

// CurrentVersion is the envelope version written by SerializeForm.
const CurrentVersion = "1.0.0"

// Complexity buckets a form for display in import dialogs and listings.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// Envelope is the top-level export document.
type Envelope struct {
	Version    string   `json:"version"`
	ExportedAt string   `json:"exportedAt"`
	FormData   FormData `json:"formData"`
}

// FormData is the form payload inside an envelope. Field order matters: the
// slice order is the in-column display order.
type FormData struct {
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Fields      []model.Field `json:"fields"`
	Rows        []model.Row   `json:"rows"`
	ThemeColor  string        `json:"themeColor"`
	Metadata    Metadata      `json:"metadata"`
}

// Metadata is derived on export and ignored on import.
type Metadata struct {
	FieldCount int        `json:"fieldCount"`
	RowCount   int        `json:"rowCount"`
	Complexity Complexity `json:"complexity"`
}

// Classify derives the complexity bucket.
//
//	simple:   <= 3 fields, <= 2 rows, no advanced field types
//	moderate: <= 10 fields, <= 5 rows, and either no advanced types or no
//	          multi-column rows
//	complex:  everything else
func Classify(fields []model.Field, rows []model.Row) Complexity {
	advanced := false
	for _, field := range fields {
		if field.Type.IsAdvanced() {
			advanced = true
			break
		}
	}
	multiColumn := false
	for _, row := range rows {
		if row.Columns > 1 {
			multiColumn = true
			break
		}
	}

	switch {
	case len(fields) <= 3 && len(rows) <= 2 && !advanced:
		return ComplexitySimple
	case len(fields) <= 10 && len(rows) <= 5 && (!advanced || !multiColumn):
		return ComplexityModerate
	default:
		return ComplexityComplex
	}
}

// MetadataFor computes the metadata block for a field/row set.
func MetadataFor(fields []model.Field, rows []model.Row) Metadata {
	return Metadata{
		FieldCount: len(fields),
		RowCount:   len(rows),
		Complexity: Classify(fields, rows),
	}
}

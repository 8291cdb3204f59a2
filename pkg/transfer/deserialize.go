package transfer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// ImportOptions controls DeserializeForm. The zero value disables every
// behaviour; start from DefaultImportOptions.
type ImportOptions struct {
	// ReplaceIDs mints fresh row and field ids and re-links field rowIds
	// through the old-to-new row map.
	ReplaceIDs bool
	// ValidateStructure checks the raw input against the input schema before
	// any normalisation.
	ValidateStructure bool
	// PreserveTheme keeps the imported theme colour, as written, instead of
	// the default. A missing colour still falls back to the default.
	PreserveTheme bool
}

// DefaultImportOptions enables id replacement, structural validation and
// theme preservation.
func DefaultImportOptions() ImportOptions {
	return ImportOptions{ReplaceIDs: true, ValidateStructure: true, PreserveTheme: true}
}

// ImportedForm is the normalised result of an import. It carries the data a
// builder session swaps in plus bookkeeping about how ids were mapped.
type ImportedForm struct {
	Title       string
	Description string
	ThemeColor  string
	Fields      []model.Field
	Rows        []model.Row

	// Version is the envelope version, empty for bare formData input.
	Version string
	// RowIDs maps every imported row id to the id it carries now.
	RowIDs map[string]string
	// FieldIDs maps every imported field id to the id it carries now.
	FieldIDs map[string]string
	// Detached lists (new) ids of fields whose row reference could not be
	// resolved and were left unattached.
	Detached []string
}

// Form returns a draft form holding the imported content.
func (f ImportedForm) Form() model.Form {
	return model.Form{
		Title:       f.Title,
		Description: f.Description,
		ThemeColor:  f.ThemeColor,
		Fields:      model.CloneFields(f.Fields),
		Rows:        model.CloneRows(f.Rows),
	}
}

type rawFormData struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Fields      []rawField `json:"fields"`
	Rows        []rawRow   `json:"rows"`
	ThemeColor  *string    `json:"themeColor"`
}

type rawField struct {
	ID          *string  `json:"id"`
	Type        string   `json:"type"`
	Label       *string  `json:"label"`
	Placeholder *string  `json:"placeholder"`
	Required    *bool    `json:"required"`
	Options     []string `json:"options"`
	RowID       *string  `json:"rowId"`
	ColumnIndex *int     `json:"columnIndex"`
	Width       *int     `json:"width"`
}

type rawRow struct {
	ID      *string `json:"id"`
	Order   *int    `json:"order"`
	Columns *int    `json:"columns"`
}

type importPayload struct {
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Fields      []model.Field `json:"fields"`
	Rows        []model.Row   `json:"rows"`
	ThemeColor  string        `json:"themeColor"`
}

// Deserializer parses and normalises exported forms.
type Deserializer struct {
	settings
}

// NewDeserializer builds a Deserializer. It only fails when the embedded
// schemas cannot be compiled.
func NewDeserializer(options ...Option) (*Deserializer, error) {
	s, err := newSettings(options)
	if err != nil {
		return nil, err
	}
	return &Deserializer{settings: s}, nil
}

// DeserializeForm imports data produced by SerializeForm, or a bare formData
// object. Failures are reported as *ImportError.
func (d *Deserializer) DeserializeForm(data []byte, opts ImportOptions) (ImportedForm, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return ImportedForm{}, &ImportError{
			Message: "Invalid JSON",
			Issues:  []string{err.Error()},
			Err:     ErrInvalidJSON,
		}
	}

	payload, version, err := unwrap(doc)
	if err != nil {
		return ImportedForm{}, err
	}

	if opts.ValidateStructure && d.validator != nil {
		if issues := d.validator.Validate(SchemaInput, payload); len(issues) > 0 {
			return ImportedForm{}, &ImportError{
				Message: "Invalid form structure",
				Issues:  issues,
				Err:     ErrStructure,
			}
		}
	}

	raw, err := decodeFormData(payload)
	if err != nil {
		return ImportedForm{}, err
	}

	out := d.normalize(raw, opts)
	out.Version = version

	if d.validator != nil {
		issues := ValidateValue(d.validator, SchemaImport, importPayload{
			Title:       out.Title,
			Description: out.Description,
			Fields:      out.Fields,
			Rows:        out.Rows,
			ThemeColor:  out.ThemeColor,
		})
		if len(issues) > 0 {
			return ImportedForm{}, &ImportError{
				Message: "Imported form is invalid",
				Issues:  issues,
				Err:     ErrStructure,
			}
		}
	}
	return out, nil
}

// DeserializeForm uses a default Deserializer.
func DeserializeForm(data []byte, opts ImportOptions) (ImportedForm, error) {
	d, err := NewDeserializer()
	if err != nil {
		return ImportedForm{}, err
	}
	return d.DeserializeForm(data, opts)
}

// unwrap returns the formData object and the envelope version. Bare formData
// is recognised by the absence of a formData key.
func unwrap(doc any) (map[string]any, string, error) {
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, "", &ImportError{
			Message: "Invalid form structure",
			Issues:  []string{"(root): expected a JSON object"},
			Err:     ErrStructure,
		}
	}

	inner, wrapped := obj["formData"]
	if !wrapped {
		return obj, "", nil
	}
	payload, ok := inner.(map[string]any)
	if !ok {
		return nil, "", &ImportError{
			Message: "Invalid form structure",
			Issues:  []string{"formData: expected a JSON object"},
			Err:     ErrStructure,
		}
	}

	version, _ := obj["version"].(string)
	if version != "" && !supportedVersion(version) {
		return nil, "", &ImportError{
			Message: "Unsupported export version",
			Issues:  []string{fmt.Sprintf("version %q is not supported", version)},
			Err:     ErrStructure,
		}
	}
	return payload, version, nil
}

func supportedVersion(version string) bool {
	major, _, _ := strings.Cut(version, ".")
	current, _, _ := strings.Cut(CurrentVersion, ".")
	return major == current
}

func decodeFormData(payload map[string]any) (rawFormData, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return rawFormData{}, &ImportError{Message: "Invalid form structure", Issues: []string{err.Error()}, Err: ErrStructure}
	}
	var raw rawFormData
	if err := json.Unmarshal(encoded, &raw); err != nil {
		return rawFormData{}, &ImportError{Message: "Invalid form structure", Issues: []string{err.Error()}, Err: ErrStructure}
	}
	return raw, nil
}

func (d *Deserializer) normalize(raw rawFormData, opts ImportOptions) ImportedForm {
	out := ImportedForm{
		Title:       d.text(deref(raw.Title)),
		Description: d.text(deref(raw.Description)),
		ThemeColor:  model.DefaultThemeColor,
		Fields:      make([]model.Field, 0, len(raw.Fields)),
		Rows:        make([]model.Row, 0, len(raw.Rows)),
		RowIDs:      make(map[string]string, len(raw.Rows)),
		FieldIDs:    make(map[string]string, len(raw.Fields)),
	}
	if color := deref(raw.ThemeColor); opts.PreserveTheme && color != "" {
		out.ThemeColor = color
	}

	columns := make(map[string]int, len(raw.Rows))
	for i, r := range raw.Rows {
		oldID := deref(r.ID)
		newID := oldID
		_, taken := columns[oldID]
		if opts.ReplaceIDs || oldID == "" || taken {
			newID = d.factory.NewID()
		}
		if oldID != "" {
			if _, mapped := out.RowIDs[oldID]; !mapped {
				out.RowIDs[oldID] = newID
			}
		}

		order := i
		if r.Order != nil {
			order = *r.Order
		}
		cols := 1
		if r.Columns != nil {
			cols = model.ClampColumns(*r.Columns)
		}
		columns[newID] = cols
		out.Rows = append(out.Rows, model.Row{ID: newID, Order: order, Columns: cols})
	}

	usedFieldIDs := make(map[string]struct{}, len(raw.Fields))
	for _, f := range raw.Fields {
		oldID := deref(f.ID)
		newID := oldID
		_, taken := usedFieldIDs[oldID]
		if opts.ReplaceIDs || oldID == "" || taken {
			newID = d.factory.NewID()
		}
		usedFieldIDs[newID] = struct{}{}
		if oldID != "" {
			if _, mapped := out.FieldIDs[oldID]; !mapped {
				out.FieldIDs[oldID] = newID
			}
		}

		fieldType := model.FieldType(strings.TrimSpace(f.Type))
		field := model.Field{
			ID:          newID,
			Type:        fieldType,
			Label:       d.text(deref(f.Label)),
			Placeholder: d.text(deref(f.Placeholder)),
			Width:       1,
		}
		if f.Required != nil {
			field.Required = *f.Required
		}
		if f.Width != nil {
			field.Width = model.ClampWidth(*f.Width)
		}
		if fieldType.IsChoice() {
			field.Options = d.sanitizeAll(f.Options)
			if len(field.Options) == 0 {
				field.Options = model.DefaultOptions()
			}
		}

		index := 0
		if f.ColumnIndex != nil {
			index = max(*f.ColumnIndex, 0)
		}
		field.ColumnIndex = index

		if ref := deref(f.RowID); ref != "" {
			if rowID, ok := out.RowIDs[ref]; ok {
				field.RowID = model.StringPtr(rowID)
				field.ColumnIndex = model.ClampColumnIndex(index, columns[rowID])
			} else {
				out.Detached = append(out.Detached, newID)
			}
		}
		out.Fields = append(out.Fields, field)
	}
	return out
}

func (d *Deserializer) text(value string) string {
	if d.sanitize == nil {
		return value
	}
	return d.sanitize(value)
}

func (d *Deserializer) sanitizeAll(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, value := range values {
		out = append(out, d.text(value))
	}
	return out
}

func deref[T any](ptr *T) T {
	var zero T
	if ptr == nil {
		return zero
	}
	return *ptr
}

package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownFieldType  = errors.New("model: unknown field type")
	ErrFieldIDMissing    = errors.New("model: field id is required")
	ErrRowIDMissing      = errors.New("model: row id is required")
	ErrWidthOutOfRange   = errors.New("model: width must be between 1 and 4")
	ErrColumnsOutOfRange = errors.New("model: columns must be between 1 and 4")
	ErrColumnOutOfRange  = errors.New("model: column index outside row")
	ErrRowNotFound       = errors.New("model: referenced row not found")
	ErrUnexpectedOptions = errors.New("model: options only apply to choice fields")
	ErrDuplicateID       = errors.New("model: duplicate id")
	ErrTitleMissing      = errors.New("model: title is required")
)

// ValidationError collects every invariant violation found for a subject so
// callers can surface the full list instead of the first failure.
type ValidationError struct {
	Subject string
	Issues  []error
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return "model: validation failed"
	}
	messages := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		messages = append(messages, issue.Error())
	}
	if e.Subject == "" {
		return strings.Join(messages, "; ")
	}
	return e.Subject + ": " + strings.Join(messages, "; ")
}

// Unwrap exposes the individual issues to errors.Is/As.
func (e *ValidationError) Unwrap() []error {
	if e == nil {
		return nil
	}
	return e.Issues
}

func (e *ValidationError) add(err error) {
	e.Issues = append(e.Issues, err)
}

func (e *ValidationError) orNil() error {
	if len(e.Issues) == 0 {
		return nil
	}
	return e
}

// ValidateField checks the field against the enumeration and its placement
// against rows. Unattached fields skip placement checks.
func ValidateField(field Field, rows []Row) error {
	verr := &ValidationError{Subject: fmt.Sprintf("field %q", field.ID)}
	if strings.TrimSpace(field.ID) == "" {
		verr.add(ErrFieldIDMissing)
	}
	if !field.Type.Known() {
		verr.add(fmt.Errorf("%w: %q", ErrUnknownFieldType, field.Type))
	}
	if field.Width < 1 || field.Width > MaxWidth {
		verr.add(fmt.Errorf("%w (got %d)", ErrWidthOutOfRange, field.Width))
	}
	if len(field.Options) > 0 && field.Type.Known() && !field.Type.IsChoice() {
		verr.add(ErrUnexpectedOptions)
	}
	if field.Placed() {
		row, ok := findRow(rows, field.RowRef())
		switch {
		case !ok:
			verr.add(fmt.Errorf("%w: %q", ErrRowNotFound, field.RowRef()))
		case field.ColumnIndex < 0 || field.ColumnIndex >= row.Columns:
			verr.add(fmt.Errorf("%w: index %d, row has %d columns", ErrColumnOutOfRange, field.ColumnIndex, row.Columns))
		}
	}
	return verr.orNil()
}

// ValidateRow checks a single row.
func ValidateRow(row Row) error {
	verr := &ValidationError{Subject: fmt.Sprintf("row %q", row.ID)}
	if strings.TrimSpace(row.ID) == "" {
		verr.add(ErrRowIDMissing)
	}
	if row.Columns < 1 || row.Columns > MaxColumns {
		verr.add(fmt.Errorf("%w (got %d)", ErrColumnsOutOfRange, row.Columns))
	}
	return verr.orNil()
}

// ValidateForm checks every row and field plus id uniqueness. When
// requireTitle is set an empty title is reported, matching the save/publish
// precondition.
func ValidateForm(form Form, requireTitle bool) error {
	verr := &ValidationError{Subject: "form"}
	if requireTitle && strings.TrimSpace(form.Title) == "" {
		verr.add(ErrTitleMissing)
	}

	rowIDs := make(map[string]struct{}, len(form.Rows))
	for _, row := range form.Rows {
		if err := ValidateRow(row); err != nil {
			verr.add(err)
		}
		if _, dup := rowIDs[row.ID]; dup && row.ID != "" {
			verr.add(fmt.Errorf("%w: row %q", ErrDuplicateID, row.ID))
		}
		rowIDs[row.ID] = struct{}{}
	}

	fieldIDs := make(map[string]struct{}, len(form.Fields))
	for _, field := range form.Fields {
		if err := ValidateField(field, form.Rows); err != nil {
			verr.add(err)
		}
		if _, dup := fieldIDs[field.ID]; dup && field.ID != "" {
			verr.add(fmt.Errorf("%w: field %q", ErrDuplicateID, field.ID))
		}
		fieldIDs[field.ID] = struct{}{}
	}
	return verr.orNil()
}

func findRow(rows []Row, id string) (Row, bool) {
	for _, row := range rows {
		if row.ID == id {
			return row, true
		}
	}
	return Row{}, false
}

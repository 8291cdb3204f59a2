package layout

import "github.com/goliatone/go-formbuilder/pkg/model"

// PayloadKind identifies what a drag carries.
type PayloadKind string

const (
	PayloadNone PayloadKind = ""
	// PayloadPalette is a new field dragged from the palette.
	PayloadPalette PayloadKind = "palette"
	// PayloadField is an existing field being relocated.
	PayloadField PayloadKind = "field"
)

// Payload is the data attached to a drag. Exactly one of FieldType (palette)
// or FieldID (relocation) is meaningful, selected by Kind.
type Payload struct {
	Kind      PayloadKind
	FieldType model.FieldType
	FieldID   string
}

// Target is a drop location.
type Target struct {
	RowID       string
	ColumnIndex int
}

// DropResult reports what a drop committed.
type DropResult struct {
	Applied bool
	Kind    PayloadKind
	Field   model.Field
}

// DragSession holds the transient state of one drag interaction. It replaces
// ambient "currently dragged" globals: callers own a session and pass it to
// the handlers that need it.
type DragSession struct {
	payload   Payload
	highlight *Target
}

// NewDragSession returns an idle session.
func NewDragSession() *DragSession {
	return &DragSession{}
}

// StartPalette begins dragging a new field of the given type.
func (s *DragSession) StartPalette(fieldType model.FieldType) {
	s.payload = Payload{Kind: PayloadPalette, FieldType: fieldType}
	s.highlight = nil
}

// StartField begins relocating an existing field.
func (s *DragSession) StartField(fieldID string) {
	s.payload = Payload{Kind: PayloadField, FieldID: fieldID}
	s.highlight = nil
}

// Start begins a drag with an arbitrary payload, as decoded from a drop
// event's data transfer.
func (s *DragSession) Start(payload Payload) {
	s.payload = payload
	s.highlight = nil
}

// Active reports whether a drag is in progress.
func (s *DragSession) Active() bool {
	return s.payload.Kind != PayloadNone
}

// Payload returns the current payload.
func (s *DragSession) Payload() Payload {
	return s.payload
}

// InMotion reports whether fieldID is the field being dragged.
func (s *DragSession) InMotion(fieldID string) bool {
	return s.payload.Kind == PayloadField && s.payload.FieldID == fieldID
}

// Over records the hovered drop target. It never touches the form.
func (s *DragSession) Over(target Target) {
	if !s.Active() {
		return
	}
	t := target
	s.highlight = &t
}

// Leave clears the hover highlight.
func (s *DragSession) Leave() {
	s.highlight = nil
}

// Highlighted returns the hovered target, if any.
func (s *DragSession) Highlighted() (Target, bool) {
	if s.highlight == nil {
		return Target{}, false
	}
	return *s.highlight, true
}

// Cancel abandons the drag without changes.
func (s *DragSession) Cancel() {
	s.payload = Payload{}
	s.highlight = nil
}

// Drop commits the drag onto target through engine. Palette payloads create a
// field, field payloads move one; the two are never both applied. An unknown
// payload, a missing field, an unknown row or a column outside the row make
// the drop a no-op. The session is reset either way.
func (s *DragSession) Drop(engine *Engine, target Target) DropResult {
	payload := s.payload
	s.Cancel()

	if engine == nil {
		return DropResult{Kind: payload.Kind}
	}
	row, ok := engine.Form().Row(target.RowID)
	if !ok || target.ColumnIndex < 0 || target.ColumnIndex >= row.Columns {
		return DropResult{Kind: payload.Kind}
	}

	switch payload.Kind {
	case PayloadPalette:
		if !payload.FieldType.Known() {
			return DropResult{Kind: payload.Kind}
		}
		field := engine.AddField(payload.FieldType, row.ID, target.ColumnIndex)
		return DropResult{Applied: true, Kind: payload.Kind, Field: field}
	case PayloadField:
		if !engine.MoveField(payload.FieldID, row.ID, target.ColumnIndex) {
			return DropResult{Kind: payload.Kind}
		}
		field, _ := engine.Form().Field(payload.FieldID)
		return DropResult{Applied: true, Kind: payload.Kind, Field: field.Clone()}
	default:
		return DropResult{Kind: payload.Kind}
	}
}

// Package builder holds the editing session behind the canvas: one in-memory
// form, the layout engine and drag session that mutate it, and the save,
// publish, export and import operations that move it in and out.
package builder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/goliatone/go-formbuilder/pkg/layout"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/transfer"
)

// ErrNoStore is returned by Save and Publish when no Store is configured.
var ErrNoStore = errors.New("builder: no store configured")

// Option configures a Session.
type Option func(*Session)

// WithStore sets the persistence backend used by Save and Publish.
func WithStore(store Store) Option {
	return func(s *Session) {
		s.store = store
	}
}

// WithLogger sets the logger. The default logs warnings and errors through
// log.Default().
func WithLogger(logger *log.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithFactory overrides id and clock generation for new rows, fields and
// imported ids.
func WithFactory(factory *model.Factory) Option {
	return func(s *Session) {
		if factory != nil {
			s.factory = factory
		}
	}
}

// WithTransferOptions configures the serializer and deserializer used by
// Export and Import.
func WithTransferOptions(options ...transfer.Option) Option {
	return func(s *Session) {
		s.transfer = append(s.transfer, options...)
	}
}

// Session owns a form being edited. Mutations go through Engine and Drag;
// every operation is synchronous and the session is not safe for concurrent
// use.
type Session struct {
	form     *model.Form
	engine   *layout.Engine
	drag     *layout.DragSession
	store    Store
	logger   *log.Logger
	factory  *model.Factory
	transfer []transfer.Option
	dirty    bool
}

// New starts a session on a fresh draft with one default row.
func New(options ...Option) *Session {
	s := newSession(options)
	draft := s.factory.NewForm("")
	s.bind(&draft)
	return s
}

// Open starts a session on a copy of form.
func Open(form model.Form, options ...Option) *Session {
	s := newSession(options)
	copied := form.Clone()
	if copied.ThemeColor == "" {
		copied.ThemeColor = model.DefaultThemeColor
	}
	s.bind(&copied)
	return s
}

func newSession(options []Option) *Session {
	s := &Session{factory: model.NewFactory()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.Default().With("component", "builder")
		s.logger.SetLevel(log.WarnLevel)
	}
	return s
}

func (s *Session) bind(form *model.Form) {
	s.form = form
	s.drag = layout.NewDragSession()
	s.engine = layout.NewEngine(form,
		layout.WithFactory(s.factory),
		layout.WithObserver(s.observe),
	)
}

func (s *Session) observe(change layout.Change) {
	s.dirty = true
	s.logger.Debug("layout change", "kind", change.Kind, "field", change.FieldID, "row", change.RowID, "affected", change.Affected)
}

// Form returns a copy of the current draft.
func (s *Session) Form() model.Form {
	return s.form.Clone()
}

// Engine exposes the layout engine bound to the draft.
func (s *Session) Engine() *layout.Engine {
	return s.engine
}

// Drag exposes the drag session of the canvas.
func (s *Session) Drag() *layout.DragSession {
	return s.drag
}

// Drop commits the active drag onto target.
func (s *Session) Drop(target layout.Target) layout.DropResult {
	result := s.drag.Drop(s.engine, target)
	if !result.Applied {
		s.logger.Debug("drop ignored", "kind", result.Kind, "row", target.RowID, "column", target.ColumnIndex)
	}
	return result
}

// Dirty reports whether the draft changed since it was opened or last saved.
func (s *Session) Dirty() bool {
	return s.dirty
}

// SetTitle updates the form title.
func (s *Session) SetTitle(title string) {
	s.form.Title = title
	s.dirty = true
}

// SetDescription updates the form description.
func (s *Session) SetDescription(description string) {
	s.form.Description = description
	s.dirty = true
}

// SetThemeColor updates the accent color. Values that are not hex colors
// fall back to the default.
func (s *Session) SetThemeColor(color string) {
	s.form.ThemeColor = model.NormalizeThemeColor(color)
	s.dirty = true
}

// Save persists the draft, creating it on first save. The title must be
// non-empty. On failure the draft is left untouched and the error is
// returned; there is no retry.
func (s *Session) Save(ctx context.Context) (model.Form, error) {
	return s.persist(ctx, s.form.IsPublished)
}

// Publish saves the draft with isPublished set. The local flag only changes
// once the store accepted the request.
func (s *Session) Publish(ctx context.Context) (model.Form, error) {
	return s.persist(ctx, true)
}

// Unpublish saves the draft with isPublished cleared.
func (s *Session) Unpublish(ctx context.Context) (model.Form, error) {
	return s.persist(ctx, false)
}

func (s *Session) persist(ctx context.Context, publish bool) (model.Form, error) {
	if s.store == nil {
		return model.Form{}, ErrNoStore
	}
	if strings.TrimSpace(s.form.Title) == "" {
		return model.Form{}, fmt.Errorf("builder: save: %w", model.ErrTitleMissing)
	}
	if err := model.ValidateForm(*s.form, false); err != nil {
		return model.Form{}, fmt.Errorf("builder: save: %w", err)
	}

	req := requestFor(*s.form, publish)
	var (
		stored model.Form
		err    error
	)
	if s.form.ID == "" {
		stored, err = s.store.Create(ctx, req)
	} else {
		stored, err = s.store.Update(ctx, s.form.ID, req)
	}
	if err != nil {
		s.logger.Error("save failed", "form", s.form.ID, "publish", publish, "err", err)
		return model.Form{}, fmt.Errorf("builder: save: %w", err)
	}

	s.form.ID = stored.ID
	s.form.ShareID = stored.ShareID
	s.form.CreatedAt = stored.CreatedAt
	s.form.UpdatedAt = stored.UpdatedAt
	s.form.IsPublished = stored.IsPublished
	s.dirty = false
	s.logger.Info("form saved", "form", stored.ID, "published", stored.IsPublished)
	return s.form.Clone(), nil
}

// Export serializes the draft into the versioned envelope.
func (s *Session) Export() ([]byte, error) {
	serializer, err := transfer.NewSerializer(s.transfer...)
	if err != nil {
		return nil, err
	}
	return serializer.MarshalForm(*s.form)
}

// Import replaces fields, rows and theme color with the imported ones. A
// non-empty imported title replaces the title and description too. Nothing
// changes when the import fails.
func (s *Session) Import(data []byte, opts transfer.ImportOptions) (transfer.ImportedForm, error) {
	options := append([]transfer.Option{transfer.WithFactory(s.factory)}, s.transfer...)
	deserializer, err := transfer.NewDeserializer(options...)
	if err != nil {
		return transfer.ImportedForm{}, err
	}
	imported, err := deserializer.DeserializeForm(data, opts)
	if err != nil {
		s.logger.Warn("import rejected", "err", err)
		return transfer.ImportedForm{}, err
	}

	s.form.Fields = model.CloneFields(imported.Fields)
	s.form.Rows = model.CloneRows(imported.Rows)
	s.form.ThemeColor = imported.ThemeColor
	if strings.TrimSpace(imported.Title) != "" {
		s.form.Title = imported.Title
		s.form.Description = imported.Description
	}
	s.drag.Cancel()
	s.dirty = true
	s.logger.Info("form imported", "fields", len(imported.Fields), "rows", len(imported.Rows), "detached", len(imported.Detached))
	return imported, nil
}

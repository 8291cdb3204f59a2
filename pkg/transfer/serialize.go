package transfer

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// exportedAtLayout matches ECMAScript Date.toISOString so files stay
// byte-compatible with exports produced in the browser.
const exportedAtLayout = "2006-01-02T15:04:05.000Z"

// Option configures a Serializer or Deserializer.
type Option func(*settings)

type settings struct {
	now       func() time.Time
	validator Validator
	factory   *model.Factory
	sanitize  func(string) string
}

// WithClock overrides the time source used for exportedAt.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// WithValidator swaps the structural validator. Passing nil disables schema
// checks entirely.
func WithValidator(v Validator) Option {
	return func(s *settings) {
		s.validator = v
	}
}

// WithFactory sets the factory used to mint ids during import.
func WithFactory(factory *model.Factory) Option {
	return func(s *settings) {
		if factory != nil {
			s.factory = factory
		}
	}
}

// WithSanitizer sets a filter applied to every imported text value. Imports
// keep text as written unless one is set; StripMarkup is the usual choice.
func WithSanitizer(fn func(string) string) Option {
	return func(s *settings) {
		if fn != nil {
			s.sanitize = fn
		}
	}
}

func newSettings(options []Option) (settings, error) {
	s := settings{
		now:     time.Now,
		factory: model.NewFactory(),
	}
	validator, err := DefaultValidator()
	if err != nil {
		return settings{}, err
	}
	s.validator = validator
	for _, opt := range options {
		if opt != nil {
			opt(&s)
		}
	}
	return s, nil
}

// Serializer produces export envelopes.
type Serializer struct {
	settings
}

// NewSerializer builds a Serializer. It only fails when the embedded schemas
// cannot be compiled.
func NewSerializer(options ...Option) (*Serializer, error) {
	s, err := newSettings(options)
	if err != nil {
		return nil, err
	}
	return &Serializer{settings: s}, nil
}

// SerializeForm wraps the form in a versioned envelope. The envelope is
// validated against the export schema before it is returned.
func (s *Serializer) SerializeForm(form model.Form) (Envelope, error) {
	fields := model.CloneFields(form.Fields)
	if fields == nil {
		fields = []model.Field{}
	}
	rows := model.CloneRows(form.Rows)
	if rows == nil {
		rows = []model.Row{}
	}

	themeColor := form.ThemeColor
	if themeColor == "" {
		themeColor = model.DefaultThemeColor
	}

	env := Envelope{
		Version:    CurrentVersion,
		ExportedAt: s.now().UTC().Format(exportedAtLayout),
		FormData: FormData{
			Title:       form.Title,
			Description: form.Description,
			Fields:      fields,
			Rows:        rows,
			ThemeColor:  themeColor,
			Metadata:    MetadataFor(fields, rows),
		},
	}

	if s.validator != nil {
		if issues := ValidateValue(s.validator, SchemaExport, env); len(issues) > 0 {
			return Envelope{}, fmt.Errorf("%w: export: %s", ErrStructure, strings.Join(issues, "; "))
		}
	}
	return env, nil
}

// MarshalForm serialises the form as indented JSON.
func (s *Serializer) MarshalForm(form model.Form) ([]byte, error) {
	env, err := s.SerializeForm(form)
	if err != nil {
		return nil, err
	}
	raw, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("transfer: encode envelope: %w", err)
	}
	return append(raw, '\n'), nil
}

// SerializeForm uses a default Serializer.
func SerializeForm(form model.Form) (Envelope, error) {
	s, err := NewSerializer()
	if err != nil {
		return Envelope{}, err
	}
	return s.SerializeForm(form)
}

// MarshalForm uses a default Serializer.
func MarshalForm(form model.Form) ([]byte, error) {
	s, err := NewSerializer()
	if err != nil {
		return nil, err
	}
	return s.MarshalForm(form)
}

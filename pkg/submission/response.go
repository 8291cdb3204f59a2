package submission

import (
	"time"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Meta carries request details recorded with a response.
type Meta struct {
	IPAddress string
	UserAgent string
}

// Option configures NewResponse.
type Option func(*settings)

type settings struct {
	factory *model.Factory
}

// WithFactory overrides the id generator and clock used for new responses.
func WithFactory(factory *model.Factory) Option {
	return func(s *settings) {
		if factory != nil {
			s.factory = factory
		}
	}
}

// WithClock is shorthand for a factory with a fixed clock.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.factory = model.NewFactory(model.WithClock(now))
		}
	}
}

// NewResponse validates values against form and records an immutable
// response holding the coerced answers. Drafts are rejected with
// ErrNotPublished; invalid payloads return a *Error.
func NewResponse(form model.Form, values map[string]any, meta Meta, options ...Option) (model.FormResponse, error) {
	if !form.IsPublished {
		return model.FormResponse{}, ErrNotPublished
	}
	if err := Validate(form, values); err != nil {
		return model.FormResponse{}, err
	}

	cfg := settings{factory: model.NewFactory()}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg.factory.NewFormResponse(form.ID, Coerce(form, values), meta.IPAddress, meta.UserAgent), nil
}

// Package formbuilder is the entry point for callers that want the common
// flows without wiring the packages by hand: exporting and importing form
// files, checking compatibility, and rendering one of the HTML surfaces.
package formbuilder

import (
	"context"
	"fmt"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/renderers/html"
	"github.com/goliatone/go-formbuilder/pkg/transfer"
)

// Form aliases model.Form for callers that only import the root package.
type Form = model.Form

// RenderOptions describes per-request overrides that renderers can use to
// prefill values or surface server-side validation errors.
type RenderOptions = render.RenderOptions

// ImportOptions aliases transfer.ImportOptions.
type ImportOptions = transfer.ImportOptions

// CompatibilityReport aliases transfer.CompatibilityReport.
type CompatibilityReport = transfer.CompatibilityReport

// NewRegistry returns a registry holding the canvas, preview and public HTML
// renderers built with the provided options.
func NewRegistry(options ...html.Option) (*render.Registry, error) {
	renderers, err := html.All(options...)
	if err != nil {
		return nil, err
	}
	return render.NewRegistry(renderers...), nil
}

// Render draws form with the named HTML surface ("canvas", "preview" or
// "public").
func Render(ctx context.Context, form Form, surface string, opts RenderOptions, options ...html.Option) ([]byte, error) {
	registry, err := NewRegistry(options...)
	if err != nil {
		return nil, fmt.Errorf("formbuilder: %w", err)
	}
	out, _, err := registry.Render(ctx, surface, form, opts)
	return out, err
}

// Export encodes form as the versioned JSON export envelope.
func Export(form Form) ([]byte, error) {
	return transfer.MarshalForm(form)
}

// Import decodes an exported (or legacy bare) form document.
func Import(data []byte, opts ImportOptions) (Form, error) {
	imported, err := transfer.DeserializeForm(data, opts)
	if err != nil {
		return Form{}, err
	}
	return imported.Form(), nil
}

// Check reports whether data could be imported without mutating anything.
func Check(data []byte) CompatibilityReport {
	return transfer.ValidateFormCompatibility(data)
}

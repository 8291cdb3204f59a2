package render

import (
	theme "github.com/goliatone/go-theme"
)

// RenderOptions describe per-request data that renderers can use to customise
// their output without mutating the form.
type RenderOptions struct {
	// Values pre-populates controls, keyed by field id. Scalars may be any
	// printable value; multi-value fields accept []string or []any.
	Values map[string]any
	// Errors surfaces validation feedback keyed by field id.
	Errors map[string][]string
	// FormErrors are messages not tied to a single field.
	FormErrors []string
	// Theme overrides the config derived from the form's themeColor.
	Theme *theme.RendererConfig
	// Action is the submit URL of the public form. Empty leaves the
	// attribute off.
	Action string
	// HiddenFields are emitted as hidden inputs on the public form.
	HiddenFields map[string]string
	// SubmitLabel overrides the public form button text.
	SubmitLabel string
}

// ThemeOrDefault returns the explicit theme or one derived from color.
func (o RenderOptions) ThemeOrDefault(color string) *theme.RendererConfig {
	if o.Theme != nil {
		return o.Theme
	}
	return ThemeConfig(color)
}

package formbuilder

import (
	"io/fs"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/renderers/html"
)

// EmbeddedTemplates exposes the built-in HTML templates so callers can copy
// or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}

// AssetsFS exposes the stylesheet shared by the HTML surfaces.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(formbuilder.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	return html.AssetsFS()
}

// WithThemeSelector passes a go-theme selector through to the HTML
// renderers. Empty name and variant use the selector defaults.
func WithThemeSelector(selector theme.ThemeSelector, name, variant string) html.Option {
	return html.WithThemeSelector(selector, name, variant)
}

// WithThemeProvider constructs a go-theme selector from a ThemeProvider and
// passes it to the HTML renderers.
func WithThemeProvider(provider theme.ThemeProvider, defaultTheme, defaultVariant string) html.Option {
	return html.WithThemeProvider(provider, defaultTheme, defaultVariant)
}

// BuiltinThemes returns a go-theme registry holding the bundled manifests.
func BuiltinThemes() (*theme.MemoryRegistry, error) {
	return render.BuiltinThemes()
}

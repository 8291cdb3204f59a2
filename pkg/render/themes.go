package render

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	theme "github.com/goliatone/go-theme"
)

//go:embed themes
var bundledThemes embed.FS

// Names of the bundled theme and its variants.
const (
	BuiltinTheme   = ThemeName
	VariantLight   = "light"
	VariantDark    = "dark"
	StylesheetKey  = "stylesheet"
	themesRootPath = "themes"
)

// BuiltinThemes returns a registry holding every bundled manifest.
func BuiltinThemes() (*theme.MemoryRegistry, error) {
	registry := theme.NewRegistry()
	entries, err := fs.ReadDir(bundledThemes, themesRootPath)
	if err != nil {
		return nil, fmt.Errorf("render: list bundled themes: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		manifest, err := theme.LoadDir(bundledThemes, path.Join(themesRootPath, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("render: load bundled theme %s: %w", entry.Name(), err)
		}
		if err := registry.Register(manifest); err != nil {
			return nil, fmt.Errorf("render: register bundled theme %s: %w", entry.Name(), err)
		}
	}
	return registry, nil
}

// RegisterThemeFile loads a JSON or YAML manifest from disk into registry and
// returns the theme name it declares.
func RegisterThemeFile(registry theme.Registry, manifestPath string) (string, error) {
	manifest, err := theme.LoadFile(os.DirFS(filepath.Dir(manifestPath)), filepath.Base(manifestPath))
	if err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	if err := registry.Register(manifest); err != nil {
		return "", fmt.Errorf("render: register theme %s: %w", manifestPath, err)
	}
	return manifest.Name, nil
}

// NewThemeSelector builds a go-theme selector over the bundled themes plus
// any extra manifest files. Empty name and variant default to the bundled
// theme's light variant.
func NewThemeSelector(name, variant string, manifests ...string) (theme.Selector, error) {
	registry, err := BuiltinThemes()
	if err != nil {
		return theme.Selector{}, err
	}
	for _, manifest := range manifests {
		if manifest == "" {
			continue
		}
		if _, err := RegisterThemeFile(registry, manifest); err != nil {
			return theme.Selector{}, err
		}
	}
	if name == "" {
		name = BuiltinTheme
	}
	if variant == "" {
		variant = VariantLight
	}
	return theme.Selector{Registry: registry, DefaultTheme: name, DefaultVariant: variant}, nil
}

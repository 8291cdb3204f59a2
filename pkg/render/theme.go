package render

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

const (
	// ThemeName is the name reported by configs built from a bare colour.
	ThemeName = "formbuilder"
	// AccentVar is the CSS custom property carrying the form theme colour.
	AccentVar = "--fb-accent"
	// AccentContrastVar is readable text colour on top of the accent.
	AccentContrastVar = "--fb-accent-contrast"
	// AccentToken is the go-theme token holding the accent colour.
	AccentToken = "accent"
)

// ThemeConfig derives a renderer config from a form theme colour. Invalid
// colours fall back to the default accent.
func ThemeConfig(color string) *theme.RendererConfig {
	accent := model.NormalizeThemeColor(color)
	return &theme.RendererConfig{
		Theme:   ThemeName,
		Variant: "default",
		Tokens: map[string]string{
			AccentToken: accent,
		},
		CSSVars: map[string]string{
			AccentVar:         accent,
			AccentContrastVar: ContrastColor(accent),
		},
	}
}

// ThemeFromSelection builds a renderer config from a go-theme selection.
// Tokens of the selected variant become CSS variables ("--<token>"),
// fallbacks name the partials a theme may override, and the form colour wins
// for the accent when it is a hex value.
func ThemeFromSelection(selection *theme.Selection, color string, fallbacks map[string]string) *theme.RendererConfig {
	if selection == nil || selection.Manifest == nil {
		return ThemeConfig(color)
	}
	cfg := selection.RendererTheme(fallbacks)
	if cfg.Tokens == nil {
		cfg.Tokens = map[string]string{}
	}
	if cfg.CSSVars == nil {
		cfg.CSSVars = map[string]string{}
	}

	accent := cfg.Tokens[AccentToken]
	if c := strings.TrimSpace(color); c != "" && model.NormalizeThemeColor(c) == c {
		accent = c
	}
	accent = model.NormalizeThemeColor(accent)
	cfg.Tokens[AccentToken] = accent
	cfg.CSSVars["--"+AccentToken] = accent
	cfg.CSSVars[AccentVar] = accent
	cfg.CSSVars[AccentContrastVar] = ContrastColor(accent)
	return &cfg
}

// SelectTheme resolves name and variant through selector (empty values use
// the selector defaults) and builds the renderer config for a form colour.
func SelectTheme(selector theme.ThemeSelector, name, variant, color string, fallbacks map[string]string) (*theme.RendererConfig, error) {
	if selector == nil {
		return ThemeConfig(color), nil
	}
	selection, err := selector.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("render: select theme %q: %w", name, err)
	}
	return ThemeFromSelection(selection, color, fallbacks), nil
}

// CSSVarsStyle renders CSS variables as an inline style value with keys in
// sorted order.
func CSSVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteByte(';')
	}
	return b.String()
}

// ContrastColor picks dark or light text for the supplied hex background
// using relative luminance.
func ContrastColor(hex string) string {
	hex = strings.TrimPrefix(model.NormalizeThemeColor(hex), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	channel := func(s string) float64 {
		v, _ := strconv.ParseUint(s, 16, 8)
		return float64(v) / 255
	}
	r, g, b := channel(hex[0:2]), channel(hex[2:4]), channel(hex[4:6])
	luminance := 0.2126*r + 0.7152*g + 0.0722*b
	if luminance > 0.6 {
		return "#111827"
	}
	return "#ffffff"
}

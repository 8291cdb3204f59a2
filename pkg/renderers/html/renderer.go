package html

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	rendertemplate "github.com/goliatone/go-formbuilder/pkg/render/template"
	gotemplate "github.com/goliatone/go-formbuilder/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formbuilder/pkg/widgets"
)

// Surface selects which of the three HTML views a Renderer produces.
type Surface string

const (
	// SurfaceCanvas is the editable builder grid with drop targets.
	SurfaceCanvas Surface = "canvas"
	// SurfacePreview is the read-only rendering of the form.
	SurfacePreview Surface = "preview"
	// SurfacePublic is the fillable form respondents submit.
	SurfacePublic Surface = "public"
)

// ErrUnknownSurface is returned by New for surfaces other than the three above.
var ErrUnknownSurface = errors.New("html renderer: unknown surface")

// Surfaces lists the supported surfaces in registration order.
func Surfaces() []Surface {
	return []Surface{SurfaceCanvas, SurfacePreview, SurfacePublic}
}

func (s Surface) valid() bool {
	switch s {
	case SurfaceCanvas, SurfacePreview, SurfacePublic:
		return true
	default:
		return false
	}
}

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	widgets          *widgets.Table
	document         bool
	filters          map[string]rendertemplate.Filter
	globals          map[string]any
	themes           theme.ThemeSelector
	themeName        string
	themeVariant     string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS. The bundle
// must provide templates/<surface>.tmpl for the surfaces it is used with.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithTemplateFilters registers extra pongo2 filters for custom templates
// supplied through WithTemplatesFS or WithTemplatesDir.
func WithTemplateFilters(filters map[string]rendertemplate.Filter) Option {
	return func(cfg *config) {
		if cfg.filters == nil {
			cfg.filters = make(map[string]rendertemplate.Filter, len(filters))
		}
		for name, fn := range filters {
			cfg.filters[name] = fn
		}
	}
}

// WithTemplateGlobals exposes values to every template next to the view,
// for example a site name used by a custom base template.
func WithTemplateGlobals(globals map[string]any) Option {
	return func(cfg *config) {
		if cfg.globals == nil {
			cfg.globals = make(map[string]any, len(globals))
		}
		for key, value := range globals {
			cfg.globals[key] = value
		}
	}
}

// WithWidgets overrides the widget table used to build the view.
func WithWidgets(table *widgets.Table) Option {
	return func(cfg *config) {
		if table != nil {
			cfg.widgets = table
		}
	}
}

// WithDocument wraps the output in a standalone HTML document with the
// embedded stylesheet inlined. Fragments are produced otherwise.
func WithDocument(enabled bool) Option {
	return func(cfg *config) {
		cfg.document = enabled
	}
}

// WithThemeSelector resolves a go-theme selection for every render that does
// not carry an explicit RenderOptions.Theme. Empty name and variant use the
// selector defaults.
func WithThemeSelector(selector theme.ThemeSelector, name, variant string) Option {
	return func(cfg *config) {
		cfg.themes = selector
		cfg.themeName = name
		cfg.themeVariant = variant
	}
}

// WithThemeProvider builds a go-theme selector over provider defaulting to
// name and variant.
func WithThemeProvider(provider theme.ThemeProvider, name, variant string) Option {
	return func(cfg *config) {
		if provider == nil {
			return
		}
		cfg.themes = theme.Selector{Registry: provider, DefaultTheme: name, DefaultVariant: variant}
		cfg.themeName = name
		cfg.themeVariant = variant
	}
}

// Renderer draws one surface of a form as HTML.
type Renderer struct {
	surface   Surface
	templates rendertemplate.TemplateRenderer
	widgets   *widgets.Table
	document  bool

	themes       theme.ThemeSelector
	themeName    string
	themeVariant string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the renderer for surface applying any provided options.
func New(surface Surface, options ...Option) (*Renderer, error) {
	if !surface.valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSurface, surface)
	}

	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
			gotemplate.WithFilters(cfg.filters),
			gotemplate.WithGlobals(cfg.globals),
		)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{
		surface:   surface,
		templates: renderer,
		widgets:   cfg.widgets,
		document:  cfg.document,

		themes:       cfg.themes,
		themeName:    cfg.themeName,
		themeVariant: cfg.themeVariant,
	}, nil
}

// NewCanvas constructs the builder canvas renderer.
func NewCanvas(options ...Option) (*Renderer, error) {
	return New(SurfaceCanvas, options...)
}

// NewPreview constructs the read-only preview renderer.
func NewPreview(options ...Option) (*Renderer, error) {
	return New(SurfacePreview, options...)
}

// NewPublic constructs the fillable public form renderer.
func NewPublic(options ...Option) (*Renderer, error) {
	return New(SurfacePublic, options...)
}

// All constructs one renderer per surface, ready for render.NewRegistry.
func All(options ...Option) ([]render.Renderer, error) {
	out := make([]render.Renderer, 0, len(Surfaces()))
	for _, surface := range Surfaces() {
		renderer, err := New(surface, options...)
		if err != nil {
			return nil, err
		}
		out = append(out, renderer)
	}
	return out, nil
}

func (r *Renderer) Name() string {
	return string(r.surface)
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Surface reports which view the renderer produces.
func (r *Renderer) Surface() Surface {
	return r.surface
}

func (r *Renderer) Render(ctx context.Context, form model.Form, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if options.Theme == nil && r.themes != nil {
		cfg, err := render.SelectTheme(r.themes, r.themeName, r.themeVariant, form.ThemeColor, TemplatePartials())
		if err != nil {
			return nil, fmt.Errorf("html renderer: %w", err)
		}
		options.Theme = cfg
	}

	if r.surface == SurfacePublic {
		options.HiddenFields = render.MergeHiddenFields(options.HiddenFields, render.FormIdentity(form.ID, form.ShareID)...)
	}
	view := render.BuildView(form, r.widgets, options)

	data := map[string]any{
		"view":     view,
		"mode":     string(r.surface),
		"disabled": r.surface != SurfacePublic,
		"document": r.document,
	}
	if r.document {
		data["stylesheet"] = defaultStylesheet()
	}
	if r.surface == SurfaceCanvas {
		data["palette"] = palette()
		data["columnChoices"] = columnChoices()
	}

	result, err := r.templates.RenderTemplate(r.templateName(options.Theme), data)
	if err != nil {
		return nil, fmt.Errorf("html renderer: render %s: %w", r.surface, err)
	}
	return []byte(result), nil
}

// TemplatePartials maps the partial keys a theme manifest may override
// ("forms.<surface>") to the bundled surface templates.
func TemplatePartials() map[string]string {
	out := make(map[string]string, len(Surfaces()))
	for _, surface := range Surfaces() {
		out[surface.partialKey()] = surface.templatePath()
	}
	return out
}

func (s Surface) partialKey() string {
	return "forms." + string(s)
}

func (s Surface) templatePath() string {
	return "templates/" + string(s) + ".tmpl"
}

func (r *Renderer) templateName(cfg *theme.RendererConfig) string {
	if cfg != nil {
		if name := cfg.Partials[r.surface.partialKey()]; name != "" {
			return name
		}
	}
	return r.surface.templatePath()
}

type paletteItem struct {
	Type  model.FieldType `json:"type"`
	Label string          `json:"label"`
}

func palette() []paletteItem {
	types := model.AllFieldTypes()
	out := make([]paletteItem, 0, len(types))
	for _, fieldType := range types {
		out = append(out, paletteItem{Type: fieldType, Label: fieldType.DisplayName()})
	}
	return out
}

func columnChoices() []int {
	out := make([]int, 0, model.MaxColumns)
	for i := 1; i <= model.MaxColumns; i++ {
		out = append(out, i)
	}
	return out
}

package gotemplate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-formbuilder/pkg/render/template"
)

// Option configures the pongo2 adapter before construction.
type Option func(*config)

type config struct {
	templates fs.FS
	extension string
	filters   map[string]template.Filter
	globals   map[string]any
}

// WithFS sets the template bundle. Includes resolve relative to the
// including file.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithExtension overrides the extension appended to template names that lack
// one.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		cfg.extension = trimmed
	}
}

// WithFilters registers extra filters. pongo2 filters are process wide, so a
// later engine replaces an earlier filter with the same name.
func WithFilters(filters map[string]template.Filter) Option {
	return func(cfg *config) {
		for name, fn := range filters {
			name = strings.TrimSpace(name)
			if name == "" || fn == nil {
				continue
			}
			if cfg.filters == nil {
				cfg.filters = make(map[string]template.Filter, len(filters))
			}
			cfg.filters[name] = fn
		}
	}
}

// WithGlobals seeds values visible to every template of the engine.
func WithGlobals(globals map[string]any) Option {
	return func(cfg *config) {
		for key, value := range globals {
			key = strings.TrimSpace(key)
			if key == "" {
				continue
			}
			if cfg.globals == nil {
				cfg.globals = make(map[string]any, len(globals))
			}
			cfg.globals[key] = value
		}
	}
}

// Engine satisfies template.TemplateRenderer using a pongo2 template set.
// Templates are parsed once and cached by path.
type Engine struct {
	mu        sync.RWMutex
	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
	ext       string
}

var _ template.TemplateRenderer = (*Engine)(nil)

// filtersMu guards pongo2's global filter table.
var filtersMu sync.Mutex

// New constructs an Engine over the configured template bundle.
func New(options ...Option) (*Engine, error) {
	cfg := &config{extension: ".tmpl"}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}
	if cfg.templates == nil {
		return nil, errors.New("gotemplate: template fs is required")
	}

	set := pongo2.NewSet("formbuilder", pongo2.NewFSLoader(cfg.templates))
	if len(cfg.globals) > 0 {
		globals, err := toContext(cfg.globals)
		if err != nil {
			return nil, fmt.Errorf("gotemplate: globals: %w", err)
		}
		set.Globals.Update(globals)
	}
	if err := registerFilters(cfg.filters); err != nil {
		return nil, err
	}

	return &Engine{
		set:       set,
		templates: make(map[string]*pongo2.Template),
		ext:       cfg.extension,
	}, nil
}

// RenderTemplate renders the template at name, appending the extension when
// it is missing.
func (e *Engine) RenderTemplate(name string, data any) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("gotemplate: engine is nil")
	}
	if !strings.HasSuffix(name, e.ext) {
		name += e.ext
	}
	tmpl, err := e.load(name)
	if err != nil {
		return "", err
	}

	ctx, err := toContext(data)
	if err != nil {
		return "", fmt.Errorf("gotemplate: convert data: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(ctx, &buf); err != nil {
		return "", fmt.Errorf("gotemplate: execute %q: %w", name, err)
	}
	return buf.String(), nil
}

func (e *Engine) load(path string) (*pongo2.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.templates[path]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.templates[path]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: load template %q: %w", path, err)
	}
	e.templates[path] = tmpl
	return tmpl, nil
}

func registerFilters(custom map[string]template.Filter) error {
	filtersMu.Lock()
	defer filtersMu.Unlock()

	for name, fn := range map[string]pongo2.FilterFunction{
		"trim":     filterTrim,
		"percent":  filterPercent,
		"contains": filterContains,
	} {
		if !pongo2.FilterExists(name) {
			if err := pongo2.RegisterFilter(name, fn); err != nil {
				return fmt.Errorf("gotemplate: register filter %q: %w", name, err)
			}
		}
	}

	for name, fn := range custom {
		filter := adaptFilter(fn)
		register := pongo2.RegisterFilter
		if pongo2.FilterExists(name) {
			register = pongo2.ReplaceFilter
		}
		if err := register(name, filter); err != nil {
			return fmt.Errorf("gotemplate: register filter %q: %w", name, err)
		}
	}
	return nil
}

func adaptFilter(fn template.Filter) pongo2.FilterFunction {
	return func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var arg any
		if param != nil {
			arg = param.Interface()
		}
		out, err := fn(in.Interface(), arg)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter", OrigError: err}
		}
		return pongo2.AsValue(out), nil
	}
}

// toContext exposes data to templates through its JSON encoding, so view
// structs are addressed by their json tags. Whole numbers come back as ints.
func toContext(data any) (pongo2.Context, error) {
	if data == nil {
		return pongo2.Context{}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}
	return pongo2.Context(wholeNumbers(decoded).(map[string]any)), nil
}

func wholeNumbers(value any) any {
	switch v := value.(type) {
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
			return int(v)
		}
		return v
	case map[string]any:
		for key, item := range v {
			v[key] = wholeNumbers(item)
		}
		return v
	case []any:
		for i, item := range v {
			v[i] = wholeNumbers(item)
		}
		return v
	default:
		return v
	}
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

// filterPercent renders a number as a CSS percentage ("50%").
func filterPercent(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(fmt.Sprintf("%d%%", in.Integer())), nil
}

func filterContains(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	found := false
	in.Iterate(func(_, _ int, key, _ *pongo2.Value) bool {
		if key.String() == param.String() {
			found = true
			return false
		}
		return true
	}, func() {})
	return pongo2.AsValue(found), nil
}

package template

// TemplateRenderer is the engine contract the HTML renderers depend on.
type TemplateRenderer interface {
	// RenderTemplate renders the template at name. Struct data is exposed
	// under its JSON field names.
	RenderTemplate(name string, data any) (string, error)
}

// Filter transforms a value inside a template ("{{ value|name:param }}").
// param is nil when the template passes none.
type Filter func(input, param any) (any, error)

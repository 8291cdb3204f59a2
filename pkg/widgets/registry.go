package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Component names the control family a renderer draws for a widget.
type Component string

const (
	ComponentInput       Component = "input"
	ComponentTextarea    Component = "textarea"
	ComponentSelect      Component = "select"
	ComponentChoiceGroup Component = "choice-group"
	ComponentRating      Component = "rating"
	ComponentToggle      Component = "toggle"
	ComponentAddress     Component = "address"
)

// Widget describes how a field type is drawn. Renderers never switch on the
// field type directly; they ask the Table for the widget.
type Widget struct {
	// Name is the registry key, usually the field type.
	Name      string    `json:"name"`
	Component Component `json:"component"`
	// InputType is the HTML input type for input-like components.
	InputType string `json:"inputType,omitempty"`
	// Multiple marks widgets that submit a list of values.
	Multiple bool `json:"multiple"`
	// Choices marks widgets that render the field options.
	Choices bool `json:"choices"`
	// Attrs carries extra control attributes (min, max, step, rows).
	Attrs map[string]string `json:"attrs,omitempty"`
}

// Attr returns an attribute value or "".
func (w Widget) Attr(name string) string {
	if w.Attrs == nil {
		return ""
	}
	return w.Attrs[name]
}

// Matcher decides whether a widget should handle the supplied field.
type Matcher func(field model.Field) bool

type rule struct {
	widget   Widget
	priority int
	match    Matcher
	order    int
}

// Table selects widgets for fields. Higher priority wins; ties fall back to
// registration order. Fields no rule matches resolve to the text widget.
type Table struct {
	mu    sync.RWMutex
	rules []rule
}

// NewTable constructs a table with one built-in rule per field type.
func NewTable() *Table {
	table := &Table{}
	table.registerBuiltins()
	return table
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the shared built-in table. Callers must not register rules
// on it; build a NewTable for customisation.
func Default() *Table {
	defaultOnce.Do(func() {
		defaultTable = NewTable()
	})
	return defaultTable
}

// Register adds a widget rule. Widgets without a name are ignored.
func (t *Table) Register(widget Widget, priority int, matcher Matcher) {
	if t == nil || matcher == nil {
		return
	}
	widget.Name = strings.TrimSpace(widget.Name)
	if widget.Name == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rules = append(t.rules, rule{
		widget:   widget,
		priority: priority,
		match:    matcher,
		order:    len(t.rules),
	})
}

// Resolve returns the widget for a field, degrading to the text widget for
// unknown types.
func (t *Table) Resolve(field model.Field) Widget {
	if t == nil {
		return Fallback()
	}
	t.mu.RLock()
	rules := append([]rule(nil), t.rules...)
	t.mu.RUnlock()

	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(field) {
			return entry.widget.clone()
		}
	}
	return Fallback()
}

// ForType resolves a bare field type.
func (t *Table) ForType(fieldType model.FieldType) Widget {
	return t.Resolve(model.Field{Type: fieldType})
}

// Fallback is the widget used for anything the table cannot resolve.
func Fallback() Widget {
	return Widget{Name: string(model.FieldTypeText), Component: ComponentInput, InputType: "text"}
}

func (w Widget) clone() Widget {
	if w.Attrs == nil {
		return w
	}
	attrs := make(map[string]string, len(w.Attrs))
	for key, value := range w.Attrs {
		attrs[key] = value
	}
	w.Attrs = attrs
	return w
}

func ofType(fieldType model.FieldType) Matcher {
	return func(field model.Field) bool {
		return field.Type == fieldType
	}
}

func (t *Table) registerBuiltins() {
	builtins := []Widget{
		{Name: string(model.FieldTypeText), Component: ComponentInput, InputType: "text"},
		{Name: string(model.FieldTypeEmail), Component: ComponentInput, InputType: "email"},
		{Name: string(model.FieldTypeNumber), Component: ComponentInput, InputType: "number"},
		{Name: string(model.FieldTypeTextarea), Component: ComponentTextarea, Attrs: map[string]string{"rows": "4"}},
		{Name: string(model.FieldTypeSelect), Component: ComponentSelect, Choices: true},
		{Name: string(model.FieldTypeMultiSelect), Component: ComponentSelect, Choices: true, Multiple: true},
		{Name: string(model.FieldTypeRadio), Component: ComponentChoiceGroup, InputType: "radio", Choices: true},
		{Name: string(model.FieldTypeCheckbox), Component: ComponentChoiceGroup, InputType: "checkbox", Choices: true, Multiple: true},
		{Name: string(model.FieldTypePhone), Component: ComponentInput, InputType: "tel"},
		{Name: string(model.FieldTypeURL), Component: ComponentInput, InputType: "url"},
		{Name: string(model.FieldTypePassword), Component: ComponentInput, InputType: "password"},
		{Name: string(model.FieldTypeDate), Component: ComponentInput, InputType: "date"},
		{Name: string(model.FieldTypeTime), Component: ComponentInput, InputType: "time"},
		{Name: string(model.FieldTypeDateTime), Component: ComponentInput, InputType: "datetime-local"},
		{Name: string(model.FieldTypeRating), Component: ComponentRating, InputType: "radio", Attrs: map[string]string{"max": "5"}},
		{Name: string(model.FieldTypeFile), Component: ComponentInput, InputType: "file"},
		{Name: string(model.FieldTypeAddress), Component: ComponentAddress, Attrs: map[string]string{"rows": "3"}},
		{Name: string(model.FieldTypeRange), Component: ComponentInput, InputType: "range", Attrs: map[string]string{"min": "0", "max": "100", "step": "1"}},
		{Name: string(model.FieldTypeToggle), Component: ComponentToggle, InputType: "checkbox"},
	}
	for _, widget := range builtins {
		t.Register(widget, 0, ofType(model.FieldType(widget.Name)))
	}
}

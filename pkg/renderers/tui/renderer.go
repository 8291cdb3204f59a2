package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/submission"
	"github.com/goliatone/go-formbuilder/pkg/widgets"
)

// skipOption lets respondents leave optional single-choice prompts blank.
const skipOption = "(skip)"

// Renderer implements render.Renderer for terminal-driven sessions. It walks
// the same view the HTML public form draws and prompts for each visible
// field in display order.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
	widgets           *widgets.Table
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		theme:        Theme{ErrorPrefix: "! "},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Render prompts for every visible field and serializes the answers. JSON
// output has the public submission shape {"responses": {...}}.
func (r *Renderer) Render(ctx context.Context, form model.Form, opts render.RenderOptions) ([]byte, error) {
	view := render.BuildView(form, r.widgets, opts)
	values, err := r.collect(ctx, form, view, opts)
	if err != nil {
		return nil, err
	}
	return r.serialize(view, values)
}

// Collect prompts for every visible field and returns the coerced answers
// keyed by field id.
func (r *Renderer) Collect(ctx context.Context, form model.Form, opts render.RenderOptions) (map[string]any, error) {
	return r.collect(ctx, form, render.BuildView(form, r.widgets, opts), opts)
}

func (r *Renderer) collect(ctx context.Context, form model.Form, view render.View, opts render.RenderOptions) (map[string]any, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, ErrNoDriver
	}

	if title := strings.TrimSpace(view.Title); title != "" {
		if err := r.info(ctx, title); err != nil {
			return nil, err
		}
	}
	if description := strings.TrimSpace(view.Description); description != "" {
		if err := r.info(ctx, description); err != nil {
			return nil, err
		}
	}
	for _, message := range view.FormErrors {
		if err := r.problem(ctx, message); err != nil {
			return nil, err
		}
	}

	fields := make(map[string]model.Field, len(form.Fields))
	for _, field := range form.Fields {
		fields[field.ID] = field
	}

	state := NewState(opts.Values, opts.Errors)
	for _, fieldView := range view.AllFields() {
		field, ok := fields[fieldView.ID]
		if !ok {
			continue
		}
		if err := r.promptField(ctx, field, fieldView, state); err != nil {
			return nil, err
		}
	}

	values := submission.Coerce(form, state.Values())
	if r.submitTransformer != nil {
		var err error
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return values, nil
}

// promptField asks until the answer passes the required and typed checks.
func (r *Renderer) promptField(ctx context.Context, field model.Field, view render.FieldView, state *State) error {
	for _, message := range state.ErrorsFor(field.ID) {
		if err := r.problem(ctx, message); err != nil {
			return err
		}
	}

	for {
		answer, err := r.ask(ctx, field, view, state)
		if err != nil {
			return err
		}
		problems := submission.ValidateField(field, answer)
		if len(problems) == 0 {
			state.Set(field.ID, answer)
			return nil
		}
		for _, message := range problems {
			if err := r.problem(ctx, message); err != nil {
				return err
			}
		}
	}
}

func (r *Renderer) ask(ctx context.Context, field model.Field, view render.FieldView, state *State) (any, error) {
	label := promptLabel(view)
	current, _ := state.Value(field.ID)
	widget := view.Widget

	switch widget.Component {
	case widgets.ComponentToggle:
		return r.driver.Confirm(ctx, ConfirmConfig{
			Message: label,
			Default: !submission.IsEmpty(field, current),
		})
	case widgets.ComponentTextarea, widgets.ComponentAddress:
		return r.driver.TextArea(ctx, TextAreaConfig{
			Message:   label,
			Default:   stringValue(current),
			Help:      view.Placeholder,
			Validator: fieldValidator(field),
		})
	case widgets.ComponentRating:
		return r.choose(ctx, field, label, view.Scale, current)
	case widgets.ComponentSelect, widgets.ComponentChoiceGroup:
		if len(field.Options) == 0 {
			break
		}
		if widget.Multiple {
			indices, err := r.driver.MultiSelect(ctx, SelectConfig{
				Message:  label,
				Options:  field.Options,
				Defaults: indicesOf(field.Options, stringValues(current)),
				Help:     view.Placeholder,
			})
			if err != nil {
				return nil, err
			}
			return valuesFromIndices(field.Options, indices), nil
		}
		return r.choose(ctx, field, label, field.Options, current)
	}

	cfg := InputConfig{
		Message:     label,
		Default:     stringValue(current),
		Help:        view.Placeholder,
		Placeholder: view.Placeholder,
		Validator:   fieldValidator(field),
	}
	if widget.InputType == "password" {
		return r.driver.Password(ctx, cfg)
	}
	return r.driver.Input(ctx, cfg)
}

// choose runs a single-choice prompt. Optional fields get a leading skip
// entry that answers with "".
func (r *Renderer) choose(ctx context.Context, field model.Field, label string, options []string, current any) (any, error) {
	choices := options
	offset := 0
	if !field.Required {
		choices = append([]string{skipOption}, options...)
		offset = 1
	}
	defaultIndex := indexOf(options, stringValue(current))
	if defaultIndex >= 0 {
		defaultIndex += offset
	}

	index, err := r.driver.Select(ctx, SelectConfig{
		Message:      label,
		Options:      choices,
		DefaultIndex: defaultIndex,
	})
	if err != nil {
		return nil, err
	}
	index -= offset
	if index < 0 || index >= len(options) {
		return "", nil
	}
	return options[index], nil
}

func (r *Renderer) info(ctx context.Context, message string) error {
	return r.driver.Info(ctx, r.theme.InfoPrefix+message)
}

func (r *Renderer) problem(ctx context.Context, message string) error {
	return r.driver.Info(ctx, r.theme.ErrorPrefix+message)
}

func (r *Renderer) serialize(view render.View, values map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(view, values)), nil
	default:
		return json.Marshal(map[string]any{"responses": values})
	}
}

func promptLabel(view render.FieldView) string {
	label := displayName(view)
	if view.Required {
		label += " *"
	}
	return label
}

func displayName(view render.FieldView) string {
	if label := strings.TrimSpace(view.Label); label != "" {
		return label
	}
	return view.TypeName
}

func fieldValidator(field model.Field) func(string) error {
	return func(value string) error {
		if problems := submission.ValidateField(field, value); len(problems) > 0 {
			return errors.New(problems[0])
		}
		return nil
	}
}

func stringValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return strings.Join(v, ", ")
	default:
		return fmt.Sprint(v)
	}
}

func stringValues(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	default:
		return []string{fmt.Sprint(v)}
	}
}

func valuesFromIndices(options []string, indices []int) []string {
	out := make([]string, 0, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < len(options) {
			out = append(out, options[idx])
		}
	}
	return out
}

func flattenForm(values map[string]any) string {
	flattened := url.Values{}
	for key, value := range values {
		switch v := value.(type) {
		case []any:
			for _, item := range v {
				flattened.Add(key, fmt.Sprint(item))
			}
		default:
			flattened.Set(key, stringValue(v))
		}
	}
	return flattened.Encode()
}

func prettyPrint(view render.View, values map[string]any) string {
	var b strings.Builder
	seen := make(map[string]struct{}, len(values))
	for _, field := range view.AllFields() {
		value, ok := values[field.ID]
		if !ok {
			continue
		}
		seen[field.ID] = struct{}{}
		fmt.Fprintf(&b, "%s: %s\n", displayName(field), prettyValue(value))
	}
	var extra []string
	for key := range values {
		if _, ok := seen[key]; !ok {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		fmt.Fprintf(&b, "%s: %s\n", key, prettyValue(values[key]))
	}
	return b.String()
}

func prettyValue(value any) string {
	switch v := value.(type) {
	case []any:
		return strings.Join(stringValues(v), ", ")
	case bool:
		if v {
			return "yes"
		}
		return "no"
	case float64:
		return fmt.Sprintf("%g", v)
	default:
		return stringValue(v)
	}
}

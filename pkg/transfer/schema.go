package transfer

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	js "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

const schemaBaseURL = "https://formbuilder.local/schemas/"

// SchemaName identifies one of the embedded structural schemas.
type SchemaName string

const (
	// SchemaExport validates a complete export envelope.
	SchemaExport SchemaName = "export"
	// SchemaImport validates normalised form data right before it is handed
	// to the caller.
	SchemaImport SchemaName = "import"
	// SchemaInput validates raw form data as it arrives. It only checks the
	// shape of what is present, leaving gaps to defensive defaulting.
	SchemaInput SchemaName = "input"
)

// Validator checks JSON-compatible values against one of the structural
// schemas and returns the leaf issues as human-readable strings.
type Validator interface {
	Validate(name SchemaName, value any) []string
}

// SchemaValidator is the default Validator backed by the embedded schemas.
type SchemaValidator struct {
	schemas map[SchemaName]*js.Schema
}

var (
	defaultValidatorOnce sync.Once
	defaultValidator     *SchemaValidator
	defaultValidatorErr  error
)

// DefaultValidator returns the shared validator compiled from the embedded
// schemas. Compilation happens once.
func DefaultValidator() (*SchemaValidator, error) {
	defaultValidatorOnce.Do(func() {
		defaultValidator, defaultValidatorErr = NewSchemaValidator()
	})
	return defaultValidator, defaultValidatorErr
}

// NewSchemaValidator compiles the embedded schemas.
func NewSchemaValidator() (*SchemaValidator, error) {
	compiler := js.NewCompiler()
	compiler.Draft = js.Draft2020
	compiler.AssertFormat = true

	names := []SchemaName{SchemaExport, SchemaImport, SchemaInput}
	for _, name := range names {
		raw, err := schemaFS.ReadFile("schemas/" + string(name) + ".schema.json")
		if err != nil {
			return nil, fmt.Errorf("transfer: read %s schema: %w", name, err)
		}
		if err := compiler.AddResource(schemaURL(name), bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("transfer: add %s schema: %w", name, err)
		}
	}

	out := &SchemaValidator{schemas: make(map[SchemaName]*js.Schema, len(names))}
	for _, name := range names {
		schema, err := compiler.Compile(schemaURL(name))
		if err != nil {
			return nil, fmt.Errorf("transfer: compile %s schema: %w", name, err)
		}
		out.schemas[name] = schema
	}
	return out, nil
}

// Validate implements Validator. Values should be the result of decoding JSON
// into any; use ValidateValue for Go structs.
func (v *SchemaValidator) Validate(name SchemaName, value any) []string {
	schema, ok := v.schemas[name]
	if !ok {
		return []string{fmt.Sprintf("unknown schema %q", name)}
	}
	err := schema.Validate(value)
	if err == nil {
		return nil
	}
	var verr *js.ValidationError
	if !errors.As(err, &verr) {
		return []string{err.Error()}
	}
	return flattenIssues(verr)
}

// ValidateValue round-trips a Go value through JSON and validates the result.
func ValidateValue(v Validator, name SchemaName, value any) []string {
	raw, err := json.Marshal(value)
	if err != nil {
		return []string{fmt.Sprintf("encode: %v", err)}
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return []string{fmt.Sprintf("decode: %v", err)}
	}
	return v.Validate(name, decoded)
}

// SchemaDocument returns the raw embedded schema, for tooling that wants to
// publish it.
func SchemaDocument(name SchemaName) ([]byte, error) {
	raw, err := schemaFS.ReadFile("schemas/" + string(name) + ".schema.json")
	if err != nil {
		return nil, fmt.Errorf("transfer: schema %q: %w", name, err)
	}
	return raw, nil
}

func schemaURL(name SchemaName) string {
	return schemaBaseURL + string(name) + ".json"
}

func flattenIssues(err *js.ValidationError) []string {
	var leaves []*js.ValidationError
	var walk func(*js.ValidationError)
	walk = func(e *js.ValidationError) {
		if len(e.Causes) == 0 {
			leaves = append(leaves, e)
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(err)

	seen := make(map[string]struct{}, len(leaves))
	issues := make([]string, 0, len(leaves))
	for _, leaf := range leaves {
		issue := fmt.Sprintf("%s: %s", instancePath(leaf.InstanceLocation), leaf.Message)
		if _, dup := seen[issue]; dup {
			continue
		}
		seen[issue] = struct{}{}
		issues = append(issues, issue)
	}
	sort.Strings(issues)
	return issues
}

// instancePath turns a JSON pointer ("/fields/0/width") into the dotted form
// used in issue messages ("fields[0].width").
func instancePath(pointer string) string {
	pointer = strings.TrimPrefix(pointer, "#")
	if pointer == "" || pointer == "/" {
		return "(root)"
	}
	var b strings.Builder
	for _, segment := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
		segment = strings.ReplaceAll(strings.ReplaceAll(segment, "~1", "/"), "~0", "~")
		if isIndex(segment) {
			b.WriteString("[" + segment + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(segment)
	}
	return b.String()
}

func isIndex(segment string) bool {
	if segment == "" {
		return false
	}
	for _, r := range segment {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

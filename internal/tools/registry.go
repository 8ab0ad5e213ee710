// Package tools defines the school-search tools the model can call and the
// registry that exposes them. Each tool owns an input schema, validated
// before its executor runs, and an executor that talks to the query layer.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/sandiips/schoolfinder/internal/llm"
)

// InvalidInputError marks a failure caused by the caller's arguments rather
// than by the backing services. Executors return it for domain checks that
// the JSON schema cannot express.
type InvalidInputError struct {
	Field string
	Msg   string
}

func (e *InvalidInputError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// Invalidf builds an InvalidInputError for a field.
func Invalidf(field, format string, args ...any) *InvalidInputError {
	return &InvalidInputError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// Tool pairs a declared input schema with an executor. Run receives the
// canonical JSON of the already schema-validated arguments plus the session
// id, and returns the payload handed back to the model.
type Tool struct {
	Name        string
	Description string
	Schema      *jsonschema.Schema
	Run         func(ctx context.Context, args json.RawMessage, sessionID string) (any, error)

	resolved *jsonschema.Resolved
}

// ValidateInput checks parsed arguments against the tool's schema.
func (t *Tool) ValidateInput(parsed any) error {
	if err := t.resolved.Validate(parsed); err != nil {
		return &InvalidInputError{Msg: err.Error()}
	}
	return nil
}

// Registry holds the tool set for one server instance. Registration happens
// at startup; lookups afterwards are read-only, so no locking is needed.
type Registry struct {
	order  []string
	byName map[string]*Tool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Tool)}
}

// Register resolves the tool's schema and adds it under its name. Duplicate
// names and unresolvable schemas are programming errors.
func (r *Registry) Register(t *Tool) error {
	if t.Name == "" {
		return fmt.Errorf("tool has no name")
	}
	if _, exists := r.byName[t.Name]; exists {
		return fmt.Errorf("tool %q already registered", t.Name)
	}
	resolved, err := t.Schema.Resolve(nil)
	if err != nil {
		return fmt.Errorf("resolving schema for %s: %w", t.Name, err)
	}
	t.resolved = resolved
	r.byName[t.Name] = t
	r.order = append(r.order, t.Name)
	return nil
}

// Get looks a tool up by name.
func (r *Registry) Get(name string) (*Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Defs renders the registry as model-facing tool definitions, in
// registration order.
func (r *Registry) Defs() []llm.ToolDef {
	defs := make([]llm.ToolDef, 0, len(r.order))
	for _, name := range r.order {
		t := r.byName[name]
		defs = append(defs, llm.ToolDef{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  schemaToMap(t.Schema),
		})
	}
	return defs
}

func schemaToMap(s *jsonschema.Schema) map[string]any {
	data, err := json.Marshal(s)
	if err != nil {
		return map[string]any{"type": "object"}
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return map[string]any{"type": "object"}
	}
	return m
}

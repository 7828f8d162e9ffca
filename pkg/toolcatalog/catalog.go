// Package toolcatalog describes the tools an agent may propose: each entry
// maps a tool id to its parameter contract, its read-only flag, and the
// dispatcher command that carries it out.
package toolcatalog

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/xeipuuv/gojsonschema"
)

// ParamSpec defines a single tool parameter
type ParamSpec struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// ArgMapper converts step params into the positional argument list the
// dispatcher command expects
type ArgMapper func(params map[string]interface{}) []interface{}

// ToolSpec defines a tool's contract and its dispatcher mapping
type ToolSpec struct {
	ID          string      `json:"id"`
	CommandID   string      `json:"command_id"`
	Description string      `json:"description"`
	Params      []ParamSpec `json:"params"`
	ReadOnly    bool        `json:"read_only"`
	MapArgs     ArgMapper   `json:"-"`
}

// RequiredParams returns the names of the tool's required parameters in
// declaration order
func (t *ToolSpec) RequiredParams() []string {
	var required []string
	for _, p := range t.Params {
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return required
}

// Arguments resolves step params into the dispatcher argument list. When no
// custom mapper is set, params are passed positionally in declaration order.
func (t *ToolSpec) Arguments(params map[string]interface{}) []interface{} {
	if t.MapArgs != nil {
		return t.MapArgs(params)
	}
	args := make([]interface{}, 0, len(t.Params))
	for _, p := range t.Params {
		if v, ok := params[p.Name]; ok {
			args = append(args, v)
		}
	}
	return args
}

// Catalog is a registry of tool specs keyed by tool id
type Catalog struct {
	mu      sync.RWMutex
	tools   map[string]*ToolSpec
	schemas map[string]*gojsonschema.Schema
}

// New creates an empty catalog
func New() *Catalog {
	return &Catalog{
		tools:   make(map[string]*ToolSpec),
		schemas: make(map[string]*gojsonschema.Schema),
	}
}

// Register adds a tool spec to the catalog
func (c *Catalog) Register(spec ToolSpec) error {
	if err := validateSpec(spec); err != nil {
		return fmt.Errorf("invalid tool spec: %w", err)
	}

	schema, err := generateSchema(spec)
	if err != nil {
		return fmt.Errorf("failed to generate schema for %s: %w", spec.ID, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.tools[spec.ID] = &spec
	c.schemas[spec.ID] = schema

	log.Debug().Str("tool", spec.ID).Str("command", spec.CommandID).Msg("Tool registered")

	return nil
}

// Lookup returns the spec for a tool id
func (c *Catalog) Lookup(toolID string) (*ToolSpec, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	spec, ok := c.tools[toolID]
	return spec, ok
}

// List returns all registered tool ids
func (c *Catalog) List() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, 0, len(c.tools))
	for id := range c.tools {
		ids = append(ids, id)
	}
	return ids
}

// ValidateParams checks params against the tool's generated JSON schema.
// Callers are expected to check required keys first; this catches wrong types
// and unexpected keys.
func (c *Catalog) ValidateParams(toolID string, params map[string]interface{}) error {
	c.mu.RLock()
	schema := c.schemas[toolID]
	c.mu.RUnlock()

	if schema == nil {
		return fmt.Errorf("tool not found: %s", toolID)
	}

	if params == nil {
		params = map[string]interface{}{}
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(params))
	if err != nil {
		return err
	}
	if !result.Valid() {
		var msgs []string
		for _, resErr := range result.Errors() {
			msgs = append(msgs, resErr.String())
		}
		return fmt.Errorf("parameter validation failed for %s: %v", toolID, msgs)
	}
	return nil
}

func validateSpec(spec ToolSpec) error {
	if spec.ID == "" {
		return fmt.Errorf("tool id cannot be empty")
	}
	if spec.CommandID == "" {
		return fmt.Errorf("command id cannot be empty for %s", spec.ID)
	}

	validTypes := map[string]bool{
		"string": true, "number": true, "boolean": true,
		"object": true, "array": true, "integer": true,
	}
	for _, param := range spec.Params {
		if param.Name == "" {
			return fmt.Errorf("parameter name cannot be empty")
		}
		if !validTypes[param.Type] {
			return fmt.Errorf("invalid parameter type %s for %s", param.Type, param.Name)
		}
	}
	return nil
}

func generateSchema(spec ToolSpec) (*gojsonschema.Schema, error) {
	properties := make(map[string]interface{})
	required := []string{}

	for _, param := range spec.Params {
		properties[param.Name] = map[string]interface{}{
			"type":        param.Type,
			"description": param.Description,
		}
		if param.Required {
			required = append(required, param.Name)
		}
	}

	schemaMap := map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           properties,
	}
	if len(required) > 0 {
		schemaMap["required"] = required
	}

	return gojsonschema.NewSchema(gojsonschema.NewGoLoader(schemaMap))
}

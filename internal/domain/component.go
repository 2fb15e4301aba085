package domain

import "fmt"

// Size is a width/height pair in grid units.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ConfigKind is the allowed type of one config key.
type ConfigKind string

const (
	ConfigString ConfigKind = "string"
	ConfigNumber ConfigKind = "number"
	ConfigBool   ConfigKind = "bool"
	ConfigList   ConfigKind = "list"
	ConfigObject ConfigKind = "object"
)

// ComponentDefinition describes one placeable item type: its size
// constraints and the schema its config must satisfy. Definitions are
// supplied by the embedding application; the engine treats them as an
// opaque constraint source.
type ComponentDefinition struct {
	Type        string                `json:"type"`
	Name        string                `json:"name"`
	MinSize     Size                  `json:"minSize"`
	MaxSize     Size                  `json:"maxSize"`
	DefaultSize Size                  `json:"defaultSize"`
	Schema      map[string]ConfigKind `json:"schema,omitempty"`
}

// ValidateConfig checks cfg against the definition's schema. Keys not
// in the schema and values of the wrong kind are rejected. A nil
// schema accepts any config.
func (d ComponentDefinition) ValidateConfig(cfg Config) error {
	if d.Schema == nil {
		return nil
	}
	for key, val := range cfg {
		kind, ok := d.Schema[key]
		if !ok {
			return fmt.Errorf("config key %q not allowed for component %q", key, d.Type)
		}
		if !kindMatches(kind, val) {
			return fmt.Errorf("config key %q: expected %s", key, kind)
		}
	}
	return nil
}

func kindMatches(kind ConfigKind, val any) bool {
	switch kind {
	case ConfigString:
		_, ok := val.(string)
		return ok
	case ConfigNumber:
		switch val.(type) {
		case float64, float32, int, int64:
			return true
		}
		return false
	case ConfigBool:
		_, ok := val.(bool)
		return ok
	case ConfigList:
		_, ok := val.([]any)
		return ok
	case ConfigObject:
		_, ok := val.(map[string]any)
		return ok
	}
	return false
}

// ComponentRegistry resolves item types to their definitions and
// enumerates the registered palette.
type ComponentRegistry interface {
	Lookup(componentType string) (ComponentDefinition, bool)
	Types() []string
}

// Registry is a simple in-memory ComponentRegistry.
type Registry struct {
	defs map[string]ComponentDefinition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]ComponentDefinition)}
}

// Register adds or replaces a component definition.
func (r *Registry) Register(def ComponentDefinition) {
	r.defs[def.Type] = def
}

// Lookup returns the definition for componentType.
func (r *Registry) Lookup(componentType string) (ComponentDefinition, bool) {
	def, ok := r.defs[componentType]
	return def, ok
}

// Types returns all registered component types.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.defs))
	for t := range r.defs {
		types = append(types, t)
	}
	return types
}

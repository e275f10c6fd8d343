package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// ReservedName is the bookkeeping toolset for built-in meta tools; it may
// never appear as a catalog key.
const ReservedName = "_meta"

type ToolHandler func(ctx context.Context, args map[string]any) (any, error)

type ToolDefinition struct {
	Name        string
	Description string
	InputSchema any
	Annotations map[string]any
	Handler     ToolHandler
}

type ToolsetDefinition struct {
	Name             string
	Description      string
	Tools            []ToolDefinition
	Modules          []string
	DecisionCriteria string
}

// Catalog is the immutable set of toolset definitions supplied at startup.
type Catalog struct {
	toolsets map[string]ToolsetDefinition
}

func New(defs []ToolsetDefinition) (*Catalog, error) {
	toolsets := make(map[string]ToolsetDefinition, len(defs))
	for _, def := range defs {
		if def.Name == "" {
			return nil, errors.New("toolset name required")
		}
		if def.Name == ReservedName {
			return nil, fmt.Errorf("toolset name %q is reserved", ReservedName)
		}
		if _, exists := toolsets[def.Name]; exists {
			return nil, fmt.Errorf("duplicate toolset %q", def.Name)
		}
		toolsets[def.Name] = def
	}
	return &Catalog{toolsets: toolsets}, nil
}

func MustNew(defs []ToolsetDefinition) *Catalog {
	cat, err := New(defs)
	if err != nil {
		panic(err)
	}
	return cat
}

func (c *Catalog) Get(name string) (ToolsetDefinition, bool) {
	if c == nil {
		return ToolsetDefinition{}, false
	}
	def, ok := c.toolsets[name]
	return def, ok
}

func (c *Catalog) Has(name string) bool {
	_, ok := c.Get(name)
	return ok
}

func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.toolsets))
	for name := range c.toolsets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.toolsets)
}

// NamespacedName is the uniqueness key for a tool on the registration surface.
func NamespacedName(toolset, tool string) string {
	return toolset + "." + tool
}

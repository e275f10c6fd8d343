package sdk

import (
	"toolgate/internal/catalog"
	"toolgate/internal/toolsets"
)

// Core catalog types.
type ToolDefinition = catalog.ToolDefinition

type ToolsetDefinition = catalog.ToolsetDefinition

type ToolHandler = catalog.ToolHandler

type ModuleLoader = catalog.ModuleLoader

// Lifecycle result types returned by the meta tools.
type EnableResult = toolsets.EnableResult

type DisableResult = toolsets.DisableResult

type Status = toolsets.Status

type ToolsetSummary = toolsets.ToolsetSummary

// NamespacedName returns the qualified registration name for a tool.
func NamespacedName(toolset, tool string) string {
	return catalog.NamespacedName(toolset, tool)
}

// Toolset registration for plugin discovery.
func RegisterToolset(def ToolsetDefinition) error {
	return catalog.RegisterDefinition(def)
}

func MustRegisterToolset(def ToolsetDefinition) {
	catalog.MustRegisterDefinition(def)
}

func RegisterLoader(key string, loader ModuleLoader) error {
	return catalog.RegisterLoader(key, loader)
}

func MustRegisterLoader(key string, loader ModuleLoader) {
	catalog.MustRegisterLoader(key, loader)
}

func RegisteredToolsets() []string {
	names := make([]string, 0)
	for _, def := range catalog.RegisteredDefinitions() {
		names = append(names, def.Name)
	}
	return names
}

package catalog

import (
	"context"
	"errors"
	"sync"
)

// ModuleLoader lazily produces a toolset's tools. The load context is an
// opaque value supplied by the embedding application.
type ModuleLoader func(ctx context.Context, loadCtx any) ([]ToolDefinition, error)

type packageRegistry struct {
	mu      sync.RWMutex
	loaders map[string]ModuleLoader
	defs    []ToolsetDefinition
	seen    map[string]bool
}

var registry = packageRegistry{loaders: map[string]ModuleLoader{}, seen: map[string]bool{}}

func RegisterLoader(key string, loader ModuleLoader) error {
	if key == "" {
		return errors.New("module key required")
	}
	if loader == nil {
		return errors.New("module loader required")
	}
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if _, exists := registry.loaders[key]; exists {
		return errors.New("module loader already registered")
	}
	registry.loaders[key] = loader
	return nil
}

func MustRegisterLoader(key string, loader ModuleLoader) {
	if err := RegisterLoader(key, loader); err != nil {
		panic(err)
	}
}

func RegisterDefinition(def ToolsetDefinition) error {
	if def.Name == "" {
		return errors.New("toolset name required")
	}
	if def.Name == ReservedName {
		return errors.New("toolset name is reserved")
	}
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if registry.seen[def.Name] {
		return errors.New("toolset already registered")
	}
	registry.seen[def.Name] = true
	registry.defs = append(registry.defs, def)
	return nil
}

func MustRegisterDefinition(def ToolsetDefinition) {
	if err := RegisterDefinition(def); err != nil {
		panic(err)
	}
}

func RegisteredDefinitions() []ToolsetDefinition {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	return append([]ToolsetDefinition{}, registry.defs...)
}

func RegisteredLoaders() map[string]ModuleLoader {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	loaders := make(map[string]ModuleLoader, len(registry.loaders))
	for key, loader := range registry.loaders {
		loaders[key] = loader
	}
	return loaders
}

func LoaderFor(key string) (ModuleLoader, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	loader, ok := registry.loaders[key]
	return loader, ok
}

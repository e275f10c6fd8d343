package modules

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"toolgate/internal/catalog"
	"toolgate/internal/telemetry"
)

type Validation struct {
	IsValid   bool
	Sanitized string
	Error     string
}

// Resolver materializes the full tool list for a set of toolsets: declared
// tools first, then module-loaded tools in catalog-declared order. A broken
// module never blocks resolution of the rest of the catalog.
type Resolver struct {
	catalog *catalog.Catalog
	loaders map[string]catalog.ModuleLoader
	logger  *zap.Logger
	metrics telemetry.Metrics
}

func NewResolver(cat *catalog.Catalog, loaders map[string]catalog.ModuleLoader, logger *zap.Logger, metrics telemetry.Metrics) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}
	return &Resolver{catalog: cat, loaders: loaders, logger: logger, metrics: metrics}
}

func (r *Resolver) ResolveToolsForToolsets(ctx context.Context, names []string, loadCtx any) []catalog.ToolDefinition {
	var tools []catalog.ToolDefinition
	for _, name := range names {
		def, ok := r.catalog.Get(name)
		if !ok {
			r.logger.Warn("unknown toolset skipped", zap.String("toolset", name))
			continue
		}
		tools = append(tools, def.Tools...)
		for _, key := range def.Modules {
			loader, ok := r.loaders[key]
			if !ok {
				r.logger.Warn("module loader not registered",
					zap.String("toolset", name),
					zap.String("module", key))
				continue
			}
			loaded, err := invokeLoader(ctx, loader, loadCtx)
			if err != nil {
				r.logger.Error("module load failed",
					zap.String("toolset", name),
					zap.String("module", key),
					zap.Error(err))
				r.metrics.ObserveModuleLoadFailure(name, key)
				continue
			}
			tools = append(tools, loaded...)
		}
	}
	return tools
}

func (r *Resolver) ValidateToolsetName(name string) Validation {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return Validation{Error: "toolset name must be a non-empty string"}
	}
	if trimmed == catalog.ReservedName {
		return Validation{Error: fmt.Sprintf("toolset name %q is reserved", catalog.ReservedName)}
	}
	if !r.catalog.Has(trimmed) {
		return Validation{Error: fmt.Sprintf("unknown toolset %q; available toolsets: %s",
			trimmed, strings.Join(r.catalog.Names(), ", "))}
	}
	return Validation{IsValid: true, Sanitized: trimmed}
}

func invokeLoader(ctx context.Context, loader catalog.ModuleLoader, loadCtx any) (tools []catalog.ToolDefinition, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			tools = nil
			err = fmt.Errorf("module loader panic: %v", rec)
		}
	}()
	return loader(ctx, loadCtx)
}

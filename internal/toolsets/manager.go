package toolsets

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"toolgate/internal/audit"
	"toolgate/internal/catalog"
	"toolgate/internal/modules"
	"toolgate/internal/telemetry"
)

type ManagerConfig struct {
	Catalog     *catalog.Catalog
	Resolver    *modules.Resolver
	Surface     Surface
	LoadContext any
	ClientID    string
	Allowed     []string
	Logger      *zap.Logger
	Audit       *audit.Logger
	Metrics     telemetry.Metrics
}

// Manager owns the activation state of the catalog's toolsets for one
// registration surface. Registration is idempotent and namespaced: a
// namespaced tool name is registered at most once for the lifetime of the
// manager.
type Manager struct {
	catalog  *catalog.Catalog
	resolver *modules.Resolver
	surface  Surface
	loadCtx  any
	clientID string
	allowed  map[string]bool
	logger   *zap.Logger
	audit    *audit.Logger
	metrics  telemetry.Metrics

	mu           sync.Mutex
	active       map[string]bool
	registered   map[string]bool
	toolsetTools map[string][]string
	inflight     map[string]*enableOp
}

type enableOp struct {
	done   chan struct{}
	result EnableResult
}

func NewManager(cfg ManagerConfig) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}
	var allowed map[string]bool
	if cfg.Allowed != nil {
		allowed = make(map[string]bool, len(cfg.Allowed))
		for _, name := range cfg.Allowed {
			allowed[name] = true
		}
	}
	return &Manager{
		catalog:      cfg.Catalog,
		resolver:     cfg.Resolver,
		surface:      cfg.Surface,
		loadCtx:      cfg.LoadContext,
		clientID:     cfg.ClientID,
		allowed:      allowed,
		logger:       logger,
		audit:        cfg.Audit,
		metrics:      metrics,
		active:       map[string]bool{},
		registered:   map[string]bool{},
		toolsetTools: map[string][]string{},
		inflight:     map[string]*enableOp{},
	}
}

// EnableToolset resolves and registers a toolset's tools, then marks it
// active. Enabling an already-active toolset is a no-op. Concurrent calls
// for the same not-yet-active toolset share a single in-flight resolution:
// all callers receive the result of the one operation, so no tool is ever
// registered twice.
func (m *Manager) EnableToolset(ctx context.Context, name string) EnableResult {
	validation := m.resolver.ValidateToolsetName(name)
	if !validation.IsValid {
		return m.enableFailed(name, validation.Error)
	}
	name = validation.Sanitized
	if m.allowed != nil && !m.allowed[name] {
		return m.enableFailed(name, fmt.Sprintf("toolset %q is not permitted for this client", name))
	}

	m.mu.Lock()
	if m.active[name] {
		m.mu.Unlock()
		return EnableResult{Success: true}
	}
	if op, ok := m.inflight[name]; ok {
		m.mu.Unlock()
		<-op.done
		return op.result
	}
	op := &enableOp{done: make(chan struct{})}
	m.inflight[name] = op
	m.mu.Unlock()

	result := m.enable(ctx, name)

	m.mu.Lock()
	delete(m.inflight, name)
	if result.Success {
		m.active[name] = true
	}
	m.mu.Unlock()

	op.result = result
	close(op.done)

	m.metrics.ObserveToolsetEnable(name, nil)
	m.audit.Log(audit.Event{
		Timestamp: time.Now().UTC(),
		ClientID:  m.clientID,
		Action:    audit.ActionEnable,
		Toolset:   name,
		Outcome:   "success",
	})
	return result
}

func (m *Manager) enable(ctx context.Context, name string) EnableResult {
	tools := m.resolver.ResolveToolsForToolsets(ctx, []string{name}, m.loadCtx)
	count := 0
	for _, tool := range tools {
		qualified := catalog.NamespacedName(name, tool.Name)

		m.mu.Lock()
		if m.registered[qualified] {
			m.mu.Unlock()
			continue
		}
		m.registered[qualified] = true
		m.mu.Unlock()

		err := m.registerTool(Registration{
			Name:        qualified,
			Description: tool.Description,
			InputSchema: tool.InputSchema,
			Annotations: tool.Annotations,
			Handler:     tool.Handler,
		})
		if err != nil {
			m.mu.Lock()
			delete(m.registered, qualified)
			m.mu.Unlock()
			m.logger.Error("tool registration failed",
				zap.String("toolset", name),
				zap.String("tool", qualified),
				zap.Error(err))
			continue
		}

		m.mu.Lock()
		m.toolsetTools[name] = append(m.toolsetTools[name], qualified)
		m.mu.Unlock()
		m.metrics.ObserveToolRegistration(name)
		m.audit.Log(audit.Event{
			Timestamp: time.Now().UTC(),
			ClientID:  m.clientID,
			Action:    audit.ActionRegister,
			Toolset:   name,
			Tool:      qualified,
			Outcome:   "success",
		})
		count++
	}
	return EnableResult{Success: true, RegisteredCount: count}
}

func (m *Manager) registerTool(reg Registration) error {
	if m.surface == nil {
		return errors.New("registration surface is required")
	}
	return m.surface.RegisterTool(reg)
}

func (m *Manager) enableFailed(name, reason string) EnableResult {
	m.metrics.ObserveToolsetEnable(name, errors.New(reason))
	m.audit.Log(audit.Event{
		Timestamp: time.Now().UTC(),
		ClientID:  m.clientID,
		Action:    audit.ActionEnable,
		Toolset:   name,
		Outcome:   "error",
		Error:     reason,
	})
	return EnableResult{Error: reason}
}

// DisableToolset marks the toolset inactive. It does NOT remove previously
// registered tools from the registration surface or from the registration
// history: the surface is append-only, so disable affects visibility and
// listing semantics only.
func (m *Manager) DisableToolset(name string) DisableResult {
	validation := m.resolver.ValidateToolsetName(name)
	if !validation.IsValid {
		return DisableResult{Error: validation.Error}
	}
	name = validation.Sanitized

	m.mu.Lock()
	m.active[name] = false
	m.mu.Unlock()

	m.metrics.ObserveToolsetDisable(name)
	m.audit.Log(audit.Event{
		Timestamp: time.Now().UTC(),
		ClientID:  m.clientID,
		Action:    audit.ActionDisable,
		Toolset:   name,
		Outcome:   "success",
	})
	return DisableResult{Success: true}
}

// EnableToolsets enables each name sequentially and collects per-name
// results; an earlier success is not rolled back by a later failure.
func (m *Manager) EnableToolsets(ctx context.Context, names []string) []EnableResult {
	results := make([]EnableResult, 0, len(names))
	for _, name := range names {
		results = append(results, m.EnableToolset(ctx, name))
	}
	return results
}

func (m *Manager) IsActive(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active[name]
}

func (m *Manager) AvailableToolsets() []string {
	return m.catalog.Names()
}

func (m *Manager) Definition(name string) (catalog.ToolsetDefinition, bool) {
	return m.catalog.Get(name)
}

func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	tools := make([]string, 0, len(m.registered))
	for name := range m.registered {
		tools = append(tools, name)
	}
	sort.Strings(tools)
	toolsetTools := make(map[string][]string, len(m.toolsetTools))
	for toolset, names := range m.toolsetTools {
		toolsetTools[toolset] = append([]string{}, names...)
	}
	return Status{Tools: tools, ToolsetTools: toolsetTools}
}

func (m *Manager) RegisteredTools(name string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.toolsetTools[name]...)
}

// RecordMeta books already-registered built-in tools under the reserved
// toolset so Status reflects them.
func (m *Manager) RecordMeta(names []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, name := range names {
		if m.registered[name] {
			continue
		}
		m.registered[name] = true
		m.toolsetTools[catalog.ReservedName] = append(m.toolsetTools[catalog.ReservedName], name)
	}
}

package mcp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"toolgate/internal/audit"
	"toolgate/internal/cache"
	"toolgate/internal/catalog"
	"toolgate/internal/modules"
	"toolgate/internal/permissions"
	"toolgate/internal/telemetry"
	"toolgate/internal/toolsets"
)

type SessionsConfig struct {
	ServerName      string
	Version         string
	Catalog         *catalog.Catalog
	Loaders         map[string]catalog.ModuleLoader
	Permissions     *permissions.Resolver
	Mode            toolsets.Mode
	StartupToolsets []string
	LoadContext     any
	MaxSessions     int
	SessionTTL      time.Duration
	PruneInterval   time.Duration
	Logger          *zap.Logger
	Audit           *audit.Logger
	Metrics         telemetry.Metrics
}

// Session is the full per-client server assembly: one MCP server, one
// registration surface, one lifecycle manager, one orchestrator.
type Session struct {
	ID           string
	Server       *sdkmcp.Server
	Manager      *toolsets.Manager
	Orchestrator *toolsets.Orchestrator
}

// Sessions caches one Session per client id. Evicted sessions drop their
// toolset activation state; a returning client starts from the configured
// startup toolsets again.
type Sessions struct {
	cfg      SessionsConfig
	logger   *zap.Logger
	metrics  telemetry.Metrics
	resolver *modules.Resolver

	mu       sync.Mutex
	sessions *cache.Cache[*Session]
	building map[string]*buildOp
}

type buildOp struct {
	done    chan struct{}
	session *Session
	err     error
}

func NewSessions(cfg SessionsConfig) *Sessions {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}
	s := &Sessions{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		resolver: modules.NewResolver(cfg.Catalog, cfg.Loaders, logger, metrics),
		building: map[string]*buildOp{},
	}
	s.sessions = cache.New(cache.Config[*Session]{
		MaxEntries:    cfg.MaxSessions,
		TTL:           cfg.SessionTTL,
		PruneInterval: cfg.PruneInterval,
		Logger:        logger,
		OnEvict: func(clientID string, session *Session) {
			metrics.ObserveSessionEviction()
			logger.Info("session evicted", zap.String("client", clientID))
		},
	})
	return s
}

// Acquire returns the cached session for the client, building one on first
// use. An empty client id gets a fresh anonymous session under a generated
// id. Concurrent calls for the same not-yet-built client share a single
// build; builds for different clients proceed independently, so one client's
// slow module loader never delays another client. Permissions are resolved
// once per session build; InvalidatePermissions plus session expiry picks up
// changes.
func (s *Sessions) Acquire(ctx context.Context, clientID string, headers map[string]string) (*Session, error) {
	if clientID == "" {
		clientID = "anon-" + uuid.NewString()
	}

	s.mu.Lock()
	if session, ok := s.sessions.Get(clientID); ok {
		s.mu.Unlock()
		return session, nil
	}
	if op, ok := s.building[clientID]; ok {
		s.mu.Unlock()
		<-op.done
		return op.session, op.err
	}
	op := &buildOp{done: make(chan struct{})}
	s.building[clientID] = op
	s.mu.Unlock()

	session, err := s.build(ctx, clientID, headers)

	s.mu.Lock()
	delete(s.building, clientID)
	if err == nil {
		s.sessions.Set(clientID, session)
	}
	s.mu.Unlock()

	op.session = session
	op.err = err
	close(op.done)
	return session, err
}

func (s *Sessions) build(ctx context.Context, clientID string, headers map[string]string) (*Session, error) {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    s.cfg.ServerName,
		Version: s.cfg.Version,
	}, nil)
	surface := NewServerSurface(server, s.logger)

	var allowed []string
	if s.cfg.Permissions != nil {
		allowed = s.cfg.Permissions.ResolvePermissions(clientID, headers)
	}

	manager := toolsets.NewManager(toolsets.ManagerConfig{
		Catalog:     s.cfg.Catalog,
		Resolver:    s.resolver,
		Surface:     surface,
		LoadContext: s.cfg.LoadContext,
		ClientID:    clientID,
		Allowed:     allowed,
		Logger:      s.logger,
		Audit:       s.cfg.Audit,
		Metrics:     s.metrics,
	})
	orch := toolsets.NewOrchestrator(manager, surface, s.cfg.Mode, s.logger)
	if err := orch.Install(ctx); err != nil {
		return nil, fmt.Errorf("install meta tools: %w", err)
	}

	for _, result := range manager.EnableToolsets(ctx, s.cfg.StartupToolsets) {
		if !result.Success {
			s.logger.Warn("startup toolset skipped", zap.String("error", result.Error))
		}
	}

	s.logger.Info("session built",
		zap.String("client", clientID),
		zap.String("mode", string(orch.Mode())))
	return &Session{ID: clientID, Server: server, Manager: manager, Orchestrator: orch}, nil
}

// InvalidatePermissions drops the memoized permission resolution and the
// cached session for one client; the next Acquire rebuilds both.
func (s *Sessions) InvalidatePermissions(clientID string) {
	if s.cfg.Permissions != nil {
		s.cfg.Permissions.InvalidateCache(clientID)
	}
	s.mu.Lock()
	s.sessions.Delete(clientID)
	s.mu.Unlock()
}

// Reload clears all memoized permissions and cached sessions.
func (s *Sessions) Reload() {
	if s.cfg.Permissions != nil {
		s.cfg.Permissions.ClearCache()
	}
	s.mu.Lock()
	s.sessions.Clear()
	s.mu.Unlock()
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions.Len()
}

func (s *Sessions) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions.Stop(true)
}

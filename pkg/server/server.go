package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"toolgate/internal/audit"
	"toolgate/internal/catalog"
	"toolgate/internal/config"
	"toolgate/internal/logging"
	tgmcp "toolgate/internal/mcp"
	"toolgate/internal/permissions"
	"toolgate/internal/telemetry"
	"toolgate/internal/toolsets"
)

type Options struct {
	ConfigPath        string
	Mode              string
	Toolsets          []string
	PermissionsHeader string
	LogLevel          string
	Version           string
	Stderr            io.Writer
	Transport         sdkmcp.Transport
	// MetricsRegistry receives the server's counters; nil means
	// prometheus.DefaultRegisterer.
	MetricsRegistry prometheus.Registerer
}

func Run(ctx context.Context, opts Options) error {
	errOut := opts.Stderr
	if errOut == nil {
		errOut = os.Stderr
	}
	configPath := opts.ConfigPath
	if configPath == "" {
		if env := os.Getenv("TOOLGATE_CONFIG"); env != "" {
			configPath = env
		}
	}
	overrides := config.Overrides{}
	if opts.Mode != "" {
		overrides.Mode = &opts.Mode
	}
	if len(opts.Toolsets) > 0 {
		overrides.Toolsets = &opts.Toolsets
	}
	if opts.LogLevel != "" {
		overrides.LogLevel = &opts.LogLevel
	}
	if opts.PermissionsHeader != "" {
		overrides.PermissionsHeader = &opts.PermissionsHeader
	}

	cfg, err := config.Load(configPath, "", overrides)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	logger := logging.New(cfg.LogLevel, errOut)
	defer logger.Sync()

	sessions, err := buildRuntime(cfg, opts.Version, logger, errOut, opts.MetricsRegistry)
	if err != nil {
		return fmt.Errorf("init failed: %w", err)
	}
	defer sessions.Close()

	reloadCh := make(chan os.Signal, 1)
	notifyReload(reloadCh)
	go func() {
		for range reloadCh {
			sessions.Reload()
			logger.Info("sessions and permissions cleared on reload signal")
		}
	}()

	session, err := sessions.Acquire(ctx, "local", nil)
	if err != nil {
		return fmt.Errorf("session init failed: %w", err)
	}
	logger.Info("server starting",
		zap.String("mode", cfg.Mode),
		zap.String("version", opts.Version))

	transport := opts.Transport
	if transport == nil {
		transport = &sdkmcp.StdioTransport{}
	}
	if err := session.Server.Run(ctx, transport); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func buildRuntime(cfg config.Config, version string, logger *zap.Logger, errOut io.Writer, registerer prometheus.Registerer) (*tgmcp.Sessions, error) {
	cat, err := catalog.New(catalog.RegisteredDefinitions())
	if err != nil {
		return nil, err
	}
	metrics := telemetry.NewPrometheusMetrics(registerer)
	auditLogger := audit.NewLogger(errOut)

	var permResolver *permissions.Resolver
	if cfg.Permissions.Source != "" {
		permResolver = permissions.NewResolver(permissions.Config{
			Source:     permissions.Source(cfg.Permissions.Source),
			HeaderName: cfg.Permissions.Header,
			Clients:    cfg.Permissions.Clients,
			Default:    cfg.Permissions.Default,
		}, logger, metrics)
	}

	return tgmcp.NewSessions(tgmcp.SessionsConfig{
		ServerName:      "toolgate",
		Version:         version,
		Catalog:         cat,
		Loaders:         catalog.RegisteredLoaders(),
		Permissions:     permResolver,
		Mode:            toolsets.ParseMode(cfg.Mode),
		StartupToolsets: cfg.Toolsets,
		MaxSessions:     cfg.SessionCache.MaxEntries,
		SessionTTL:      time.Duration(cfg.SessionCache.TTLSeconds) * time.Second,
		PruneInterval:   time.Duration(cfg.SessionCache.PruneIntervalSeconds) * time.Second,
		Logger:          logger,
		Audit:           auditLogger,
		Metrics:         metrics,
	}), nil
}

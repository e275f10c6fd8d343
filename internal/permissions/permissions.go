package permissions

import (
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"

	"toolgate/internal/telemetry"
)

const DefaultHeaderName = "mcp-toolset-permissions"

type Source string

const (
	SourceHeaders Source = "headers"
	SourceConfig  Source = "config"
)

type Config struct {
	Source     Source
	HeaderName string
	Clients    map[string][]string
	Lookup     func(clientID string) ([]string, error)
	Default    []string
}

// Resolver computes the toolset names a client may use. Results are memoized
// per client id with no expiry; callers that expect permission changes to
// take effect must invalidate explicitly.
type Resolver struct {
	cfg     Config
	logger  *zap.Logger
	metrics telemetry.Metrics

	mu    sync.Mutex
	cache map[string][]string
}

func NewResolver(cfg Config, logger *zap.Logger, metrics telemetry.Metrics) *Resolver {
	if cfg.Source == "" {
		cfg.Source = SourceConfig
	}
	if cfg.HeaderName == "" {
		cfg.HeaderName = DefaultHeaderName
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}
	return &Resolver{cfg: cfg, logger: logger, metrics: metrics, cache: map[string][]string{}}
}

func (r *Resolver) ResolvePermissions(clientID string, headers map[string]string) []string {
	r.mu.Lock()
	if cached, ok := r.cache[clientID]; ok {
		r.mu.Unlock()
		return append([]string{}, cached...)
	}
	r.mu.Unlock()

	resolved := r.resolve(clientID, headers)
	r.metrics.ObservePermissionResolution(string(r.cfg.Source))

	r.mu.Lock()
	r.cache[clientID] = resolved
	r.mu.Unlock()
	return append([]string{}, resolved...)
}

func (r *Resolver) InvalidateCache(clientID string) {
	r.mu.Lock()
	delete(r.cache, clientID)
	r.mu.Unlock()
}

func (r *Resolver) ClearCache() {
	r.mu.Lock()
	r.cache = map[string][]string{}
	r.mu.Unlock()
}

// resolve never lets a failure escape: any panic in a source yields the
// empty, most-restrictive permission list.
func (r *Resolver) resolve(clientID string, headers map[string]string) (out []string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("permission resolution panic",
				zap.String("client", clientID),
				zap.Any("panic", rec))
			out = []string{}
		}
	}()
	switch r.cfg.Source {
	case SourceHeaders:
		return sanitize(parseList(headerValue(headers, r.cfg.HeaderName)))
	default:
		return r.resolveFromConfig(clientID)
	}
}

func (r *Resolver) resolveFromConfig(clientID string) []string {
	if r.cfg.Lookup != nil {
		values, err := r.cfg.Lookup(clientID)
		switch {
		case err != nil:
			r.logger.Warn("permission lookup failed",
				zap.String("client", clientID),
				zap.Error(err))
		case values == nil:
			r.logger.Warn("permission lookup returned no list",
				zap.String("client", clientID))
		default:
			return sanitize(values)
		}
	}
	if values, ok := r.cfg.Clients[clientID]; ok {
		return sanitize(values)
	}
	if r.cfg.Default != nil {
		return sanitize(r.cfg.Default)
	}
	return []string{}
}

// headerValue looks the configured name up on the lowercased key first, then
// falls back to a case-insensitive scan of all header keys.
func headerValue(headers map[string]string, name string) string {
	if len(headers) == 0 {
		return ""
	}
	lower := strings.ToLower(name)
	if value, ok := headers[lower]; ok {
		return value
	}
	for key, value := range headers {
		if strings.EqualFold(key, name) {
			return value
		}
	}
	return ""
}

func parseList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return strings.Split(value, ",")
}

func sanitize(values []string) []string {
	out := []string{}
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// FromHTTPHeader flattens request headers into the transport-agnostic map
// the resolver consumes, keyed by lowercased name.
func FromHTTPHeader(header http.Header) map[string]string {
	if header == nil {
		return nil
	}
	out := make(map[string]string, len(header))
	for key, values := range header {
		if len(values) == 0 {
			continue
		}
		out[strings.ToLower(key)] = values[0]
	}
	return out
}

package permissions

import (
	"errors"
	"net/http"
	"reflect"
	"testing"
)

func TestHeadersSourceParsesList(t *testing.T) {
	resolver := NewResolver(Config{Source: SourceHeaders}, nil, nil)
	headers := map[string]string{"mcp-toolset-permissions": "core, ext ,, ignored-empty ,"}
	got := resolver.ResolvePermissions("client-1", headers)
	want := []string{"core", "ext", "ignored-empty"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected permissions: %v", got)
	}
}

func TestHeadersSourceMixedCaseKey(t *testing.T) {
	resolver := NewResolver(Config{Source: SourceHeaders}, nil, nil)
	headers := map[string]string{"MCP-Toolset-Permissions": "core,ext"}
	got := resolver.ResolvePermissions("client-1", headers)
	if !reflect.DeepEqual(got, []string{"core", "ext"}) {
		t.Fatalf("expected case-insensitive header match, got %v", got)
	}
}

func TestHeadersSourceMissingHeader(t *testing.T) {
	resolver := NewResolver(Config{Source: SourceHeaders}, nil, nil)
	if got := resolver.ResolvePermissions("client-1", nil); len(got) != 0 {
		t.Fatalf("expected empty permissions, got %v", got)
	}
	resolver.InvalidateCache("client-1")
	if got := resolver.ResolvePermissions("client-1", map[string]string{"mcp-toolset-permissions": "  "}); len(got) != 0 {
		t.Fatalf("expected empty permissions for blank header, got %v", got)
	}
}

func TestConfigSourceLookupWins(t *testing.T) {
	resolver := NewResolver(Config{
		Source: SourceConfig,
		Lookup: func(clientID string) ([]string, error) {
			return []string{" core "}, nil
		},
		Clients: map[string][]string{"client-1": {"ext"}},
		Default: []string{"fallback"},
	}, nil, nil)
	got := resolver.ResolvePermissions("client-1", nil)
	if !reflect.DeepEqual(got, []string{"core"}) {
		t.Fatalf("expected lookup result, got %v", got)
	}
}

func TestConfigSourceLookupErrorFallsThrough(t *testing.T) {
	resolver := NewResolver(Config{
		Source: SourceConfig,
		Lookup: func(clientID string) ([]string, error) {
			return nil, errors.New("boom")
		},
		Clients: map[string][]string{"client-1": {"ext"}},
		Default: []string{"fallback"},
	}, nil, nil)
	if got := resolver.ResolvePermissions("client-1", nil); !reflect.DeepEqual(got, []string{"ext"}) {
		t.Fatalf("expected static map after lookup failure, got %v", got)
	}
	if got := resolver.ResolvePermissions("client-2", nil); !reflect.DeepEqual(got, []string{"fallback"}) {
		t.Fatalf("expected default after map miss, got %v", got)
	}
}

func TestConfigSourceEmptyMapEntryBeatsDefault(t *testing.T) {
	resolver := NewResolver(Config{
		Source:  SourceConfig,
		Clients: map[string][]string{"client-1": {}},
		Default: []string{"fallback"},
	}, nil, nil)
	if got := resolver.ResolvePermissions("client-1", nil); len(got) != 0 {
		t.Fatalf("expected empty list for present map entry, got %v", got)
	}
}

func TestConfigSourceLookupPanicYieldsEmpty(t *testing.T) {
	resolver := NewResolver(Config{
		Source: SourceConfig,
		Lookup: func(clientID string) ([]string, error) {
			panic("boom")
		},
		Default: []string{"fallback"},
	}, nil, nil)
	if got := resolver.ResolvePermissions("client-1", nil); len(got) != 0 {
		t.Fatalf("expected most-restrictive empty list, got %v", got)
	}
}

func TestResolveIsMemoized(t *testing.T) {
	calls := 0
	resolver := NewResolver(Config{
		Source: SourceConfig,
		Lookup: func(clientID string) ([]string, error) {
			calls++
			return []string{"core"}, nil
		},
	}, nil, nil)
	resolver.ResolvePermissions("client-1", nil)
	resolver.ResolvePermissions("client-1", nil)
	if calls != 1 {
		t.Fatalf("expected one resolution, got %d", calls)
	}
	resolver.InvalidateCache("client-1")
	resolver.ResolvePermissions("client-1", nil)
	if calls != 2 {
		t.Fatalf("expected second resolution after invalidate, got %d", calls)
	}
	resolver.ClearCache()
	resolver.ResolvePermissions("client-1", nil)
	if calls != 3 {
		t.Fatalf("expected third resolution after clear, got %d", calls)
	}
}

func TestCachedResultIsCopied(t *testing.T) {
	resolver := NewResolver(Config{
		Source:  SourceConfig,
		Default: []string{"core"},
	}, nil, nil)
	first := resolver.ResolvePermissions("client-1", nil)
	first[0] = "mutated"
	second := resolver.ResolvePermissions("client-1", nil)
	if second[0] != "core" {
		t.Fatalf("expected cached copy to be isolated, got %v", second)
	}
}

func TestFromHTTPHeader(t *testing.T) {
	header := http.Header{}
	header.Set("MCP-Toolset-Permissions", "core")
	got := FromHTTPHeader(header)
	if got["mcp-toolset-permissions"] != "core" {
		t.Fatalf("unexpected header map: %v", got)
	}
	if FromHTTPHeader(nil) != nil {
		t.Fatalf("expected nil map for nil header")
	}
}

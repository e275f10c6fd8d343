package config

import (
	"errors"
	"path/filepath"
	"sort"

	"os"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Mode         string             `toml:"mode"`
	Toolsets     []string           `toml:"toolsets"`
	LogLevel     string             `toml:"log_level"`
	Permissions  PermissionsConfig  `toml:"permissions"`
	SessionCache SessionCacheConfig `toml:"session_cache"`
}

type PermissionsConfig struct {
	Source  string              `toml:"source"`
	Header  string              `toml:"header"`
	Default []string            `toml:"default"`
	Clients map[string][]string `toml:"clients"`
}

type SessionCacheConfig struct {
	MaxEntries           int `toml:"max_entries"`
	TTLSeconds           int `toml:"ttl_seconds"`
	PruneIntervalSeconds int `toml:"prune_interval_seconds"`
}

type Overrides struct {
	Mode              *string
	Toolsets          *[]string
	LogLevel          *string
	PermissionsHeader *string
}

func DefaultConfig() Config {
	return Config{
		Mode:     "dynamic",
		Toolsets: nil,
		LogLevel: "info",
		SessionCache: SessionCacheConfig{
			MaxEntries:           100,
			TTLSeconds:           1800,
			PruneIntervalSeconds: 600,
		},
	}
}

func Load(path string, dir string, overrides Overrides) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		fileCfg, err := readFile(path)
		if err != nil {
			return cfg, err
		}
		merge(&cfg, fileCfg)
	}

	if dir != "" {
		files, err := dropInFiles(dir)
		if err != nil {
			return cfg, err
		}
		for _, file := range files {
			fileCfg, err := readFile(file)
			if err != nil {
				return cfg, err
			}
			merge(&cfg, fileCfg)
		}
	}

	applyOverrides(&cfg, overrides)
	return cfg, nil
}

func readFile(path string) (Config, error) {
	var cfg Config
	if _, err := os.Stat(path); err != nil {
		return cfg, err
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func dropInFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func merge(dst *Config, src Config) {
	if src.Mode != "" {
		dst.Mode = src.Mode
	}
	if len(src.Toolsets) > 0 {
		dst.Toolsets = append([]string{}, src.Toolsets...)
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.Permissions.Source != "" {
		dst.Permissions.Source = src.Permissions.Source
	}
	if src.Permissions.Header != "" {
		dst.Permissions.Header = src.Permissions.Header
	}
	if src.Permissions.Default != nil {
		dst.Permissions.Default = append([]string{}, src.Permissions.Default...)
	}
	if len(src.Permissions.Clients) > 0 {
		if dst.Permissions.Clients == nil {
			dst.Permissions.Clients = map[string][]string{}
		}
		for client, toolsets := range src.Permissions.Clients {
			dst.Permissions.Clients[client] = append([]string{}, toolsets...)
		}
	}
	if src.SessionCache.MaxEntries > 0 {
		dst.SessionCache.MaxEntries = src.SessionCache.MaxEntries
	}
	if src.SessionCache.TTLSeconds > 0 {
		dst.SessionCache.TTLSeconds = src.SessionCache.TTLSeconds
	}
	if src.SessionCache.PruneIntervalSeconds > 0 {
		dst.SessionCache.PruneIntervalSeconds = src.SessionCache.PruneIntervalSeconds
	}
}

func applyOverrides(cfg *Config, overrides Overrides) {
	if overrides.Mode != nil {
		cfg.Mode = *overrides.Mode
	}
	if overrides.Toolsets != nil {
		cfg.Toolsets = append([]string{}, (*overrides.Toolsets)...)
	}
	if overrides.LogLevel != nil {
		cfg.LogLevel = *overrides.LogLevel
	}
	if overrides.PermissionsHeader != nil {
		cfg.Permissions.Header = *overrides.PermissionsHeader
	}
}

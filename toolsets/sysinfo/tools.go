package sysinfo

import (
	"context"
	"os"
	"runtime"
	"time"

	"toolgate/pkg/sdk"
)

var startTime = time.Now()

func loadTools(_ context.Context, _ any) ([]sdk.ToolDefinition, error) {
	return []sdk.ToolDefinition{
		{
			Name:        "runtime",
			Description: "Report Go runtime details: version, platform, CPUs, goroutines.",
			InputSchema: map[string]any{"type": "object", "properties": map[string]any{}},
			Handler:     handleRuntime,
		},
		{
			Name:        "memory",
			Description: "Report memory statistics for the server process.",
			InputSchema: map[string]any{"type": "object", "properties": map[string]any{}},
			Handler:     handleMemory,
		},
		{
			Name:        "host",
			Description: "Report hostname, pid, and process uptime.",
			InputSchema: map[string]any{"type": "object", "properties": map[string]any{}},
			Handler:     handleHost,
		},
	}, nil
}

func handleRuntime(_ context.Context, _ map[string]any) (any, error) {
	return map[string]any{
		"goVersion":  runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"numCPU":     runtime.NumCPU(),
		"goroutines": runtime.NumGoroutine(),
	}, nil
}

func handleMemory(_ context.Context, _ map[string]any) (any, error) {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return map[string]any{
		"allocBytes":      stats.Alloc,
		"totalAllocBytes": stats.TotalAlloc,
		"sysBytes":        stats.Sys,
		"numGC":           stats.NumGC,
	}, nil
}

func handleHost(_ context.Context, _ map[string]any) (any, error) {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return map[string]any{
		"hostname":      hostname,
		"pid":           os.Getpid(),
		"uptimeSeconds": int64(time.Since(startTime).Seconds()),
	}, nil
}

package diag

import (
	"context"
	"errors"
	"time"
)

func handlePing(_ context.Context, _ map[string]any) (any, error) {
	return map[string]any{
		"pong": true,
		"time": time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func handleEcho(_ context.Context, args map[string]any) (any, error) {
	text, ok := args["text"].(string)
	if !ok || text == "" {
		return nil, errors.New("text is required")
	}
	return map[string]any{"echoed": text}, nil
}

func handleNow(_ context.Context, _ map[string]any) (any, error) {
	now := time.Now()
	return map[string]any{
		"unix":    now.Unix(),
		"rfc3339": now.UTC().Format(time.RFC3339),
		"weekday": now.UTC().Weekday().String(),
	}, nil
}

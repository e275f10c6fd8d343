package diag

func schemaPing() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}

func schemaEcho() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{"type": "string"},
		},
		"required": []string{"text"},
	}
}

func schemaNow() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}

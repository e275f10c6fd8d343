package diag

import (
	"toolgate/pkg/sdk"
)

func init() {
	sdk.MustRegisterToolset(sdk.ToolsetDefinition{
		Name:             "diag",
		Description:      "Connectivity and liveness checks for the server itself.",
		DecisionCriteria: "Use when verifying the server is reachable and responsive, or to echo payloads back for transport debugging.",
		Tools:            toolDefinitions(),
	})
}

func toolDefinitions() []sdk.ToolDefinition {
	return []sdk.ToolDefinition{
		{
			Name:        "ping",
			Description: "Respond with a pong and the server's current time.",
			InputSchema: schemaPing(),
			Handler:     handlePing,
		},
		{
			Name:        "echo",
			Description: "Echo the given text back to the caller.",
			InputSchema: schemaEcho(),
			Handler:     handleEcho,
		},
		{
			Name:        "now",
			Description: "Report the server's current time in several representations.",
			InputSchema: schemaNow(),
			Handler:     handleNow,
		},
	}
}

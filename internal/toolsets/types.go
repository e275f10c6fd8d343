package toolsets

import "toolgate/internal/catalog"

// Registration is the single operation consumed on the external
// tool-registration surface. The surface is assumed append-only: no
// unregister operation exists or is required.
type Registration struct {
	Name        string
	Description string
	InputSchema any
	Annotations map[string]any
	Handler     catalog.ToolHandler
}

type Surface interface {
	RegisterTool(reg Registration) error
}

type EnableResult struct {
	Success         bool   `json:"success"`
	Error           string `json:"error,omitempty"`
	RegisteredCount int    `json:"registeredCount"`
}

type DisableResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Status reflects the full registration history of the manager,
// irrespective of which toolsets are currently active.
type Status struct {
	Tools        []string            `json:"tools"`
	ToolsetTools map[string][]string `json:"toolsetToTools"`
}

type ToolsetSummary struct {
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	Active           bool     `json:"active"`
	DecisionCriteria string   `json:"decisionCriteria,omitempty"`
	Tools            []string `json:"tools"`
}

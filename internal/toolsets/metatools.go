package toolsets

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
)

const (
	MetaEnableToolset   = "enable_toolset"
	MetaDisableToolset  = "disable_toolset"
	MetaListToolsets    = "list_toolsets"
	MetaDescribeToolset = "describe_toolset"
	MetaListTools       = "list_tools"
)

type UnknownToolset struct {
	Error             string   `json:"error"`
	AvailableToolsets []string `json:"availableToolsets"`
}

func (o *Orchestrator) metaTools() []Registration {
	listTools := Registration{
		Name:        MetaListTools,
		Description: "List every registered tool, grouped by toolset.",
		InputSchema: emptyObjectSchema(),
		Handler:     o.handleListTools,
	}
	if o.mode == ModeStatic {
		return []Registration{listTools}
	}
	return []Registration{
		{
			Name:        MetaEnableToolset,
			Description: "Enable a toolset by name, registering its tools.",
			InputSchema: nameSchema("Name of the toolset to enable."),
			Handler:     o.handleEnableToolset,
		},
		{
			Name:        MetaDisableToolset,
			Description: "Disable a toolset by name. Already registered tools remain registered; only listing state changes.",
			InputSchema: nameSchema("Name of the toolset to disable."),
			Handler:     o.handleDisableToolset,
		},
		{
			Name:        MetaListToolsets,
			Description: "List all available toolsets with their activation state and registered tools.",
			InputSchema: emptyObjectSchema(),
			Handler:     o.handleListToolsets,
		},
		{
			Name:        MetaDescribeToolset,
			Description: "Describe a single toolset: activation state, registered tools, and selection criteria.",
			InputSchema: nameSchema("Name of the toolset to describe."),
			Handler:     o.handleDescribeToolset,
		},
		listTools,
	}
}

func (o *Orchestrator) handleEnableToolset(ctx context.Context, args map[string]any) (any, error) {
	name, _ := args["name"].(string)
	return o.manager.EnableToolset(ctx, name), nil
}

func (o *Orchestrator) handleDisableToolset(_ context.Context, args map[string]any) (any, error) {
	name, _ := args["name"].(string)
	return o.manager.DisableToolset(name), nil
}

func (o *Orchestrator) handleListToolsets(_ context.Context, _ map[string]any) (any, error) {
	names := o.manager.AvailableToolsets()
	summaries := make([]ToolsetSummary, 0, len(names))
	for _, name := range names {
		summaries = append(summaries, o.summarize(name))
	}
	return map[string]any{"toolsets": summaries}, nil
}

func (o *Orchestrator) handleDescribeToolset(_ context.Context, args map[string]any) (any, error) {
	name, _ := args["name"].(string)
	if _, ok := o.manager.Definition(name); !ok {
		return UnknownToolset{
			Error:             "unknown toolset: " + name,
			AvailableToolsets: o.manager.AvailableToolsets(),
		}, nil
	}
	return o.summarize(name), nil
}

func (o *Orchestrator) handleListTools(_ context.Context, _ map[string]any) (any, error) {
	return o.manager.Status(), nil
}

func (o *Orchestrator) summarize(name string) ToolsetSummary {
	def, _ := o.manager.Definition(name)
	return ToolsetSummary{
		Name:             name,
		Description:      def.Description,
		Active:           o.manager.IsActive(name),
		DecisionCriteria: def.DecisionCriteria,
		Tools:            o.manager.RegisteredTools(name),
	}
}

func emptyObjectSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object"}
}

func nameSchema(description string) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"name": {Type: "string", Description: description},
		},
		Required: []string{"name"},
	}
}

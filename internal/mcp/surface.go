package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	sdkjsonrpc "github.com/modelcontextprotocol/go-sdk/jsonrpc"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"toolgate/internal/toolsets"
)

// ServerSurface adapts an MCP server to the append-only registration
// surface the toolset manager expects. AddTool on the SDK server is
// idempotent by name, but the manager never re-registers anyway.
type ServerSurface struct {
	server *sdkmcp.Server
	logger *zap.Logger
}

func NewServerSurface(server *sdkmcp.Server, logger *zap.Logger) *ServerSurface {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ServerSurface{server: server, logger: logger}
}

func (s *ServerSurface) RegisterTool(reg toolsets.Registration) error {
	if s.server == nil {
		return fmt.Errorf("mcp server is required")
	}
	if reg.Handler == nil {
		return fmt.Errorf("tool %q has no handler", reg.Name)
	}
	schema := reg.InputSchema
	if schema == nil {
		schema = map[string]any{"type": "object"}
	}
	tool := &sdkmcp.Tool{
		Name:        reg.Name,
		Description: reg.Description,
		InputSchema: schema,
	}
	s.server.AddTool(tool, s.callHandler(reg))
	s.logger.Debug("tool registered", zap.String("tool", reg.Name))
	return nil
}

func (s *ServerSurface) callHandler(reg toolsets.Registration) sdkmcp.ToolHandler {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
		args := map[string]any{}
		if req != nil && req.Params != nil && len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
				return nil, &sdkjsonrpc.Error{Code: sdkjsonrpc.CodeInvalidParams, Message: fmt.Sprintf("invalid arguments: %v", err)}
			}
		}
		data, err := reg.Handler(ctx, args)
		if err != nil {
			s.logger.Warn("tool call failed", zap.String("tool", reg.Name), zap.Error(err))
		}
		return buildCallToolResult(data, err), nil
	}
}

func buildCallToolResult(data any, toolErr error) *sdkmcp.CallToolResult {
	res := &sdkmcp.CallToolResult{}
	if toolErr != nil {
		res.IsError = true
		res.StructuredContent = BuildErrorEnvelope(toolErr, data)
		res.Content = []sdkmcp.Content{&sdkmcp.TextContent{Text: toolErr.Error()}}
		return res
	}

	if data != nil {
		res.StructuredContent = data
		dataJSON, err := json.Marshal(data)
		if err != nil {
			res.Content = []sdkmcp.Content{&sdkmcp.TextContent{Text: fmt.Sprintf("%v", data)}}
		} else {
			res.Content = []sdkmcp.Content{&sdkmcp.TextContent{Text: string(dataJSON)}}
		}
	} else {
		res.Content = []sdkmcp.Content{&sdkmcp.TextContent{Text: "{}"}}
	}
	return res
}

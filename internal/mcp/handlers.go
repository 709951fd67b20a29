package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"github.com/cloudshipai/codemode-gateway/internal/codemode/envelope"
	"github.com/cloudshipai/codemode-gateway/internal/codemode/mcpbuiltin"
	"github.com/cloudshipai/codemode-gateway/internal/codemode/sandbox"
	"github.com/cloudshipai/codemode-gateway/internal/codemode/search"
	"github.com/cloudshipai/codemode-gateway/internal/codemode/validate"
)

// validationFailureEnvelope builds the envelope a failed pre-flight check
// returns: a success=false envelope whose error.message is the validator
// string, not a separately signalled tool error.
func validationFailureEnvelope(message string) envelope.Result {
	return envelope.Fail("ValidationError", message, nil, envelope.Stats{})
}

// handleSearch implements the codemode_search tool.
func (s *Server) handleSearch(ctx context.Context, request mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcpgo.NewToolResultError(fmt.Sprintf("missing 'query' parameter: %v", err)), nil
	}
	typ := search.Kind(request.GetString("type", string(search.KindAll)))
	server := request.GetString("server", "")
	includeSchemas := request.GetBool("includeSchemas", false)

	result := s.search.Search(ctx, search.Request{
		Query:          query,
		Type:           typ,
		Server:         server,
		IncludeSchemas: includeSchemas,
	})

	body, err := json.Marshal(result)
	if err != nil {
		return mcpgo.NewToolResultError(fmt.Sprintf("failed to marshal search result: %v", err)), nil
	}
	return mcpgo.NewToolResultText(string(body)), nil
}

// handleExecute implements the codemode_execute tool. It never returns a
// tool-level error: validation failures and every execution outcome are
// carried inside the envelope itself, so nothing escapes as a thrown
// exception to the caller.
func (s *Server) handleExecute(ctx context.Context, request mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	// A missing or non-string code is treated as empty and reported by
	// validation inside the envelope.
	code := request.GetString("code", "")

	var timeoutPtr *int
	if timeout := request.GetInt("timeout", 0); timeout > 0 {
		timeoutPtr = &timeout
	}

	cfg := sandbox.Config{
		TimeoutMS:     s.sandbox.DefaultTimeoutMS,
		MaxMCPCalls:   s.sandbox.DefaultMaxMCPCalls,
		MaxCodeLength: s.sandbox.MaxCodeLength,
	}
	if timeoutPtr != nil {
		cfg.TimeoutMS = *timeoutPtr
	}

	if verr := validate.ExecuteRequest(code, s.sandbox.MaxCodeLength, timeoutPtr, s.sandbox.MinTimeoutMS, s.sandbox.MaxTimeoutMS); verr != nil {
		return toolResultForEnvelope(validationFailureEnvelope(verr.Error()))
	}

	runtime := sandbox.NewRuntime(mcpbuiltin.New(ctx, s.registry))
	result := runtime.Execute(code, cfg, nil)
	return toolResultForEnvelope(result)
}

func toolResultForEnvelope(result envelope.Result) (*mcpgo.CallToolResult, error) {
	body, err := json.Marshal(result)
	if err != nil {
		return mcpgo.NewToolResultError(fmt.Sprintf("failed to marshal execution result: %v", err)), nil
	}
	return mcpgo.NewToolResultText(string(body)), nil
}

// handleServersResource backs the read-only codemode://servers resource
// with the same ServerInfo snapshot mcp.list_servers() returns inside the
// sandbox, for clients that prefer a resource read over a tool call.
func (s *Server) handleServersResource(ctx context.Context, request mcpgo.ReadResourceRequest) ([]mcpgo.ResourceContents, error) {
	servers := s.registry.ListServers()
	body, err := json.MarshalIndent(map[string]any{"servers": servers}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling servers snapshot: %w", err)
	}
	return []mcpgo.ResourceContents{
		mcpgo.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(body),
		},
	}, nil
}

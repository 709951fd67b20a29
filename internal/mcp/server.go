// Package mcp wires the Codemode execution core onto an outward-facing MCP
// server: the `codemode_search` / `codemode_execute` tool pair and a
// read-only `codemode://servers` resource.
package mcp

import (
	"fmt"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/cloudshipai/codemode-gateway/internal/codemode/search"
	"github.com/cloudshipai/codemode-gateway/internal/config"
	"github.com/cloudshipai/codemode-gateway/internal/registry"
)

// Server is the Codemode gateway's outward MCP surface: two tools and one
// resource, backed by a single Registry.
type Server struct {
	mcpServer *server.MCPServer
	registry  *registry.Registry
	sandbox   config.SandboxConfig
	search    *search.Engine
}

// NewServer builds a Server over reg, applying sandboxCfg as the resource
// ceilings every execute request falls back to.
func NewServer(reg *registry.Registry, sandboxCfg config.SandboxConfig) *Server {
	mcpServer := server.NewMCPServer(
		"Codemode Gateway",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(true, false),
		server.WithRecovery(),
	)

	s := &Server{
		mcpServer: mcpServer,
		registry:  reg,
		sandbox:   sandboxCfg,
		search:    search.New(reg),
	}

	s.setupTools()
	s.setupResources()
	return s
}

// ServeStdio runs the gateway over the stdio MCP transport.
func (s *Server) ServeStdio() error {
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("codemode gateway stdio server: %w", err)
	}
	return nil
}

// ServeHTTP runs the gateway over the streamable-HTTP MCP transport on addr.
func (s *Server) ServeHTTP(addr string) error {
	httpServer := server.NewStreamableHTTPServer(s.mcpServer)
	if err := httpServer.Start(addr); err != nil {
		return fmt.Errorf("codemode gateway http server: %w", err)
	}
	return nil
}

func (s *Server) setupTools() {
	searchTool := mcpgo.NewTool("codemode_search",
		mcpgo.WithDescription("Search the capabilities (tools, resources, prompts, servers) aggregated across every connected backend MCP server."),
		mcpgo.WithString("query", mcpgo.Required(), mcpgo.Description("Case-insensitive regular expression (or literal substring) to match against names/descriptions/uris")),
		mcpgo.WithString("type", mcpgo.Description("One of tools|resources|prompts|servers|all (default: all)")),
		mcpgo.WithString("server", mcpgo.Description("Restrict the search to servers matching this name (regex or literal)")),
		mcpgo.WithBoolean("includeSchemas", mcpgo.Description("Include each tool's inputSchema in the result (default: false)")),
	)
	s.mcpServer.AddTool(searchTool, s.handleSearch)

	executeTool := mcpgo.NewTool("codemode_execute",
		mcpgo.WithDescription("Execute a script fragment against the gateway's curated `mcp` capability object. Returns a uniform result envelope (success/error, logs, stats) — never throws."),
		mcpgo.WithString("code", mcpgo.Required(), mcpgo.Description("The script fragment to run")),
		mcpgo.WithNumber("timeout", mcpgo.Description("Wall-clock timeout in milliseconds (default 30000, range [1000, 300000])")),
	)
	s.mcpServer.AddTool(executeTool, s.handleExecute)
}

func (s *Server) setupResources() {
	serversResource := mcpgo.NewResource(
		"codemode://servers",
		"Connected backend servers",
		mcpgo.WithResourceDescription("Snapshot of every registered backend server and its connection status/capabilities"),
		mcpgo.WithMIMEType("application/json"),
	)
	s.mcpServer.AddResource(serversResource, s.handleServersResource)
}

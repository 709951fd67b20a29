// Package mcpbuiltin implements the Capability API: the curated `mcp`
// object bound inside the Starlark sandbox, proxying to a Registry-backed
// Backend with per-execution call accounting. It sits between
// internal/codemode/sandbox (which never imports the Registry) and
// internal/registry (which knows nothing about Starlark).
package mcpbuiltin

import (
	"context"

	"github.com/cloudshipai/codemode-gateway/internal/capability"
)

// Backend is the subset of *registry.Registry the Capability API dispatches
// to. Declared as an interface here (rather than importing the concrete
// type) so this package, and the sandbox it feeds, stay decoupled from the
// registry's connection/transport machinery.
type Backend interface {
	ListServers() []capability.ServerInfo
	ConnectedNames() []string
	ListToolsFor(ctx context.Context, server string) ([]capability.ToolInfo, error)
	CallTool(ctx context.Context, server, tool string, args map[string]any) (*capability.ToolResult, error)
	ListResourcesFor(ctx context.Context, server string) ([]capability.ResourceInfo, error)
	ListResourceTemplatesFor(ctx context.Context, server string) ([]capability.ResourceTemplateInfo, error)
	ReadResource(ctx context.Context, server, uri string) (*capability.ResourceContent, error)
	ListPromptsFor(ctx context.Context, server string) ([]capability.PromptInfo, error)
	GetPrompt(ctx context.Context, server, name string, args map[string]string) (*capability.PromptResult, error)
}

package mcpbuiltin

import (
	"context"
	"encoding/json"
	"fmt"

	"go.starlark.net/starlark"

	"github.com/cloudshipai/codemode-gateway/internal/codemode/sandbox"
)

// value is the Starlark object bound under the name `mcp` inside one
// sandbox run. Each instance is scoped to a single
// ExecutionContext so call billing never leaks across runs.
type value struct {
	ctx     context.Context
	backend Backend
	execCtx *sandbox.ExecutionContext
}

var (
	_ starlark.Value    = (*value)(nil)
	_ starlark.HasAttrs = (*value)(nil)
)

func (v *value) String() string        { return "<mcp>" }
func (v *value) Type() string          { return "mcp.Capability" }
func (v *value) Freeze()               {}
func (v *value) Truth() starlark.Bool  { return starlark.True }
func (v *value) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: mcp.Capability") }

// methodNames lists every attribute exposed on `mcp`, named in Starlark's
// conventional snake_case.
var methodNames = []string{
	"list_servers",
	"list_tools",
	"call_tool",
	"list_resources",
	"list_resource_templates",
	"read_resource",
	"list_prompts",
	"get_prompt",
	"sleep",
	"log",
}

func (v *value) AttrNames() []string { return methodNames }

func (v *value) Attr(name string) (starlark.Value, error) {
	fn, ok := builtinFuncs[name]
	if !ok {
		return nil, nil
	}
	return starlark.NewBuiltin("mcp."+name, fn).BindReceiver(v), nil
}

// New builds a sandbox.MCPFactory that produces the `mcp` predeclared
// value for one run, bound to backend and a context used for every
// dispatched backend call during that run's lifetime.
func New(ctx context.Context, backend Backend) sandbox.MCPFactory {
	return func(execCtx *sandbox.ExecutionContext) starlark.Value {
		return &value{ctx: ctx, backend: backend, execCtx: execCtx}
	}
}

// toStarlark round-trips a Go capability record (or slice of them) through
// JSON into a map/list-of-maps shape, then into Starlark values, so the
// Registry's typed structs surface as plain Starlark dicts/lists the way a
// JSON response would.
func toStarlark(v any) (starlark.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(b, &generic); err != nil {
		return nil, err
	}
	return sandbox.GoToStarlark(generic), nil
}

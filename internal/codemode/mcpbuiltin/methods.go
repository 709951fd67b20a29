package mcpbuiltin

import (
	"fmt"
	"time"

	"go.starlark.net/starlark"

	"github.com/cloudshipai/codemode-gateway/internal/codemode/patternmatch"
	"github.com/cloudshipai/codemode-gateway/internal/codemode/sandbox"
)

type builtinFunc func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error)

var builtinFuncs = map[string]builtinFunc{
	"list_servers":            listServers,
	"list_tools":              listTools,
	"call_tool":               callTool,
	"list_resources":          listResources,
	"list_resource_templates": listResourceTemplates,
	"read_resource":           readResource,
	"list_prompts":            listPrompts,
	"get_prompt":              getPrompt,
	"sleep":                   sleep,
	"log":                     logMethod,
}

func receiver(b *starlark.Builtin) *value {
	return b.Receiver().(*value)
}

// billOrFail pre-increments the execution's call budget before any backend
// work begins, failing fast without touching the backend once the budget
// is exhausted.
func billOrFail(v *value) error {
	return v.execCtx.TryBillCall()
}

// list_servers() — billable. Snapshot of every registered server
// regardless of status.
func listServers(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs("list_servers", args, kwargs); err != nil {
		return nil, err
	}
	v := receiver(b)
	if err := billOrFail(v); err != nil {
		return nil, err
	}
	return toStarlark(v.backend.ListServers())
}

// fanOutServers resolves the connected server names a serverPattern
// argument (possibly None/absent) selects: regex match if parseable,
// else case-insensitive literal equality.
func fanOutServers(v *value, pattern starlark.Value) []string {
	patternStr := ""
	if s, ok := pattern.(starlark.String); ok {
		patternStr = string(s)
	}
	var matched []string
	for _, name := range v.backend.ConnectedNames() {
		if patternStr == "" || patternmatch.Server(patternStr, name) {
			matched = append(matched, name)
		}
	}
	return matched
}

// list_tools(server_pattern=None) — billable. Fan-out over matching
// connected servers; per-server errors are swallowed.
func listTools(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var pattern starlark.Value
	if err := starlark.UnpackArgs("list_tools", args, kwargs, "server_pattern?", &pattern); err != nil {
		return nil, err
	}
	v := receiver(b)
	if err := billOrFail(v); err != nil {
		return nil, err
	}
	var all []any
	for _, name := range fanOutServers(v, pattern) {
		items, err := v.backend.ListToolsFor(v.ctx, name)
		if err != nil {
			continue
		}
		for _, item := range items {
			all = append(all, item)
		}
	}
	return toStarlark(all)
}

// call_tool(server, tool, args=None) — billable. Targeted dispatch; errors
// propagate to user code.
func callTool(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var server, tool string
	var callArgs starlark.Value
	if err := starlark.UnpackArgs("call_tool", args, kwargs, "server", &server, "tool", &tool, "args?", &callArgs); err != nil {
		return nil, err
	}
	v := receiver(b)
	if err := billOrFail(v); err != nil {
		return nil, err
	}
	argMap, err := sandbox.ArgsToMap(callArgs)
	if err != nil {
		return nil, err
	}
	result, err := v.backend.CallTool(v.ctx, server, tool, argMap)
	if err != nil {
		return nil, err
	}
	return toStarlark(result)
}

// list_resources(server_pattern=None) — billable, fan-out, swallowed.
func listResources(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var pattern starlark.Value
	if err := starlark.UnpackArgs("list_resources", args, kwargs, "server_pattern?", &pattern); err != nil {
		return nil, err
	}
	v := receiver(b)
	if err := billOrFail(v); err != nil {
		return nil, err
	}
	var all []any
	for _, name := range fanOutServers(v, pattern) {
		items, err := v.backend.ListResourcesFor(v.ctx, name)
		if err != nil {
			continue
		}
		for _, item := range items {
			all = append(all, item)
		}
	}
	return toStarlark(all)
}

// list_resource_templates(server_pattern=None) — billable, fan-out, swallowed.
func listResourceTemplates(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var pattern starlark.Value
	if err := starlark.UnpackArgs("list_resource_templates", args, kwargs, "server_pattern?", &pattern); err != nil {
		return nil, err
	}
	v := receiver(b)
	if err := billOrFail(v); err != nil {
		return nil, err
	}
	var all []any
	for _, name := range fanOutServers(v, pattern) {
		items, err := v.backend.ListResourceTemplatesFor(v.ctx, name)
		if err != nil {
			continue
		}
		for _, item := range items {
			all = append(all, item)
		}
	}
	return toStarlark(all)
}

// read_resource(server, uri) — billable. Targeted; errors propagate.
func readResource(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var server, uri string
	if err := starlark.UnpackArgs("read_resource", args, kwargs, "server", &server, "uri", &uri); err != nil {
		return nil, err
	}
	v := receiver(b)
	if err := billOrFail(v); err != nil {
		return nil, err
	}
	result, err := v.backend.ReadResource(v.ctx, server, uri)
	if err != nil {
		return nil, err
	}
	return toStarlark(result)
}

// list_prompts(server_pattern=None) — billable, fan-out, swallowed.
func listPrompts(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var pattern starlark.Value
	if err := starlark.UnpackArgs("list_prompts", args, kwargs, "server_pattern?", &pattern); err != nil {
		return nil, err
	}
	v := receiver(b)
	if err := billOrFail(v); err != nil {
		return nil, err
	}
	var all []any
	for _, name := range fanOutServers(v, pattern) {
		items, err := v.backend.ListPromptsFor(v.ctx, name)
		if err != nil {
			continue
		}
		for _, item := range items {
			all = append(all, item)
		}
	}
	return toStarlark(all)
}

// get_prompt(server, name, args=None) — billable. Targeted; errors propagate.
func getPrompt(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var server, name string
	var promptArgs starlark.Value
	if err := starlark.UnpackArgs("get_prompt", args, kwargs, "server", &server, "name", &name, "args?", &promptArgs); err != nil {
		return nil, err
	}
	v := receiver(b)
	if err := billOrFail(v); err != nil {
		return nil, err
	}
	argMap, err := sandbox.ArgsToMap(promptArgs)
	if err != nil {
		return nil, err
	}
	strArgs := make(map[string]string, len(argMap))
	for k, val := range argMap {
		strArgs[k] = fmt.Sprintf("%v", val)
	}
	result, err := v.backend.GetPrompt(v.ctx, server, name, strArgs)
	if err != nil {
		return nil, err
	}
	return toStarlark(result)
}

// sleep(ms) — free, does not bill the call budget. Clamped to [0, 5000]ms
// and cut short at the run's deadline rather than blocking
// past it — Starlark has no scheduler of its own to preempt a native sleep.
func sleep(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var ms int
	if err := starlark.UnpackArgs("sleep", args, kwargs, "ms", &ms); err != nil {
		return nil, err
	}
	v := receiver(b)
	if ms < 0 {
		ms = 0
	}
	if ms > 5000 {
		ms = 5000
	}
	remaining := time.Duration(ms) * time.Millisecond
	const tick = 10 * time.Millisecond
	deadline := v.execCtx.Deadline()
	for remaining > 0 {
		step := remaining
		if step > tick {
			step = tick
		}
		if !deadline.IsZero() {
			if now := time.Now(); now.Add(step).After(deadline) {
				if d := time.Until(deadline); d > 0 {
					time.Sleep(d)
				}
				return nil, fmt.Errorf("Execution timed out after %dms", v.execCtx.Config.TimeoutMS)
			}
		}
		time.Sleep(step)
		remaining -= step
	}
	return starlark.None, nil
}

// log(*vals) — free. Appends a formatted line to the run's log buffer;
// semantically identical to console.log but always available; there is no
// `console` object inside this Starlark sandbox.
func logMethod(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	v := receiver(b)
	v.execCtx.AppendLog(sandbox.FormatConsoleArgs(args))
	return starlark.None, nil
}

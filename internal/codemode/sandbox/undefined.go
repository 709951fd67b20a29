package sandbox

import "go.starlark.net/starlark"

// undefinedValue is the sentinel bound to every explicitly denied global.
// Starlark gives no way to "unset" a name once execution starts, so denial
// is implemented by predeclaring the name anyway, pointed at a value whose
// type() and textual form both read "undefined" — a lookup resolves
// instead of erroring, matching a host where the name exists but carries
// no ambient authority.
type undefinedValue struct{}

var undefined = undefinedValue{}

var (
	_ starlark.Value = undefined
)

func (undefinedValue) String() string        { return "undefined" }
func (undefinedValue) Type() string          { return "undefined" }
func (undefinedValue) Freeze()               {}
func (undefinedValue) Truth() starlark.Bool  { return starlark.False }
func (undefinedValue) Hash() (uint32, error) { return 0, nil }

// deniedGlobals lists every name §4.2 requires to resolve to the undefined
// value rather than be omitted: process/host introspection, the module
// loader, global-object aliases, dynamic-code constructors, timer and
// network primitives, binary-buffer/shared-memory constructors, and
// filesystem handles.
var deniedGlobals = []string{
	"process", "require", "module", "exports",
	"global", "globalThis", "self", "window",
	"eval", "Function",
	"setTimeout", "setInterval", "setImmediate", "queueMicrotask",
	"fetch", "WebSocket", "XMLHttpRequest",
	"ArrayBuffer", "Buffer", "SharedArrayBuffer", "Atomics",
	"fs", "vm", "__dirname", "__filename",
}

// DeniedGlobals exposes the denied-name list for tests exercising the
// quantified "every denied name resolves to undefined" invariant.
func DeniedGlobals() []string {
	out := make([]string, len(deniedGlobals))
	copy(out, deniedGlobals)
	return out
}

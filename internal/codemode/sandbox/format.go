package sandbox

import (
	"encoding/json"
	"strings"

	"go.starlark.net/starlark"
)

// FormatConsoleArgs joins variadic builtin arguments with a single space:
// primitives render via their usual textual form, compound values via a
// JSON-like serialization, falling back to the value's own String() if
// that serialization fails (e.g. a cyclic or otherwise non-representable
// structure).
func FormatConsoleArgs(args starlark.Tuple) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = formatOne(a)
	}
	return strings.Join(parts, " ")
}

func formatOne(v starlark.Value) string {
	switch s := v.(type) {
	case starlark.String:
		return string(s)
	case starlark.Bool, starlark.Int, starlark.Float, starlark.NoneType:
		return v.String()
	default:
		goVal := starlarkToGo(v)
		b, err := json.Marshal(goVal)
		if err != nil {
			return v.String()
		}
		return string(b)
	}
}

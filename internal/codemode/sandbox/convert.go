package sandbox

import (
	"fmt"
	"sort"

	"go.starlark.net/starlark"
)

// goToStarlark converts a Go value (typically already JSON-shaped, coming
// back from the registry) into a Starlark value.
func goToStarlark(v any) starlark.Value {
	switch val := v.(type) {
	case nil:
		return starlark.None
	case bool:
		return starlark.Bool(val)
	case int:
		return starlark.MakeInt(val)
	case int64:
		return starlark.MakeInt64(val)
	case float64:
		return starlark.Float(val)
	case string:
		return starlark.String(val)
	case []any:
		elems := make([]starlark.Value, len(val))
		for i, elem := range val {
			elems[i] = goToStarlark(elem)
		}
		return starlark.NewList(elems)
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		dict := starlark.NewDict(len(val))
		for _, k := range keys {
			_ = dict.SetKey(starlark.String(k), goToStarlark(val[k]))
		}
		return dict
	default:
		return starlark.String(fmt.Sprintf("%v", val))
	}
}

// starlarkToGo converts a Starlark value back into a plain Go value
// suitable for JSON marshaling.
func starlarkToGo(v starlark.Value) any {
	switch val := v.(type) {
	case starlark.NoneType:
		return nil
	case starlark.Bool:
		return bool(val)
	case starlark.Int:
		if i, ok := val.Int64(); ok {
			return i
		}
		return val.String()
	case starlark.Float:
		return float64(val)
	case starlark.String:
		return string(val)
	case *starlark.List:
		result := make([]any, val.Len())
		for i := 0; i < val.Len(); i++ {
			result[i] = starlarkToGo(val.Index(i))
		}
		return result
	case starlark.Tuple:
		result := make([]any, val.Len())
		for i := 0; i < val.Len(); i++ {
			result[i] = starlarkToGo(val.Index(i))
		}
		return result
	case *starlark.Dict:
		result := make(map[string]any)
		for _, item := range val.Items() {
			key := starlarkToGo(item[0])
			if keyStr, ok := key.(string); ok {
				result[keyStr] = starlarkToGo(item[1])
			}
		}
		return result
	case *starlark.Set:
		result := make([]any, 0, val.Len())
		iter := val.Iterate()
		defer iter.Done()
		var elem starlark.Value
		for iter.Next(&elem) {
			result = append(result, starlarkToGo(elem))
		}
		return result
	case undefinedValue:
		return "undefined"
	default:
		return val.String()
	}
}

// argsToMap converts a Starlark dict argument (e.g. a tool call's args) to
// a map[string]any, treating None as an empty map.
func argsToMap(v starlark.Value) (map[string]any, error) {
	if v == nil || v == starlark.None {
		return map[string]any{}, nil
	}
	dict, ok := v.(*starlark.Dict)
	if !ok {
		return nil, fmt.Errorf("expected a dict, got %s", v.Type())
	}
	out := starlarkToGo(dict)
	m, ok := out.(map[string]any)
	if !ok {
		return map[string]any{}, nil
	}
	return m, nil
}

// GoToStarlark exposes goToStarlark to internal/codemode/mcpbuiltin, which
// needs to turn Registry-returned capability records (already JSON-shaped
// Go values) into Starlark values for the `mcp` builtin's return values.
func GoToStarlark(v any) starlark.Value { return goToStarlark(v) }

// StarlarkToGo exposes starlarkToGo, the reverse direction of GoToStarlark,
// outside this package.
func StarlarkToGo(v starlark.Value) any { return starlarkToGo(v) }

// ArgsToMap exposes argsToMap to internal/codemode/mcpbuiltin so
// `mcp.call_tool`/`mcp.get_prompt` can accept a Starlark dict of arguments.
func ArgsToMap(v starlark.Value) (map[string]any, error) { return argsToMap(v) }

package sandbox

import (
	"go.starlark.net/lib/json"
	"go.starlark.net/lib/math"
	startime "go.starlark.net/lib/time"
	"go.starlark.net/starlark"
)

// builtinModules returns the permitted standard data intrinsics: a
// structured-data codec, numeric utilities, and a date/time value type.
// go.starlark.net ships these as ready-made predeclared modules rather
// than requiring a hand-rolled reimplementation.
func builtinModules() map[string]starlark.Value {
	return map[string]starlark.Value{
		"json": json.Module,
		"math": math.Module,
		"time": startime.Module,
	}
}

package sandbox

import (
	"fmt"
	"regexp"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// regexModule is predeclared as `re` inside the sandbox. go.starlark.net
// ships no regular-expression value type, so it is built here on top of the
// stdlib regexp package and exposed as a module of builtins.
var regexModule = &starlarkstruct.Module{
	Name: "re",
	Members: starlark.StringDict{
		"compile": starlark.NewBuiltin("re.compile", reCompile),
		"match":   starlark.NewBuiltin("re.match", reMatch),
		"search":  starlark.NewBuiltin("re.search", reSearch),
		"findall": starlark.NewBuiltin("re.findall", reFindAll),
	},
}

// regexValue wraps a compiled *regexp.Regexp as a Starlark value with
// match/search/findall methods, returned by re.compile.
type regexValue struct {
	pattern string
	re      *regexp.Regexp
}

var _ starlark.Value = (*regexValue)(nil)
var _ starlark.HasAttrs = (*regexValue)(nil)

func (v *regexValue) String() string        { return fmt.Sprintf("re.Pattern(%q)", v.pattern) }
func (v *regexValue) Type() string          { return "re.Pattern" }
func (v *regexValue) Freeze()                {}
func (v *regexValue) Truth() starlark.Bool  { return starlark.True }
func (v *regexValue) Hash() (uint32, error) { return starlark.String(v.pattern).Hash() }

func (v *regexValue) Attr(name string) (starlark.Value, error) {
	switch name {
	case "match":
		return starlark.NewBuiltin("match", func(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var s string
			if err := starlark.UnpackArgs("match", args, kwargs, "s", &s); err != nil {
				return nil, err
			}
			loc := v.re.FindStringIndex(s)
			if loc == nil || loc[0] != 0 {
				return starlark.None, nil
			}
			return matchResult(v.re, s, loc), nil
		}).BindReceiver(v), nil
	case "search":
		return starlark.NewBuiltin("search", func(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var s string
			if err := starlark.UnpackArgs("search", args, kwargs, "s", &s); err != nil {
				return nil, err
			}
			loc := v.re.FindStringIndex(s)
			if loc == nil {
				return starlark.None, nil
			}
			return matchResult(v.re, s, loc), nil
		}).BindReceiver(v), nil
	case "findall":
		return starlark.NewBuiltin("findall", func(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var s string
			if err := starlark.UnpackArgs("findall", args, kwargs, "s", &s); err != nil {
				return nil, err
			}
			all := v.re.FindAllString(s, -1)
			elems := make([]starlark.Value, len(all))
			for i, m := range all {
				elems[i] = starlark.String(m)
			}
			return starlark.NewList(elems), nil
		}).BindReceiver(v), nil
	}
	return nil, nil
}

func (v *regexValue) AttrNames() []string {
	return []string{"match", "search", "findall"}
}

func matchResult(re *regexp.Regexp, s string, loc []int) *starlark.Dict {
	d := starlark.NewDict(2)
	_ = d.SetKey(starlark.String("group"), starlark.String(s[loc[0]:loc[1]]))
	groups := re.FindStringSubmatch(s[loc[0]:loc[1]])
	elems := make([]starlark.Value, len(groups))
	for i, g := range groups {
		elems[i] = starlark.String(g)
	}
	_ = d.SetKey(starlark.String("groups"), starlark.NewList(elems))
	return d
}

func compileRegex(pattern string) (*regexValue, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regular expression %q: %w", pattern, err)
	}
	return &regexValue{pattern: pattern, re: re}, nil
}

func reCompile(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var pattern string
	if err := starlark.UnpackArgs("compile", args, kwargs, "pattern", &pattern); err != nil {
		return nil, err
	}
	return compileRegex(pattern)
}

func reMatch(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var pattern, s string
	if err := starlark.UnpackArgs("match", args, kwargs, "pattern", &pattern, "s", &s); err != nil {
		return nil, err
	}
	v, err := compileRegex(pattern)
	if err != nil {
		return nil, err
	}
	loc := v.re.FindStringIndex(s)
	if loc == nil || loc[0] != 0 {
		return starlark.None, nil
	}
	return matchResult(v.re, s, loc), nil
}

func reSearch(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var pattern, s string
	if err := starlark.UnpackArgs("search", args, kwargs, "pattern", &pattern, "s", &s); err != nil {
		return nil, err
	}
	v, err := compileRegex(pattern)
	if err != nil {
		return nil, err
	}
	loc := v.re.FindStringIndex(s)
	if loc == nil {
		return starlark.None, nil
	}
	return matchResult(v.re, s, loc), nil
}

func reFindAll(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var pattern, s string
	if err := starlark.UnpackArgs("findall", args, kwargs, "pattern", &pattern, "s", &s); err != nil {
		return nil, err
	}
	v, err := compileRegex(pattern)
	if err != nil {
		return nil, err
	}
	all := v.re.FindAllString(s, -1)
	elems := make([]starlark.Value, len(all))
	for i, m := range all {
		elems[i] = starlark.String(m)
	}
	return starlark.NewList(elems), nil
}

// Package sandbox implements the sandbox runtime: a single-threaded,
// ambient-authority-free evaluator for one execute request, built on
// go.starlark.net.
package sandbox

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.starlark.net/resolve"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/cloudshipai/codemode-gateway/internal/codemode/envelope"
)

// fileOptions enables the statement-level dialect features a multi-line
// script needs (loops, top-level if/for, re-assignment, bounded
// recursion) beyond what a single condition expression requires.
var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
	Recursion:       true,
}

// MCPFactory builds the per-run `mcp` predeclared value bound to one
// execution's ExecutionContext, so call billing is scoped to that run
// alone. internal/codemode/mcpbuiltin supplies the concrete factory
// (it owns the Registry dependency that sandbox itself never imports).
type MCPFactory func(*ExecutionContext) starlark.Value

// Runtime evaluates one piece of user code against a `mcp` capability
// builtin (produced fresh per run by mcpFactory) and a fixed resource
// Config.
type Runtime struct {
	// predeclared holds every global available inside the sandbox besides
	// the language's own builtins: `re`, `json`, `math`, `time`, and every
	// name in deniedGlobals bound to the undefined sentinel. `mcp` is
	// added per-run in Execute.
	predeclared starlark.StringDict
	mcpFactory  MCPFactory
}

// NewRuntime builds a Runtime whose predeclared globals are the sandbox
// built-ins, the denied-name sentinels, plus an `mcp` object constructed
// per run from mcpFactory.
func NewRuntime(mcpFactory MCPFactory) *Runtime {
	predeclared := starlark.StringDict{
		"re": regexModule,
	}
	for name, mod := range builtinModules() {
		predeclared[name] = mod
	}
	for _, name := range deniedGlobals {
		predeclared[name] = undefined
	}
	return &Runtime{predeclared: predeclared, mcpFactory: mcpFactory}
}

// canonical error-name constants used in the envelope; the envelope
// package's timeout/budget classifiers match on substrings of the
// corresponding message, not on these names.
const (
	errNameTimeout    = "TimeoutError"
	errNameCallBudget = "CallLimitExceededError"
	errNameSyntax     = "SyntaxError"
	errNameRuntime    = "RuntimeError"
)

// Execute runs code under cfg, with any caller-supplied initialLogs placed
// ahead of anything the sandbox itself appends, and returns the uniform
// envelope.Result — success or failure, never a raw error.
func (r *Runtime) Execute(code string, cfg Config, initialLogs []string) envelope.Result {
	execCtx := NewExecutionContext(cfg, initialLogs)

	thread := &starlark.Thread{
		Name: "codemode-execute",
		Print: func(_ *starlark.Thread, msg string) {
			execCtx.AppendLog(msg)
		},
	}
	// Generous CPU backstop independent of the wall-clock deadline below;
	// never fires before the deadline in normal operation — set high since
	// a sandbox run is expected to do real work, not evaluate one condition.
	thread.SetMaxExecutionSteps(10_000_000)

	predeclared := make(starlark.StringDict, len(r.predeclared)+1)
	for k, v := range r.predeclared {
		predeclared[k] = v
	}
	if r.mcpFactory != nil {
		predeclared["mcp"] = r.mcpFactory(execCtx)
	}

	wrapped := wrapUserCode(code)

	timeoutMS := cfg.TimeoutMS
	if timeoutMS <= 0 {
		timeoutMS = 30_000
	}

	var timedOut atomic.Bool
	timer := time.AfterFunc(time.Duration(timeoutMS)*time.Millisecond, func() {
		timedOut.Store(true)
		thread.Cancel(fmt.Sprintf("Execution timed out after %dms", timeoutMS))
	})
	defer timer.Stop()

	globals, err := starlark.ExecFileOptions(fileOptions, thread, "codemode.star", wrapped, predeclared)

	stats := envelope.Stats{
		DurationMS: execCtx.ElapsedMS(),
		MCPCalls:   execCtx.CallCount(),
	}
	logs := execCtx.Logs()

	if err != nil {
		return classifyError(err, &timedOut, timeoutMS, logs, stats)
	}

	result, ok := globals["result"]
	if !ok {
		return envelope.Ok(nil, logs, stats)
	}

	goResult := starlarkToGo(result)
	normalized, err := jsonRoundTrip(goResult)
	if err != nil {
		// A non-JSON result is replaced by null and noted in the logs; the
		// run still succeeds.
		execCtx.AppendLog(fmt.Sprintf("warning: result is not JSON-serializable and was replaced with null: %s", err))
		return envelope.Ok(nil, execCtx.Logs(), stats)
	}
	return envelope.Ok(normalized, logs, stats)
}

// wrapUserCode wraps the caller's code fragment as the body of a function
// so a bare top-level `return` inside it (the common authoring pattern for
// a single-expression tool) works without requiring TopLevelControl to
// paper over it, and so a `result` global is always set: to the returned
// value, or to None when the fragment does not return explicitly.
func wrapUserCode(code string) string {
	var b strings.Builder
	b.WriteString("def __codemode_entry__():\n")
	indentBody(&b, code)
	b.WriteString("    return None\n\nresult = __codemode_entry__()\n")
	return b.String()
}

// indentBody writes code into b with one indent level prepended to each
// physical line, except for continuation lines inside a triple-quoted
// string literal (''' or """), whose content is copied verbatim — a
// multi-line string argument (e.g. a templated prompt body passed to
// mcp.call_tool) must come through with no injected leading whitespace.
func indentBody(b *strings.Builder, code string) {
	inTriple := false
	var quote string
	for _, line := range strings.Split(code, "\n") {
		if !inTriple {
			b.WriteString("    ")
		}
		b.WriteString(line)
		b.WriteString("\n")
		inTriple, quote = scanTripleQuotes(line, inTriple, quote)
	}
}

// scanTripleQuotes tracks triple-quoted string state across a single
// physical line, given the state carried in from the previous line.
func scanTripleQuotes(line string, inTriple bool, quote string) (bool, string) {
	for i := 0; i < len(line); i++ {
		if !inTriple {
			if q := tripleQuoteAt(line, i); q != "" {
				inTriple, quote = true, q
				i += 2
			}
			continue
		}
		switch line[i] {
		case '\\':
			i++
		default:
			if strings.HasPrefix(line[i:], quote) {
				inTriple, quote = false, ""
				i += 2
			}
		}
	}
	return inTriple, quote
}

func tripleQuoteAt(line string, i int) string {
	for _, q := range [...]string{`"""`, "'''"} {
		if strings.HasPrefix(line[i:], q) {
			return q
		}
	}
	return ""
}

// classifyError maps a bubbled-up execution error onto the envelope's
// discriminated failure categories.
func classifyError(err error, timedOut *atomic.Bool, timeoutMS int, logs []string, stats envelope.Stats) envelope.Result {
	msg := err.Error()
	if timedOut.Load() || strings.Contains(msg, "timed out") {
		return envelope.Fail(errNameTimeout, fmt.Sprintf("Execution timed out after %dms", timeoutMS), logs, stats)
	}

	if strings.Contains(msg, "call limit exceeded") {
		return envelope.Fail(errNameCallBudget, msg, logs, stats)
	}

	if _, ok := err.(syntax.Error); ok {
		return envelope.Fail(errNameSyntax, msg, logs, stats)
	}
	if errList, ok := err.(resolve.ErrorList); ok && len(errList) > 0 {
		return envelope.Fail(errNameSyntax, errList.Error(), logs, stats)
	}

	if evalErr, ok := err.(*starlark.EvalError); ok {
		return envelope.Fail(errNameRuntime, evalErr.Error(), logs, stats)
	}

	return envelope.Fail(errNameRuntime, msg, logs, stats)
}

// jsonRoundTrip normalizes a converted Starlark result through JSON so the
// envelope's Result field is always plain JSON-ready data, matching what a
// caller marshaling the envelope for transport expects.
func jsonRoundTrip(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Package envelope defines the uniform ExecutionResult shape returned from
// every sandbox run, and the classifier helpers over it.
package envelope

import "strings"

// Stats reports resource consumption for one execution.
type Stats struct {
	DurationMS int64 `json:"durationMs"`
	MCPCalls   int   `json:"mcpCalls"`
}

// ExecutionError describes a failed execution.
type ExecutionError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// Result is the discriminated envelope returned from every execution,
// success or failure — never a thrown error.
type Result struct {
	Success bool            `json:"success"`
	Result  any             `json:"result,omitempty"`
	Error   *ExecutionError `json:"error,omitempty"`
	Logs    []string        `json:"logs"`
	Stats   Stats           `json:"stats"`
}

// Ok builds a successful envelope.
func Ok(result any, logs []string, stats Stats) Result {
	return Result{Success: true, Result: result, Logs: logs, Stats: stats}
}

// Fail builds a failed envelope.
func Fail(name, message string, logs []string, stats Stats) Result {
	return Result{
		Success: false,
		Error:   &ExecutionError{Name: name, Message: message},
		Logs:    logs,
		Stats:   stats,
	}
}

// IsSuccess reports whether the execution completed successfully.
func IsSuccess(r Result) bool { return r.Success }

// IsTimeout reports whether the execution failed because its deadline
// expired.
func IsTimeout(r Result) bool {
	return !r.Success && r.Error != nil && strings.Contains(r.Error.Message, "timed out")
}

// IsCallLimitExceeded reports whether the execution failed because it
// exhausted its mcp.* call budget.
func IsCallLimitExceeded(r Result) bool {
	return !r.Success && r.Error != nil && strings.Contains(r.Error.Message, "call limit exceeded")
}

// OtherFailure reports whether the execution failed for a reason other
// than timeout or call-limit exhaustion.
func OtherFailure(r Result) bool {
	return !r.Success && !IsTimeout(r) && !IsCallLimitExceeded(r)
}

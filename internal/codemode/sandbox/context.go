package sandbox

import (
	"fmt"
	"sync"
	"time"
)

// Config holds the resource ceilings for one execution.
type Config struct {
	TimeoutMS   int
	MaxMCPCalls int
	MaxCodeLength int
}

// ExecutionContext is the per-run state owned by the Sandbox Runtime: call
// accounting, the log buffer, and the start time used to compute
// durationMs on every exit path. It is destroyed when the run completes.
type ExecutionContext struct {
	Config    Config
	startedAt time.Time

	mu        sync.Mutex
	callCount int
	logs      []string
}

// NewExecutionContext seeds a fresh context with the caller's initial logs,
// which must appear before any sandbox-produced entry.
func NewExecutionContext(cfg Config, initialLogs []string) *ExecutionContext {
	logs := make([]string, len(initialLogs))
	copy(logs, initialLogs)
	return &ExecutionContext{
		Config:    cfg,
		startedAt: time.Now(),
		logs:      logs,
	}
}

// TryBillCall pre-increments callCount and fails the call before any
// registry work begins once the budget is exhausted: the count is billed
// before dispatch, not after completion, so a call that would exceed the
// budget never reaches the backend.
func (c *ExecutionContext) TryBillCall() error {
	c.mu.Lock()
	c.callCount++
	n := c.callCount
	c.mu.Unlock()
	if n > c.Config.MaxMCPCalls {
		return fmt.Errorf("Maximum mcp.* call limit exceeded (%d)", c.Config.MaxMCPCalls)
	}
	return nil
}

// CallCount returns the number of billable calls that have begun so far.
func (c *ExecutionContext) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.callCount
}

// AppendLog appends one entry to the run's log buffer in execution order.
func (c *ExecutionContext) AppendLog(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logs = append(c.logs, line)
}

// Logs returns a snapshot of the buffered log lines.
func (c *ExecutionContext) Logs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.logs))
	copy(out, c.logs)
	return out
}

// ElapsedMS returns the milliseconds elapsed since the context was created.
func (c *ExecutionContext) ElapsedMS() int64 {
	return time.Since(c.startedAt).Milliseconds()
}

// Deadline returns the wall-clock point at which this run's timeout
// expires, so a long-blocking builtin (mcp.sleep) can cut itself short
// instead of blocking past it.
func (c *ExecutionContext) Deadline() time.Time {
	return c.startedAt.Add(time.Duration(c.Config.TimeoutMS) * time.Millisecond)
}

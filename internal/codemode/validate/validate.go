// Package validate implements the pre-flight checks on an execute request,
// returning a descriptive error rather than a bare bool so the envelope
// can surface the validator's message verbatim.
package validate

import (
	"fmt"
	"strings"
)

const (
	MaxCodeLength     = 100_000
	MinTimeoutMS      = 1_000
	MaxTimeoutMS      = 300_000
	DefaultTimeoutMS  = 30_000
	DefaultMaxMCPCalls = 100
)

// Code rejects empty/whitespace-only code and code exceeding maxLen.
func Code(code string, maxLen int) error {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return fmt.Errorf("Code cannot be empty")
	}
	if len(code) > maxLen {
		return fmt.Errorf("code length %d exceeds maximum length %d", len(code), maxLen)
	}
	return nil
}

// Timeout accepts a missing timeout (nil) and rejects one outside
// [minMS, maxMS].
func Timeout(timeoutMS *int, minMS, maxMS int) error {
	if timeoutMS == nil {
		return nil
	}
	if *timeoutMS < minMS {
		return fmt.Errorf("timeout must be at least %dms", minMS)
	}
	if *timeoutMS > maxMS {
		return fmt.Errorf("timeout cannot exceed %dms", maxMS)
	}
	return nil
}

// ExecuteRequest is the composition of Code then Timeout, code first.
func ExecuteRequest(code string, maxLen int, timeoutMS *int, minMS, maxMS int) error {
	if err := Code(code, maxLen); err != nil {
		return err
	}
	return Timeout(timeoutMS, minMS, maxMS)
}

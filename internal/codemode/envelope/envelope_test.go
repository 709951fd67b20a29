package envelope

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOk_IsSuccessOnly(t *testing.T) {
	r := Ok("value", []string{"a"}, Stats{DurationMS: 5, MCPCalls: 1})

	assert.True(t, IsSuccess(r))
	assert.False(t, IsTimeout(r))
	assert.False(t, IsCallLimitExceeded(r))
	assert.False(t, OtherFailure(r))
	assert.Equal(t, "value", r.Result)
	assert.Nil(t, r.Error)
}

func TestFail_TimeoutClassifies(t *testing.T) {
	r := Fail("TimeoutError", "Execution timed out after 5000ms", nil, Stats{})

	assert.False(t, IsSuccess(r))
	assert.True(t, IsTimeout(r))
	assert.False(t, IsCallLimitExceeded(r))
	assert.False(t, OtherFailure(r))
}

func TestFail_CallLimitClassifies(t *testing.T) {
	r := Fail("CallLimitExceededError", "Maximum mcp.* call limit exceeded (10)", nil, Stats{})

	assert.False(t, IsSuccess(r))
	assert.False(t, IsTimeout(r))
	assert.True(t, IsCallLimitExceeded(r))
	assert.False(t, OtherFailure(r))
}

func TestFail_OtherClassifiesAsOtherFailure(t *testing.T) {
	r := Fail("SyntaxError", "unexpected token", nil, Stats{})

	assert.False(t, IsSuccess(r))
	assert.False(t, IsTimeout(r))
	assert.False(t, IsCallLimitExceeded(r))
	assert.True(t, OtherFailure(r))
}

func TestClassifiers_AreMutuallyExclusive(t *testing.T) {
	results := []Result{
		Ok(nil, nil, Stats{}),
		Fail("TimeoutError", "Execution timed out after 100ms", nil, Stats{}),
		Fail("CallLimitExceededError", "Maximum mcp.* call limit exceeded (5)", nil, Stats{}),
		Fail("RuntimeError", "boom", nil, Stats{}),
	}
	for _, r := range results {
		held := 0
		for _, pred := range []func(Result) bool{IsSuccess, IsTimeout, IsCallLimitExceeded, OtherFailure} {
			if pred(r) {
				held++
			}
		}
		assert.Equal(t, 1, held)
	}
}

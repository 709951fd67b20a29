package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCode_RejectsEmptyOrWhitespace(t *testing.T) {
	assert.Error(t, Code("", 100))
	assert.Error(t, Code("   \n\t  ", 100))
}

func TestCode_AcceptsAtMaxLength(t *testing.T) {
	code := strings.Repeat("a", 100)
	assert.NoError(t, Code(code, 100))
}

func TestCode_RejectsOverMaxLength(t *testing.T) {
	code := strings.Repeat("a", 101)
	err := Code(code, 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds maximum length")
}

func TestTimeout_NilIsAccepted(t *testing.T) {
	assert.NoError(t, Timeout(nil, 1000, 300000))
}

func TestTimeout_BelowMinimum(t *testing.T) {
	ms := 999
	err := Timeout(&ms, 1000, 300000)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least")
}

func TestTimeout_AboveMaximum(t *testing.T) {
	ms := 300001
	err := Timeout(&ms, 1000, 300000)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot exceed")
}

func TestTimeout_BoundaryValuesAccepted(t *testing.T) {
	lower, upper := 1000, 300000
	assert.NoError(t, Timeout(&lower, 1000, 300000))
	assert.NoError(t, Timeout(&upper, 1000, 300000))
}

func TestExecuteRequest_ChecksCodeBeforeTimeout(t *testing.T) {
	badTimeout := 1
	err := ExecuteRequest("", 100, &badTimeout, 1000, 300000)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Code cannot be empty")
}

func TestExecuteRequest_ValidRequestPasses(t *testing.T) {
	ms := 5000
	assert.NoError(t, ExecuteRequest("return 1", 100, &ms, 1000, 300000))
}

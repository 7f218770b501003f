package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndCodeOf(t *testing.T) {
	err := New(CodeValidationError, "bad input")
	assert.Equal(t, CodeValidationError, CodeOf(err))
	assert.Equal(t, "bad input", err.Error())
}

func TestCodeOfUnwrapsWrappedServiceError(t *testing.T) {
	svcErr := New(CodeAgentExecutionErr, "boom")
	wrapped := errors.New("context: " + svcErr.Error())
	assert.Equal(t, CodeInternalError, CodeOf(wrapped))

	wrappedProper := &wrapper{cause: svcErr}
	assert.Equal(t, CodeAgentExecutionErr, CodeOf(wrappedProper))
}

type wrapper struct{ cause error }

func (w *wrapper) Error() string { return "wrapped: " + w.cause.Error() }
func (w *wrapper) Unwrap() error { return w.cause }

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Wrap(CodeMCPConnectionError, "connecting to tool source", cause)
	require.Error(t, err)
	assert.Equal(t, CodeMCPConnectionError, CodeOf(err))
	assert.ErrorIs(t, err, cause)
}

func TestAgentNotFound(t *testing.T) {
	err := AgentNotFound("assistant")
	assert.Equal(t, CodeAgentNotFound, CodeOf(err))
	assert.Contains(t, err.Error(), "assistant")
}

func TestTaskNotFound(t *testing.T) {
	err := TaskNotFound("task-123")
	assert.Equal(t, CodeA2ATaskError, CodeOf(err))
	assert.Equal(t, "task-123", err.Details["taskId"])
}

func TestWithDetails(t *testing.T) {
	err := New(CodeValidationError, "bad field").WithDetails(map[string]any{"field": "model"})
	assert.Equal(t, "model", err.Details["field"])
}

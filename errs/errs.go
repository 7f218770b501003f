// Package errs defines the service-wide error taxonomy described in spec §6
// and §7: a stable Code plus a human message and an optional wrapped cause,
// in the style of the teacher's per-component *RegistryError types
// (agent/registry.go, tools/registry.go) generalized into one shared type so
// the HTTP layer can map Code to a status code without knowing which
// component raised it.
package errs

import "fmt"

// Code identifies a class of error for client-facing responses.
type Code string

const (
	CodeAgentNotFound      Code = "AGENT_NOT_FOUND"
	CodeAgentConfigError   Code = "AGENT_CONFIG_ERROR"
	CodeMCPConnectionError Code = "MCP_CONNECTION_ERROR"
	CodeAgentExecutionErr  Code = "AGENT_EXECUTION_ERROR"
	CodeValidationError    Code = "VALIDATION_ERROR"
	CodeA2ATaskError       Code = "A2A_TASK_ERROR"
	CodeInternalError      Code = "INTERNAL_ERROR"
)

// ServiceError is the canonical error value returned from core components.
// Details is free-form (e.g. the offending config file name) and may be nil.
type ServiceError struct {
	Code    Code
	Message string
	Details map[string]any
	Cause   error
}

func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// New builds a ServiceError with no wrapped cause.
func New(code Code, message string) *ServiceError {
	return &ServiceError{Code: code, Message: message}
}

// Wrap builds a ServiceError wrapping cause.
func Wrap(code Code, message string, cause error) *ServiceError {
	return &ServiceError{Code: code, Message: message, Cause: cause}
}

// WithDetails attaches structured details and returns the same error for chaining.
func (e *ServiceError) WithDetails(details map[string]any) *ServiceError {
	e.Details = details
	return e
}

// AgentNotFound builds the standard "no such agent" error for a path lookup.
func AgentNotFound(path string) *ServiceError {
	return New(CodeAgentNotFound, fmt.Sprintf("agent %q not found", path)).
		WithDetails(map[string]any{"path": path})
}

// TaskNotFound builds the standard "no such task" error for an A2A task id
// lookup.
func TaskNotFound(taskID string) *ServiceError {
	return New(CodeA2ATaskError, fmt.Sprintf("task %q not found", taskID)).
		WithDetails(map[string]any{"taskId": taskID})
}

// CodeOf extracts the Code from err if it (or something it wraps) is a
// *ServiceError, defaulting to CodeInternalError otherwise.
func CodeOf(err error) Code {
	var se *ServiceError
	if asServiceError(err, &se) {
		return se.Code
	}
	return CodeInternalError
}

func asServiceError(err error, target **ServiceError) bool {
	for err != nil {
		if se, ok := err.(*ServiceError); ok {
			*target = se
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}

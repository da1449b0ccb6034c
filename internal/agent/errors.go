// internal/agent/errors.go
package agent

import (
	"errors"
	"fmt"
)

// Common agent errors
var (
	ErrInvalidState      = errors.New("invalid state: empty or inconsistent action set")
	ErrDataCorruption    = errors.New("persisted snapshot failed validation")
	ErrNotFound          = errors.New("episode not found")
	ErrDuplicateFeedback = errors.New("feedback already applied for episode")
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	ErrCodeInvalidState      ErrorCode = "INVALID_STATE"
	ErrCodeDataCorruption    ErrorCode = "DATA_CORRUPTION"
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeDuplicateFeedback ErrorCode = "DUPLICATE_FEEDBACK"
)

// AgentError wraps agent errors with a stable code and context.
//
// Strategy execution failures are never represented as errors: the executor
// contract converts them to low-reward outcomes so the learner always gets a
// signal. AgentError is reserved for contract violations surfaced to callers.
type AgentError struct {
	Code       ErrorCode
	Message    string
	Underlying error
}

// Error implements the error interface
func (e *AgentError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AgentError) Unwrap() error {
	return e.Underlying
}

// Is checks if the error matches the target
func (e *AgentError) Is(target error) bool {
	if t, ok := target.(*AgentError); ok {
		return e.Code == t.Code
	}
	return errors.Is(e.Underlying, target)
}

// NewAgentError creates a new AgentError
func NewAgentError(code ErrorCode, message string, err error) *AgentError {
	return &AgentError{
		Code:       code,
		Message:    message,
		Underlying: err,
	}
}

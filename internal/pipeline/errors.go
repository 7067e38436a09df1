package pipeline

import (
	"fmt"
)

// ErrorType classifies a pipeline failure.
type ErrorType string

const (
	// ErrorTypeConfiguration means the pipeline could not be built from
	// the given configuration. Always fatal; nothing was run.
	ErrorTypeConfiguration ErrorType = "configuration"
	// ErrorTypeExecution means a stage failed while the run was in
	// progress.
	ErrorTypeExecution ErrorType = "execution"
	// ErrorTypeCancellation means the context was cancelled between
	// stages.
	ErrorTypeCancellation ErrorType = "cancellation"
)

// RunError is a pipeline-specific error carrying the stage that failed.
type RunError struct {
	Type    ErrorType `json:"type"`
	Stage   string    `json:"stage,omitempty"`
	Message string    `json:"message"`
	Cause   error     `json:"cause,omitempty"`
}

// Error implements the error interface.
func (e *RunError) Error() string {
	if e == nil {
		return "unknown pipeline error"
	}
	if e.Stage != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Type, e.Stage, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error.
func (e *RunError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewConfigurationError reports an invalid pipeline configuration.
func NewConfigurationError(message string, cause error) *RunError {
	return &RunError{
		Type:    ErrorTypeConfiguration,
		Message: message,
		Cause:   cause,
	}
}

// NewExecutionError reports a stage failure during a run.
func NewExecutionError(stage string, cause error) *RunError {
	return &RunError{
		Type:    ErrorTypeExecution,
		Stage:   stage,
		Message: "stage execution failed",
		Cause:   cause,
	}
}

// NewCancellationError reports a context cancellation between stages.
func NewCancellationError(stage string, cause error) *RunError {
	return &RunError{
		Type:    ErrorTypeCancellation,
		Stage:   stage,
		Message: "run cancelled",
		Cause:   cause,
	}
}

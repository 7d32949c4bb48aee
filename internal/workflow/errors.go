package workflow

import (
	"fmt"
	"time"
)

// ConfigurationError means a workflow has no usable endpoint mapping.
// It is raised before any network attempt so operators can self-diagnose.
type ConfigurationError struct {
	WorkflowID string
	ConfigKey  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("webhook URL for %q is not configured (expected %s)",
		e.WorkflowID, e.ConfigKey)
}

// TimeoutError means a workflow call exceeded the execution bound.
type TimeoutError struct {
	WorkflowID string
	Limit      time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("workflow %q took longer than %s to respond", e.WorkflowID, e.Limit)
}

// RemoteExecutionError means the workflow endpoint answered with a
// non-success status.
type RemoteExecutionError struct {
	WorkflowID string
	StatusCode int
	Body       string
}

func (e *RemoteExecutionError) Error() string {
	return fmt.Sprintf("workflow %q failed remotely (%d): %s", e.WorkflowID, e.StatusCode, e.Body)
}

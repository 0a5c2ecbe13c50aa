package helpers

import (
	"errors"
	"fmt"

	"market-dashboard/src/logger"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type DashboardError struct {
	Message string
	Cause   error
}

func (e *DashboardError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DashboardError) Unwrap() error {
	return e.Cause
}

// Distinct error types for errors.As checks
type ConfigurationError struct{ DashboardError }
type ProviderError struct {
	DashboardError
	Provider string
}
type StorageError struct{ DashboardError }
type ValidationError struct{ DashboardError }
type OrchestrationError struct{ DashboardError }

// NetworkError carries the HTTP status when the vendor answered at all.
type NetworkError struct {
	DashboardError
	StatusCode int
}

// -----------------------------------------------------------------------------
// Constructors
// -----------------------------------------------------------------------------

func NewConfigurationError(msg string, cause error) error {
	return &ConfigurationError{DashboardError{Message: msg, Cause: cause}}
}

func NewNetworkError(msg string, status int, cause error) error {
	return &NetworkError{DashboardError: DashboardError{Message: msg, Cause: cause}, StatusCode: status}
}

func NewProviderError(provider, msg string, cause error) error {
	return &ProviderError{DashboardError: DashboardError{Message: provider + ": " + msg, Cause: cause}, Provider: provider}
}

func NewStorageError(msg string, cause error) error {
	return &StorageError{DashboardError{Message: msg, Cause: cause}}
}

func NewValidationError(msg string) error {
	return &ValidationError{DashboardError{Message: msg}}
}

func NewOrchestrationError(msg string, cause error) error {
	return &OrchestrationError{DashboardError{Message: msg, Cause: cause}}
}

// -----------------------------------------------------------------------------

// IsStatus reports whether err is a NetworkError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr) && netErr.StatusCode == status
}

// -----------------------------------------------------------------------------
// Panic recovery
// -----------------------------------------------------------------------------

// RecoverAsError turns a panic in the calling function into an OrchestrationError
// stored in *errp. Use as `defer helpers.RecoverAsError("op", &err)`.
func RecoverAsError(op string, errp *error) {
	r := recover()
	if r == nil {
		return
	}
	cause, ok := r.(error)
	if !ok {
		cause = fmt.Errorf("%v", r)
	}
	*errp = NewOrchestrationError(op+" panicked", cause)
}

// -----------------------------------------------------------------------------
// Error Handler
// -----------------------------------------------------------------------------

type ErrorHandler struct {
	Logger *logger.Logger
}

func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	return &ErrorHandler{Logger: log}
}

// -----------------------------------------------------------------------------

// Handle logs err with a severity matching its type.
func (e *ErrorHandler) Handle(err error, context string) {
	if err == nil {
		return
	}

	var orch *OrchestrationError
	var netErr *NetworkError
	switch {
	case errors.As(err, &orch):
		e.Logger.Error("Orchestration fault in %s: %v", context, err)
	case errors.As(err, &netErr):
		e.Logger.Warning("Network error in %s (status %d): %v", context, netErr.StatusCode, err)
	default:
		e.Logger.Error("Error in %s: %v", context, err)
	}
}

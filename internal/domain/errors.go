package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeConfiguration   = "CONFIGURATION_ERROR"
	ErrCodeExternalService = "EXTERNAL_SERVICE_ERROR"
	ErrCodePipeline        = "PIPELINE_ERROR"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeInternalError   = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrInvalidSearchLimit = NewDomainError(ErrCodeValidation, "search limit must be a positive integer")
	ErrEmptyQuestion      = NewDomainError(ErrCodeValidation, "question cannot be empty")
	ErrEmptyQuery         = NewDomainError(ErrCodeValidation, "query cannot be empty")
	ErrInvalidRecordType  = NewDomainError(ErrCodeValidation, "invalid knowledge record type")
	ErrMissingField       = NewDomainError(ErrCodeValidation, "missing required field")
)

// Configuration errors
var (
	ErrVectorServiceUnavailable = NewDomainError(ErrCodeConfiguration, "vector service is not configured")
	ErrEmbeddingUnavailable     = NewDomainError(ErrCodeConfiguration, "embedding service is not configured")
	ErrCacheUnavailable         = NewDomainError(ErrCodeConfiguration, "cache store is not configured")
)

// Pipeline errors
var (
	ErrNoKnowledge     = NewDomainError(ErrCodePipeline, "no knowledge records available for vectorization")
	ErrPipelineRunning = NewDomainError(ErrCodePipeline, "a vectorization run is already in progress")
)

// Not found errors
var (
	ErrEmployeeNotFound = NewDomainError(ErrCodeNotFound, "employee not found")
	ErrProgressNotFound = NewDomainError(ErrCodeNotFound, "onboarding progress not found")
	ErrCacheMiss        = NewDomainError(ErrCodeNotFound, "cache entry not found")
)

// PipelineError reports a failed vectorization run together with the
// run state it failed in.
type PipelineError struct {
	Step RunState
	Err  error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("[%s] vectorization failed during %s: %v", ErrCodePipeline, e.Step, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// NewPipelineError wraps a step failure into a PipelineError.
func NewPipelineError(step RunState, err error) *PipelineError {
	return &PipelineError{Step: step, Err: err}
}

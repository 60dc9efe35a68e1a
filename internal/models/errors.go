package models

// ErrorType identifies the category of error that occurred.
type ErrorType string

const (
	// Manifest load phase. The only run-fatal category.
	ErrFatalConfig ErrorType = "fatal_config"

	// Descriptor rejected before any network action.
	ErrInvalidDescriptor ErrorType = "invalid_descriptor"

	// Clone phase: network, auth, or a corrupted fetch that survived the
	// bounded retry.
	ErrCloneFailed ErrorType = "clone_failed"

	// Dependency install phase after a successful clone.
	ErrDepsFailed ErrorType = "deps_failed"

	// Catch-all
	ErrInternalError ErrorType = "internal_error"
)

// PipelineError carries a typed pipeline failure.
type PipelineError struct {
	Type    ErrorType
	Message string
}

func (e *PipelineError) Error() string {
	return string(e.Type) + ": " + e.Message
}

// NewPipelineError constructs a typed error.
func NewPipelineError(t ErrorType, msg string) *PipelineError {
	return &PipelineError{Type: t, Message: msg}
}

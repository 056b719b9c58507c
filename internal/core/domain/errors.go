package domain

import (
	"errors"
	"fmt"
)

// ErrModelNotFound means the model ID is not registered with this host.
var ErrModelNotFound = errors.New("model not found")

// ErrUnsupportedConstruct marks a native chat template using constructs
// the minimal substitution engine does not handle. It triggers the
// architecture-specific fallback and never reaches API callers.
var ErrUnsupportedConstruct = errors.New("unsupported template construct")

// MetadataError wraps a failure to read a model's raw key-value store.
// This is the only extraction failure that propagates; individual field
// misses degrade to defaults instead.
type MetadataError struct {
	Err       error
	ModelID   string
	Operation string
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("%s failed for model %s: %v", e.Operation, e.ModelID, e.Err)
}

func (e *MetadataError) Unwrap() error {
	return e.Err
}

func NewMetadataError(operation, modelID string, err error) *MetadataError {
	return &MetadataError{
		Operation: operation,
		ModelID:   modelID,
		Err:       err,
	}
}

// TemplateError records which construct broke native template rendering.
// Recovered locally by the formatter; logged, never surfaced.
type TemplateError struct {
	Err          error
	Architecture string
	Construct    string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template rendering failed for %s (construct %q): %v", e.Architecture, e.Construct, e.Err)
}

func (e *TemplateError) Unwrap() error {
	return e.Err
}

func NewTemplateError(architecture, construct string, err error) *TemplateError {
	return &TemplateError{
		Architecture: architecture,
		Construct:    construct,
		Err:          err,
	}
}

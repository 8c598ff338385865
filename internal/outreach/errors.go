package outreach

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidDocument   = errors.New("invalid document")
	ErrDocumentTooLarge  = errors.New("document too large")
	ErrEmptyInput        = errors.New("input is empty")
	ErrExtractionFailed  = errors.New("resume extraction failed")
	ErrStructuringFailed = errors.New("job description structuring failed")
	ErrGenerationFailed  = errors.New("generation failed")
	ErrMissingArtifacts  = errors.New("missing prerequisite artifacts")
	ErrUnknownKind       = errors.New("unknown generator kind")

	ErrInvalidTransition        = errors.New("invalid step transition")
	ErrGeneratorAlreadySelected = errors.New("generator already selected")

	// ErrGenerationInFlight is returned when a generation is requested while
	// another one has not settled yet.
	ErrGenerationInFlight = errors.New("generation already in progress")
)

// ValidationError is a local, pre-network input problem. It blocks the
// step transition and never reaches the session's last error.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ServiceError is a failed round trip to a service client.
type ServiceError struct {
	Op     string
	Status int
	Err    error
}

func (e *ServiceError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// OrchestrationError reports a generation attempt without the artifacts
// collected by the earlier steps.
type OrchestrationError struct {
	Missing []string
}

func (e *OrchestrationError) Error() string {
	return fmt.Sprintf("%v: %s", ErrMissingArtifacts, strings.Join(e.Missing, ", "))
}

func (e *OrchestrationError) Unwrap() error { return ErrMissingArtifacts }

// GenerationFailed is the typed failure propagated by the orchestrator.
type GenerationFailed struct {
	Kind   Kind
	Reason string
	Err    error
}

func (e *GenerationFailed) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s generation failed: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s generation failed: %s", e.Kind, e.Reason)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *GenerationFailed) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrGenerationFailed}
	}
	return []error{ErrGenerationFailed, e.Err}
}

// IsValidation reports whether err is a local validation error.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

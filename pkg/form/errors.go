package form

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-signup/pkg/model"
)

var (
	// ErrSubmitInFlight is returned when a submission is already running on
	// the controller. No request is issued.
	ErrSubmitInFlight = errors.New("form: submission already in flight")
	// ErrInvalid signals that validation failed and nothing was sent.
	ErrInvalid = errors.New("form: input is invalid")
	// ErrSubmissionFailed signals that the registration call settled with an
	// error (transport failure or non-2xx response).
	ErrSubmissionFailed = errors.New("form: submission failed")
	// ErrNothingToRetry is returned by Retry outside the SubmissionFailed phase.
	ErrNothingToRetry = errors.New("form: no failed submission to retry")
	// ErrRegistrarPanic wraps a panic raised by the registrar.
	ErrRegistrarPanic = errors.New("form: registrar panicked")
)

// ValidationError carries the per-field messages of a rejected submit.
type ValidationError struct {
	Errors model.ValidationResult
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalid.Error(), strings.Join(e.Errors.Fields(), ", "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

// SubmissionError wraps the transport error of a failed submission.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("%s: %v", ErrSubmissionFailed.Error(), e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

func (e *SubmissionError) Is(target error) bool {
	return target == ErrSubmissionFailed
}

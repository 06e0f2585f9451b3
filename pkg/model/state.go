package model

import "time"

// Phase enumerates the controller state machine:
//
//	Idle -> Validating -> (Invalid | Submitting) -> Idle
//	Submitting -> SubmissionFailed (failed settle)
//
// Invalid and SubmissionFailed return to Idle on the next field edit and to
// Validating on the next submit.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseValidating
	PhaseInvalid
	PhaseSubmitting
	PhaseSubmissionFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseValidating:
		return "validating"
	case PhaseInvalid:
		return "invalid"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSubmissionFailed:
		return "submission_failed"
	default:
		return "unknown"
	}
}

// SubmissionState carries the single guard flag. IsSubmitting is true for the
// whole duration of the outbound request and false otherwise.
type SubmissionState struct {
	IsSubmitting bool `json:"isSubmitting"`
}

// Outcome describes the last settled submission. The zero value means nothing
// has settled yet.
type Outcome struct {
	Succeeded  bool      `json:"succeeded"`
	StatusCode int       `json:"statusCode,omitempty"`
	Message    string    `json:"message,omitempty"`
	At         time.Time `json:"at,omitempty"`
}

// Settled reports whether the outcome describes a finished submission.
func (o Outcome) Settled() bool {
	return !o.At.IsZero()
}

// Snapshot is an immutable copy of controller state handed to renderers and
// subscribers.
type Snapshot struct {
	Input      FormInput        `json:"input"`
	Errors     ValidationResult `json:"errors,omitempty"`
	FormErrors []string         `json:"formErrors,omitempty"`
	Phase      Phase            `json:"phase"`
	Submission SubmissionState  `json:"submission"`
	Outcome    Outcome          `json:"outcome"`
}

// CanSubmit reports whether the submit control is enabled.
func (s Snapshot) CanSubmit() bool {
	return !s.Submission.IsSubmitting
}

// CanRetry reports whether the last submission failed and may be retried.
func (s Snapshot) CanRetry() bool {
	return s.Phase == PhaseSubmissionFailed && !s.Submission.IsSubmitting
}

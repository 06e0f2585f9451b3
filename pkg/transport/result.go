package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-signup/pkg/model"
)

// Registrar performs the registration call for a validated input.
type Registrar interface {
	Register(ctx context.Context, input model.FormInput) Result
}

// RegistrarFunc adapts a function to the Registrar interface.
type RegistrarFunc func(ctx context.Context, input model.FormInput) Result

// Register calls fn.
func (fn RegistrarFunc) Register(ctx context.Context, input model.FormInput) Result {
	return fn(ctx, input)
}

// Response is the part of a successful reply the controller keeps.
type Response struct {
	StatusCode int
	Message    string
	Body       []byte
}

// Result is either Ok(Response) or Err(reason).
type Result struct {
	Response Response
	Err      error
}

// Ok wraps a successful response.
func Ok(resp Response) Result {
	return Result{Response: resp}
}

// Err wraps a failure. A nil err is replaced so the result never reads as a
// success by accident.
func Err(err error) Result {
	if err == nil {
		err = errors.New("transport: unknown failure")
	}
	return Result{Err: err}
}

// OK reports whether the call succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// StatusCode returns the HTTP status of the settled call, or 0 when no
// response was received.
func (r Result) StatusCode() int {
	if r.Err == nil {
		return r.Response.StatusCode
	}
	var statusErr *StatusError
	if errors.As(r.Err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

// TransportError reports a request that never produced a response: network
// failures, timeouts, and cancellation.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError reports a non-2xx response. FieldErrors carries per-field
// messages when the backend returned them.
type StatusError struct {
	StatusCode  int
	Message     string
	FieldErrors map[string][]string
}

func (e *StatusError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("transport: registration rejected (status %d): %s", e.StatusCode, msg)
}

// Envelope is the JSON body shape understood by the client for both
// successful and rejected calls: {"message": "...", "errors": {"email": ["taken"]}}.
type Envelope struct {
	Message string              `json:"message,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

package testsupport

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"

	"github.com/goliatone/go-signup/pkg/model"
	"github.com/goliatone/go-signup/pkg/transport"
)

// ValidInput returns a payload that passes the default registration schema.
func ValidInput() model.FormInput {
	return model.FormInput{
		Username: "ada",
		Email:    "ada@example.com",
		Password: "correcthorse",
	}
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents. Tests can assert
// the renderer returns and writes the same payload without duplicating buffer
// setup.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}

// Registrar is a recording transport.Registrar. Every call is captured; the
// response comes from Respond when set, otherwise from Result. When Gate is
// non-nil each call signals Started (if set) and blocks until Gate yields or
// is closed, which lets tests observe the in-flight window.
type Registrar struct {
	Result  transport.Result
	Respond func(ctx context.Context, input model.FormInput) transport.Result
	Started chan struct{}
	Gate    chan struct{}

	mu    sync.Mutex
	calls []model.FormInput
}

// NewRegistrar returns a Registrar that answers every call with result.
func NewRegistrar(result transport.Result) *Registrar {
	return &Registrar{Result: result}
}

// Register implements transport.Registrar.
func (r *Registrar) Register(ctx context.Context, input model.FormInput) transport.Result {
	r.mu.Lock()
	r.calls = append(r.calls, input)
	r.mu.Unlock()

	if r.Gate != nil {
		if r.Started != nil {
			r.Started <- struct{}{}
		}
		select {
		case <-r.Gate:
		case <-ctx.Done():
			return transport.Err(ctx.Err())
		}
	}
	if r.Respond != nil {
		return r.Respond(ctx, input)
	}
	return r.Result
}

// Calls returns a copy of every payload received so far.
func (r *Registrar) Calls() []model.FormInput {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.FormInput(nil), r.calls...)
}

// CallCount reports how many requests were issued.
func (r *Registrar) CallCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// Created is the canonical success result.
func Created() transport.Result {
	return transport.Ok(transport.Response{StatusCode: 201, Message: "user created"})
}

// Recorder collects controller snapshots published to subscribers.
type Recorder struct {
	mu    sync.Mutex
	snaps []model.Snapshot
}

// Record is a subscriber callback.
func (r *Recorder) Record(snap model.Snapshot) {
	r.mu.Lock()
	r.snaps = append(r.snaps, snap)
	r.mu.Unlock()
}

// Snapshots returns every recorded snapshot in publish order.
func (r *Recorder) Snapshots() []model.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Snapshot(nil), r.snaps...)
}

// SubmittingTrail returns the IsSubmitting flag of each recorded snapshot.
func (r *Recorder) SubmittingTrail() []bool {
	snaps := r.Snapshots()
	out := make([]bool, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, snap.Submission.IsSubmitting)
	}
	return out
}

package form

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goliatone/go-signup/internal/logger"
	"github.com/goliatone/go-signup/pkg/model"
	"github.com/goliatone/go-signup/pkg/render"
	"github.com/goliatone/go-signup/pkg/transport"
	"github.com/goliatone/go-signup/pkg/validation"
)

// Controller owns the sign-up form state: field values, per-field errors,
// the submission guard flag, and the outcome of the last settled request.
//
// busy latches the whole Validating/Submitting critical section with a
// compare-and-swap, so concurrent or same-tick Submit calls can never issue
// more than one request per controller.
type Controller struct {
	busy atomic.Bool

	mu         sync.Mutex
	input      model.FormInput
	errors     model.ValidationResult
	formErrors []string
	phase      model.Phase
	submission model.SubmissionState
	outcome    model.Outcome

	subMu  sync.Mutex
	subs   map[int]func(model.Snapshot)
	nextID int

	form      model.FormModel
	validator Validator
	registrar transport.Registrar
	logger    logger.Logger
	now       func() time.Time
}

// New constructs a Controller. A registrar is required; the validator
// defaults to the registration schema.
func New(options ...Option) (*Controller, error) {
	c := &Controller{
		phase:  model.PhaseIdle,
		form:   model.SignupForm(),
		logger: logger.NewNop(),
		now:    time.Now,
		subs:   make(map[int]func(model.Snapshot)),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}

	if c.registrar == nil {
		return nil, errors.New("form: registrar is required")
	}
	if c.validator == nil {
		c.validator = validation.Default()
	}
	return c, nil
}

// Form returns the field catalogue the controller maps errors against.
func (c *Controller) Form() model.FormModel {
	return c.form
}

// UpdateField records the raw value for name. Values are not validated here;
// the field's stale message is cleared and Invalid/SubmissionFailed fall back
// to Idle.
func (c *Controller) UpdateField(name, value string) error {
	c.mu.Lock()
	next, err := c.input.WithValue(name, value)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.input = next
	if _, ok := c.errors[name]; ok {
		c.errors = c.errors.Clone()
		delete(c.errors, name)
		if len(c.errors) == 0 {
			c.errors = nil
		}
	}
	if c.phase == model.PhaseInvalid || c.phase == model.PhaseSubmissionFailed {
		c.phase = model.PhaseIdle
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
	return nil
}

// Submit validates the current input and, when it is valid, issues exactly
// one registration request. It returns ErrSubmitInFlight without doing
// anything while another submission runs, a *ValidationError (ErrInvalid)
// when validation fails, and a *SubmissionError (ErrSubmissionFailed) when
// the request settles with an error. IsSubmitting is always false again when
// Submit returns.
func (c *Controller) Submit(ctx context.Context) (model.Snapshot, error) {
	return c.submit(ctx, false)
}

// Retry re-submits after a failed submission. The phase is checked under the
// same latch and lock that start the submission, so an edit that lands first
// turns the call into ErrNothingToRetry.
func (c *Controller) Retry(ctx context.Context) (model.Snapshot, error) {
	return c.submit(ctx, true)
}

func (c *Controller) submit(ctx context.Context, retry bool) (model.Snapshot, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !c.busy.CompareAndSwap(false, true) {
		return c.Snapshot(), ErrSubmitInFlight
	}
	defer c.busy.Store(false)

	log := c.logger.With("form", c.form.ID)

	c.mu.Lock()
	if retry && c.phase != model.PhaseSubmissionFailed {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, ErrNothingToRetry
	}
	c.phase = model.PhaseValidating
	input := c.input
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)

	result := c.validator.Validate(input)
	if !result.Valid() {
		c.mu.Lock()
		c.errors = result.Clone()
		c.formErrors = nil
		c.phase = model.PhaseInvalid
		snap = c.snapshotLocked()
		c.mu.Unlock()
		c.notify(snap)

		log.Debug("validation failed", "fields", strings.Join(result.Fields(), ","))
		return snap, &ValidationError{Errors: result.Clone()}
	}

	c.mu.Lock()
	c.errors = nil
	c.formErrors = nil
	c.submission.IsSubmitting = true
	c.phase = model.PhaseSubmitting
	snap = c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)

	log.Info("submitting registration", "username", input.Username)
	res := c.call(ctx, input)

	c.mu.Lock()
	c.submission.IsSubmitting = false
	if res.OK() {
		c.phase = model.PhaseIdle
		c.outcome = model.Outcome{
			Succeeded:  true,
			StatusCode: res.Response.StatusCode,
			Message:    successMessage(res.Response),
			At:         c.now(),
		}
	} else {
		c.phase = model.PhaseSubmissionFailed
		c.outcome = model.Outcome{
			StatusCode: res.StatusCode(),
			Message:    failureMessage(res.Err),
			At:         c.now(),
		}
		c.applyServerErrorsLocked(res.Err)
	}
	snap = c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)

	if !res.OK() {
		log.Warn("registration failed", "status", res.StatusCode(), "error", res.Err)
		return snap, &SubmissionError{Err: res.Err}
	}
	log.Info("registration succeeded", "status", res.Response.StatusCode)
	return snap, nil
}

// Reset clears values, errors and the last outcome.
func (c *Controller) Reset() error {
	if !c.busy.CompareAndSwap(false, true) {
		return ErrSubmitInFlight
	}
	defer c.busy.Store(false)

	c.mu.Lock()
	c.input = model.FormInput{}
	c.errors = nil
	c.formErrors = nil
	c.outcome = model.Outcome{}
	c.phase = model.PhaseIdle
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
	return nil
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() model.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers fn to receive a snapshot after every state change.
// The returned function removes the subscription.
func (c *Controller) Subscribe(fn func(model.Snapshot)) func() {
	if fn == nil {
		return func() {}
	}
	c.subMu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.subMu.Lock()
			delete(c.subs, id)
			c.subMu.Unlock()
		})
	}
}

func (c *Controller) call(ctx context.Context, input model.FormInput) (res transport.Result) {
	defer func() {
		if r := recover(); r != nil {
			res = transport.Err(fmt.Errorf("%w: %v", ErrRegistrarPanic, r))
		}
	}()
	return c.registrar.Register(ctx, input)
}

func (c *Controller) applyServerErrorsLocked(err error) {
	var statusErr *transport.StatusError
	if !errors.As(err, &statusErr) || len(statusErr.FieldErrors) == 0 {
		return
	}
	mapping := render.MapErrorPayload(c.form, statusErr.FieldErrors)
	if len(mapping.Fields) > 0 {
		c.errors = make(model.ValidationResult, len(mapping.Fields))
		for field, messages := range mapping.Fields {
			c.errors[field] = messages[0]
		}
	}
	c.formErrors = mapping.Form
}

func (c *Controller) snapshotLocked() model.Snapshot {
	return model.Snapshot{
		Input:      c.input,
		Errors:     c.errors.Clone(),
		FormErrors: append([]string(nil), c.formErrors...),
		Phase:      c.phase,
		Submission: c.submission,
		Outcome:    c.outcome,
	}
}

func (c *Controller) notify(snap model.Snapshot) {
	c.subMu.Lock()
	if len(c.subs) == 0 {
		c.subMu.Unlock()
		return
	}
	ids := make([]int, 0, len(c.subs))
	for id := range c.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(model.Snapshot), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, c.subs[id])
	}
	c.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func successMessage(resp transport.Response) string {
	if msg := strings.TrimSpace(resp.Message); msg != "" {
		return msg
	}
	return "Your account has been created."
}

func failureMessage(err error) string {
	var statusErr *transport.StatusError
	var transportErr *transport.TransportError
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return "The registration service did not respond in time. Please try again."
	case errors.Is(err, context.Canceled):
		return "The registration was cancelled."
	case errors.As(err, &statusErr):
		msg := strings.TrimSpace(statusErr.Message)
		if msg == "" {
			msg = http.StatusText(statusErr.StatusCode)
		}
		return "Registration failed: " + msg
	case errors.As(err, &transportErr):
		return "Could not reach the registration service. Please try again."
	default:
		return "Registration failed. Please try again."
	}
}

package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-signup/pkg/form"
	"github.com/goliatone/go-signup/pkg/model"
)

// Session drives a form.Controller from a terminal: it prompts for every
// field, submits, re-prompts only the fields that were rejected and offers a
// retry after a failed submission.
type Session struct {
	controller     *form.Controller
	driver         PromptDriver
	theme          Theme
	fieldValidator FieldValidator
	maxRounds      int
}

// NewSession binds a session to controller. The survey driver is used unless
// WithPromptDriver supplies another one.
func NewSession(controller *form.Controller, options ...Option) (*Session, error) {
	if controller == nil {
		return nil, errors.New("tui: controller is required")
	}
	s := &Session{
		controller: controller,
		theme:      DefaultTheme(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.driver == nil {
		s.driver = NewSurveyDriver()
	}
	return s, nil
}

// Run prompts until the registration succeeds, the user aborts (ErrAborted),
// declines a retry (ErrRetryDeclined) or the round limit is reached.
func (s *Session) Run(ctx context.Context) (model.Snapshot, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	catalogue := s.controller.Form()

	pending := catalogue.Fields
	for round := 1; ; round++ {
		if s.maxRounds > 0 && round > s.maxRounds {
			snap := s.controller.Snapshot()
			return snap, fmt.Errorf("tui: gave up after %d rounds", s.maxRounds)
		}

		snap := s.controller.Snapshot()
		for _, field := range pending {
			if err := s.promptField(ctx, field, snap); err != nil {
				return s.controller.Snapshot(), err
			}
		}

		if !snap.CanSubmit() {
			return snap, form.ErrSubmitInFlight
		}
		snap, err := s.controller.Submit(ctx)
		switch {
		case err == nil:
			if err := s.info(ctx, s.theme.SuccessPrefix+snap.Outcome.Message); err != nil {
				return snap, err
			}
			return snap, nil

		case errors.Is(err, form.ErrInvalid):
			pending = invalidFields(catalogue, snap)
			if len(pending) == 0 {
				pending = catalogue.Fields
			}

		case errors.Is(err, form.ErrSubmissionFailed):
			if err := s.reportFailure(ctx, snap); err != nil {
				return snap, err
			}
			if fields := invalidFields(catalogue, snap); len(fields) > 0 {
				pending = fields
				continue
			}
			retry, cerr := s.driver.Confirm(ctx, ConfirmConfig{Message: "Retry?", Default: true})
			if cerr != nil {
				return snap, cerr
			}
			if !retry {
				return snap, fmt.Errorf("%w: %w", ErrRetryDeclined, err)
			}
			pending = nil

		default:
			return snap, err
		}
	}
}

func (s *Session) promptField(ctx context.Context, field model.Field, snap model.Snapshot) error {
	if msg, ok := snap.Errors[field.Name]; ok {
		if err := s.info(ctx, s.theme.ErrorPrefix+msg); err != nil {
			return err
		}
	}

	cfg := InputConfig{
		Message: promptLabel(field),
		Help:    field.Placeholder,
	}
	if s.fieldValidator != nil {
		name := field.Name
		cfg.Validator = func(value string) error {
			if msg, ok := s.fieldValidator(name, value); !ok {
				return errors.New(msg)
			}
			return nil
		}
	}

	var (
		value string
		err   error
	)
	if field.Secret || field.Type == model.InputTypePassword {
		value, err = s.driver.Password(ctx, cfg)
	} else {
		cfg.Default, _ = snap.Input.Value(field.Name)
		value, err = s.driver.Input(ctx, cfg)
	}
	if err != nil {
		return err
	}
	return s.controller.UpdateField(field.Name, value)
}

func (s *Session) reportFailure(ctx context.Context, snap model.Snapshot) error {
	lines := []string{s.theme.ErrorPrefix + snap.Outcome.Message}
	for _, msg := range snap.FormErrors {
		lines = append(lines, "  "+msg)
	}
	for _, name := range snap.Errors.Fields() {
		lines = append(lines, fmt.Sprintf("  %s: %s", name, snap.Errors[name]))
	}
	return s.info(ctx, strings.Join(lines, "\n"))
}

func (s *Session) info(ctx context.Context, msg string) error {
	return s.driver.Info(ctx, s.theme.InfoPrefix+msg)
}

func invalidFields(catalogue model.FormModel, snap model.Snapshot) []model.Field {
	var out []model.Field
	for _, field := range catalogue.Fields {
		if _, ok := snap.Errors[field.Name]; ok {
			out = append(out, field)
		}
	}
	return out
}

func promptLabel(field model.Field) string {
	if label := strings.TrimSpace(field.Label); label != "" {
		return label
	}
	return field.Name
}

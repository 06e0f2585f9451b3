package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-signup/pkg/form"
	"github.com/goliatone/go-signup/pkg/model"
	"github.com/goliatone/go-signup/pkg/render"
	"github.com/goliatone/go-signup/pkg/testsupport"
	"github.com/goliatone/go-signup/pkg/transport"
)

type stubDriver struct {
	inputs       []string
	passwords    []string
	confirm      []bool
	prompts      []string
	infoMessages []string
	inputPos     int
	passPos      int
	confirmPos   int
	abortOn      string
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if cfg.Message == s.abortOn {
		return "", ErrAborted
	}
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, cfg InputConfig) (string, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func newSession(t *testing.T, reg transport.Registrar, driver PromptDriver, opts ...Option) *Session {
	t.Helper()
	ctrl, err := form.New(form.WithRegistrar(reg))
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	s, err := NewSession(ctrl, append([]Option{WithPromptDriver(driver)}, opts...)...)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

func TestSession_HappyPath(t *testing.T) {
	reg := testsupport.NewRegistrar(testsupport.Created())
	driver := &stubDriver{
		inputs:    []string{"ada", "ada@example.com"},
		passwords: []string{"correcthorse"},
	}

	snap, err := newSession(t, reg, driver).Run(testsupport.Context())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !snap.Outcome.Succeeded {
		t.Fatalf("expected success, got %+v", snap.Outcome)
	}
	if diff := cmp.Diff([]model.FormInput{testsupport.ValidInput()}, reg.Calls()); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Username", "Email", "Password"}, driver.prompts); diff != "" {
		t.Fatalf("prompt order mismatch (-want +got):\n%s", diff)
	}
	if len(driver.infoMessages) != 1 || !strings.Contains(driver.infoMessages[0], "user created") {
		t.Fatalf("expected success message, got %v", driver.infoMessages)
	}
}

func TestSession_RepromptsOnlyInvalidFields(t *testing.T) {
	reg := testsupport.NewRegistrar(testsupport.Created())
	driver := &stubDriver{
		inputs:    []string{"ada", "not-an-email", "ada@example.com"},
		passwords: []string{"short", "correcthorse"},
	}

	if _, err := newSession(t, reg, driver).Run(testsupport.Context()); err != nil {
		t.Fatalf("run: %v", err)
	}

	want := []string{"Username", "Email", "Password", "Email", "Password"}
	if diff := cmp.Diff(want, driver.prompts); diff != "" {
		t.Fatalf("prompt order mismatch (-want +got):\n%s", diff)
	}
	if reg.CallCount() != 1 {
		t.Fatalf("expected exactly one request, got %d", reg.CallCount())
	}
	joined := strings.Join(driver.infoMessages, "\n")
	for _, msg := range []string{"Email is not valid", "Password too short"} {
		if !strings.Contains(joined, msg) {
			t.Fatalf("expected %q in info output:\n%s", msg, joined)
		}
	}
}

func TestSession_RetryAfterFailure(t *testing.T) {
	reg := testsupport.NewRegistrar(transport.Err(&transport.StatusError{StatusCode: 503, Message: "Service Unavailable"}))
	driver := &stubDriver{
		inputs:    []string{"ada", "ada@example.com"},
		passwords: []string{"correcthorse"},
		confirm:   []bool{true},
	}
	calls := 0
	reg.Respond = func(context.Context, model.FormInput) transport.Result {
		calls++
		if calls == 1 {
			return reg.Result
		}
		return testsupport.Created()
	}

	snap, err := newSession(t, reg, driver).Run(testsupport.Context())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !snap.Outcome.Succeeded || reg.CallCount() != 2 {
		t.Fatalf("expected success on retry, got %+v after %d calls", snap.Outcome, reg.CallCount())
	}
	if !strings.Contains(driver.infoMessages[0], "Registration failed: Service Unavailable") {
		t.Fatalf("expected failure message, got %v", driver.infoMessages)
	}
}

func TestSession_RetryDeclined(t *testing.T) {
	reg := testsupport.NewRegistrar(transport.Err(&transport.StatusError{StatusCode: 500}))
	driver := &stubDriver{
		inputs:    []string{"ada", "ada@example.com"},
		passwords: []string{"correcthorse"},
		confirm:   []bool{false},
	}

	snap, err := newSession(t, reg, driver).Run(testsupport.Context())
	if !errors.Is(err, ErrRetryDeclined) || !errors.Is(err, form.ErrSubmissionFailed) {
		t.Fatalf("expected ErrRetryDeclined wrapping ErrSubmissionFailed, got %v", err)
	}
	if snap.Submission.IsSubmitting || snap.Phase != model.PhaseSubmissionFailed {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestSession_ServerFieldErrorsReprompt(t *testing.T) {
	reg := testsupport.NewRegistrar(testsupport.Created())
	calls := 0
	reg.Respond = func(context.Context, model.FormInput) transport.Result {
		calls++
		if calls == 1 {
			return transport.Err(&transport.StatusError{
				StatusCode:  409,
				Message:     "Conflict",
				FieldErrors: map[string][]string{"username": {"Username already taken"}},
			})
		}
		return testsupport.Created()
	}
	driver := &stubDriver{
		inputs:    []string{"ada", "ada@example.com", "grace"},
		passwords: []string{"correcthorse"},
	}

	if _, err := newSession(t, reg, driver).Run(testsupport.Context()); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []string{"Username", "Email", "Password", "Username"}
	if diff := cmp.Diff(want, driver.prompts); diff != "" {
		t.Fatalf("prompt order mismatch (-want +got):\n%s", diff)
	}
	if got := reg.Calls()[1].Username; got != "grace" {
		t.Fatalf("expected retried username, got %q", got)
	}
}

func TestSession_Abort(t *testing.T) {
	reg := testsupport.NewRegistrar(testsupport.Created())
	driver := &stubDriver{inputs: []string{"ada"}, abortOn: "Email"}

	if _, err := newSession(t, reg, driver).Run(testsupport.Context()); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	if reg.CallCount() != 0 {
		t.Fatalf("expected no request after abort")
	}
}

func TestSession_MaxRounds(t *testing.T) {
	reg := testsupport.NewRegistrar(testsupport.Created())
	driver := &stubDriver{
		inputs:    []string{"", "ada@example.com", ""},
		passwords: []string{"correcthorse"},
	}

	_, err := newSession(t, reg, driver, WithMaxRounds(2)).Run(testsupport.Context())
	if err == nil || !strings.Contains(err.Error(), "gave up after 2 rounds") {
		t.Fatalf("expected round limit error, got %v", err)
	}
}

func TestSession_FieldValidatorIsWired(t *testing.T) {
	var seen []string
	driver := &validatingDriver{stubDriver: stubDriver{
		inputs:    []string{"ada", "ada@example.com"},
		passwords: []string{"correcthorse"},
	}}
	s := newSession(t, testsupport.NewRegistrar(testsupport.Created()), driver, WithFieldValidator(func(field, value string) (string, bool) {
		seen = append(seen, field)
		return "", true
	}))
	if _, err := s.Run(testsupport.Context()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if diff := cmp.Diff([]string{"username", "email", "password"}, seen); diff != "" {
		t.Fatalf("validator calls mismatch (-want +got):\n%s", diff)
	}
}

type validatingDriver struct {
	stubDriver
}

func (d *validatingDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	val, err := d.stubDriver.Input(ctx, cfg)
	if err == nil && cfg.Validator != nil {
		err = cfg.Validator(val)
	}
	return val, err
}

func (d *validatingDriver) Password(ctx context.Context, cfg InputConfig) (string, error) {
	val, err := d.stubDriver.Password(ctx, cfg)
	if err == nil && cfg.Validator != nil {
		err = cfg.Validator(val)
	}
	return val, err
}

func TestTextRenderer(t *testing.T) {
	snap := model.Snapshot{
		Input:  model.FormInput{Username: "ada", Password: "hidden"},
		Phase:  model.PhaseInvalid,
		Errors: model.ValidationResult{"email": "Email is not valid"},
	}
	out, err := NewTextRenderer().Render(testsupport.Context(), render.BuildView(model.SignupForm(), snap), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	got := string(out)
	for _, fragment := range []string{"Sign up\n", "Username*: ada", "Email is not valid", "[ Sign up ]", "Already have an account? Sign in: /signin"} {
		if !strings.Contains(got, fragment) {
			t.Fatalf("expected %q in output:\n%s", fragment, got)
		}
	}
	if strings.Contains(got, "hidden") {
		t.Fatalf("password leaked into text output:\n%s", got)
	}
}

package model

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFormInput_WithValueAndValue(t *testing.T) {
	in := FormInput{}
	var err error
	for name, value := range map[string]string{
		FieldUsername: "alice",
		FieldEmail:    "alice@example.com",
		FieldPassword: "password1",
	} {
		in, err = in.WithValue(name, value)
		if err != nil {
			t.Fatalf("with value %s: %v", name, err)
		}
	}

	want := FormInput{Username: "alice", Email: "alice@example.com", Password: "password1"}
	if diff := cmp.Diff(want, in); diff != "" {
		t.Fatalf("input mismatch (-want +got):\n%s", diff)
	}

	got, err := in.Value(FieldEmail)
	if err != nil || got != "alice@example.com" {
		t.Fatalf("value email: got %q, %v", got, err)
	}
}

func TestFormInput_UnknownField(t *testing.T) {
	if _, err := (FormInput{}).WithValue("age", "3"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if _, err := (FormInput{}).Value("age"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestFormInput_StringRedactsPassword(t *testing.T) {
	in := FormInput{Username: "alice", Email: "a@b.co", Password: "hunter22"}
	for _, out := range []string{in.String(), fmt.Sprintf("%v", in), fmt.Sprintf("%#v", in)} {
		if strings.Contains(out, "hunter22") {
			t.Fatalf("password leaked in %q", out)
		}
		if !strings.Contains(out, "alice") {
			t.Fatalf("username missing in %q", out)
		}
	}
}

func TestValidationResult_Helpers(t *testing.T) {
	var empty ValidationResult
	if !empty.Valid() || empty.Message(FieldEmail) != "" || empty.Clone() != nil {
		t.Fatalf("nil result should be valid and empty")
	}

	res := ValidationResult{FieldPassword: "Password too short", FieldEmail: "Email is not valid"}
	if res.Valid() {
		t.Fatalf("expected invalid result")
	}
	if diff := cmp.Diff([]string{FieldEmail, FieldPassword}, res.Fields()); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}

	clone := res.Clone()
	clone[FieldEmail] = "changed"
	if res[FieldEmail] != "Email is not valid" {
		t.Fatalf("clone shares storage with original")
	}
}

func TestSignupForm_Catalogue(t *testing.T) {
	form := SignupForm()
	var names []string
	for _, field := range form.Fields {
		names = append(names, field.Name)
	}
	if diff := cmp.Diff(FieldNames(), names); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}
	password, ok := form.Field(FieldPassword)
	if !ok || !password.Secret || password.Type != InputTypePassword {
		t.Fatalf("password field misconfigured: %+v", password)
	}
	if form.AltLink == nil || form.AltLink.Href != "/signin" {
		t.Fatalf("expected sign in link, got %+v", form.AltLink)
	}
}

func TestPhaseString(t *testing.T) {
	cases := map[Phase]string{
		PhaseIdle:             "idle",
		PhaseValidating:       "validating",
		PhaseInvalid:          "invalid",
		PhaseSubmitting:       "submitting",
		PhaseSubmissionFailed: "submission_failed",
		Phase(42):             "unknown",
	}
	for phase, want := range cases {
		if got := phase.String(); got != want {
			t.Fatalf("phase %d: want %q, got %q", int(phase), want, got)
		}
	}
}

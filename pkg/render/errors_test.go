package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-signup/pkg/model"
	"github.com/goliatone/go-signup/pkg/render"
)

func TestMapErrorPayload_PathVariants(t *testing.T) {
	form := model.SignupForm()

	payload := map[string][]string{
		"/body/username":                 {"Username already taken"},
		"data.attributes.Email":          {" Email invalid ", "Email invalid"},
		"$.body[0].password":             {"Password too weak"},
		"non_field_errors":               {"Form level error"},
		"request/body/unknown-field":     {"Should fall back to form errors"},
		"":                               {"Unscoped form error"},
		"user.password.~1characters":     {"Password needs a digit"},
		"/body/email":                    {"  "},
	}

	mapped := render.MapErrorPayload(form, payload)

	wantFields := map[string][]string{
		"username": {"Username already taken"},
		"email":    {"Email invalid"},
		"password": {"Password too weak", "Password needs a digit"},
	}
	sortStrings := cmpopts.SortSlices(func(a, b string) bool { return a < b })
	if diff := cmp.Diff(wantFields, mapped.Fields, sortStrings); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}

	wantForm := []string{"Form level error", "Should fall back to form errors", "Unscoped form error"}
	if diff := cmp.Diff(wantForm, mapped.Form, sortStrings); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestMapErrorPayload_Empty(t *testing.T) {
	mapped := render.MapErrorPayload(model.SignupForm(), nil)
	if mapped.Fields != nil || mapped.Form != nil {
		t.Fatalf("expected empty mapping, got %+v", mapped)
	}
}

func TestMergeFormErrors(t *testing.T) {
	merged := render.MergeFormErrors([]string{" First ", "Second"}, "Second", "third", "  ")
	want := []string{"First", "Second", "third"}

	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged form errors mismatch (-want +got):\n%s", diff)
	}
}

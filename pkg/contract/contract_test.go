package contract_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-signup/pkg/contract"
	"github.com/goliatone/go-signup/pkg/model"
	"github.com/goliatone/go-signup/pkg/validation"
)

func TestDocument_RequestSchema(t *testing.T) {
	doc, err := contract.Document(validation.SignupSchema(), "users/signUp")
	if err != nil {
		t.Fatalf("document: %v", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		t.Fatalf("generated document is invalid: %v", err)
	}

	item := doc.Paths.Value("/users/signUp")
	if item == nil || item.Post == nil {
		t.Fatalf("expected POST /users/signUp")
	}
	if item.Post.OperationID != contract.OperationID {
		t.Fatalf("operation id: want %s, got %s", contract.OperationID, item.Post.OperationID)
	}

	schema, err := contract.RequestSchema(doc)
	if err != nil {
		t.Fatalf("request schema: %v", err)
	}
	if diff := cmp.Diff([]string{"username", "email", "password"}, schema.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}

	password := schema.Properties["password"].Value
	if password.MinLength != validation.PasswordMinLength || password.MaxLength == nil || *password.MaxLength != validation.PasswordMaxLength {
		t.Fatalf("unexpected password bounds min=%d max=%v", password.MinLength, password.MaxLength)
	}
	if got := schema.Properties["email"].Value.Format; got != "email" {
		t.Fatalf("email format: want email, got %q", got)
	}
	if got := schema.Properties["username"].Value.MinLength; got != 1 {
		t.Fatalf("username minLength: want 1, got %d", got)
	}
}

func TestDocument_Rejects(t *testing.T) {
	if _, err := contract.Document(validation.SignupSchema(), " "); err == nil {
		t.Fatalf("expected error for empty path")
	}
	if _, err := contract.Document(nil, "/users/signUp"); err == nil {
		t.Fatalf("expected error for empty schema")
	}
}

func TestCheckBody(t *testing.T) {
	doc, err := contract.Document(validation.SignupSchema(), "/users/signUp")
	if err != nil {
		t.Fatalf("document: %v", err)
	}
	ctx := context.Background()

	valid := model.FormInput{Username: "ada", Email: "ada@example.com", Password: "correcthorse"}
	if err := contract.CheckBody(ctx, doc, valid); err != nil {
		t.Fatalf("expected valid body, got %v", err)
	}
	if err := contract.CheckBody(ctx, doc, []byte(`{"username":"ada","email":"ada@example.com","password":"12345678901234567890"}`)); err != nil {
		t.Fatalf("expected 20 character password to pass, got %v", err)
	}

	err = contract.CheckBody(ctx, doc, map[string]any{
		"username": "ada",
		"email":    "ada@example.com",
		"password": "short",
	})
	if err == nil {
		t.Fatalf("expected short password to fail")
	}
	fields := contract.FieldErrors(err)
	if len(fields["password"]) == 0 {
		t.Fatalf("expected password violation, got %v", fields)
	}

	if err := contract.CheckBody(ctx, doc, map[string]any{"email": "ada@example.com", "password": "correcthorse"}); err == nil {
		t.Fatalf("expected missing username to fail")
	}
	if err := contract.CheckBody(ctx, doc, []byte(`{not json`)); err == nil {
		t.Fatalf("expected malformed body to fail")
	}
	if err := contract.CheckBody(ctx, doc, nil); err == nil {
		t.Fatalf("expected nil body to fail")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	doc, err := contract.Document(validation.SignupSchema(), "/users/signUp")
	if err != nil {
		t.Fatalf("document: %v", err)
	}

	data, err := contract.MarshalJSON(doc)
	if err != nil {
		t.Fatalf("marshal json: %v", err)
	}
	loaded, err := contract.Load(context.Background(), data)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := contract.RequestSchema(loaded); err != nil {
		t.Fatalf("request schema after reload: %v", err)
	}

	out, err := contract.MarshalYAML(doc)
	if err != nil {
		t.Fatalf("marshal yaml: %v", err)
	}
	if !strings.Contains(string(out), "\npaths:\n") {
		t.Fatalf("expected block style yaml, got:\n%s", out)
	}
	var decoded map[string]any
	if err := yaml.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("yaml output does not parse: %v", err)
	}
	if decoded["openapi"] != "3.0.3" {
		t.Fatalf("unexpected openapi version %v", decoded["openapi"])
	}
	if _, err := contract.Load(context.Background(), out); err != nil {
		t.Fatalf("load yaml: %v", err)
	}
}

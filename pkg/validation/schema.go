package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-signup/pkg/model"
)

// Rule is a single constraint expressed as a go-playground/validator tag
// (for example "required", "email", "min=8") together with the message shown
// when the constraint is violated.
type Rule struct {
	Tag     string `json:"tag" yaml:"tag"`
	Message string `json:"message" yaml:"message"`
}

// FieldSchema lists the rules applied to one field. Rules are evaluated in
// order and evaluation stops at the first violation.
type FieldSchema struct {
	Field string `json:"field" yaml:"field"`
	Rules []Rule `json:"rules" yaml:"rules"`
}

// Schema is the declarative rule set for a form.
type Schema []FieldSchema

// For returns the rules declared for field.
func (s Schema) For(field string) []Rule {
	for _, entry := range s {
		if entry.Field == field {
			return entry.Rules
		}
	}
	return nil
}

// Validate checks the schema itself: known fields, no duplicates, and rules
// with both a tag and a message.
func (s Schema) Validate() error {
	if len(s) == 0 {
		return errors.New("validation: schema is empty")
	}
	seen := make(map[string]struct{}, len(s))
	for _, entry := range s {
		if !model.IsField(entry.Field) {
			return fmt.Errorf("validation: schema names unknown field %q", entry.Field)
		}
		if _, dup := seen[entry.Field]; dup {
			return fmt.Errorf("validation: field %q declared twice", entry.Field)
		}
		seen[entry.Field] = struct{}{}
		for idx, rule := range entry.Rules {
			if strings.TrimSpace(rule.Tag) == "" {
				return fmt.Errorf("validation: field %q rule %d has no tag", entry.Field, idx)
			}
			if strings.TrimSpace(rule.Message) == "" {
				return fmt.Errorf("validation: field %q rule %q has no message", entry.Field, rule.Tag)
			}
		}
	}
	return nil
}

const (
	PasswordMinLength = 8
	PasswordMaxLength = 20
)

// SignupSchema returns the registration rules: a non-empty username, a valid
// email address and a password of 8 to 20 characters inclusive.
func SignupSchema() Schema {
	return Schema{
		{
			Field: model.FieldUsername,
			Rules: []Rule{
				{Tag: "required", Message: "Username is required"},
			},
		},
		{
			Field: model.FieldEmail,
			Rules: []Rule{
				{Tag: "required", Message: "Email is not valid"},
				{Tag: "email", Message: "Email is not valid"},
			},
		},
		{
			Field: model.FieldPassword,
			Rules: []Rule{
				{Tag: fmt.Sprintf("min=%d", PasswordMinLength), Message: "Password too short"},
				{Tag: fmt.Sprintf("max=%d", PasswordMaxLength), Message: "Password too long"},
			},
		},
	}
}

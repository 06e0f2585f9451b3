package validation

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/goliatone/go-signup/pkg/model"
)

// Option configures the Validator.
type Option func(*config)

type config struct {
	custom map[string]validator.Func
}

// WithRule registers a custom validator tag that schema rules can reference.
func WithRule(tag string, fn validator.Func) Option {
	return func(cfg *config) {
		if tag == "" || fn == nil {
			return
		}
		if cfg.custom == nil {
			cfg.custom = make(map[string]validator.Func)
		}
		cfg.custom[tag] = fn
	}
}

// Validator evaluates a Schema against FormInput values.
type Validator struct {
	schema Schema
	engine *validator.Validate
}

// New builds a Validator for schema. Every rule tag is exercised once so
// unknown tags surface here instead of panicking at submit time.
func New(schema Schema, options ...Option) (*Validator, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}

	cfg := config{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	engine := validator.New()
	for tag, fn := range cfg.custom {
		if err := engine.RegisterValidation(tag, fn); err != nil {
			return nil, fmt.Errorf("validation: register %q: %w", tag, err)
		}
	}

	v := &Validator{schema: schema, engine: engine}
	for _, entry := range schema {
		for _, rule := range entry.Rules {
			if err := v.probe(rule.Tag); err != nil {
				return nil, fmt.Errorf("validation: field %q: %w", entry.Field, err)
			}
		}
	}
	return v, nil
}

// Default returns a Validator for SignupSchema.
func Default() *Validator {
	v, err := New(SignupSchema())
	if err != nil {
		panic(err)
	}
	return v
}

// Schema returns the rules the validator evaluates.
func (v *Validator) Schema() Schema {
	return v.schema
}

// Check runs every field through its rules and reports the first violated
// rule per field.
func (v *Validator) Check(input model.FormInput) Result {
	result := Result{Valid: true}
	values := input.Values()
	for _, entry := range v.schema {
		if issue, failed := v.checkField(entry.Field, values[entry.Field], entry.Rules); failed {
			result.Valid = false
			result.Issues = append(result.Issues, issue)
		}
	}
	return result
}

// Validate returns the per-field error map; nil means the input is valid.
func (v *Validator) Validate(input model.FormInput) model.ValidationResult {
	return v.Check(input).Errors()
}

// ValidateField checks a single value and returns the first message when it
// fails.
func (v *Validator) ValidateField(field, value string) (string, bool) {
	issue, failed := v.checkField(field, value, v.schema.For(field))
	if !failed {
		return "", true
	}
	return issue.Message, false
}

func (v *Validator) checkField(field, value string, rules []Rule) (Issue, bool) {
	for _, rule := range rules {
		if err := v.engine.Var(value, rule.Tag); err != nil {
			return Issue{Field: field, Tag: rule.Tag, Message: rule.Message}, true
		}
	}
	return Issue{}, false
}

func (v *Validator) probe(tag string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invalid rule tag %q: %v", tag, r)
		}
	}()
	_ = v.engine.Var("", tag)
	return nil
}

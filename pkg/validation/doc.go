// Package validation evaluates declarative field rules against FormInput.
// Rules reuse go-playground/validator tags so constraints read the same way
// they do on request DTOs; each field reports at most one message, the one
// attached to its first violated rule.
package validation

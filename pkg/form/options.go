package form

import (
	"time"

	"github.com/goliatone/go-signup/internal/logger"
	"github.com/goliatone/go-signup/pkg/model"
	"github.com/goliatone/go-signup/pkg/transport"
)

// Validator produces the per-field errors for an input. An empty result
// means the input may be submitted.
type Validator interface {
	Validate(input model.FormInput) model.ValidationResult
}

// Option configures a Controller.
type Option func(*Controller)

// WithValidator overrides the schema validator.
func WithValidator(v Validator) Option {
	return func(c *Controller) {
		if v != nil {
			c.validator = v
		}
	}
}

// WithRegistrar sets the outbound registration call. Required.
func WithRegistrar(r transport.Registrar) Option {
	return func(c *Controller) {
		c.registrar = r
	}
}

// WithLogger routes controller logs through l.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock overrides the time source used to stamp outcomes.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithInitialInput pre-populates field values.
func WithInitialInput(in model.FormInput) Option {
	return func(c *Controller) {
		c.input = in
	}
}

// WithForm sets the field catalogue used to map server error payloads onto
// fields.
func WithForm(f model.FormModel) Option {
	return func(c *Controller) {
		c.form = f
	}
}

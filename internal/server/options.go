package server

import (
	"time"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-signup/internal/logger"
	"github.com/goliatone/go-signup/pkg/render"
	"github.com/goliatone/go-signup/pkg/transport"
	"github.com/goliatone/go-signup/pkg/validation"
)

// Option configures a Server.
type Option func(*Server)

// WithRegistrar sets the registration call used by POST /. Required.
func WithRegistrar(r transport.Registrar) Option {
	return func(s *Server) {
		s.registrar = r
	}
}

// WithRenderers replaces the default renderer registry (html, text).
func WithRenderers(reg *render.Registry) Option {
	return func(s *Server) {
		if reg != nil {
			s.renderers = reg
		}
	}
}

// WithLogger routes request and backend logs through l.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTheme passes a resolved theme to every render.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(s *Server) {
		s.theme = cfg
	}
}

// WithValidator overrides the schema validator shared by the form and the
// mock backend.
func WithValidator(v *validation.Validator) Option {
	return func(s *Server) {
		if v != nil {
			s.validator = v
		}
	}
}

// WithRateLimit throttles the mock backend per client IP. rps <= 0 disables
// limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		s.rps = rps
		s.burst = burst
	}
}

// WithTrustedProxy keys the rate limiter on X-Forwarded-For.
func WithTrustedProxy(trust bool) Option {
	return func(s *Server) {
		s.trustXFF = trust
	}
}

// WithMockBackend mounts the in-memory registration API at path.
func WithMockBackend(path string) Option {
	return func(s *Server) {
		s.mockPath = path
	}
}

// WithHidden adds hidden inputs (flow identifiers, tokens) to the rendered
// form.
func WithHidden(fields ...render.HiddenField) Option {
	return func(s *Server) {
		s.hidden = render.MergeHiddenFields(s.hidden, fields...)
	}
}

// WithFlowTTL sets how long a failed submission stays available to the
// page's retry button. Defaults to ten minutes.
func WithFlowTTL(ttl time.Duration) Option {
	return func(s *Server) {
		s.flowTTL = ttl
	}
}

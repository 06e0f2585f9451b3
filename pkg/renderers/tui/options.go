package tui

// Theme captures optional formatting hints applied when printing messages.
// Keep minimal to avoid coupling session logic to ANSI specifics.
type Theme struct {
	InfoPrefix    string
	ErrorPrefix   string
	SuccessPrefix string
}

// DefaultTheme is used when no theme is supplied.
func DefaultTheme() Theme {
	return Theme{
		InfoPrefix:    "",
		ErrorPrefix:   "✗ ",
		SuccessPrefix: "✓ ",
	}
}

// FieldValidator checks a single value while the user types. It returns the
// message to show and false when the value is rejected.
type FieldValidator func(field, value string) (string, bool)

// Option configures a Session.
type Option func(*Session)

// WithPromptDriver overrides the prompt driver used by the session.
func WithPromptDriver(driver PromptDriver) Option {
	return func(s *Session) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(s *Session) {
		s.theme = theme
	}
}

// WithFieldValidator enables inline checks inside the prompt itself. The
// controller still validates the whole payload on submit.
func WithFieldValidator(fn FieldValidator) Option {
	return func(s *Session) {
		s.fieldValidator = fn
	}
}

// WithMaxRounds caps how many prompt/submit rounds run before giving up.
// Zero means unlimited.
func WithMaxRounds(n int) Option {
	return func(s *Session) {
		if n >= 0 {
			s.maxRounds = n
		}
	}
}

package validation

import "github.com/goliatone/go-signup/pkg/model"

// Issue represents a violated rule.
type Issue struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// Result captures a full validation pass. Issues hold at most one entry per
// field, in schema order.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// Errors converts the result into the per-field map consumed by renderers.
func (r Result) Errors() model.ValidationResult {
	if len(r.Issues) == 0 {
		return nil
	}
	out := make(model.ValidationResult, len(r.Issues))
	for _, issue := range r.Issues {
		if _, exists := out[issue.Field]; exists {
			continue
		}
		out[issue.Field] = issue.Message
	}
	return out
}

package render

import theme "github.com/goliatone/go-theme"

// RenderOptions describe per-request data that renderers can use to customise
// their output without touching controller state.
type RenderOptions struct {
	// Action is the URL the rendered form posts back to. Empty keeps the
	// current location.
	Action string
	// Method defaults to POST.
	Method string
	// Hidden lists extra inputs (CSRF tokens, flow identifiers) emitted
	// alongside the visible fields. See MergeHiddenFields.
	Hidden map[string]string
	// Theme carries the resolved go-theme configuration: stylesheet asset
	// lookup, tokens and CSS variables.
	Theme *theme.RendererConfig
}

// MethodOrDefault returns the form method, POST when unset.
func (o RenderOptions) MethodOrDefault() string {
	if o.Method == "" {
		return "POST"
	}
	return o.Method
}

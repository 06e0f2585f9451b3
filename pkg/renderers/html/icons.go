package html

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

const svgOpen = `<svg xmlns="http://www.w3.org/2000/svg" width="16" height="16" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round" aria-hidden="true" class="signup-icon">`

// builtinIcons are lucide glyphs referenced by the sign-up catalogue.
var builtinIcons = map[string]string{
	"user":      svgOpen + `<path d="M19 21v-2a4 4 0 0 0-4-4H9a4 4 0 0 0-4 4v2"></path><circle cx="12" cy="7" r="4"></circle></svg>`,
	"mail":      svgOpen + `<rect width="20" height="16" x="2" y="4" rx="2"></rect><path d="m22 7-8.97 5.7a1.94 1.94 0 0 1-2.06 0L2 7"></path></svg>`,
	"lock":      svgOpen + `<rect width="18" height="11" x="3" y="11" rx="2" ry="2"></rect><path d="M7 11V7a5 5 0 0 1 10 0v4"></path></svg>`,
	"circle-x":  svgOpen + `<circle cx="12" cy="12" r="10"></circle><path d="m15 9-6 6"></path><path d="m9 9 6 6"></path></svg>`,
	"user-plus": svgOpen + `<path d="M16 21v-2a4 4 0 0 0-4-4H6a4 4 0 0 0-4 4v2"></path><circle cx="9" cy="7" r="4"></circle><line x1="19" x2="19" y1="8" y2="14"></line><line x1="22" x2="16" y1="11" y2="11"></line></svg>`,
	"loader":    svgOpen + `<path d="M21 12a9 9 0 1 1-6.219-8.56"></path></svg>`,
}

var (
	iconPolicyOnce sync.Once
	iconPolicy     *bluemonday.Policy
)

type iconSet struct {
	mu    sync.RWMutex
	raw   map[string]string
	clean map[string]string
}

func newIconSet(overrides map[string]string) *iconSet {
	raw := make(map[string]string, len(builtinIcons)+len(overrides))
	for name, markup := range builtinIcons {
		raw[name] = markup
	}
	for name, markup := range overrides {
		if name = strings.TrimSpace(name); name != "" {
			raw[name] = markup
		}
	}
	return &iconSet{raw: raw, clean: make(map[string]string, len(raw))}
}

// lookup returns the sanitised markup for name, or "" for unknown icons.
func (s *iconSet) lookup(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	s.mu.RLock()
	cached, ok := s.clean[name]
	s.mu.RUnlock()
	if ok {
		return cached
	}

	raw, ok := s.raw[name]
	if !ok {
		return ""
	}
	cleaned := sanitizeIconMarkup(raw)

	s.mu.Lock()
	s.clean[name] = cleaned
	s.mu.Unlock()
	return cleaned
}

func sanitizeIconMarkup(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(iconSanitizer().Sanitize(trimmed))
}

func iconSanitizer() *bluemonday.Policy {
	iconPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("svg", "g", "path", "circle", "rect", "line", "polyline", "polygon", "title")

		policy.AllowAttrs(
			"xmlns", "viewBox", "width", "height", "fill", "stroke",
			"stroke-width", "stroke-linecap", "stroke-linejoin", "aria-hidden",
			"role", "focusable", "class",
		).OnElements("svg")

		for _, el := range []string{"path", "circle", "rect", "line", "polyline", "polygon"} {
			policy.AllowAttrs(
				"d", "cx", "cy", "r", "x", "y", "x1", "y1", "x2", "y2",
				"points", "rx", "ry", "fill", "stroke", "stroke-width",
				"stroke-linecap", "stroke-linejoin", "class",
			).OnElements(el)
		}
		iconPolicy = policy
	})
	return iconPolicy
}

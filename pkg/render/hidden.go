package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-signup/pkg/model"
)

// HiddenField is an input posted back with the sign-up form but never shown:
// an anti-forgery token, the id of a failed submission awaiting retry, a
// post-registration redirect.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden builds a HiddenField, formatting value with fmt.Sprint.
func Hidden(name string, value any) HiddenField {
	return HiddenField{Name: strings.TrimSpace(name), Value: fmt.Sprint(value)}
}

// CSRFToken names the anti-forgery token the host checks on POST.
func CSRFToken(name, token string) HiddenField {
	return Hidden(name, token)
}

// FlowField ties a post to server-side flow state, such as the stored
// submission the retry button re-sends.
func FlowField(name, value string) HiddenField {
	return Hidden(name, value)
}

// MergeHiddenFields layers fields over base and returns a new map; base is
// not modified. Blank names are skipped and later fields replace earlier
// ones. Names that belong to the sign-up inputs (username, email, password)
// are dropped so a hidden value can never shadow what the user typed.
func MergeHiddenFields(base map[string]string, fields ...HiddenField) map[string]string {
	out := make(map[string]string, len(base)+len(fields))
	add := func(name, value string) {
		name = strings.TrimSpace(name)
		if name == "" || model.IsField(name) {
			return
		}
		out[name] = value
	}
	for name, value := range base {
		add(name, value)
	}
	for _, field := range fields {
		add(field.Name, field.Value)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortedHiddenFields returns the merged fields ordered by name so the page
// renders them identically on every request.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	merged := MergeHiddenFields(fields)
	if merged == nil {
		return nil
	}
	out := make([]HiddenField, 0, len(merged))
	for name, value := range merged {
		out = append(out, HiddenField{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

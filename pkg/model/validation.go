package model

import "sort"

// ValidationResult maps a field name to the first error message reported for
// it. A field without an entry is valid; an empty result means the whole
// input is valid.
type ValidationResult map[string]string

// Valid reports whether no field carries an error.
func (r ValidationResult) Valid() bool {
	return len(r) == 0
}

// Message returns the error attached to field, if any.
func (r ValidationResult) Message(field string) string {
	if r == nil {
		return ""
	}
	return r[field]
}

// Fields returns the names of invalid fields in sorted order.
func (r ValidationResult) Fields() []string {
	if len(r) == 0 {
		return nil
	}
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent copy. Empty results clone to nil.
func (r ValidationResult) Clone() ValidationResult {
	if len(r) == 0 {
		return nil
	}
	out := make(ValidationResult, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

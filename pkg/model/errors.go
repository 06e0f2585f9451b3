package model

import "errors"

// ErrUnknownField is returned when a field name is not part of FormInput.
var ErrUnknownField = errors.New("model: unknown field")

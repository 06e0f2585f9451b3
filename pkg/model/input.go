package model

import "fmt"

const (
	FieldUsername = "username"
	FieldEmail    = "email"
	FieldPassword = "password"
)

// FieldNames lists the input names in form order.
func FieldNames() []string {
	return []string{FieldUsername, FieldEmail, FieldPassword}
}

// IsField reports whether name addresses a FormInput field.
func IsField(name string) bool {
	switch name {
	case FieldUsername, FieldEmail, FieldPassword:
		return true
	default:
		return false
	}
}

// FormInput holds the raw values typed by the user. It doubles as the JSON
// body of the registration request.
type FormInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Value returns the raw value stored for name.
func (in FormInput) Value(name string) (string, error) {
	switch name {
	case FieldUsername:
		return in.Username, nil
	case FieldEmail:
		return in.Email, nil
	case FieldPassword:
		return in.Password, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
}

// WithValue returns a copy of in with name set to value.
func (in FormInput) WithValue(name, value string) (FormInput, error) {
	switch name {
	case FieldUsername:
		in.Username = value
	case FieldEmail:
		in.Email = value
	case FieldPassword:
		in.Password = value
	default:
		return in, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return in, nil
}

// Values returns the input keyed by field name.
func (in FormInput) Values() map[string]string {
	return map[string]string{
		FieldUsername: in.Username,
		FieldEmail:    in.Email,
		FieldPassword: in.Password,
	}
}

// String keeps passwords out of logs and panics.
func (in FormInput) String() string {
	return fmt.Sprintf("{username:%q email:%q password:%s}", in.Username, in.Email, redact(in.Password))
}

// GoString mirrors String for %#v.
func (in FormInput) GoString() string {
	return "model.FormInput" + in.String()
}

func redact(secret string) string {
	if secret == "" {
		return `""`
	}
	return "[redacted]"
}

package model

// InputType mirrors the HTML input types the catalogue uses.
type InputType string

const (
	InputTypeText     InputType = "text"
	InputTypeEmail    InputType = "email"
	InputTypePassword InputType = "password"
)

// Field models an individual input inside the sign-up form. Struct fields are
// annotated so renderers can serialise them directly when needed.
type Field struct {
	Name         string            `json:"name"`
	Type         InputType         `json:"type"`
	Label        string            `json:"label,omitempty"`
	Placeholder  string            `json:"placeholder,omitempty"`
	Icon         string            `json:"icon,omitempty"`
	Autocomplete string            `json:"autocomplete,omitempty"`
	Required     bool              `json:"required"`
	Secret       bool              `json:"secret,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// Link points at an alternate flow rendered next to the form (for example
// "Already have an account? Sign in").
type Link struct {
	Prompt string `json:"prompt,omitempty"`
	Label  string `json:"label"`
	Href   string `json:"href"`
}

// FormModel is the top-level representation renderers consume.
type FormModel struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description,omitempty"`
	SubmitLabel  string            `json:"submitLabel"`
	SubmitIcon   string            `json:"submitIcon,omitempty"`
	LoadingLabel string            `json:"loadingLabel"`
	ErrorIcon    string            `json:"errorIcon,omitempty"`
	Fields       []Field           `json:"fields"`
	AltLink      *Link             `json:"altLink,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// Field returns the catalogue entry for name.
func (f FormModel) Field(name string) (Field, bool) {
	for _, field := range f.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// SignupForm returns the catalogue of the registration page: username, email
// and password inputs, a "Sign up" submit control and a link to the sign in
// flow.
func SignupForm() FormModel {
	return FormModel{
		ID:           "signup",
		Title:        "Sign up",
		Description:  "Enter your email below to login to your account.",
		SubmitLabel:  "Sign up",
		SubmitIcon:   "user-plus",
		LoadingLabel: "Loading...",
		ErrorIcon:    "circle-x",
		Fields: []Field{
			{
				Name:         FieldUsername,
				Type:         InputTypeText,
				Label:        "Username",
				Placeholder:  "Enter your username",
				Icon:         "user",
				Autocomplete: "off",
				Required:     true,
			},
			{
				Name:         FieldEmail,
				Type:         InputTypeEmail,
				Label:        "Email",
				Placeholder:  "Enter your email",
				Icon:         "mail",
				Autocomplete: "off",
				Required:     true,
			},
			{
				Name:        FieldPassword,
				Type:        InputTypePassword,
				Label:       "Password",
				Placeholder: "Enter your password",
				Icon:        "lock",
				Required:    true,
				Secret:      true,
			},
		},
		AltLink: &Link{
			Prompt: "Already have an account?",
			Label:  "Sign in",
			Href:   "/signin",
		},
	}
}

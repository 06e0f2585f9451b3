package render

import (
	"strings"

	"github.com/goliatone/go-signup/pkg/model"
)

// BannerKind distinguishes the success and failure banners.
type BannerKind string

const (
	BannerSuccess BannerKind = "success"
	BannerError   BannerKind = "error"
)

// View is the renderer-facing projection of a form and a controller snapshot.
// It is computed once per render and carries everything a template needs.
type View struct {
	FormID         string      `json:"formId"`
	Title          string      `json:"title"`
	Description    string      `json:"description,omitempty"`
	Phase          string      `json:"phase"`
	Fields         []FieldView `json:"fields"`
	FormErrors     []string    `json:"formErrors,omitempty"`
	SubmitLabel    string      `json:"submitLabel"`
	SubmitIcon     string      `json:"submitIcon,omitempty"`
	SubmitDisabled bool        `json:"submitDisabled"`
	Loading        bool        `json:"loading"`
	Banner         *Banner     `json:"banner,omitempty"`
	AltLink        *model.Link `json:"altLink,omitempty"`
}

// FieldView is a single input as it should be drawn.
type FieldView struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Label        string `json:"label"`
	Placeholder  string `json:"placeholder,omitempty"`
	Icon         string `json:"icon,omitempty"`
	Autocomplete string `json:"autocomplete,omitempty"`
	Required     bool   `json:"required"`
	Value        string `json:"value"`
	Error        string `json:"error,omitempty"`
	Invalid      bool   `json:"invalid"`
}

// Banner reports the last settled submission.
type Banner struct {
	Kind    BannerKind `json:"kind"`
	Icon    string     `json:"icon,omitempty"`
	Message string     `json:"message"`
	Retry   bool       `json:"retry"`
}

// Field returns the field view named name.
func (v View) Field(name string) (FieldView, bool) {
	for _, field := range v.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return FieldView{}, false
}

// BuildView projects form and snap into a View. Secret field values are never
// copied into the view.
func BuildView(form model.FormModel, snap model.Snapshot) View {
	loading := snap.Submission.IsSubmitting
	view := View{
		FormID:         form.ID,
		Title:          form.Title,
		Description:    form.Description,
		Phase:          snap.Phase.String(),
		Fields:         make([]FieldView, 0, len(form.Fields)),
		FormErrors:     MergeFormErrors(snap.FormErrors),
		SubmitLabel:    form.SubmitLabel,
		SubmitIcon:     form.SubmitIcon,
		SubmitDisabled: !snap.CanSubmit(),
		Loading:        loading,
	}
	if loading && form.LoadingLabel != "" {
		view.SubmitLabel = form.LoadingLabel
	}
	if form.AltLink != nil {
		link := *form.AltLink
		view.AltLink = &link
	}

	for _, field := range form.Fields {
		fv := FieldView{
			ID:           fieldID(form.ID, field.Name),
			Name:         field.Name,
			Type:         string(field.Type),
			Label:        field.Label,
			Placeholder:  field.Placeholder,
			Icon:         field.Icon,
			Autocomplete: field.Autocomplete,
			Required:     field.Required,
		}
		if !field.Secret {
			fv.Value, _ = snap.Input.Value(field.Name)
		}
		if msg, ok := snap.Errors[field.Name]; ok {
			fv.Error = msg
			fv.Invalid = true
		}
		view.Fields = append(view.Fields, fv)
	}

	if !loading && snap.Outcome.Settled() {
		if snap.Outcome.Succeeded {
			view.Banner = &Banner{Kind: BannerSuccess, Message: snap.Outcome.Message}
		} else if snap.Phase == model.PhaseSubmissionFailed {
			view.Banner = &Banner{
				Kind:    BannerError,
				Icon:    form.ErrorIcon,
				Message: snap.Outcome.Message,
				Retry:   snap.CanRetry(),
			}
		}
	}
	return view
}

func fieldID(formID, name string) string {
	formID = strings.TrimSpace(formID)
	if formID == "" {
		return name
	}
	return formID + "-" + name
}

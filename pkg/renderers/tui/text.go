package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-signup/pkg/render"
)

// TextRenderer draws a View as plain text for terminals, logs and
// text/plain clients.
type TextRenderer struct {
	theme Theme
}

var _ render.Renderer = (*TextRenderer)(nil)

// NewTextRenderer constructs a TextRenderer using the default theme.
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{theme: DefaultTheme()}
}

func (r *TextRenderer) Name() string {
	return "text"
}

func (r *TextRenderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

func (r *TextRenderer) Render(ctx context.Context, view render.View, _ render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString(view.Title)
	b.WriteByte('\n')
	if view.Description != "" {
		b.WriteString(view.Description)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	if view.Banner != nil {
		prefix := r.theme.SuccessPrefix
		if view.Banner.Kind == render.BannerError {
			prefix = r.theme.ErrorPrefix
		}
		b.WriteString(prefix + view.Banner.Message + "\n")
		if view.Banner.Retry {
			b.WriteString("  (retry available)\n")
		}
	}
	for _, msg := range view.FormErrors {
		b.WriteString(r.theme.ErrorPrefix + msg + "\n")
	}

	for _, field := range view.Fields {
		value := field.Value
		marker := ""
		if field.Required {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s%s: %s\n", field.Label, marker, value)
		if field.Invalid {
			fmt.Fprintf(&b, "  %s%s\n", r.theme.ErrorPrefix, field.Error)
		}
	}

	b.WriteByte('\n')
	submit := "[ " + view.SubmitLabel + " ]"
	if view.SubmitDisabled {
		submit += " (disabled)"
	}
	b.WriteString(submit + "\n")
	if view.AltLink != nil {
		fmt.Fprintf(&b, "%s %s: %s\n", view.AltLink.Prompt, view.AltLink.Label, view.AltLink.Href)
	}
	return []byte(b.String()), nil
}

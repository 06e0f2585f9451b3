package template

import (
	"io"
)

// TemplateRenderer is the seam the HTML renderer draws through. The pongo
// subpackage provides the pongo2-backed implementation.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}

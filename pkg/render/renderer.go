package render

import "context"

// Renderer converts a View into a byte representation (HTML, plain text,
// etc.). Implementations must not retain the view between calls.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, view View, options RenderOptions) ([]byte, error)
}

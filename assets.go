package signup

import (
	"io/fs"

	"github.com/goliatone/go-signup/pkg/renderers/html"
)

// EmbeddedTemplates exposes the built-in pongo2 page templates so callers can
// copy or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}

// AssetsFS exposes the stylesheet referenced by the rendered page.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(signup.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	return html.AssetsFS()
}

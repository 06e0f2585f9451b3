// Package render turns a form catalogue and a controller snapshot into a
// View, and defines the Renderer contract the HTML and terminal renderers
// implement. It also maps server error payloads onto form fields.
package render

// Package template defines the template engine contract used by renderers.
package template

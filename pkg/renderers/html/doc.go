// Package html renders the sign-up form as an HTML page using a pongo2
// template bundle embedded in the binary. Icons are inline SVG passed through
// a bluemonday policy; theming comes from a go-theme RendererConfig.
package html

package html

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-signup/pkg/render"
	rendertemplate "github.com/goliatone/go-signup/pkg/render/template"
	"github.com/goliatone/go-signup/pkg/render/template/pongo"
)

// Option configures the HTML renderer.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	assetPrefix      string
	icons            map[string]string
	fragment         bool
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS. The bundle
// must provide page.tmpl and form.tmpl.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(dir string) Option {
	return func(cfg *config) {
		if dir == "" {
			return
		}
		cfg.templateFS = os.DirFS(dir)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithAssetPrefix sets the URL prefix the bundled stylesheet is served under
// when no theme provides one. Defaults to "/assets/".
func WithAssetPrefix(prefix string) Option {
	return func(cfg *config) {
		cfg.assetPrefix = strings.TrimSpace(prefix)
	}
}

// WithIcons adds or replaces SVG icons by name. Markup is sanitised before it
// reaches a page.
func WithIcons(icons map[string]string) Option {
	return func(cfg *config) {
		if cfg.icons == nil {
			cfg.icons = make(map[string]string, len(icons))
		}
		for name, markup := range icons {
			cfg.icons[name] = markup
		}
	}
}

// WithFragment renders only the form section instead of a full document.
func WithFragment(fragment bool) Option {
	return func(cfg *config) {
		cfg.fragment = fragment
	}
}

// Renderer draws the sign-up view as HTML.
type Renderer struct {
	templates   rendertemplate.TemplateRenderer
	icons       *iconSet
	assetPrefix string
	fragment    bool
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS:  TemplatesFS(),
		assetPrefix: "/assets/",
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	templates := cfg.templateRenderer
	if templates == nil {
		if cfg.templateFS == nil {
			return nil, errors.New("html renderer: template bundle is required")
		}
		engine, err := pongo.New(
			pongo.WithFS(cfg.templateFS),
			pongo.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		templates = engine
	}

	return &Renderer{
		templates:   templates,
		icons:       newIconSet(cfg.icons),
		assetPrefix: cfg.assetPrefix,
		fragment:    cfg.fragment,
	}, nil
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render draws view. Values are escaped by the template engine; only
// sanitised icon markup and theme CSS variables are emitted raw.
func (r *Renderer) Render(_ context.Context, view render.View, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, errors.New("html renderer: template renderer is nil")
	}

	name := "page"
	if r.fragment {
		name = "form"
	}
	out, err := r.templates.RenderTemplate(name, r.page(view, options))
	if err != nil {
		return nil, fmt.Errorf("html renderer: render template: %w", err)
	}
	return []byte(out), nil
}

type pageData struct {
	View       render.View          `json:"view"`
	Fields     []fieldData          `json:"fields"`
	Action     string               `json:"action"`
	Method     string               `json:"method"`
	Hidden     []render.HiddenField `json:"hidden,omitempty"`
	Stylesheet string               `json:"stylesheet,omitempty"`
	Theme      themeData            `json:"theme"`
	SubmitIcon string               `json:"submitIcon,omitempty"`
	BannerIcon string               `json:"bannerIcon,omitempty"`
}

type fieldData struct {
	render.FieldView
	IconSVG string `json:"iconSvg,omitempty"`
}

type themeData struct {
	Name         string `json:"name,omitempty"`
	Variant      string `json:"variant,omitempty"`
	CSSVarsStyle string `json:"cssVarsStyle,omitempty"`
}

func (r *Renderer) page(view render.View, options render.RenderOptions) pageData {
	data := pageData{
		View:       view,
		Fields:     make([]fieldData, 0, len(view.Fields)),
		Action:     options.Action,
		Method:     strings.ToLower(options.MethodOrDefault()),
		Hidden:     render.SortedHiddenFields(options.Hidden),
		Stylesheet: r.stylesheetURL(options.Theme),
		Theme:      buildThemeData(options.Theme),
		SubmitIcon: r.icons.lookup(view.SubmitIcon),
	}
	if view.Loading {
		data.SubmitIcon = r.icons.lookup("loader")
	}
	if view.Banner != nil {
		data.BannerIcon = r.icons.lookup(view.Banner.Icon)
	}
	for _, field := range view.Fields {
		data.Fields = append(data.Fields, fieldData{
			FieldView: field,
			IconSVG:   r.icons.lookup(field.Icon),
		})
	}
	return data
}

func (r *Renderer) stylesheetURL(cfg *theme.RendererConfig) string {
	if cfg != nil && cfg.AssetURL != nil {
		if url := strings.TrimSpace(cfg.AssetURL(ThemeStylesheetKey)); url != "" {
			return url
		}
	}
	if r.assetPrefix == "" {
		return ""
	}
	if strings.HasSuffix(r.assetPrefix, "/") {
		return r.assetPrefix + StylesheetName
	}
	return path.Join(r.assetPrefix, StylesheetName)
}

func buildThemeData(cfg *theme.RendererConfig) themeData {
	if cfg == nil {
		return themeData{}
	}
	return themeData{
		Name:         cfg.Theme,
		Variant:      cfg.Variant,
		CSSVarsStyle: cssVarsStyle(cfg.CSSVars),
	}
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		if !strings.HasPrefix(key, "--") || strings.ContainsAny(key+vars[key], "<>{};") {
			continue
		}
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}

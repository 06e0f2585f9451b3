package signup

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-signup/internal/logger"
	"github.com/goliatone/go-signup/internal/server"
	"github.com/goliatone/go-signup/pkg/config"
	"github.com/goliatone/go-signup/pkg/form"
	"github.com/goliatone/go-signup/pkg/render"
	"github.com/goliatone/go-signup/pkg/renderers/html"
	"github.com/goliatone/go-signup/pkg/renderers/tui"
	"github.com/goliatone/go-signup/pkg/transport"
	"github.com/goliatone/go-signup/pkg/validation"
)

// Config aliases the runtime configuration so callers only import the root
// package for the common path.
type Config = config.Config

// RenderOptions describes per-request data (action, hidden inputs, theme)
// passed to renderers.
type RenderOptions = render.RenderOptions

// Option customises New.
type Option func(*App)

// WithLogger overrides the logger built from Config.Log.
func WithLogger(l logger.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.Logger = l
		}
	}
}

// WithRegistrar replaces the HTTP client with another registration call.
func WithRegistrar(r transport.Registrar) Option {
	return func(a *App) {
		a.Registrar = r
	}
}

// WithRenderer registers an additional renderer next to html and text.
func WithRenderer(r render.Renderer) Option {
	return func(a *App) {
		a.extra = append(a.extra, r)
	}
}

// App holds the wired components: validator, registration client and
// renderer registry. Controllers are created per flow with NewController.
type App struct {
	Config    *config.Config
	Logger    logger.Logger
	Validator *validation.Validator
	Registrar transport.Registrar
	Renderers *render.Registry

	extra []render.Renderer
}

// New wires an App from cfg. A nil cfg uses config.Default.
func New(cfg *config.Config, options ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	app := &App{Config: cfg}
	for _, opt := range options {
		if opt != nil {
			opt(app)
		}
	}

	if app.Logger == nil {
		app.Logger = logger.NewLogger(logger.Config{
			Level: logger.Level(cfg.Log.Level),
			JSON:  cfg.Log.JSON,
		})
	}

	app.Validator = validation.Default()

	if app.Registrar == nil {
		client, err := transport.NewClient(
			transport.WithBaseURL(cfg.Endpoint.BaseURL),
			transport.WithPath(cfg.Endpoint.Path),
			transport.WithTimeout(cfg.Endpoint.Timeout),
			transport.WithLogger(app.Logger.With("component", "transport")),
		)
		if err != nil {
			return nil, fmt.Errorf("signup: %w", err)
		}
		app.Registrar = client
	}

	page, err := html.New()
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}
	app.Renderers = render.NewRegistry()
	for _, r := range append([]render.Renderer{page, tui.NewTextRenderer()}, app.extra...) {
		if err := app.Renderers.Register(r); err != nil {
			return nil, fmt.Errorf("signup: %w", err)
		}
	}
	return app, nil
}

// NewController returns a fresh form controller bound to the App's
// validator and registrar.
func (a *App) NewController(options ...form.Option) (*form.Controller, error) {
	base := []form.Option{
		form.WithRegistrar(a.Registrar),
		form.WithValidator(a.Validator),
		form.WithLogger(a.Logger.With("component", "form")),
	}
	return form.New(append(base, options...)...)
}

// Render renders the controller's current state with the named renderer.
// The configured theme is applied when options carries none.
func (a *App) Render(ctx context.Context, controller *form.Controller, rendererName string, options RenderOptions) ([]byte, error) {
	if controller == nil {
		return nil, errors.New("signup: controller is required")
	}
	renderer, err := a.Renderers.Get(rendererName)
	if err != nil {
		return nil, err
	}
	if options.Theme == nil {
		options.Theme = a.Config.Theme.RendererConfig()
	}
	view := render.BuildView(controller.Form(), controller.Snapshot())
	return renderer.Render(ctx, view, options)
}

// NewSession starts a terminal flow on a fresh controller.
func (a *App) NewSession(options ...tui.Option) (*tui.Session, error) {
	controller, err := a.NewController()
	if err != nil {
		return nil, err
	}
	base := []tui.Option{tui.WithFieldValidator(a.Validator.ValidateField)}
	return tui.NewSession(controller, append(base, options...)...)
}

// NewServer builds the development server from Config.Server.
func (a *App) NewServer(options ...server.Option) (*server.Server, error) {
	cfg := a.Config.Server
	base := []server.Option{
		server.WithRegistrar(a.Registrar),
		server.WithRenderers(a.Renderers),
		server.WithValidator(a.Validator),
		server.WithLogger(a.Logger.With("component", "server")),
		server.WithTheme(a.Config.Theme.RendererConfig()),
		server.WithRateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
	}
	if cfg.Mock {
		base = append(base, server.WithMockBackend(a.Config.Endpoint.Path))
	}
	return server.New(append(base, options...)...)
}

// RenderForm renders an empty sign-up form with the named renderer using the
// default configuration. It is the simplest entry point for callers that
// only need markup.
func RenderForm(ctx context.Context, rendererName string, options RenderOptions) ([]byte, error) {
	app, err := New(nil, WithLogger(logger.NewNop()))
	if err != nil {
		return nil, err
	}
	controller, err := app.NewController()
	if err != nil {
		return nil, err
	}
	return app.Render(ctx, controller, rendererName, options)
}

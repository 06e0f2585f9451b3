package signup

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-signup/internal/logger"
	"github.com/goliatone/go-signup/pkg/config"
	"github.com/goliatone/go-signup/pkg/form"
	"github.com/goliatone/go-signup/pkg/model"
	"github.com/goliatone/go-signup/pkg/render"
	"github.com/goliatone/go-signup/pkg/renderers/html"
	"github.com/goliatone/go-signup/pkg/testsupport"
)

func newApp(t *testing.T, registrar *testsupport.Registrar) *App {
	t.Helper()
	app, err := New(nil, WithLogger(logger.NewNop()), WithRegistrar(registrar))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return app
}

func TestNewRegistersDefaultRenderers(t *testing.T) {
	app := newApp(t, testsupport.NewRegistrar(testsupport.Created()))
	if diff := cmp.Diff([]string{"html", "text"}, app.Renderers.List()); diff != "" {
		t.Fatalf("renderers mismatch (-want +got):\n%s", diff)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Endpoint.BaseURL = ""
	if _, err := New(cfg, WithLogger(logger.NewNop())); err == nil {
		t.Fatalf("expected invalid config error")
	}
}

func TestNewBuildsHTTPClientFromConfig(t *testing.T) {
	app, err := New(nil, WithLogger(logger.NewNop()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if app.Registrar == nil {
		t.Fatalf("expected default registrar")
	}
}

func TestControllerSubmitThroughApp(t *testing.T) {
	registrar := testsupport.NewRegistrar(testsupport.Created())
	app := newApp(t, registrar)

	controller, err := app.NewController(form.WithInitialInput(testsupport.ValidInput()))
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	snap, err := controller.Submit(testsupport.Context())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !snap.Outcome.Succeeded {
		t.Fatalf("expected success outcome: %+v", snap.Outcome)
	}

	out, err := app.Render(context.Background(), controller, "text", RenderOptions{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(out), "user created") {
		t.Fatalf("rendered text missing success message:\n%s", out)
	}
	if registrar.CallCount() != 1 {
		t.Fatalf("calls = %d, want 1", registrar.CallCount())
	}
}

func TestRenderUsesConfiguredTheme(t *testing.T) {
	cfg := config.Default()
	cfg.Theme.Stylesheet = "/static/brand.css"
	app, err := New(cfg, WithLogger(logger.NewNop()), WithRegistrar(testsupport.NewRegistrar(testsupport.Created())))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	controller, err := app.NewController()
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	out, err := app.Render(context.Background(), controller, "html", RenderOptions{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(out), "/static/brand.css") {
		t.Fatalf("expected themed stylesheet in output")
	}
}

func TestRenderUnknownRenderer(t *testing.T) {
	app := newApp(t, testsupport.NewRegistrar(testsupport.Created()))
	controller, err := app.NewController()
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	if _, err := app.Render(context.Background(), controller, "pdf", RenderOptions{}); err == nil {
		t.Fatalf("expected unknown renderer error")
	}
}

func TestRenderFormHTML(t *testing.T) {
	out, err := RenderForm(context.Background(), "html", RenderOptions{
		Hidden: render.MergeHiddenFields(nil, render.FlowField("flow", "signup")),
	})
	if err != nil {
		t.Fatalf("RenderForm: %v", err)
	}
	for _, name := range model.FieldNames() {
		if !strings.Contains(string(out), `name="`+name+`"`) {
			t.Fatalf("missing input %q", name)
		}
	}
}

func TestNewServerMountsMockBackend(t *testing.T) {
	app := newApp(t, testsupport.NewRegistrar(testsupport.Created()))
	srv, err := app.NewServer()
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if srv.Backend() == nil {
		t.Fatalf("expected mock backend with default config")
	}
}

func TestEmbeddedFilesystems(t *testing.T) {
	if _, err := fs.ReadFile(AssetsFS(), html.StylesheetName); err != nil {
		t.Fatalf("stylesheet not embedded: %v", err)
	}
	if _, err := fs.Stat(EmbeddedTemplates(), "page.tmpl"); err != nil {
		t.Fatalf("page template not embedded: %v", err)
	}
}

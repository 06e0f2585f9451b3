package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-signup/internal/logger"
	"github.com/goliatone/go-signup/pkg/contract"
	"github.com/goliatone/go-signup/pkg/form"
	"github.com/goliatone/go-signup/pkg/model"
	"github.com/goliatone/go-signup/pkg/render"
	"github.com/goliatone/go-signup/pkg/renderers/html"
	"github.com/goliatone/go-signup/pkg/renderers/tui"
	"github.com/goliatone/go-signup/pkg/transport"
	"github.com/goliatone/go-signup/pkg/validation"
)

const shutdownTimeout = 5 * time.Second

// Server hosts the sign-up page, the contract document and, optionally, the
// mock registration backend.
type Server struct {
	registrar transport.Registrar
	renderers *render.Registry
	validator *validation.Validator
	logger    logger.Logger
	theme     *theme.RendererConfig
	hidden    map[string]string

	rps      float64
	burst    int
	trustXFF bool
	mockPath string

	flowTTL time.Duration

	doc     *openapi3.T
	backend *Backend
	limiter *limiterStore
	flows   *flowStore
}

// New builds a Server. A registrar is required.
func New(options ...Option) (*Server, error) {
	s := &Server{
		logger: logger.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}

	if s.registrar == nil {
		return nil, errors.New("server: registrar is required")
	}
	if s.validator == nil {
		s.validator = validation.Default()
	}
	if s.renderers == nil {
		reg, err := defaultRenderers()
		if err != nil {
			return nil, err
		}
		s.renderers = reg
	}

	path := transport.DefaultPath
	if s.mockPath != "" {
		s.mockPath = "/" + strings.TrimLeft(strings.TrimSpace(s.mockPath), "/")
		path = s.mockPath
	}
	doc, err := contract.Document(s.validator.Schema(), path)
	if err != nil {
		return nil, fmt.Errorf("server: build contract: %w", err)
	}
	s.doc = doc
	s.flows = newFlowStore(s.flowTTL)

	if s.mockPath != "" {
		s.backend = NewBackend(doc, s.validator, s.logger.With("component", "backend"))
		if s.rps > 0 {
			s.limiter = newLimiterStore(s.rps, s.burst)
		}
	}
	return s, nil
}

func defaultRenderers() (*render.Registry, error) {
	page, err := html.New()
	if err != nil {
		return nil, fmt.Errorf("server: html renderer: %w", err)
	}
	reg := render.NewRegistry()
	if err := reg.Register(page); err != nil {
		return nil, err
	}
	if err := reg.Register(tui.NewTextRenderer()); err != nil {
		return nil, err
	}
	return reg, nil
}

// Backend returns the mock backend, nil when it is not mounted.
func (s *Server) Backend() *Backend {
	return s.backend
}

// Handler returns the routed handler wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleForm)
	mux.HandleFunc("POST /{$}", s.handleSubmit)
	mux.HandleFunc("GET /openapi.json", s.handleContract)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServerFS(html.AssetsFS())))

	if s.backend != nil {
		var backend http.Handler = s.backend
		if s.limiter != nil {
			backend = rateLimit(s.limiter, ClientIP(s.trustXFF))(backend)
		}
		mux.Handle("POST "+s.mockPath, backend)
	}
	return s.logRequests(mux)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	if s.limiter != nil {
		s.limiter.janitor(ctx, time.Minute)
	}
	s.flows.janitor(ctx, time.Minute)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	controller, err := s.newController()
	if err != nil {
		s.fail(w, err)
		return
	}
	s.render(w, r, http.StatusOK, controller.Form(), controller.Snapshot())
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, transport.Envelope{Message: "malformed form body"})
		return
	}

	flowID := strings.TrimSpace(r.PostFormValue(flowField))
	retry := r.PostFormValue(retryField) != ""

	controller, resumed := s.flows.get(flowID)
	if !resumed {
		flowID = ""
		var err error
		if controller, err = s.newController(); err != nil {
			s.fail(w, err)
			return
		}
	}

	if err := applyPosted(controller, r, resumed && retry); err != nil {
		s.fail(w, err)
		return
	}

	var (
		snap model.Snapshot
		err  error
	)
	if resumed && retry {
		snap, err = controller.Retry(r.Context())
		if errors.Is(err, form.ErrNothingToRetry) {
			snap, err = controller.Submit(r.Context())
		}
	} else {
		snap, err = controller.Submit(r.Context())
	}

	status := http.StatusOK
	switch {
	case errors.Is(err, form.ErrInvalid):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, form.ErrSubmissionFailed):
		status = http.StatusBadGateway
	case errors.Is(err, form.ErrSubmitInFlight):
		status = http.StatusConflict
	case err != nil:
		s.fail(w, err)
		return
	}

	var hidden []render.HiddenField
	if snap.CanRetry() || errors.Is(err, form.ErrSubmitInFlight) {
		flowID = s.flows.put(flowID, controller)
		hidden = append(hidden, render.FlowField(flowField, flowID))
	} else {
		s.flows.drop(flowID)
	}
	s.render(w, r, status, controller.Form(), snap, hidden...)
}

// applyPosted copies the posted field values into controller. When
// keepSecrets is set an empty secret field keeps the stored value, since the
// page never echoes secrets back.
func applyPosted(controller *form.Controller, r *http.Request, keepSecrets bool) error {
	stored := controller.Snapshot().Input
	for _, field := range controller.Form().Fields {
		value := r.PostFormValue(field.Name)
		if keepSecrets && field.Secret && value == "" {
			continue
		}
		if current, err := stored.Value(field.Name); err == nil && current == value {
			continue
		}
		if err := controller.UpdateField(field.Name, value); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) handleContract(w http.ResponseWriter, _ *http.Request) {
	body, err := contract.MarshalJSON(s.doc)
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func (s *Server) newController() (*form.Controller, error) {
	return form.New(
		form.WithRegistrar(s.registrar),
		form.WithValidator(s.validator),
		form.WithLogger(s.logger),
	)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, catalogue model.FormModel, snap model.Snapshot, hidden ...render.HiddenField) {
	renderer, err := s.renderers.Negotiate(r.Header.Get("Accept"))
	if err != nil {
		s.fail(w, err)
		return
	}
	out, err := renderer.Render(r.Context(), render.BuildView(catalogue, snap), render.RenderOptions{
		Action: "/",
		Hidden: render.MergeHiddenFields(s.hidden, hidden...),
		Theme:  s.theme,
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	w.WriteHeader(status)
	_, _ = w.Write(out)
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	s.logger.Error("request failed", "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

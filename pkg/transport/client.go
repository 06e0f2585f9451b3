package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/goliatone/go-signup/internal/logger"
	"github.com/goliatone/go-signup/pkg/model"
)

const (
	DefaultBaseURL = "http://localhost:3000"
	DefaultPath    = "/users/signUp"
	DefaultTimeout = 10 * time.Second
)

// Option configures the Client.
type Option func(*config)

type config struct {
	baseURL    string
	path       string
	timeout    time.Duration
	userAgent  string
	httpClient *http.Client
	logger     logger.Logger
	debug      bool
}

// WithBaseURL sets the scheme and host of the registration service.
func WithBaseURL(raw string) Option {
	return func(cfg *config) {
		cfg.baseURL = strings.TrimRight(strings.TrimSpace(raw), "/")
	}
}

// WithPath sets the registration operation path.
func WithPath(path string) Option {
	return func(cfg *config) {
		path = strings.TrimSpace(path)
		if path == "" {
			return
		}
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		cfg.path = path
	}
}

// WithTimeout bounds each registration request.
func WithTimeout(d time.Duration) Option {
	return func(cfg *config) {
		if d > 0 {
			cfg.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(cfg *config) {
		cfg.userAgent = strings.TrimSpace(ua)
	}
}

// WithHTTPClient supplies the underlying *http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(cfg *config) {
		cfg.httpClient = client
	}
}

// WithLogger routes request logging through l.
func WithLogger(l logger.Logger) Option {
	return func(cfg *config) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// WithDebug enables resty request/response dumps at debug level.
func WithDebug(enabled bool) Option {
	return func(cfg *config) {
		cfg.debug = enabled
	}
}

// Client posts registrations with resty. Retries are disabled: one Register
// call is one request.
type Client struct {
	rest     *resty.Client
	endpoint string
	path     string
	logger   logger.Logger
}

var _ Registrar = (*Client)(nil)

// NewClient validates the endpoint and builds the resty client.
func NewClient(options ...Option) (*Client, error) {
	cfg := config{
		baseURL:   DefaultBaseURL,
		path:      DefaultPath,
		timeout:   DefaultTimeout,
		userAgent: "go-signup",
		logger:    logger.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if err := validateBaseURL(cfg.baseURL); err != nil {
		return nil, err
	}

	var rest *resty.Client
	if cfg.httpClient != nil {
		rest = resty.NewWithClient(cfg.httpClient)
	} else {
		rest = resty.New()
	}
	rest.
		SetBaseURL(cfg.baseURL).
		SetTimeout(cfg.timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", cfg.userAgent).
		SetLogger(restyLogger{cfg.logger}).
		SetDebug(cfg.debug)

	return &Client{
		rest:     rest,
		endpoint: cfg.baseURL + cfg.path,
		path:     cfg.path,
		logger:   cfg.logger,
	}, nil
}

// Endpoint returns the absolute registration URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Register issues one POST carrying input as JSON and reports how it settled.
func (c *Client) Register(ctx context.Context, input model.FormInput) Result {
	if ctx == nil {
		ctx = context.Background()
	}
	op := http.MethodPost + " " + c.endpoint
	started := time.Now()

	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(input).
		Post(c.path)
	if err != nil {
		c.logger.Warn("registration request failed", "endpoint", c.endpoint, "error", err)
		return Err(&TransportError{Op: op, Err: err})
	}

	c.logger.Debug("registration request settled",
		"endpoint", c.endpoint,
		"status", resp.StatusCode(),
		"duration", time.Since(started),
	)

	if resp.IsSuccess() {
		return Ok(Response{
			StatusCode: resp.StatusCode(),
			Message:    successMessage(resp),
			Body:       resp.Body(),
		})
	}
	return Err(statusError(resp))
}

func statusError(resp *resty.Response) *StatusError {
	out := &StatusError{StatusCode: resp.StatusCode()}
	if body, ok := decodeEnvelope(resp.Body()); ok {
		out.Message = strings.TrimSpace(body.Message)
		if len(body.Errors) > 0 {
			out.FieldErrors = body.Errors
		}
	}
	if out.Message == "" && out.FieldErrors == nil {
		out.Message = strings.TrimSpace(resp.String())
	}
	return out
}

func successMessage(resp *resty.Response) string {
	if body, ok := decodeEnvelope(resp.Body()); ok {
		return strings.TrimSpace(body.Message)
	}
	return ""
}

// decodeEnvelope reads a response body as an Envelope. Empty or foreign
// bodies report false; the status code alone decides success.
func decodeEnvelope(raw []byte) (Envelope, bool) {
	var env Envelope
	if len(bytes.TrimSpace(raw)) == 0 {
		return env, false
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, false
	}
	return env, true
}

func validateBaseURL(raw string) error {
	if raw == "" {
		return errors.New("transport: base URL is required")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("transport: invalid base URL: %w", err)
	}
	if !parsed.IsAbs() || parsed.Host == "" {
		return fmt.Errorf("transport: base URL must be absolute, got %q", raw)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("transport: base URL scheme must be http or https, got %q", parsed.Scheme)
	}
	return nil
}

type restyLogger struct {
	log logger.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.log.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.log.Warn(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.log.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

package config

import (
	"net/url"
	"strings"
	"time"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-signup/pkg/transport"
)

// Config is the complete runtime configuration for the CLI and the
// development server.
type Config struct {
	Endpoint EndpointConfig `koanf:"endpoint" validate:"required"`
	Server   ServerConfig   `koanf:"server"   validate:"required"`
	Log      LogConfig      `koanf:"log"`
	Theme    ThemeConfig    `koanf:"theme"`
}

// EndpointConfig locates the registration API.
type EndpointConfig struct {
	BaseURL string        `koanf:"base_url" validate:"required,url"         env:"SIGNUP_ENDPOINT_BASE_URL"`
	Path    string        `koanf:"path"     validate:"required,startswith=/" env:"SIGNUP_ENDPOINT_PATH"`
	Timeout time.Duration `koanf:"timeout"  validate:"gt=0"                  env:"SIGNUP_ENDPOINT_TIMEOUT"`
}

// URL joins the base URL and path.
func (e EndpointConfig) URL() string {
	base, err := url.Parse(strings.TrimRight(e.BaseURL, "/"))
	if err != nil {
		return strings.TrimRight(e.BaseURL, "/") + e.Path
	}
	return base.JoinPath(e.Path).String()
}

// ServerConfig configures the development server.
type ServerConfig struct {
	Addr      string          `koanf:"addr"       validate:"required" env:"SIGNUP_SERVER_ADDR"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	// Mock mounts the in-memory registration backend next to the form.
	Mock bool `koanf:"mock" env:"SIGNUP_SERVER_MOCK"`
}

// RateLimitConfig throttles the mock registration endpoint per client.
// RPS 0 disables limiting.
type RateLimitConfig struct {
	RPS   float64 `koanf:"rps"   validate:"gte=0" env:"SIGNUP_SERVER_RATE_LIMIT_RPS"`
	Burst int     `koanf:"burst" validate:"gte=0" env:"SIGNUP_SERVER_RATE_LIMIT_BURST"`
}

// LogConfig configures internal/logger.
type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error" env:"SIGNUP_LOG_LEVEL"`
	JSON  bool   `koanf:"json"                                          env:"SIGNUP_LOG_JSON"`
}

// ThemeConfig selects the page theme.
type ThemeConfig struct {
	Name       string            `koanf:"name"       env:"SIGNUP_THEME_NAME"`
	Variant    string            `koanf:"variant"    env:"SIGNUP_THEME_VARIANT"`
	Stylesheet string            `koanf:"stylesheet" env:"SIGNUP_THEME_STYLESHEET"`
	CSSVars    map[string]string `koanf:"css_vars"`
}

// RendererConfig converts the theme selection into the go-theme renderer
// configuration consumed by the HTML renderer. It returns nil when no theme
// is configured.
func (t ThemeConfig) RendererConfig() *theme.RendererConfig {
	if t.Name == "" && t.Variant == "" && t.Stylesheet == "" && len(t.CSSVars) == 0 {
		return nil
	}
	stylesheet := t.Stylesheet
	vars := make(map[string]string, len(t.CSSVars))
	for key, value := range t.CSSVars {
		vars[key] = value
	}
	return &theme.RendererConfig{
		Theme:   t.Name,
		Variant: t.Variant,
		CSSVars: vars,
		AssetURL: func(key string) string {
			if key == "signup.stylesheet" {
				return stylesheet
			}
			return ""
		},
	}
}

// Default returns the baseline configuration.
func Default() *Config {
	return &Config{
		Endpoint: EndpointConfig{
			BaseURL: transport.DefaultBaseURL,
			Path:    transport.DefaultPath,
			Timeout: transport.DefaultTimeout,
		},
		Server: ServerConfig{
			Addr: ":3000",
			Mock: true,
			RateLimit: RateLimitConfig{
				RPS:   5,
				Burst: 10,
			},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is shared by every environment override.
const EnvPrefix = "SIGNUP_"

// Option adjusts a Load call.
type Option func(*loadOptions)

type loadOptions struct {
	file      string
	overrides map[string]any
	skipEnv   bool
}

// WithFile layers a YAML file over the defaults. A missing file is an error.
func WithFile(path string) Option {
	return func(o *loadOptions) {
		o.file = strings.TrimSpace(path)
	}
}

// WithOverrides applies explicit values keyed by koanf path
// ("endpoint.base_url"). They win over every other source; the CLI passes
// the flags the user actually set.
func WithOverrides(values map[string]any) Option {
	return func(o *loadOptions) {
		if o.overrides == nil {
			o.overrides = make(map[string]any, len(values))
		}
		for key, value := range values {
			o.overrides[key] = value
		}
	}
}

// WithoutEnv skips the environment layer.
func WithoutEnv() Option {
	return func(o *loadOptions) {
		o.skipEnv = true
	}
}

// Load resolves the configuration: defaults, then the YAML file, then
// SIGNUP_* environment variables, then overrides. The result is validated.
func Load(ctx context.Context, options ...Option) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts := loadOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(&opts)
		}
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	if opts.file != "" {
		data, err := readYAML(opts.file)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawMap(data), nil); err != nil {
			return nil, fmt.Errorf("config: apply %s: %w", opts.file, err)
		}
	}

	if !opts.skipEnv {
		mappings := EnvMappings()
		if err := k.Load(env.Provider(".", env.Opt{
			Prefix: EnvPrefix,
			TransformFunc: func(key, value string) (string, any) {
				return mappings[key], value
			},
		}), nil); err != nil {
			return nil, fmt.Errorf("config: load environment: %w", err)
		}
	}

	for key, value := range opts.overrides {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("config: override %s: %w", key, err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &cfg,
			TagName:          "koanf",
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
		},
	}); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: configuration is nil")
	}
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config: invalid configuration: %w", err)
	}
	return nil
}

func readYAML(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var out map[string]any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return filterNil(out), nil
}

// filterNil drops null YAML values so they do not clear defaults.
func filterNil(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for key, value := range m {
		switch v := value.(type) {
		case nil:
			continue
		case map[string]any:
			out[key] = filterNil(v)
		default:
			out[key] = v
		}
	}
	return out
}

// EnvMappings maps every `env` struct tag to its koanf path.
func EnvMappings() map[string]string {
	out := make(map[string]string)
	collectEnv(reflect.TypeOf(Config{}), "", out)
	return out
}

func collectEnv(t reflect.Type, prefix string, out map[string]string) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		key := strings.Split(field.Tag.Get("koanf"), ",")[0]
		if key == "" {
			continue
		}
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if field.Type.Kind() == reflect.Struct && field.Type.PkgPath() == t.PkgPath() {
			collectEnv(field.Type, path, out)
			continue
		}
		if name := field.Tag.Get("env"); name != "" {
			out[name] = path
		}
	}
}

// rawMap is a koanf.Provider adapter for already decoded data.
type rawMap map[string]any

func (r rawMap) Read() (map[string]any, error) {
	return r, nil
}

func (r rawMap) ReadBytes() ([]byte, error) {
	return nil, errors.New("config: ReadBytes not implemented")
}

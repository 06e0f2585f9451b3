// Package config resolves runtime settings from defaults, an optional YAML
// file, SIGNUP_* environment variables and explicit overrides.
package config

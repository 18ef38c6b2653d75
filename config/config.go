// Package config defines the server's validated configuration, in the
// same struct-tag-driven style as the teacher's httpserver config.
package config

import (
	"github.com/go-playground/validator/v10"

	"github.com/Under-Bordet-AB/weatherserver/werrors"
)

// Config is the full set of knobs a weather server instance needs at
// startup. Zero values are not assumed safe; call Validate before use.
type Config struct {
	Address string `mapstructure:"address" json:"address" yaml:"address" toml:"address" validate:"omitempty,ip4_addr"`
	Port    int    `mapstructure:"port" json:"port" yaml:"port" toml:"port" validate:"required,min=1,max=65535"`

	ListenBacklog int `mapstructure:"listen_backlog" json:"listen_backlog" yaml:"listen_backlog" toml:"listen_backlog" validate:"omitempty,min=1"`
	MaxTasks      int `mapstructure:"max_tasks" json:"max_tasks" yaml:"max_tasks" toml:"max_tasks" validate:"omitempty,min=1"`

	MaxRequestBytes int `mapstructure:"max_request_bytes" json:"max_request_bytes" yaml:"max_request_bytes" toml:"max_request_bytes" validate:"omitempty,min=1"`
	IdleTimeoutMs   int `mapstructure:"idle_timeout_ms" json:"idle_timeout_ms" yaml:"idle_timeout_ms" toml:"idle_timeout_ms" validate:"omitempty,min=1"`

	LogLevel string `mapstructure:"log_level" json:"log_level" yaml:"log_level" toml:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// Default returns a Config populated with the spec's defaults, ready
// for the fields a caller wants to override.
func Default() *Config {
	return &Config{
		Port:            8080,
		ListenBacklog:   128,
		MaxTasks:        256,
		MaxRequestBytes: 8192,
		IdleTimeoutMs:   30000,
		LogLevel:        "info",
	}
}

// Clone returns a deep copy, so callers can mutate a config that
// originated elsewhere without racing the original.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// Validate checks the configuration against its struct tags, the same
// validator.v10 idiom the teacher's httpserver config uses, wrapping
// any failure into the error taxonomy.
func (c *Config) Validate() werrors.Error {
	if c == nil {
		return werrors.New(werrors.ServerNoConfig)
	}
	if err := validator.New().Struct(c); err != nil {
		return werrors.Wrap(werrors.ServerInvalidConfig, err)
	}
	return nil
}

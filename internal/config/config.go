// Package config loads CLI settings from formcoord.yaml and FORMCOORD_*
// environment variables using Viper.
package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/goliatone/go-formcoord/internal/logging"
	"github.com/goliatone/go-formcoord/pkg/form"
)

// AppName names the config file and the XDG sub directory.
const AppName = "formcoord"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FORMCOORD"

// Config is the resolved CLI configuration.
type Config struct {
	DetachDebounce time.Duration `mapstructure:"detach_debounce" yaml:"detach_debounce"`
	MaxFields      int           `mapstructure:"max_fields" yaml:"max_fields"`
	LogLevel       string        `mapstructure:"log_level" yaml:"log_level"`
	LogFormat      string        `mapstructure:"log_format" yaml:"log_format"`
	// Output selects how commands print results: text or json.
	Output string `mapstructure:"output" yaml:"output"`
}

var (
	ErrInvalidDebounce  = errors.New("config: detach_debounce must not be negative")
	ErrInvalidMaxFields = errors.New("config: max_fields must be positive")
	ErrInvalidOutput    = errors.New("config: output must be text or json")
)

// New returns a Viper instance with defaults, search paths and env binding
// applied.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigName(AppName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(filepath.Join(xdg.ConfigHome, AppName))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("detach_debounce", form.DefaultDetachDebounce)
	v.SetDefault("max_fields", form.DefaultMaxFields)
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", string(logging.FormatText))
	v.SetDefault("output", "text")
	return v
}

// Load reads path, or searches the default locations when path is empty.
// A missing file is only an error when path was given explicitly.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
		case errors.As(err, &notFound):
			return nil, errors.Wrapf(err, "config: file not found at %s", path)
		default:
			return nil, errors.Wrap(err, "config: read")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "config: unmarshal")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.DetachDebounce < 0 {
		return ErrInvalidDebounce
	}
	if c.MaxFields <= 0 {
		return ErrInvalidMaxFields
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := logging.ParseFormat(c.LogFormat); err != nil {
		return err
	}
	switch strings.ToLower(c.Output) {
	case "text", "json":
	default:
		return errors.Wrapf(ErrInvalidOutput, "got %q", c.Output)
	}
	return nil
}

// FormOptions translates the settings into coordinator options.
func (c *Config) FormOptions() []form.Option {
	return []form.Option{
		form.WithDetachDebounce(c.DetachDebounce),
		form.WithMaxFields(c.MaxFields),
	}
}

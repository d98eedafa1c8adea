// Package commands implements the formcoord CLI.
package commands

import (
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formcoord/internal/config"
	"github.com/goliatone/go-formcoord/internal/logging"
	"github.com/goliatone/go-formcoord/pkg/form"
)

const version = "0.1.0"

var (
	verbosity  int
	quiet      bool
	logFormat  string
	configPath string

	appConfig = defaultConfig()
	logger    = logging.NewDiscard()
)

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"only log errors")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"log format: text, json (overrides log_format)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"config file (default: ./formcoord.yaml or $XDG_CONFIG_HOME/formcoord/formcoord.yaml)")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("formcoord version {{.Version}}\n")
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

var rootCmd = &cobra.Command{
	Use:   "formcoord",
	Short: "Validate and fill forms described in YAML, JSON or OpenAPI",
	Long: `formcoord runs form definitions through a validation coordinator.

Fields declare rules such as isRequired or equalsField:password. Changing a
field re-validates it and every field that depends on it, one at a time,
until the form settles valid or invalid.`,
	Example: `  # Check a definition against a set of values
  formcoord validate signup.yaml --set email=a@b.com --set password=hunter22

  # Fill a form interactively
  formcoord fill signup.yaml

  # Derive a definition from an OpenAPI request body
  formcoord from-openapi api.yaml --operation createAccount`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return setup(cmd)
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errValidationFailed) {
		rootCmd.PrintErrln("Error:", err)
	}
	return err
}

func defaultConfig() *config.Config {
	return &config.Config{
		DetachDebounce: form.DefaultDetachDebounce,
		MaxFields:      form.DefaultMaxFields,
		LogLevel:       "warn",
		LogFormat:      string(logging.FormatText),
		Output:         "text",
	}
}

func setup(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.New("cannot use --quiet and --verbose together")
	}
	cfg, err := config.Load(config.New(), configPath)
	if err != nil {
		return err
	}
	appConfig = cfg

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	switch {
	case quiet:
		level = slog.LevelError
	case verbosity > 0:
		level = logging.LevelFromVerbosity(verbosity)
	}
	raw := cfg.LogFormat
	if logFormat != "" {
		raw = logFormat
	}
	format, err := logging.ParseFormat(raw)
	if err != nil {
		return err
	}
	logger = logging.New(logging.Config{Level: level, Format: format, Output: cmd.ErrOrStderr()})
	return nil
}

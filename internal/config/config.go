// Package config provides configuration types and defaults for regform.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/zjrosen/regform/internal/log"
)

// Config holds all configuration options for regform.
type Config struct {
	Form    FormConfig    `mapstructure:"form" yaml:"form"`
	UI      UIConfig      `mapstructure:"ui" yaml:"ui"`
	Tracing TracingConfig `mapstructure:"tracing" yaml:"tracing"`
}

// FormConfig controls form behaviour.
type FormConfig struct {
	// ResetDelay is how long the success banner stays before the form clears.
	ResetDelay time.Duration `mapstructure:"reset_delay" yaml:"reset_delay" validate:"gte=0"`

	// OptionsFile overrides the built-in option catalog. Empty uses the
	// embedded one.
	OptionsFile string `mapstructure:"options_file" yaml:"options_file"`

	// WatchOptions reloads the catalog when OptionsFile changes.
	WatchOptions bool `mapstructure:"watch_options" yaml:"watch_options"`
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	// MarkdownStyle is "dark" (default) or "light".
	MarkdownStyle string `mapstructure:"markdown_style" yaml:"markdown_style" validate:"omitempty,oneof=dark light"`
	// Width of the form in columns; 0 follows the terminal.
	Width int `mapstructure:"width" yaml:"width" validate:"gte=0"`
}

// TracingConfig holds distributed tracing configuration for submissions.
type TracingConfig struct {
	// Enabled controls whether submissions are traced.
	// Default: false
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	Exporter string `mapstructure:"exporter" yaml:"exporter" validate:"omitempty,oneof=none file stdout otlp"`

	// FilePath is the output file for the "file" exporter.
	// Default: ~/.config/regform/traces/traces.jsonl
	FilePath string `mapstructure:"file_path" yaml:"file_path"`

	// OTLPEndpoint is the collector endpoint for the "otlp" exporter.
	OTLPEndpoint string `mapstructure:"otlp_endpoint" yaml:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	SampleRate float64 `mapstructure:"sample_rate" yaml:"sample_rate" validate:"gte=0,lte=1"`
}

var validate = validator.New()

// DefaultTracesFilePath returns ~/.config/regform/traces/traces.jsonl, or
// an empty string if the home directory is unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "regform", "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Form: FormConfig{
			ResetDelay:   3 * time.Second,
			WatchOptions: true,
		},
		UI: UIConfig{
			MarkdownStyle: "dark",
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // Derived at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

// Validate checks the whole configuration.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s: invalid value %v (%s)", keyFor(fe.Namespace()), fe.Value(), rule(fe))
		}
		return err
	}
	return ValidateTracing(c.Tracing)
}

// ValidateTracing checks the cross-field tracing requirements.
func ValidateTracing(tracing TracingConfig) error {
	if !tracing.Enabled {
		return nil
	}
	if tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
		return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
	}
	return nil
}

var keys = map[string]string{
	"Config.Form.ResetDelay":    "form.reset_delay",
	"Config.UI.MarkdownStyle":   "ui.markdown_style",
	"Config.UI.Width":           "ui.width",
	"Config.Tracing.Exporter":   "tracing.exporter",
	"Config.Tracing.SampleRate": "tracing.sample_rate",
}

func keyFor(namespace string) string {
	if k, ok := keys[namespace]; ok {
		return k
	}
	return namespace
}

func rule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	default:
		return fe.Tag()
	}
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# regform configuration

# Form behaviour
form:
  reset_delay: 3s         # How long the success banner shows before the form clears
  # options_file: ./options.yaml  # Override the built-in genders/courses/states/education lists
  watch_options: true     # Reload options_file when it changes on disk

# UI settings
ui:
  markdown_style: dark    # Terms rendering style: "dark" (default) or "light"
  width: 0                # Form width in columns (0 = terminal width)

# Submission tracing
tracing:
  enabled: false
  exporter: file          # "none", "file", "stdout" or "otlp"
  # file_path: ~/.config/regform/traces/traces.jsonl
  otlp_endpoint: localhost:4317
  sample_rate: 1.0
`
}

// WriteDefaultConfig creates a config file with default settings and comments.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}

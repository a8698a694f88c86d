package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/regform/internal/config"
	"github.com/zjrosen/regform/internal/log"
	"github.com/zjrosen/regform/internal/options"
	"github.com/zjrosen/regform/internal/submission"
	"github.com/zjrosen/regform/internal/tracing"
	"github.com/zjrosen/regform/internal/ui/regform"
	"github.com/zjrosen/regform/internal/watcher"
)

func init() {
	// Query the terminal background before Bubble Tea owns stdin, otherwise
	// the OSC 11 reply can leak into a text input.
	_ = lipgloss.HasDarkBackground()
}

const (
	defaultConfigPath = ".regform/config.yaml"
	debugLogFile      = "regform-debug.log"
)

var (
	version = "dev"
	cfgFile string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:   "regform",
	Short: "A terminal student registration form",
	Long: `A terminal student registration form.

Fields are validated when you leave them and again on submit. Accepted
registrations are logged and traced, and the form resets after a short delay.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/regform/config.yaml)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false,
		"write a debug log to "+debugLogFile)
	rootCmd.PersistentFlags().String("options", "",
		"YAML file overriding the built-in option lists")
	rootCmd.PersistentFlags().Duration("reset-delay", 0,
		"how long the success state lasts before the form clears")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("form.options_file", rootCmd.PersistentFlags().Lookup("options"))
}

func initConfig() {
	// A missing .env is normal.
	_ = godotenv.Load()

	viper.SetEnvPrefix("REGFORM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	defaults := config.Defaults()
	viper.SetDefault("debug", false)
	viper.SetDefault("form.reset_delay", defaults.Form.ResetDelay)
	viper.SetDefault("form.options_file", defaults.Form.OptionsFile)
	viper.SetDefault("form.watch_options", defaults.Form.WatchOptions)
	viper.SetDefault("ui.markdown_style", defaults.UI.MarkdownStyle)
	viper.SetDefault("ui.width", defaults.UI.Width)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.file_path", defaults.Tracing.FilePath)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .regform/config.yaml (current directory)
		// 2. ~/.config/regform/config.yaml (user config)
		if _, err := os.Stat(defaultConfigPath); err == nil {
			viper.SetConfigFile(defaultConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "regform"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			if writeErr := config.WriteDefaultConfig(defaultConfigPath); writeErr == nil {
				viper.SetConfigFile(defaultConfigPath)
				_ = viper.ReadInConfig()
			}
		}
	}

	_ = viper.Unmarshal(&cfg)
}

// setup applies flag overrides, validates the configuration and turns on
// debug logging. It runs before every command.
func setup(cmd *cobra.Command, _ []string) error {
	if f := cmd.Flags().Lookup("reset-delay"); f != nil && f.Changed {
		d, err := cmd.Flags().GetDuration("reset-delay")
		if err != nil {
			return err
		}
		cfg.Form.ResetDelay = d
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if viper.GetBool("debug") {
		cleanup, err := log.InitWithTeaLog(debugLogFile, "regform")
		if err != nil {
			return fmt.Errorf("enabling debug log: %w", err)
		}
		cobra.OnFinalize(cleanup)
		log.Info(log.CatConfig, "Configuration loaded", "file", viper.ConfigFileUsed())
	}
	return nil
}

// configPath is the file config edits are written to.
func configPath() string {
	if p := viper.ConfigFileUsed(); p != "" {
		return p
	}
	return defaultConfigPath
}

// newRecorder builds the submission recorder and its tracing provider. The
// returned cleanup flushes spans.
func newRecorder() (*submission.Recorder, func(), error) {
	tp, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return nil, nil, fmt.Errorf("setting up tracing: %w", err)
	}
	rec := submission.NewRecorder(submission.WithTracer(tp.Tracer()))
	cleanup := func() {
		rec.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.ErrorErr(log.CatTrace, "Tracing shutdown failed", err)
		}
	}
	return rec, cleanup, nil
}

func runApp(_ *cobra.Command, _ []string) error {
	catalog, err := options.Load(cfg.Form.OptionsFile)
	if err != nil {
		return err
	}

	rec, cleanup, err := newRecorder()
	if err != nil {
		return err
	}
	defer cleanup()

	formCfg := regform.Config{
		Sink:          rec,
		Catalog:       catalog,
		ResetDelay:    cfg.Form.ResetDelay,
		MarkdownStyle: cfg.UI.MarkdownStyle,
		Width:         cfg.UI.Width,
		Submissions:   rec,
	}

	if cfg.Form.OptionsFile != "" && cfg.Form.WatchOptions {
		w, err := watcher.New(watcher.DefaultConfig(cfg.Form.OptionsFile))
		if err != nil {
			return fmt.Errorf("watching options: %w", err)
		}
		changed, err := w.Start()
		if err != nil {
			// The form still works with the lists it loaded.
			log.ErrorErr(log.CatWatcher, "Options watcher failed to start", err)
		} else {
			defer func() { _ = w.Stop() }()
			formCfg.OptionsChanged = changed
			formCfg.OptionsPath = w.Path()
		}
	}

	model := regform.New(formCfg)
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	final, err := p.Run()

	// Abandon a pending reset and stop the listeners.
	if m, ok := final.(regform.Model); ok {
		m.Close()
	} else {
		model.Close()
	}

	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

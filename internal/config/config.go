// Package config loads the chakraflow application configuration from an
// optional YAML file, then environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/teslashibe/go-chakraflow/pkg/engine"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid")

// Engine presets.
const (
	PresetDefault    = "default"
	PresetGentle     = "gentle"
	PresetResponsive = "responsive"
)

// Store drivers.
const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
	StoreNone   = "none"
)

// Landmark source modes.
const (
	SourceIngest = "ingest" // frames pushed to /ws/landmarks
	SourceDial   = "dial"   // connect out to a landmark sidecar
	SourceReplay = "replay" // JSON lines file, run as fast as possible
)

// Config is the full application configuration.
type Config struct {
	LogLevel string `yaml:"log_level"`

	// Preset picks the engine base before file values are applied.
	Preset string        `yaml:"preset"`
	Engine engine.Config `yaml:"engine"`

	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Source    SourceConfig    `yaml:"source"`
	Providers ProvidersConfig `yaml:"providers"`

	// ReportDir receives the summary images. Empty disables them.
	ReportDir string `yaml:"report_dir"`
}

// ServerConfig configures the dashboard and ingest listener.
type ServerConfig struct {
	Addr   string `yaml:"addr"`
	Static string `yaml:"static"`
}

// StoreConfig selects where session summaries are kept.
type StoreConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"` // file for json, directory for sqlite
}

// SourceConfig selects where landmark frames come from.
type SourceConfig struct {
	Mode       string        `yaml:"mode"`
	URL        string        `yaml:"url"`
	ReplayPath string        `yaml:"replay_path"`
	StaleAfter time.Duration `yaml:"stale_after"`
}

// ProvidersConfig configures the text-generation chain behind narration.
// Keys only come from the environment.
type ProvidersConfig struct {
	GeminiAPIKey string `yaml:"-"`
	GeminiModel  string `yaml:"gemini_model"`
	GeminiADC    bool   `yaml:"gemini_adc"` // use Application Default Credentials without a key

	OpenAIAPIKey  string `yaml:"-"`
	OpenAIBaseURL string `yaml:"openai_base_url"`
	OpenAIModel   string `yaml:"openai_model"`
}

// envOverrides holds raw environment values.
type envOverrides struct {
	LogLevel   string        `env:"CHAKRAFLOW_LOG_LEVEL"`
	Preset     string        `env:"CHAKRAFLOW_PRESET"`
	Addr       string        `env:"CHAKRAFLOW_ADDR"`
	Static     string        `env:"CHAKRAFLOW_STATIC"`
	Store      string        `env:"CHAKRAFLOW_STORE"`
	StorePath  string        `env:"CHAKRAFLOW_STORE_PATH"`
	Source     string        `env:"CHAKRAFLOW_SOURCE"`
	SourceURL  string        `env:"CHAKRAFLOW_SOURCE_URL"`
	Replay     string        `env:"CHAKRAFLOW_REPLAY"`
	StaleAfter time.Duration `env:"CHAKRAFLOW_STALE_AFTER"`
	ReportDir  string        `env:"CHAKRAFLOW_REPORT_DIR"`
	UserLevel  string        `env:"CHAKRAFLOW_USER_LEVEL"`
	Tone       string        `env:"CHAKRAFLOW_TONE"`

	GeminiAPIKey  string `env:"GEMINI_API_KEY"`
	GeminiModel   string `env:"CHAKRAFLOW_GEMINI_MODEL"`
	GeminiADC     *bool  `env:"CHAKRAFLOW_GEMINI_ADC"`
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	OpenAIModel   string `env:"CHAKRAFLOW_OPENAI_MODEL"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		LogLevel: "info",
		Preset:   PresetDefault,
		Engine:   engine.DefaultConfig(),
		Server: ServerConfig{
			Addr: ":8080",
		},
		Store: StoreConfig{
			Driver: StoreJSON,
			Path:   filepath.Join(home, ".chakraflow", "sessions.jsonl"),
		},
		Source: SourceConfig{
			Mode:       SourceIngest,
			StaleAfter: 500 * time.Millisecond,
		},
		Providers: ProvidersConfig{
			GeminiModel:   "gemini-2.0-flash",
			OpenAIBaseURL: "https://api.openai.com/v1",
			OpenAIModel:   "gpt-4o-mini",
		},
	}
}

// Preset returns the engine configuration for a preset name.
func Preset(name string) (engine.Config, error) {
	switch name {
	case "", PresetDefault:
		return engine.DefaultConfig(), nil
	case PresetGentle:
		return engine.GentleConfig(), nil
	case PresetResponsive:
		return engine.ResponsiveConfig(), nil
	}
	return engine.Config{}, fmt.Errorf("%w: unknown preset %q", ErrInvalid, name)
}

// Load reads path (skipped when empty), applies environment overrides and
// validates the result.
func Load(path string) (Config, error) {
	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var ov envOverrides
	if err := env.Parse(&ov); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg, err := parse(data, ov.Preset)
	if err != nil {
		return Config{}, err
	}
	ov.apply(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// parse builds a config from YAML. The preset, from envPreset or the file,
// is resolved first so file engine values land on top of it.
func parse(data []byte, envPreset string) (Config, error) {
	var probe struct {
		Preset string `yaml:"preset"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	preset := probe.Preset
	if envPreset != "" {
		preset = envPreset
	}

	cfg := Default()
	base, err := Preset(preset)
	if err != nil {
		return Config{}, err
	}
	cfg.Engine = base

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if preset != "" {
		cfg.Preset = preset
	}
	return cfg, nil
}

func (ov envOverrides) apply(cfg *Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.LogLevel, ov.LogLevel)
	set(&cfg.Server.Addr, ov.Addr)
	set(&cfg.Server.Static, ov.Static)
	set(&cfg.Store.Driver, ov.Store)
	set(&cfg.Store.Path, ov.StorePath)
	set(&cfg.Source.Mode, ov.Source)
	set(&cfg.Source.URL, ov.SourceURL)
	set(&cfg.Source.ReplayPath, ov.Replay)
	set(&cfg.ReportDir, ov.ReportDir)
	set(&cfg.Engine.UserLevel, ov.UserLevel)
	set(&cfg.Engine.Tone, ov.Tone)
	set(&cfg.Providers.GeminiAPIKey, ov.GeminiAPIKey)
	set(&cfg.Providers.GeminiModel, ov.GeminiModel)
	set(&cfg.Providers.OpenAIAPIKey, ov.OpenAIAPIKey)
	set(&cfg.Providers.OpenAIBaseURL, ov.OpenAIBaseURL)
	set(&cfg.Providers.OpenAIModel, ov.OpenAIModel)
	if ov.StaleAfter > 0 {
		cfg.Source.StaleAfter = ov.StaleAfter
	}
	if ov.GeminiADC != nil {
		cfg.Providers.GeminiADC = *ov.GeminiADC
	}
}

// Validate checks the engine config and the enumerated settings.
func (c Config) Validate() error {
	var errs []error
	if err := c.Engine.Validate(); err != nil {
		errs = append(errs, err)
	}
	switch c.Store.Driver {
	case StoreJSON, StoreSQLite:
		if c.Store.Path == "" {
			errs = append(errs, fmt.Errorf("store path is required for %s", c.Store.Driver))
		}
	case StoreNone:
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}
	switch c.Source.Mode {
	case SourceIngest:
	case SourceDial:
		if c.Source.URL == "" {
			errs = append(errs, errors.New("source url is required for dial"))
		}
	case SourceReplay:
		if c.Source.ReplayPath == "" {
			errs = append(errs, errors.New("replay path is required for replay"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown source mode %q", c.Source.Mode))
	}
	if c.Source.StaleAfter <= 0 {
		errs = append(errs, errors.New("source stale_after must be positive"))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

// HasProviders reports whether any text-generation provider is configured.
func (p ProvidersConfig) HasProviders() bool {
	return p.GeminiAPIKey != "" || p.GeminiADC || p.OpenAIAPIKey != ""
}

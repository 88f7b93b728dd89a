package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/teslashibe/go-chakraflow/pkg/engine"
)

// clearEnv blanks every variable Load reads so the host environment does not
// leak into tests.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CHAKRAFLOW_LOG_LEVEL", "CHAKRAFLOW_PRESET", "CHAKRAFLOW_ADDR", "CHAKRAFLOW_STATIC",
		"CHAKRAFLOW_STORE", "CHAKRAFLOW_STORE_PATH", "CHAKRAFLOW_SOURCE", "CHAKRAFLOW_SOURCE_URL",
		"CHAKRAFLOW_REPLAY", "CHAKRAFLOW_REPORT_DIR", "CHAKRAFLOW_USER_LEVEL", "CHAKRAFLOW_TONE",
		"CHAKRAFLOW_GEMINI_MODEL", "CHAKRAFLOW_OPENAI_MODEL",
		"GEMINI_API_KEY", "OPENAI_API_KEY", "OPENAI_BASE_URL",
	} {
		t.Setenv(k, "")
	}
	for _, k := range []string{"CHAKRAFLOW_STALE_AFTER", "CHAKRAFLOW_GEMINI_ADC"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chakraflow.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Store.Driver != StoreJSON || cfg.Source.Mode != SourceIngest {
		t.Errorf("store/source = %s/%s", cfg.Store.Driver, cfg.Source.Mode)
	}
	if cfg.Engine.TickRate != 100*time.Millisecond {
		t.Errorf("TickRate = %v", cfg.Engine.TickRate)
	}
	if cfg.Providers.HasProviders() {
		t.Error("no provider keys set, HasProviders() = true")
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
log_level: debug
preset: gentle
engine:
  tone: playful
  energy:
    decay: 0.003
server:
  addr: ":9000"
store:
  driver: sqlite
  path: /tmp/chakraflow
source:
  mode: replay
  replay_path: session.jsonl
  stale_after: 750ms
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	gentle := engine.GentleConfig()
	tests := []struct {
		name string
		got  any
		want any
	}{
		{"log level", cfg.LogLevel, "debug"},
		{"preset", cfg.Preset, PresetGentle},
		{"charge from preset", cfg.Engine.Energy.Charge, gentle.Energy.Charge},
		{"decay from file", cfg.Engine.Energy.Decay, 0.003},
		{"tone", cfg.Engine.Tone, "playful"},
		{"user level kept", cfg.Engine.UserLevel, "beginner"},
		{"addr", cfg.Server.Addr, ":9000"},
		{"store", cfg.Store.Driver, StoreSQLite},
		{"source", cfg.Source.Mode, SourceReplay},
		{"stale after", cfg.Source.StaleAfter, 750 * time.Millisecond},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "preset: gentle\nserver:\n  addr: \":9000\"\n")

	t.Setenv("CHAKRAFLOW_PRESET", "responsive")
	t.Setenv("CHAKRAFLOW_ADDR", ":7000")
	t.Setenv("CHAKRAFLOW_STALE_AFTER", "1s")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("OPENAI_API_KEY", "o-key")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:11434/v1")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Preset != PresetResponsive || cfg.Engine.Energy.Charge != engine.ResponsiveConfig().Energy.Charge {
		t.Errorf("preset = %s charge = %v, want responsive", cfg.Preset, cfg.Engine.Energy.Charge)
	}
	if cfg.Server.Addr != ":7000" {
		t.Errorf("Addr = %q, want env value", cfg.Server.Addr)
	}
	if cfg.Source.StaleAfter != time.Second {
		t.Errorf("StaleAfter = %v", cfg.Source.StaleAfter)
	}
	p := cfg.Providers
	if p.GeminiAPIKey != "g-key" || p.OpenAIAPIKey != "o-key" || p.OpenAIBaseURL != "http://localhost:11434/v1" {
		t.Errorf("providers = %+v", p)
	}
	if !p.HasProviders() {
		t.Error("HasProviders() = false")
	}
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{"bad yaml", "server: [\n"},
		{"unknown preset", "preset: turbo\n"},
		{"unknown store", "store:\n  driver: redis\n"},
		{"dial without url", "source:\n  mode: dial\n"},
		{"replay without path", "source:\n  mode: replay\n"},
		{"negative rate", "engine:\n  tick_rate: -1s\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeFile(t, tt.body)); err == nil {
				t.Error("Load() error = nil, want error")
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file: Load() error = nil")
	}
}

func TestValidateWrapsSentinel(t *testing.T) {
	cfg := Default()
	cfg.Store.Driver = "redis"
	if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
		t.Errorf("Validate() error = %v, want ErrInvalid", err)
	}

	cfg = Default()
	cfg.Engine.TickRate = 0
	err := cfg.Validate()
	if !errors.Is(err, ErrInvalid) || !errors.Is(err, engine.ErrInvalidConfig) {
		t.Errorf("Validate() error = %v, want both sentinels", err)
	}
}

func TestPreset(t *testing.T) {
	for _, name := range []string{"", PresetDefault, PresetGentle, PresetResponsive} {
		cfg, err := Preset(name)
		if err != nil {
			t.Errorf("Preset(%q) error = %v", name, err)
			continue
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("Preset(%q) invalid: %v", name, err)
		}
	}
	if _, err := Preset("turbo"); !errors.Is(err, ErrInvalid) {
		t.Errorf("Preset(turbo) error = %v", err)
	}
}

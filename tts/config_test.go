package tts

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Engine != EngineAuto {
		t.Errorf("Engine = %v, want %v", cfg.Engine, EngineAuto)
	}
	if cfg.Locale != "en-US" {
		t.Errorf("Locale = %v, want en-US", cfg.Locale)
	}
	if cfg.RapidRepeatWindow != 1500*time.Millisecond {
		t.Errorf("RapidRepeatWindow = %v, want 1.5s", cfg.RapidRepeatWindow)
	}
	if cfg.NearStartThreshold != 0.25 {
		t.Errorf("NearStartThreshold = %v, want 0.25", cfg.NearStartThreshold)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"engine case folded", func(c *Config) { c.Engine = "PIPER" }, ""},
		{"unknown engine", func(c *Config) { c.Engine = "google" }, "must be one of"},
		{"empty locale", func(c *Config) { c.Locale = "" }, "locale"},
		{"negative window", func(c *Config) { c.RapidRepeatWindow = -time.Second }, "rapid_repeat_window"},
		{"threshold above one", func(c *Config) { c.NearStartThreshold = 1.5 }, "near_start_threshold"},
		{"bad piper sample rate", func(c *Config) { c.Engine = EnginePiper; c.Piper.SampleRate = 11025 }, "sample rate"},
		{"short piper timeout", func(c *Config) { c.Piper.Timeout = time.Millisecond }, "timeout"},
		{"zero launch rate", func(c *Config) { c.Piper.LaunchesPerSec = 0 }, "launches_per_second"},
		{"command wpm", func(c *Config) { c.Engine = EngineCommand; c.Command.WordsPerMinute = 10 }, "words_per_minute"},
		{"command ignores piper", func(c *Config) { c.Engine = EngineCommand; c.Piper.Binary = "" }, ""},
		{"mock delay", func(c *Config) { c.Engine = EngineMock; c.Mock.WordDelay = 0 }, "word_delay"},
		{"cache level", func(c *Config) { c.Cache.CompressionLevel = 30 }, "compression_level"},
		{"disabled cache skips checks", func(c *Config) { c.Cache.Enabled = false; c.Cache.CompressionLevel = 30 }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}

	cfg := DefaultConfig()
	cfg.Engine = "Mock"
	if err := cfg.Validate(); err != nil || cfg.Engine != EngineMock {
		t.Errorf("Validate() engine = %q, %v, want %q", cfg.Engine, err, EngineMock)
	}
}

func TestLoadConfig(t *testing.T) {
	v := viper.New()
	v.Set("tts.engine", "command")
	v.Set("tts.locale", "en-GB")
	v.Set("tts.rapid_repeat_window", "2s")
	v.Set("tts.near_start_threshold", 0.4)
	v.Set("tts.piper.model", "en_GB-alba-medium")
	v.Set("tts.piper.timeout", "1m")
	v.Set("tts.command.binary", "espeak-ng")
	v.Set("tts.command.words_per_minute", 220)
	v.Set("tts.mock.word_delay", "50ms")
	v.Set("tts.cache.enabled", false)
	v.Set("tts.cache.ttl", "not-a-duration")

	cfg, err := LoadConfig(v)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Engine != EngineCommand {
		t.Errorf("Engine = %v, want command", cfg.Engine)
	}
	if cfg.Locale != "en-GB" {
		t.Errorf("Locale = %v, want en-GB", cfg.Locale)
	}
	if cfg.RapidRepeatWindow != 2*time.Second {
		t.Errorf("RapidRepeatWindow = %v, want 2s", cfg.RapidRepeatWindow)
	}
	if cfg.NearStartThreshold != 0.4 {
		t.Errorf("NearStartThreshold = %v, want 0.4", cfg.NearStartThreshold)
	}
	if cfg.Piper.Model != "en_GB-alba-medium" {
		t.Errorf("Piper.Model = %v, want en_GB-alba-medium", cfg.Piper.Model)
	}
	if cfg.Piper.Timeout != time.Minute {
		t.Errorf("Piper.Timeout = %v, want 1m", cfg.Piper.Timeout)
	}
	if cfg.Command.Binary != "espeak-ng" || cfg.Command.WordsPerMinute != 220 {
		t.Errorf("Command = %+v, want espeak-ng at 220", cfg.Command)
	}
	if cfg.Mock.WordDelay != 50*time.Millisecond {
		t.Errorf("Mock.WordDelay = %v, want 50ms", cfg.Mock.WordDelay)
	}
	if cfg.Cache.Enabled {
		t.Error("Cache.Enabled = true, want false")
	}
	if cfg.Cache.TTL != DefaultCacheConfig().TTL {
		t.Errorf("Cache.TTL = %v, want default for unparsable value", cfg.Cache.TTL)
	}

	sc := cfg.SessionConfig()
	if sc.Locale != "en-GB" || sc.Navigation.RapidRepeatWindow != 2*time.Second || sc.Navigation.NearStartThreshold != 0.4 {
		t.Errorf("SessionConfig() = %+v", sc)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	v := viper.New()
	v.Set("tts.engine", "festival")

	if _, err := LoadConfig(v); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("LoadConfig() error = %v, want ErrInvalidConfig", err)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "readaloud.yml")
	content := `tts:
  engine: mock
  mock:
    word_delay: 10ms
  cache:
    dir: ~/speech-cache
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig() error = %v", err)
	}

	cfg, err := LoadConfig(v)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Engine != EngineMock || cfg.Mock.WordDelay != 10*time.Millisecond {
		t.Errorf("cfg = %+v, want mock at 10ms", cfg)
	}
	if strings.HasPrefix(cfg.Cache.Dir, "~") {
		t.Errorf("Cache.Dir = %q, want ~ expanded", cfg.Cache.Dir)
	}
}

func TestSetDefaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	SetDefaults()

	if got := viper.GetString("tts.engine"); got != EngineAuto {
		t.Errorf("tts.engine = %v, want %v", got, EngineAuto)
	}
	if got := viper.GetString("tts.piper.binary"); got != "piper" {
		t.Errorf("tts.piper.binary = %v, want piper", got)
	}
	if got := viper.GetString("tts.rapid_repeat_window"); got != "1.5s" {
		t.Errorf("tts.rapid_repeat_window = %v, want 1.5s", got)
	}

	cfg, err := LoadConfigFromViper()
	if err != nil {
		t.Fatalf("LoadConfigFromViper() error = %v", err)
	}
	want := DefaultConfig()
	if cfg.Engine != want.Engine || cfg.RapidRepeatWindow != want.RapidRepeatWindow || cfg.Piper != want.Piper {
		t.Errorf("LoadConfigFromViper() with defaults = %+v, want %+v", cfg, want)
	}
}

package tts

import (
	"fmt"
	"strings"
	"time"
)

// Engine names.
const (
	EngineAuto    = "auto"
	EnginePiper   = "piper"
	EngineCommand = "command"
	EngineMock    = "mock"
)

// Config contains all reader configuration options.
type Config struct {
	// Engine selects the synthesizer; "auto" tries piper, then a system
	// speech command, then the silent mock.
	Engine string `yaml:"engine"`
	Locale string `yaml:"locale"`

	// Navigation settings
	RapidRepeatWindow  time.Duration `yaml:"rapid_repeat_window"`
	NearStartThreshold float64       `yaml:"near_start_threshold"`

	// Engine-specific configurations
	Piper   PiperConfig   `yaml:"piper"`
	Command CommandConfig `yaml:"command"`
	Mock    MockConfig    `yaml:"mock"`

	Cache CacheConfig `yaml:"cache"`
}

// PiperConfig contains Piper engine settings.
type PiperConfig struct {
	Binary          string        `yaml:"binary"`
	Model           string        `yaml:"model"`
	ModelDir        string        `yaml:"model_dir"`
	SpeakerID       int           `yaml:"speaker_id"`
	SampleRate      int           `yaml:"sample_rate"`
	NoiseScale      float64       `yaml:"noise_scale"`
	NoiseW          float64       `yaml:"noise_w"`
	Volume          float64       `yaml:"volume"`
	Timeout         time.Duration `yaml:"timeout"`
	LaunchesPerSec  float64       `yaml:"launches_per_second"`
	WordUpdateEvery time.Duration `yaml:"word_update_every"`
}

// CommandConfig contains settings for speech through a system command
// (espeak-ng, say or spd-say).
type CommandConfig struct {
	// Binary is the command to run; empty picks the first one installed.
	Binary         string `yaml:"binary"`
	WordsPerMinute int    `yaml:"words_per_minute"`
}

// MockConfig contains settings for the silent mock engine.
type MockConfig struct {
	WordDelay time.Duration `yaml:"word_delay"`
}

// CacheConfig controls caching of synthesized audio.
type CacheConfig struct {
	Enabled          bool          `yaml:"enabled"`
	Dir              string        `yaml:"dir"`
	MemoryBytes      int64         `yaml:"memory_bytes"`
	DiskBytes        int64         `yaml:"disk_bytes"`
	TTL              time.Duration `yaml:"ttl"`
	CompressionLevel int           `yaml:"compression_level"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Engine:             EngineAuto,
		Locale:             DefaultLocale,
		RapidRepeatWindow:  DefaultRapidRepeatWindow,
		NearStartThreshold: DefaultNearStartThreshold,

		Piper:   DefaultPiperConfig(),
		Command: DefaultCommandConfig(),
		Mock:    DefaultMockConfig(),
		Cache:   DefaultCacheConfig(),
	}
}

// DefaultPiperConfig returns default Piper configuration.
func DefaultPiperConfig() PiperConfig {
	return PiperConfig{
		Binary:          "piper",
		Model:           "en_US-lessac-medium",
		SpeakerID:       0,
		SampleRate:      22050,
		NoiseScale:      0.667,
		NoiseW:          0.8,
		Volume:          1.0,
		Timeout:         30 * time.Second,
		LaunchesPerSec:  4,
		WordUpdateEvery: 100 * time.Millisecond,
	}
}

// DefaultCommandConfig returns default system command configuration.
func DefaultCommandConfig() CommandConfig {
	return CommandConfig{WordsPerMinute: 175}
}

// DefaultMockConfig returns default mock configuration.
func DefaultMockConfig() MockConfig {
	return MockConfig{WordDelay: 250 * time.Millisecond}
}

// DefaultCacheConfig returns default cache configuration.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:          true,
		MemoryBytes:      64 << 20,
		DiskBytes:        512 << 20,
		TTL:              7 * 24 * time.Hour,
		CompressionLevel: 3,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	validEngines := []string{EngineAuto, EnginePiper, EngineCommand, EngineMock}
	engineValid := false
	for _, e := range validEngines {
		if strings.EqualFold(c.Engine, e) {
			engineValid = true
			c.Engine = strings.ToLower(c.Engine)
			break
		}
	}
	if !engineValid {
		return fmt.Errorf("%w: engine %q must be one of %v", ErrInvalidConfig, c.Engine, validEngines)
	}

	if c.Locale == "" {
		return fmt.Errorf("%w: locale cannot be empty", ErrInvalidConfig)
	}
	if c.RapidRepeatWindow < 0 {
		return fmt.Errorf("%w: rapid_repeat_window cannot be negative, got %v", ErrInvalidConfig, c.RapidRepeatWindow)
	}
	if c.NearStartThreshold < 0 || c.NearStartThreshold > 1 {
		return fmt.Errorf("%w: near_start_threshold must be between 0 and 1, got %f", ErrInvalidConfig, c.NearStartThreshold)
	}

	switch c.Engine {
	case EnginePiper, EngineAuto:
		if err := c.Piper.Validate(); err != nil {
			return fmt.Errorf("piper config: %w", err)
		}
	case EngineCommand:
		if err := c.Command.Validate(); err != nil {
			return fmt.Errorf("command config: %w", err)
		}
	case EngineMock:
		if err := c.Mock.Validate(); err != nil {
			return fmt.Errorf("mock config: %w", err)
		}
	}

	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache config: %w", err)
	}
	return nil
}

// Validate checks if the Piper configuration is valid.
func (c *PiperConfig) Validate() error {
	if c.Binary == "" {
		return fmt.Errorf("%w: piper binary path cannot be empty", ErrInvalidConfig)
	}
	if c.Model == "" {
		return fmt.Errorf("%w: piper model cannot be empty", ErrInvalidConfig)
	}
	validSampleRates := []int{16000, 22050, 24000, 44100, 48000}
	sampleRateValid := false
	for _, sr := range validSampleRates {
		if c.SampleRate == sr {
			sampleRateValid = true
			break
		}
	}
	if !sampleRateValid {
		return fmt.Errorf("%w: sample rate %d must be one of %v", ErrInvalidConfig, c.SampleRate, validSampleRates)
	}
	if c.NoiseScale < 0 || c.NoiseScale > 2.0 {
		return fmt.Errorf("%w: noise_scale must be between 0.0 and 2.0, got %f", ErrInvalidConfig, c.NoiseScale)
	}
	if c.NoiseW < 0 || c.NoiseW > 2.0 {
		return fmt.Errorf("%w: noise_w must be between 0.0 and 2.0, got %f", ErrInvalidConfig, c.NoiseW)
	}
	if c.Volume < 0 || c.Volume > 2.0 {
		return fmt.Errorf("%w: volume must be between 0.0 and 2.0, got %f", ErrInvalidConfig, c.Volume)
	}
	if c.Timeout < time.Second {
		return fmt.Errorf("%w: timeout must be at least 1 second, got %v", ErrInvalidConfig, c.Timeout)
	}
	if c.LaunchesPerSec <= 0 {
		return fmt.Errorf("%w: launches_per_second must be positive, got %f", ErrInvalidConfig, c.LaunchesPerSec)
	}
	if c.WordUpdateEvery <= 0 {
		return fmt.Errorf("%w: word_update_every must be positive, got %v", ErrInvalidConfig, c.WordUpdateEvery)
	}
	return nil
}

// Validate checks if the command configuration is valid.
func (c *CommandConfig) Validate() error {
	if c.WordsPerMinute < 50 || c.WordsPerMinute > 600 {
		return fmt.Errorf("%w: words_per_minute must be between 50 and 600, got %d", ErrInvalidConfig, c.WordsPerMinute)
	}
	return nil
}

// Validate checks if the mock configuration is valid.
func (c *MockConfig) Validate() error {
	if c.WordDelay <= 0 {
		return fmt.Errorf("%w: word_delay must be positive, got %v", ErrInvalidConfig, c.WordDelay)
	}
	return nil
}

// Validate checks if the cache configuration is valid.
func (c *CacheConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.MemoryBytes < 0 || c.DiskBytes < 0 {
		return fmt.Errorf("%w: cache sizes cannot be negative", ErrInvalidConfig)
	}
	if c.CompressionLevel < 1 || c.CompressionLevel > 22 {
		return fmt.Errorf("%w: compression_level must be between 1 and 22, got %d", ErrInvalidConfig, c.CompressionLevel)
	}
	return nil
}

// SessionConfig converts the reader config into session settings.
func (c *Config) SessionConfig() SessionConfig {
	return SessionConfig{
		Locale: c.Locale,
		Navigation: NavigationPolicy{
			RapidRepeatWindow:  c.RapidRepeatWindow,
			NearStartThreshold: c.NearStartThreshold,
		},
	}
}

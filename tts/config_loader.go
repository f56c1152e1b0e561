package tts

import (
	"fmt"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// LoadConfigFromViper loads reader configuration from the "tts" section of
// the global Viper instance.
func LoadConfigFromViper() (Config, error) {
	return LoadConfig(viper.GetViper())
}

// LoadConfig loads reader configuration from v.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := DefaultConfig()

	if v.IsSet("tts.engine") {
		cfg.Engine = v.GetString("tts.engine")
	}
	if v.IsSet("tts.locale") {
		cfg.Locale = v.GetString("tts.locale")
	}

	// Navigation settings
	if v.IsSet("tts.rapid_repeat_window") {
		cfg.RapidRepeatWindow = durationOr(v, "tts.rapid_repeat_window", cfg.RapidRepeatWindow)
	}
	if v.IsSet("tts.near_start_threshold") {
		cfg.NearStartThreshold = v.GetFloat64("tts.near_start_threshold")
	}

	cfg.Piper = loadPiperConfig(v)
	cfg.Command = loadCommandConfig(v)
	cfg.Mock = loadMockConfig(v)
	cfg.Cache = loadCacheConfig(v)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// durationOr parses a duration setting, keeping fallback when it does not
// parse.
func durationOr(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(v.GetString(key)); err == nil {
		return d
	}
	return fallback
}

// expandPath resolves a leading ~ in configured paths.
func expandPath(p string) string {
	if expanded, err := homedir.Expand(p); err == nil {
		return expanded
	}
	return p
}

func loadPiperConfig(v *viper.Viper) PiperConfig {
	cfg := DefaultPiperConfig()

	if v.IsSet("tts.piper.binary") {
		cfg.Binary = expandPath(v.GetString("tts.piper.binary"))
	}
	if v.IsSet("tts.piper.model") {
		cfg.Model = v.GetString("tts.piper.model")
	}
	if v.IsSet("tts.piper.model_dir") {
		cfg.ModelDir = expandPath(v.GetString("tts.piper.model_dir"))
	}
	if v.IsSet("tts.piper.speaker_id") {
		cfg.SpeakerID = v.GetInt("tts.piper.speaker_id")
	}
	if v.IsSet("tts.piper.sample_rate") {
		cfg.SampleRate = v.GetInt("tts.piper.sample_rate")
	}
	if v.IsSet("tts.piper.noise_scale") {
		cfg.NoiseScale = v.GetFloat64("tts.piper.noise_scale")
	}
	if v.IsSet("tts.piper.noise_w") {
		cfg.NoiseW = v.GetFloat64("tts.piper.noise_w")
	}
	if v.IsSet("tts.piper.volume") {
		cfg.Volume = v.GetFloat64("tts.piper.volume")
	}
	if v.IsSet("tts.piper.timeout") {
		cfg.Timeout = durationOr(v, "tts.piper.timeout", cfg.Timeout)
	}
	if v.IsSet("tts.piper.launches_per_second") {
		cfg.LaunchesPerSec = v.GetFloat64("tts.piper.launches_per_second")
	}
	if v.IsSet("tts.piper.word_update_every") {
		cfg.WordUpdateEvery = durationOr(v, "tts.piper.word_update_every", cfg.WordUpdateEvery)
	}

	return cfg
}

func loadCommandConfig(v *viper.Viper) CommandConfig {
	cfg := DefaultCommandConfig()

	if v.IsSet("tts.command.binary") {
		cfg.Binary = expandPath(v.GetString("tts.command.binary"))
	}
	if v.IsSet("tts.command.words_per_minute") {
		cfg.WordsPerMinute = v.GetInt("tts.command.words_per_minute")
	}

	return cfg
}

func loadMockConfig(v *viper.Viper) MockConfig {
	cfg := DefaultMockConfig()

	if v.IsSet("tts.mock.word_delay") {
		cfg.WordDelay = durationOr(v, "tts.mock.word_delay", cfg.WordDelay)
	}

	return cfg
}

func loadCacheConfig(v *viper.Viper) CacheConfig {
	cfg := DefaultCacheConfig()

	if v.IsSet("tts.cache.enabled") {
		cfg.Enabled = v.GetBool("tts.cache.enabled")
	}
	if v.IsSet("tts.cache.dir") {
		cfg.Dir = expandPath(v.GetString("tts.cache.dir"))
	}
	if v.IsSet("tts.cache.memory_bytes") {
		cfg.MemoryBytes = v.GetInt64("tts.cache.memory_bytes")
	}
	if v.IsSet("tts.cache.disk_bytes") {
		cfg.DiskBytes = v.GetInt64("tts.cache.disk_bytes")
	}
	if v.IsSet("tts.cache.ttl") {
		cfg.TTL = durationOr(v, "tts.cache.ttl", cfg.TTL)
	}
	if v.IsSet("tts.cache.compression_level") {
		cfg.CompressionLevel = v.GetInt("tts.cache.compression_level")
	}

	return cfg
}

// SetDefaults sets default values in Viper for reader configuration.
func SetDefaults() {
	defaults := DefaultConfig()

	viper.SetDefault("tts.engine", defaults.Engine)
	viper.SetDefault("tts.locale", defaults.Locale)
	viper.SetDefault("tts.rapid_repeat_window", defaults.RapidRepeatWindow.String())
	viper.SetDefault("tts.near_start_threshold", defaults.NearStartThreshold)

	// Piper defaults
	viper.SetDefault("tts.piper.binary", defaults.Piper.Binary)
	viper.SetDefault("tts.piper.model", defaults.Piper.Model)
	viper.SetDefault("tts.piper.speaker_id", defaults.Piper.SpeakerID)
	viper.SetDefault("tts.piper.sample_rate", defaults.Piper.SampleRate)
	viper.SetDefault("tts.piper.noise_scale", defaults.Piper.NoiseScale)
	viper.SetDefault("tts.piper.noise_w", defaults.Piper.NoiseW)
	viper.SetDefault("tts.piper.volume", defaults.Piper.Volume)
	viper.SetDefault("tts.piper.timeout", defaults.Piper.Timeout.String())
	viper.SetDefault("tts.piper.launches_per_second", defaults.Piper.LaunchesPerSec)
	viper.SetDefault("tts.piper.word_update_every", defaults.Piper.WordUpdateEvery.String())

	// Command defaults
	viper.SetDefault("tts.command.words_per_minute", defaults.Command.WordsPerMinute)

	// Mock defaults
	viper.SetDefault("tts.mock.word_delay", defaults.Mock.WordDelay.String())

	// Cache defaults
	viper.SetDefault("tts.cache.enabled", defaults.Cache.Enabled)
	viper.SetDefault("tts.cache.memory_bytes", defaults.Cache.MemoryBytes)
	viper.SetDefault("tts.cache.disk_bytes", defaults.Cache.DiskBytes)
	viper.SetDefault("tts.cache.ttl", defaults.Cache.TTL.String())
	viper.SetDefault("tts.cache.compression_level", defaults.Cache.CompressionLevel)
}

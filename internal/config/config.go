// Package config loads typeplan's run configuration from a YAML file,
// environment variables, and built-in defaults, the same layered way the
// teacher's config package does.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"

	"typeplan/internal/planner"
	"typeplan/internal/wordnav"
)

// Config is the top-level settings typeplan needs for a single run: the
// planner's behavioral knobs, storage, the LLM rephrase client, and which
// playback backend to target.
type Config struct {
	Planner  PlannerConfig  `mapstructure:"planner"`
	Database DatabaseConfig `mapstructure:"database"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Playback PlaybackConfig `mapstructure:"playback"`
}

// PlannerConfig mirrors planner.Config field-for-field so it can be decoded
// straight out of YAML/env, then converted with ToPlannerConfig.
type PlannerConfig struct {
	WPMMin                       float64 `mapstructure:"wpm_min"`
	WPMMax                       float64 `mapstructure:"wpm_max"`
	ErrorRatePerWord             float64 `mapstructure:"error_rate_per_word"`
	WordVariantShare             float64 `mapstructure:"word_variant_share"`
	ImmediateFixRate             float64 `mapstructure:"immediate_fix_rate"`
	WordNavProfile               string  `mapstructure:"word_nav_profile"`
	MaxOutstandingErrors         int     `mapstructure:"max_outstanding_errors"`
	StopCorrectionsAfterProgress float64 `mapstructure:"stop_corrections_after_progress"`
	ReviewPauseMsMin             uint64  `mapstructure:"review_pause_ms_min"`
	ReviewPauseMsMax             uint64  `mapstructure:"review_pause_ms_max"`
	NoRevision                   bool    `mapstructure:"no_revision"`
}

// ToPlannerConfig converts the decoded settings into planner.Config,
// resolving WordNavProfile's string form into a wordnav.Profile.
func (p PlannerConfig) ToPlannerConfig() (planner.Config, error) {
	profile, err := wordnav.ParseProfile(p.WordNavProfile)
	if err != nil {
		return planner.Config{}, fmt.Errorf("planner.word_nav_profile: %w", err)
	}
	return planner.Config{
		WPMMin:                       p.WPMMin,
		WPMMax:                       p.WPMMax,
		ErrorRatePerWord:             p.ErrorRatePerWord,
		WordVariantShare:             p.WordVariantShare,
		ImmediateFixRate:             p.ImmediateFixRate,
		WordNavProfile:               profile,
		MaxOutstandingErrors:         p.MaxOutstandingErrors,
		StopCorrectionsAfterProgress: p.StopCorrectionsAfterProgress,
		ReviewPauseMsMin:             p.ReviewPauseMsMin,
		ReviewPauseMsMax:             p.ReviewPauseMsMax,
		NoRevision:                   p.NoRevision,
	}, nil
}

// DatabaseConfig points at the sqlite file plan run history is recorded to.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LLMConfig configures the optional phrase-rephrase client.
type LLMConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Model          string `mapstructure:"model"`
	MaxConcurrency int    `mapstructure:"max_concurrency"`
}

// PlaybackConfig selects how a plan gets replayed. URL and Selector are only
// consulted when Backend is "browser".
type PlaybackConfig struct {
	Backend  string `mapstructure:"backend"`
	URL      string `mapstructure:"url"`
	Selector string `mapstructure:"selector"`
}

const envPrefix = "TYPEPLAN"

// Load reads configuration from configPath (or, if empty, config.yaml in
// ./ or ./config),
// layering in TYPEPLAN_-prefixed environment variables and the defaults
// from setDefaults, then validates the result.
//
// Grounded on the teacher's config.Load (config/config.go): same
// viper.SetConfigName/AddConfigPath/AutomaticEnv/Unmarshal sequence,
// generalized from LinkedIn credentials/selectors to planner/database/llm
// settings.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("planner.wpm_min", 40.0)
	v.SetDefault("planner.wpm_max", 60.0)
	v.SetDefault("planner.error_rate_per_word", 0.05)
	v.SetDefault("planner.word_variant_share", 0.35)
	v.SetDefault("planner.immediate_fix_rate", 0.35)
	v.SetDefault("planner.word_nav_profile", "chrome")
	v.SetDefault("planner.max_outstanding_errors", 4)
	v.SetDefault("planner.stop_corrections_after_progress", 0.88)
	v.SetDefault("planner.review_pause_ms_min", 1200)
	v.SetDefault("planner.review_pause_ms_max", 2600)
	v.SetDefault("planner.no_revision", false)

	v.SetDefault("database.path", "data/typeplan.db")

	v.SetDefault("llm.enabled", false)
	v.SetDefault("llm.model", "google/gemini-3-flash-preview")
	v.SetDefault("llm.max_concurrency", 10)

	v.SetDefault("playback.backend", "auto")
	v.SetDefault("playback.url", "")
	v.SetDefault("playback.selector", "")
}

func validateConfig(cfg *Config) error {
	if cfg.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if cfg.Planner.WPMMin <= 0 || cfg.Planner.WPMMax <= 0 {
		return fmt.Errorf("planner.wpm_min and planner.wpm_max must be positive")
	}
	if cfg.Planner.WPMMin > cfg.Planner.WPMMax {
		return fmt.Errorf("planner.wpm_min must be <= planner.wpm_max")
	}
	if _, err := wordnav.ParseProfile(cfg.Planner.WordNavProfile); err != nil {
		return fmt.Errorf("planner.word_nav_profile: %w", err)
	}
	switch cfg.Playback.Backend {
	case "auto", "wayland", "x11":
	case "browser":
		if cfg.Playback.URL == "" || cfg.Playback.Selector == "" {
			return fmt.Errorf("playback.url and playback.selector are required when playback.backend is browser")
		}
	default:
		return fmt.Errorf("playback.backend must be one of auto, wayland, x11, browser, got %q", cfg.Playback.Backend)
	}
	return nil
}

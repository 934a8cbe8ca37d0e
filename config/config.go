// Package config loads engine-level settings — the report directory
// location, the default confidence threshold, the override-store
// path — from an optional .valence.{yaml,json,toml} file plus VALENCE_*
// environment overrides, via viper. Mirrors the teacher's cmd/root.go
// initConfig, but reads the file from the given project directory
// instead of "$HOME/.arch-unit.yaml"; the home directory is not searched.
package config

import (
	"fmt"

	"github.com/flanksource/commons/logger"
	"github.com/spf13/viper"
)

// Settings are the engine's own configuration, as opposed to the
// domain documents (profiles, validators, overrides) docstore loads.
type Settings struct {
	ReportDir           string  `mapstructure:"reportDir"`
	OverrideStorePath   string  `mapstructure:"overrideStorePath"`
	ConfidenceThreshold float64 `mapstructure:"confidenceThreshold"`
	ShowLowConfidence   bool    `mapstructure:"showLowConfidence"`
	IncludeCodeSnippets bool    `mapstructure:"includeCodeSnippets"`
	MaxWorkers          int     `mapstructure:"maxWorkers"`
}

// DefaultSettings match the engine's documented defaults.
func DefaultSettings() Settings {
	return Settings{
		ReportDir:           "reports",
		OverrideStorePath:   ".valence-overrides.json",
		ConfidenceThreshold: 0.8,
		ShowLowConfidence:   true,
		IncludeCodeSnippets: false,
		MaxWorkers:          0,
	}
}

// Load resolves Settings from (in ascending precedence): built-in
// defaults, an optional .valence.{yaml,yml,json,toml} file under dir,
// and VALENCE_* environment variables.
func Load(dir string) (Settings, error) {
	v := viper.New()
	defaults := DefaultSettings()
	v.SetDefault("reportDir", defaults.ReportDir)
	v.SetDefault("overrideStorePath", defaults.OverrideStorePath)
	v.SetDefault("confidenceThreshold", defaults.ConfidenceThreshold)
	v.SetDefault("showLowConfidence", defaults.ShowLowConfidence)
	v.SetDefault("includeCodeSnippets", defaults.IncludeCodeSnippets)
	v.SetDefault("maxWorkers", defaults.MaxWorkers)

	v.SetConfigName(".valence")
	v.AddConfigPath(dir)

	v.SetEnvPrefix("VALENCE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Settings{}, fmt.Errorf("reading engine config: %w", err)
		}
	} else {
		logger.Infof("config: using %s", v.ConfigFileUsed())
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return Settings{}, fmt.Errorf("decoding engine config: %w", err)
	}
	return settings, nil
}

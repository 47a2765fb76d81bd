// Package config loads process-wide settings for the spatial text tools.
//
// Settings come from an optional YAML file and are then overridden by
// environment variables:
//
//	convert_legacy_hybrid_zones: true
//	log_level: info
//	engine_name: tesseract
//	searcher:
//	  include_data_on_boundary: true
//	  use_midpoints_only: false
//	  resolution: character
//	zones:
//	  treat_gaps_as_zone_boundaries: false
//
// Flags such as convert_legacy_hybrid_zones are read once at startup and
// passed down as explicit options; library code never consults the
// environment on its own.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variable names.
const (
	EnvConvertLegacyHybridZones = "USS_CONVERT_LEGACY_HYBRID_ZONES"
	EnvLogLevel                 = "USS_LOG_LEVEL"
	EnvEngineName               = "USS_ENGINE_NAME"
	EnvSearchResolution         = "USS_SEARCH_RESOLUTION"
)

// Config holds all settings.
type Config struct {
	// ConvertLegacyHybridZones converts raster zones of hybrid strings saved
	// before format version 12 from original-image to OCR coordinates on load.
	ConvertLegacyHybridZones bool `yaml:"convert_legacy_hybrid_zones"`

	// LogLevel is a logrus level name.
	LogLevel string `yaml:"log_level"`

	// EngineName is the OCR engine tag used in archive entry names
	// (NNNN.<engine>.uss).
	EngineName string `yaml:"engine_name"`

	Searcher SearcherConfig `yaml:"searcher"`
	Zones    ZoneConfig     `yaml:"zones"`
}

// SearcherConfig holds default query settings for the spatial searcher.
type SearcherConfig struct {
	IncludeDataOnBoundary bool   `yaml:"include_data_on_boundary"`
	UseMidpointsOnly      bool   `yaml:"use_midpoints_only"`
	Resolution            string `yaml:"resolution"`
}

// ZoneConfig holds zone segmentation settings.
type ZoneConfig struct {
	TreatGapsAsZoneBoundaries bool `yaml:"treat_gaps_as_zone_boundaries"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ConvertLegacyHybridZones: true,
		LogLevel:                 "info",
		EngineName:               "tesseract",
		Searcher: SearcherConfig{
			IncludeDataOnBoundary: true,
			UseMidpointsOnly:      false,
			Resolution:            "character",
		},
	}
}

// Load reads a YAML file on top of the defaults and applies environment
// overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate checks enumerated values.
func (c Config) Validate() error {
	switch strings.ToLower(c.Searcher.Resolution) {
	case "", "character", "word", "line":
	default:
		return fmt.Errorf("invalid searcher resolution %q", c.Searcher.Resolution)
	}
	if strings.ContainsAny(c.EngineName, `/\.`) {
		return fmt.Errorf("invalid engine name %q", c.EngineName)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(EnvConvertLegacyHybridZones); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvConvertLegacyHybridZones, err)
		}
		c.ConvertLegacyHybridZones = b
	}
	c.LogLevel = getEnvOrDefault(EnvLogLevel, c.LogLevel)
	c.EngineName = getEnvOrDefault(EnvEngineName, c.EngineName)
	c.Searcher.Resolution = getEnvOrDefault(EnvSearchResolution, c.Searcher.Resolution)
	return nil
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

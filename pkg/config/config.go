// Package config reads toroid's runtime settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/chazu/toroid/pkg/kernel"
	"github.com/chazu/toroid/pkg/roots"
	"github.com/chazu/toroid/pkg/scene"
	"golang.org/x/text/language"
)

const (
	// DefaultUnits is the display unit system.
	DefaultUnits = scene.DefaultUnits
	// DefaultImagTol is the imaginary magnitude below which a root counts
	// as a real crossing.
	DefaultImagTol = roots.DefaultImagTol
	// DefaultWorkers is the batch shooting fan-out.
	DefaultWorkers = scene.DefaultWorkers
	// DefaultLogLevel controls verbosity for the CLI.
	DefaultLogLevel = "info"
	// DefaultLocale selects number formatting for descriptions.
	DefaultLocale = "en"
)

// Config captures all runtime tunables.
type Config struct {
	Units    string
	MM2Local float64 // local units per millimetre, derived from Units
	ImagTol  float64
	Workers  int
	LogLevel slog.Level
	Locale   language.Tag
}

// KernelOptions returns the Prep options implied by c.
func (c *Config) KernelOptions() []kernel.Option {
	return []kernel.Option{kernel.WithImagTol(c.ImagTol)}
}

// Load reads the configuration from environment variables, applying
// defaults and returning descriptive errors for invalid overrides.
func Load() (*Config, error) {
	cfg := &Config{
		Units:    getString("TOROID_UNITS", DefaultUnits),
		MM2Local: 1,
		ImagTol:  DefaultImagTol,
		Workers:  DefaultWorkers,
		LogLevel: slog.LevelInfo,
		Locale:   language.English,
	}

	var problems []string

	if mm, err := kernel.Local2mm(cfg.Units); err != nil {
		problems = append(problems, fmt.Sprintf("TOROID_UNITS must name a unit system, got %q", cfg.Units))
	} else {
		cfg.MM2Local = 1 / mm
	}

	if raw := strings.TrimSpace(os.Getenv("TOROID_IMAG_TOL")); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil || value <= 0 {
			problems = append(problems, fmt.Sprintf("TOROID_IMAG_TOL must be a positive number, got %q", raw))
		} else {
			cfg.ImagTol = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("TOROID_WORKERS")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value <= 0 {
			problems = append(problems, fmt.Sprintf("TOROID_WORKERS must be a positive integer, got %q", raw))
		} else {
			cfg.Workers = value
		}
	}

	level := getString("TOROID_LOG_LEVEL", DefaultLogLevel)
	if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
		problems = append(problems, fmt.Sprintf("TOROID_LOG_LEVEL must be debug, info, warn or error, got %q", level))
	}

	locale := getString("TOROID_LOCALE", DefaultLocale)
	if tag, err := language.Parse(locale); err != nil {
		problems = append(problems, fmt.Sprintf("TOROID_LOCALE must be a BCP 47 language tag, got %q", locale))
	} else {
		cfg.Locale = tag
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return cfg, nil
}

func getString(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

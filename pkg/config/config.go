// Package config handles gearwright configuration loading and management.
package config

import (
	"time"

	"github.com/chazu/gearwright/pkg/geometry"
)

// Config holds all settings.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Simulation SimulationConfig `yaml:"simulation"`
	Export     ExportConfig     `yaml:"export"`
	Preview    PreviewConfig    `yaml:"preview"`
	Watch      WatchConfig      `yaml:"watch"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Defaults   geometry.Params  `yaml:"defaults" validate:"-"` // checked by Params.Validate
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" validate:"oneof=debug info warn error"`
	LogFile string `yaml:"log_file"`
}

// SimulationConfig controls the simulate command.
type SimulationConfig struct {
	TickRate    float64 `yaml:"tick_rate" validate:"gt=0"` // ticks per second
	Ticks       int     `yaml:"ticks" validate:"gte=0"`
	Propagation string  `yaml:"propagation" validate:"oneof=recursive worklist"`
}

// ExportConfig controls the build command.
type ExportConfig struct {
	Dir         string `yaml:"dir"`
	Format      string `yaml:"format" validate:"oneof=stl json"`
	Mode        string `yaml:"mode" validate:"oneof=procedural reference"`
	Parallelism int    `yaml:"parallelism" validate:"gte=0"`
	Cells       int    `yaml:"cells" validate:"gte=0"` // marching cubes resolution in reference mode
}

// PreviewConfig sizes preview images.
type PreviewConfig struct {
	Width  int     `yaml:"width" validate:"gt=0"`
	Height int     `yaml:"height" validate:"gt=0"`
	Margin float64 `yaml:"margin" validate:"gte=0"`
}

// WatchConfig controls the watch command.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// MetricsConfig controls Prometheus exposition. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level: "info",
		},
		Simulation: SimulationConfig{
			TickRate:    60,
			Ticks:       60,
			Propagation: "recursive",
		},
		Export: ExportConfig{
			Dir:    "out",
			Format: "stl",
			Mode:   "procedural",
			Cells:  200,
		},
		Preview: PreviewConfig{
			Width:  800,
			Height: 600,
			Margin: 20,
		},
		Watch: WatchConfig{
			Debounce: 300 * time.Millisecond,
		},
		Defaults: geometry.Params{
			TeethCount: 12,
			Resolution: 4,
			Module:     1,
			Thickness:  0.5,
		},
	}
}

// TickStep is the simulated time per tick in seconds.
func (s SimulationConfig) TickStep() float64 {
	return 1 / s.TickRate
}

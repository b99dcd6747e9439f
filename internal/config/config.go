package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/tomz197/hashgrid/internal/broadphase"
)

// Environment overrides applied by ApplyEnv.
const (
	EnvCellSize      = "HASHGRID_CELL_SIZE"
	EnvAlarmDistance = "HASHGRID_ALARM_DISTANCE"
	EnvTableSize     = "HASHGRID_TABLE_SIZE"
	EnvLogLevel      = "HASHGRID_LOG_LEVEL"
	EnvParallelism   = "HASHGRID_PARALLELISM"
	EnvMetrics       = "HASHGRID_METRICS"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the full simulation configuration.
type Config struct {
	Grid      GridConfig      `yaml:"grid"`
	World     WorldConfig     `yaml:"world"`
	Scenes    []SceneConfig   `yaml:"scenes" validate:"required,min=1,dive"`
	Rules     []RuleConfig    `yaml:"rules" validate:"dive"`
	Sim       SimConfig       `yaml:"sim"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// GridConfig holds the broad-phase settings shared by every grid.
type GridConfig struct {
	CellSize      float64 `yaml:"cell_size" validate:"gt=0"`
	AlarmDistance float64 `yaml:"alarm_distance" validate:"gte=0"`
	TableSize     int     `yaml:"table_size" validate:"gte=1"`
}

// WorldConfig is the size of the wrapping world box.
type WorldConfig struct {
	Width  float64 `yaml:"width" validate:"gt=0"`
	Height float64 `yaml:"height" validate:"gt=0"`
	Depth  float64 `yaml:"depth" validate:"gt=0"`
}

// SceneConfig describes one population of moving boxes. Every scene gets
// its own grid.
type SceneConfig struct {
	Name          string  `yaml:"name" validate:"required"`
	Kind          string  `yaml:"kind" validate:"required"`
	Bodies        int     `yaml:"bodies" validate:"gte=0"`
	MinHalfExtent float64 `yaml:"min_half_extent" validate:"gt=0"`
	MaxHalfExtent float64 `yaml:"max_half_extent" validate:"gtefield=MinHalfExtent"`
	MaxSpeed      float64 `yaml:"max_speed" validate:"gte=0"`
	SelfCollide   bool    `yaml:"self_collide"`
	Group         uint32  `yaml:"group"`
	Mask          uint32  `yaml:"mask"`
}

// RuleConfig enables box intersection between two scene kinds.
type RuleConfig struct {
	A string `yaml:"a" validate:"required"`
	B string `yaml:"b" validate:"required"`
}

// SimConfig controls the tick loop.
type SimConfig struct {
	TickRate    int   `yaml:"tick_rate" validate:"gt=0,lte=1000"`
	Parallelism int   `yaml:"parallelism" validate:"gte=1"`
	StatsEvery  int   `yaml:"stats_every" validate:"gte=0"`
	Seed        int64 `yaml:"seed"`
}

// LogConfig selects the log level.
type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

// TelemetryConfig selects the metric exporter.
type TelemetryConfig struct {
	MetricExporter string `yaml:"metric_exporter" validate:"oneof=prometheus stdout none"`
	ServiceName    string `yaml:"service_name"`
}

// Default returns a three-scene setup in a 400x300x100 world.
func Default() Config {
	return Config{
		Grid: GridConfig{
			CellSize:      10,
			AlarmDistance: 0.5,
			TableSize:     4096,
		},
		World: WorldConfig{Width: 400, Height: 300, Depth: 100},
		Scenes: []SceneConfig{
			{
				Name: "rocks", Kind: "rock", Bodies: 250,
				MinHalfExtent: 1.5, MaxHalfExtent: 5, MaxSpeed: 12,
				SelfCollide: true,
			},
			{
				Name: "ships", Kind: "ship", Bodies: 24,
				MinHalfExtent: 1, MaxHalfExtent: 1.5, MaxSpeed: 25,
			},
			{
				Name: "shots", Kind: "shot", Bodies: 120,
				MinHalfExtent: 0.2, MaxHalfExtent: 0.4, MaxSpeed: 80,
			},
		},
		Rules: []RuleConfig{
			{A: "rock", B: "rock"},
			{A: "ship", B: "rock"},
			{A: "shot", B: "rock"},
			{A: "ship", B: "shot"},
		},
		Sim: SimConfig{
			TickRate:    60,
			Parallelism: 4,
			StatsEvery:  120,
			Seed:        1,
		},
		Log: LogConfig{Level: "info"},
		Telemetry: TelemetryConfig{
			MetricExporter: "prometheus",
			ServiceName:    "hashgrid",
		},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty or missing path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from HASHGRID_* variables.
func (c *Config) ApplyEnv() {
	c.Grid.CellSize = GetEnvFloat(EnvCellSize, c.Grid.CellSize)
	c.Grid.AlarmDistance = GetEnvFloat(EnvAlarmDistance, c.Grid.AlarmDistance)
	c.Grid.TableSize = GetEnvInt(EnvTableSize, c.Grid.TableSize)
	c.Log.Level = GetEnv(EnvLogLevel, c.Log.Level)
	c.Sim.Parallelism = GetEnvInt(EnvParallelism, c.Sim.Parallelism)
	c.Telemetry.MetricExporter = GetEnv(EnvMetrics, c.Telemetry.MetricExporter)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the struct tags and that scene names are unique.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	seen := make(map[string]bool, len(c.Scenes))
	for _, s := range c.Scenes {
		if seen[s.Name] {
			return fmt.Errorf("%w: duplicate scene %q", ErrInvalidConfig, s.Name)
		}
		seen[s.Name] = true
	}

	if err := c.GridSettings().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// GridSettings returns the broad-phase settings for every grid.
func (c Config) GridSettings() broadphase.Settings {
	return broadphase.Settings{
		CellSize:      c.Grid.CellSize,
		AlarmDistance: c.Grid.AlarmDistance,
	}
}

// TickTime is the duration of one simulation step.
func (c Config) TickTime() time.Duration {
	return time.Second / time.Duration(c.Sim.TickRate)
}

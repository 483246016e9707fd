// Package pxconfig loads and validates the YAML settings file a
// long-running pxvectorize service or CLI invocation reads its tunable
// constants from.
package pxconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kwv/pxvectorize/vectorize"
)

// Thresholds holds the YUV similarity thresholds used to build the
// similarity graph.
type Thresholds struct {
	Y int `yaml:"y"`
	U int `yaml:"u"`
	V int `yaml:"v"`
}

// Heuristics holds the Gestalt-heuristic tunables used to resolve
// ambiguous diagonals.
type Heuristics struct {
	IslandWeight int    `yaml:"island_weight"`
	SparseWindow [2]int `yaml:"sparse_window"`
}

// Smoother holds the spline smoother's tunables.
type Smoother struct {
	Iterations       int     `yaml:"iterations"`
	PointGuesses     int     `yaml:"point_guesses"`
	GuessOffset      float64 `yaml:"guess_offset"`
	IntervalsPerSpan int     `yaml:"intervals_per_span"`
}

// Render holds output defaults. The CLI uses Scale when --scale is 0;
// Padding and BackgroundHex are not read anywhere, and the renderer always
// draws an unpadded white background.
type Render struct {
	Scale         float64 `yaml:"scale"`
	Padding       float64 `yaml:"padding"`
	BackgroundHex string  `yaml:"background_hex"`
}

// MQTT holds the settings pxservice.New needs to connect and subscribe.
type MQTT struct {
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id"`
	InputTopic  string `yaml:"input_topic"`
	OutputTopic string `yaml:"output_topic"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
}

// Config is the top-level YAML-facing configuration document.
type Config struct {
	Thresholds Thresholds `yaml:"thresholds"`
	Heuristics Heuristics `yaml:"heuristics"`
	Smoother   Smoother   `yaml:"smoother"`
	Seed       int64      `yaml:"seed"`
	Render     Render     `yaml:"render"`
	MQTT       MQTT       `yaml:"mqtt"`
}

// Default returns the literal constants the core algorithm fixes when no
// config file is supplied.
func Default() Config {
	vc := vectorize.DefaultConfig()
	return Config{
		Thresholds: Thresholds{Y: vc.YThreshold, U: vc.UThreshold, V: vc.VThreshold},
		Heuristics: Heuristics{IslandWeight: vc.IslandWeight, SparseWindow: vc.SparseWindow},
		Smoother: Smoother{
			Iterations:       vc.SmootherIterations,
			PointGuesses:     vc.PointGuesses,
			GuessOffset:      vc.GuessOffset,
			IntervalsPerSpan: vc.IntervalsPerSpan,
		},
		Seed: vc.Seed,
		Render: Render{
			Scale:         10,
			Padding:       0,
			BackgroundHex: "#ffffff",
		},
	}
}

// Load reads and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Save writes cfg to path as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Validate checks the fields Load can't sanity-check via YAML typing
// alone: non-negative thresholds, a positive sparse window, non-negative
// smoother iteration and guess counts, and positive intervals per span.
func (c Config) Validate() error {
	if c.Thresholds.Y < 0 || c.Thresholds.U < 0 || c.Thresholds.V < 0 {
		return fmt.Errorf("thresholds.y/u/v must be non-negative")
	}
	if c.Heuristics.SparseWindow[0] <= 0 || c.Heuristics.SparseWindow[1] <= 0 {
		return fmt.Errorf("heuristics.sparse_window dimensions must be positive")
	}
	if c.Smoother.Iterations < 0 || c.Smoother.PointGuesses < 0 {
		return fmt.Errorf("smoother.iterations and smoother.point_guesses must be non-negative")
	}
	if c.Smoother.IntervalsPerSpan <= 0 {
		return fmt.Errorf("smoother.intervals_per_span must be positive")
	}
	return nil
}

// ToVectorizeConfig adapts the YAML-facing document to the core's Config.
func (c Config) ToVectorizeConfig() vectorize.Config {
	return vectorize.Config{
		YThreshold:           c.Thresholds.Y,
		UThreshold:           c.Thresholds.U,
		VThreshold:           c.Thresholds.V,
		IslandWeight:         c.Heuristics.IslandWeight,
		SparseWindow:         c.Heuristics.SparseWindow,
		SmootherIterations:   c.Smoother.Iterations,
		PointGuesses:         c.Smoother.PointGuesses,
		GuessOffset:          c.Smoother.GuessOffset,
		IntervalsPerSpan:     c.Smoother.IntervalsPerSpan,
		PositionalMultiplier: 1,
		Seed:                 c.Seed,
	}
}

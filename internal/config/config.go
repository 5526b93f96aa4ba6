package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/cosmosim/internal/result"
)

const (
	DefaultModel      = "rates"
	DefaultIntegrator = "euler"
	DefaultDt         = 0.01
	DefaultDuration   = 0.01
	DefaultCSVPath    = "simulation_results.csv"
	DefaultJSONPath   = "simulation_results.json"
	DefaultSweepField = "density"
	DefaultWorkers    = 4
)

// ErrInvalid indicates a config file that does not match the schema.
var ErrInvalid = errors.New("config: invalid configuration")

type Config struct {
	Model      string                  `yaml:"model"`
	Integrator string                  `yaml:"integrator"`
	Dt         float64                 `yaml:"dt"`
	Duration   float64                 `yaml:"duration"`
	Initial    result.SimulationResult `yaml:"initial"`
	Params     map[string]float64      `yaml:"params,omitempty"`
	Output     OutputConfig            `yaml:"output"`
	Sweep      SweepConfig             `yaml:"sweep"`
}

type OutputConfig struct {
	CSV  string `yaml:"csv"`
	JSON string `yaml:"json"`
}

type SweepConfig struct {
	Field   string  `yaml:"field"`
	From    float64 `yaml:"from"`
	To      float64 `yaml:"to"`
	Points  int     `yaml:"points"`
	Workers int     `yaml:"workers"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:      DefaultModel,
		Integrator: DefaultIntegrator,
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Initial:    result.Default(),
		Output: OutputConfig{
			CSV:  DefaultCSVPath,
			JSON: DefaultJSONPath,
		},
		Sweep: SweepConfig{
			Field:   DefaultSweepField,
			From:    0.5,
			To:      2.0,
			Points:  8,
			Workers: DefaultWorkers,
		},
	}
}

// Load reads a YAML config, validates it and overlays it on the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := Validate(path, data); err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SweepPoints spreads Sweep.Points initial states evenly over [From, To]
// for Sweep.Field, holding the other fields at Initial.
func (c *Config) SweepPoints() ([]result.SimulationResult, error) {
	s := c.Sweep
	if s.Points < 1 {
		return nil, fmt.Errorf("%w: sweep points must be at least 1, got %d", ErrInvalid, s.Points)
	}
	if _, ok := c.Initial.Field(s.Field); !ok {
		return nil, fmt.Errorf("%w: unknown sweep field %q", ErrInvalid, s.Field)
	}

	points := make([]result.SimulationResult, s.Points)
	for i := range points {
		v := s.From
		if s.Points > 1 {
			v = s.From + (s.To-s.From)*float64(i)/float64(s.Points-1)
		}
		points[i], _ = c.Initial.WithField(s.Field, v)
	}
	return points, nil
}

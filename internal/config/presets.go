package config

import "sort"

var Presets = map[string]map[string]*Config{
	"rates": {
		"reference": preset(func(c *Config) {
			c.Model, c.Integrator = "rates", "euler"
			c.Dt, c.Duration = 0.01, 0.01
		}),
		"table": preset(func(c *Config) {
			c.Model, c.Integrator = "rates", "euler"
			c.Dt, c.Duration = 0.01, 0.02
		}),
		"smooth": preset(func(c *Config) {
			c.Model, c.Integrator = "rates", "rk4"
			c.Dt, c.Duration = 0.001, 0.5
		}),
	},
	"matter": {
		"einstein-de-sitter": preset(func(c *Config) {
			c.Model, c.Integrator = "matter", "rk4"
			c.Dt, c.Duration = 0.001, 1.0
		}),
		"dense": preset(func(c *Config) {
			c.Model, c.Integrator = "matter", "rk4"
			c.Dt, c.Duration = 0.0005, 1.0
			c.Initial.Density = 10.0
		}),
		"empty": preset(func(c *Config) {
			c.Model, c.Integrator = "matter", "rk4"
			c.Dt, c.Duration = 0.01, 1.0
			c.Initial.Density = 0.0
		}),
	},
}

func preset(apply func(*Config)) *Config {
	c := DefaultConfig()
	apply(c)
	return c
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(model, name string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[name]
	if !ok {
		return nil
	}
	c := *cfg
	if cfg.Params != nil {
		c.Params = make(map[string]float64, len(cfg.Params))
		for k, v := range cfg.Params {
			c.Params[k] = v
		}
	}
	return &c
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

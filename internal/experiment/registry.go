package experiment

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/san-kum/cosmosim/internal/config"
	"github.com/san-kum/cosmosim/internal/cosmology"
	"github.com/san-kum/cosmosim/internal/integrators"
	"github.com/san-kum/cosmosim/internal/metrics"
	"github.com/san-kum/cosmosim/internal/sim"
)

type Registry struct {
	models      map[string]func() cosmology.Model
	integrators map[string]func() sim.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		models:      make(map[string]func() cosmology.Model),
		integrators: make(map[string]func() sim.Integrator),
	}

	r.models["rates"] = func() cosmology.Model { return cosmology.NewRates() }
	r.models["matter"] = func() cosmology.Model { return cosmology.NewMatter() }

	r.integrators["euler"] = func() sim.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() sim.Integrator { return integrators.NewRK4() }

	return r
}

func (r *Registry) GetModel(name string) (cosmology.Model, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s (available: %v)", name, r.ListModels())
	}
	return fn(), nil
}

// IntegratorFactory returns a constructor so every run gets its own integrator.
func (r *Registry) IntegratorFactory(name string) (cosmology.IntegratorFactory, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s (available: %v)", name, r.ListIntegrators())
	}
	return fn, nil
}

func (r *Registry) ListModels() []string {
	return sortedKeys(r.models)
}

func (r *Registry) ListIntegrators() []string {
	return sortedKeys(r.integrators)
}

func (r *Registry) DefaultMetrics() []sim.Metric {
	return []sim.Metric{
		metrics.NewDrift(0, "density"),
		metrics.NewDrift(1, "energy"),
		metrics.NewDrift(2, "expansion"),
		metrics.NewDrift(3, "gravitation"),
		metrics.NewStability(1e6),
	}
}

// NewRoutine builds the evolver described by cfg, with cfg.Params applied
// to the model and the default metrics attached. A nil logger defers to the
// one carried by the context of each call.
func (r *Registry) NewRoutine(cfg *config.Config, logger *zap.Logger) (*cosmology.Evolver, error) {
	model, err := r.GetModel(cfg.Model)
	if err != nil {
		return nil, err
	}
	if err := cosmology.ApplyParams(model, cfg.Params); err != nil {
		return nil, err
	}
	newInteg, err := r.IntegratorFactory(cfg.Integrator)
	if err != nil {
		return nil, err
	}

	return cosmology.NewEvolver(model, newInteg,
		cosmology.WithStep(cfg.Dt, cfg.Duration),
		cosmology.WithMetrics(r.DefaultMetrics),
		cosmology.WithLogger(logger),
	), nil
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

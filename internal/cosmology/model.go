package cosmology

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/cosmosim/internal/result"
	"github.com/san-kum/cosmosim/internal/sim"
)

var (
	// ErrInvalidInput indicates an initial state the models cannot start from.
	ErrInvalidInput = errors.New("cosmology: invalid initial state")

	// ErrDiverged indicates the integration produced NaN or Inf.
	ErrDiverged = errors.New("cosmology: simulation diverged")

	// ErrUnknownParam indicates SetParam was called with a name the model does not have.
	ErrUnknownParam = errors.New("cosmology: unknown parameter")
)

// StateDim is the length of the state vector shared by all models.
const StateDim = 4

// Model is an ODE over [density, energy, expansion, gravitation].
type Model interface {
	sim.Dynamics
	Name() string
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// ToState drops the time field; time is the integrator's clock.
func ToState(r result.SimulationResult) sim.State {
	return sim.State{r.Density, r.Energy, r.Expansion, r.Gravitation}
}

func FromState(t float64, x sim.State) result.SimulationResult {
	return result.SimulationResult{
		Time:        t,
		Density:     x[0],
		Energy:      x[1],
		Expansion:   x[2],
		Gravitation: x[3],
	}
}

// ApplyParams sets every entry of params on m.
func ApplyParams(m Model, params map[string]float64) error {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := m.SetParam(name, params[name]); err != nil {
			return fmt.Errorf("%s: %w", m.Name(), err)
		}
	}
	return nil
}

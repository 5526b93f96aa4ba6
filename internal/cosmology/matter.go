package cosmology

import (
	"fmt"
	"math"

	"github.com/san-kum/cosmosim/internal/sim"
)

// Matter is a flat, matter-dominated universe in units where 8πG/3 equals
// Coupling. The Hubble rate follows from the Friedmann equation,
// H = sqrt(Coupling * density). Density dilutes as a^-3, photon energy
// redshifts as a^-1 and the attraction between comoving masses falls as a^-2.
type Matter struct {
	Coupling float64
}

func NewMatter() *Matter {
	return &Matter{Coupling: 1.0}
}

func (m *Matter) Name() string  { return "matter" }
func (m *Matter) StateDim() int { return StateDim }

// Hubble returns the expansion rate for the given density.
func (m *Matter) Hubble(density float64) float64 {
	return math.Sqrt(math.Max(m.Coupling*density, 0))
}

func (m *Matter) Derivative(x sim.State, _ float64) sim.State {
	h := m.Hubble(x[0])
	return sim.State{
		-3 * h * x[0],
		-h * x[1],
		h * x[2],
		-2 * h * x[3],
	}
}

func (m *Matter) GetParams() map[string]float64 {
	return map[string]float64{"coupling": m.Coupling}
}

func (m *Matter) SetParam(name string, value float64) error {
	switch name {
	case "coupling":
		if value < 0 {
			return fmt.Errorf("coupling must be non-negative, got %f", value)
		}
		m.Coupling = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	return nil
}

package cosmology

import (
	"fmt"

	"github.com/san-kum/cosmosim/internal/sim"
)

// Rates evolves every quantity at its own constant relative rate,
// dX/dt = k_X * X.
type Rates struct {
	Density     float64
	Energy      float64
	Expansion   float64
	Gravitation float64
}

// NewRates returns the reference rates. One euler step of 0.01 from the
// defaults yields density 0.9, energy 1.1, expansion 1.01, gravitation 0.99.
func NewRates() *Rates {
	return &Rates{
		Density:     -10.0,
		Energy:      10.0,
		Expansion:   1.0,
		Gravitation: -1.0,
	}
}

func (r *Rates) Name() string  { return "rates" }
func (r *Rates) StateDim() int { return StateDim }

func (r *Rates) Derivative(x sim.State, _ float64) sim.State {
	return sim.State{
		r.Density * x[0],
		r.Energy * x[1],
		r.Expansion * x[2],
		r.Gravitation * x[3],
	}
}

func (r *Rates) GetParams() map[string]float64 {
	return map[string]float64{
		"density":     r.Density,
		"energy":      r.Energy,
		"expansion":   r.Expansion,
		"gravitation": r.Gravitation,
	}
}

func (r *Rates) SetParam(name string, value float64) error {
	switch name {
	case "density":
		r.Density = value
	case "energy":
		r.Energy = value
	case "expansion":
		r.Expansion = value
	case "gravitation":
		r.Gravitation = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	return nil
}

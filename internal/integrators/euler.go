package integrators

import "github.com/san-kum/cosmosim/internal/sim"

// Euler is the explicit first-order method. It is exact for one step of a
// linear rate model, which makes it the reference for tabulated runs.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn sim.Dynamics, x sim.State, t float64, dt float64) sim.State {
	dx := dyn.Derivative(x, t)
	result := make(sim.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}

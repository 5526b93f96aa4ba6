// Package cosmology provides the simulation routine behind the producer.
//
// A [Routine] takes one [result.SimulationResult] and returns the evolved
// one. The default routine, [Evolver], integrates a [Model] over the state
// vector (density, energy, expansion, gravitation) using [sim.Simulator]:
//
//   - [Rates]: independent exponential rates per quantity
//   - [Matter]: matter-dominated Friedmann expansion in normalised units
//
// # Example
//
//	ev := cosmology.NewEvolver(cosmology.NewRates(), func() sim.Integrator { return integrators.NewEuler() })
//	out, err := ev.Compute(ctx, result.Default())
package cosmology

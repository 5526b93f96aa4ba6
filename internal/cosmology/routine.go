package cosmology

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/san-kum/cosmosim/internal/logging"
	"github.com/san-kum/cosmosim/internal/result"
	"github.com/san-kum/cosmosim/internal/sim"
)

// Routine evolves one simulation state. Calls are synchronous and single-shot.
type Routine interface {
	Compute(ctx context.Context, initial result.SimulationResult) (result.SimulationResult, error)
}

// RoutineFunc adapts a function to Routine.
type RoutineFunc func(ctx context.Context, initial result.SimulationResult) (result.SimulationResult, error)

func (f RoutineFunc) Compute(ctx context.Context, initial result.SimulationResult) (result.SimulationResult, error) {
	return f(ctx, initial)
}

// IntegratorFactory returns a fresh integrator per run.
type IntegratorFactory func() sim.Integrator

// Run is a full trajectory: one record per step, initial state first.
type Run struct {
	Records []result.SimulationResult
	Metrics map[string]float64
}

// Final returns the last record of the trajectory.
func (r *Run) Final() result.SimulationResult {
	return r.Records[len(r.Records)-1]
}

// Evolver is the default Routine. It integrates a Model from the input
// state for a fixed duration.
type Evolver struct {
	model         Model
	newIntegrator IntegratorFactory
	dt            float64
	duration      float64
	metrics       func() []sim.Metric
	observers     []sim.Observer
	logger        *zap.Logger
}

type Option func(*Evolver)

// WithStep sets the integration step and the simulated span per Compute.
func WithStep(dt, duration float64) Option {
	return func(e *Evolver) {
		e.dt = dt
		e.duration = duration
	}
}

// WithMetrics installs a constructor for per-run metrics.
func WithMetrics(fn func() []sim.Metric) Option {
	return func(e *Evolver) { e.metrics = fn }
}

func WithObserver(o sim.Observer) Option {
	return func(e *Evolver) { e.observers = append(e.observers, o) }
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Evolver) {
		if l != nil {
			e.logger = l
		}
	}
}

func NewEvolver(model Model, newIntegrator IntegratorFactory, opts ...Option) *Evolver {
	e := &Evolver{
		model:         model,
		newIntegrator: newIntegrator,
		dt:            0.01,
		duration:      0.01,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Evolver) Model() Model { return e.model }

func (e *Evolver) Config(start float64) sim.Config {
	return sim.Config{Start: start, Dt: e.dt, Duration: e.duration}
}

// Compute returns the state after one run of the configured duration.
func (e *Evolver) Compute(ctx context.Context, initial result.SimulationResult) (result.SimulationResult, error) {
	run, err := e.Trajectory(ctx, initial)
	if err != nil {
		return result.SimulationResult{}, err
	}
	return run.Final(), nil
}

// Trajectory runs the model and returns every intermediate state.
func (e *Evolver) Trajectory(ctx context.Context, initial result.SimulationResult) (*Run, error) {
	if err := Validate(initial); err != nil {
		return nil, err
	}

	logger := e.loggerFor(ctx)
	s := e.simulator(logger, true)
	res, err := s.Run(ctx, ToState(initial), e.Config(initial.Time))
	if err != nil {
		return nil, e.wrap(err)
	}

	run := &Run{
		Records: make([]result.SimulationResult, len(res.States)),
		Metrics: res.Metrics,
	}
	for i, x := range res.States {
		run.Records[i] = FromState(res.Times[i], x)
	}

	logger.Debug("routine computed",
		zap.String("model", e.model.Name()),
		zap.Int("steps", res.StepsTaken),
		zap.Stringer("final", run.Final()))
	return run, nil
}

// Sweep computes every initial state concurrently, at most limit at a time,
// and returns the final records in input order. All points must share the
// same start time.
func (e *Evolver) Sweep(ctx context.Context, inits []result.SimulationResult, limit int) ([]result.SimulationResult, error) {
	if len(inits) == 0 {
		return []result.SimulationResult{}, nil
	}

	states := make([]sim.State, len(inits))
	for i, r := range inits {
		if err := Validate(r); err != nil {
			return nil, fmt.Errorf("sweep point %d: %w", i, err)
		}
		if r.Time != inits[0].Time {
			return nil, fmt.Errorf("%w: sweep point %d starts at t=%v, want %v", ErrInvalidInput, i, r.Time, inits[0].Time)
		}
		states[i] = ToState(r)
	}

	logger := e.loggerFor(ctx)
	factory := func() (*sim.Simulator, error) { return e.simulator(logger, false), nil }
	runs, err := sim.NewEnsemble(factory, limit).Run(ctx, states, e.Config(inits[0].Time))
	if err != nil {
		return nil, e.wrap(err)
	}

	out := make([]result.SimulationResult, len(runs))
	for i, res := range runs {
		x, t := res.Final()
		out[i] = FromState(t, x)
	}
	logger.Debug("sweep computed", zap.String("model", e.model.Name()), zap.Int("points", len(out)))
	return out, nil
}

// simulator builds a fresh simulator. Observers are not goroutine safe and
// are left out of sweeps.
func (e *Evolver) simulator(logger *zap.Logger, observe bool) *sim.Simulator {
	s := sim.New(e.model, e.newIntegrator()).WithLogger(logger)
	if e.metrics != nil {
		for _, m := range e.metrics() {
			s.AddMetric(m)
		}
	}
	if observe {
		for _, o := range e.observers {
			s.AddObserver(o)
		}
	}
	return s
}

// loggerFor prefers the logger set with WithLogger, then the one carried by ctx.
func (e *Evolver) loggerFor(ctx context.Context) *zap.Logger {
	if e.logger != nil {
		return e.logger
	}
	return logging.FromContext(ctx)
}

func (e *Evolver) wrap(err error) error {
	if errors.Is(err, sim.ErrInvalidState) {
		return fmt.Errorf("%w: %s: %w", ErrDiverged, e.model.Name(), err)
	}
	return fmt.Errorf("%s: %w", e.model.Name(), err)
}

// Validate rejects non-finite values and negative density.
func Validate(r result.SimulationResult) error {
	for i, v := range r.Fields() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is %v", ErrInvalidInput, result.FieldNames[i], v)
		}
	}
	if r.Density < 0 {
		return fmt.Errorf("%w: density must be non-negative, got %v", ErrInvalidInput, r.Density)
	}
	return nil
}

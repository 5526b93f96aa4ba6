package sim

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type Simulator struct {
	dyn        Dynamics
	integrator Integrator
	metrics    []Metric
	observers  []Observer
	logger     *zap.Logger
}

func New(dyn Dynamics, integrator Integrator) *Simulator {
	return &Simulator{
		dyn:        dyn,
		integrator: integrator,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
		logger:     zap.NewNop(),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) WithLogger(l *zap.Logger) *Simulator {
	if l != nil {
		s.logger = l
	}
	return s
}

// Run integrates from x0 for cfg.Duration. On ctx cancellation or an
// invalid state the partial result is returned with the error.
func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	if err := s.validate(x0, cfg); err != nil {
		return nil, err
	}

	steps := cfg.Steps()
	result := &Result{
		States:  make([]State, 0, steps+1),
		Times:   make([]float64, 0, steps+1),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0.Clone()
	t := cfg.Start

	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)
	s.observe(x, t)

	s.logger.Debug("simulation started",
		zap.Int("steps", steps),
		zap.Float64("dt", cfg.Dt),
		zap.Float64("start", cfg.Start))

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			s.collect(result)
			return result, ctx.Err()
		default:
		}

		newX := s.integrator.Step(s.dyn, x, t, cfg.Dt)
		nextT := cfg.Start + float64(i+1)*cfg.Dt

		if !newX.IsValid() {
			s.collect(result)
			return result, &StepError{Step: i, Time: t, Err: ErrInvalidState}
		}

		x = newX
		t = nextT
		result.StepsTaken++

		result.States = append(result.States, x.Clone())
		result.Times = append(result.Times, t)
		s.observe(x, t)
	}

	s.collect(result)
	s.logger.Debug("simulation finished", zap.Int("steps_taken", result.StepsTaken), zap.Float64("t", t))
	return result, nil
}

func (s *Simulator) observe(x State, t float64) {
	for _, m := range s.metrics {
		m.Observe(x, t)
	}
	for _, obs := range s.observers {
		obs.OnStep(x, t)
	}
}

func (s *Simulator) collect(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func (s *Simulator) validate(x0 State, cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %f", ErrInvalidConfig, cfg.Duration)
	}
	if cfg.Steps() < 1 {
		return fmt.Errorf("%w: duration %f shorter than one step of %f", ErrInvalidConfig, cfg.Duration, cfg.Dt)
	}
	if len(x0) != s.dyn.StateDim() {
		return fmt.Errorf("%w: got %d values, want %d", ErrDimensionMismatch, len(x0), s.dyn.StateDim())
	}
	if !x0.IsValid() {
		return &StepError{Step: 0, Time: cfg.Start, Err: ErrInvalidState}
	}
	return nil
}

package sim

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidState indicates the integrated state contains NaN or Inf.
	ErrInvalidState = errors.New("sim: invalid state (NaN or Inf detected)")

	// ErrInvalidConfig indicates a non-positive dt or duration.
	ErrInvalidConfig = errors.New("sim: invalid config")

	// ErrDimensionMismatch indicates the initial state does not fit the system.
	ErrDimensionMismatch = errors.New("sim: dimension mismatch between state and system")
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Dynamics is an autonomous or time-dependent ODE system dX/dt = f(X, t).
type Dynamics interface {
	Derivative(x State, t float64) State
	StateDim() int
}

type Integrator interface {
	Step(dyn Dynamics, x State, t float64, dt float64) State
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, t float64)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(x State, t float64)

func (f ObserverFunc) OnStep(x State, t float64) { f(x, t) }

type Config struct {
	Start    float64
	Dt       float64
	Duration float64
}

func DefaultConfig() Config {
	return Config{
		Dt:       0.01,
		Duration: 0.01,
	}
}

// Steps is the number of fixed steps needed to cover Duration.
func (c Config) Steps() int {
	return int(math.Round(c.Duration / c.Dt))
}

type Result struct {
	States     []State
	Times      []float64
	Metrics    map[string]float64
	StepsTaken int
}

// Final returns the last recorded state and its time.
func (r *Result) Final() (State, float64) {
	if r == nil || len(r.States) == 0 {
		return nil, 0
	}
	n := len(r.States) - 1
	return r.States[n], r.Times[n]
}

// StepError records where a run failed.
type StepError struct {
	Step int
	Time float64
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

package metrics

import (
	"math"

	"github.com/san-kum/cosmosim/internal/sim"
)

// Stability is the fraction of observed states whose components all stay
// within bound in absolute value. Peak reports the largest magnitude seen.
type Stability struct {
	bound   float64
	bounded int
	total   int
	peak    float64
}

func NewStability(bound float64) *Stability {
	return &Stability{bound: bound}
}

func (s *Stability) Name() string { return "stability" }

func (s *Stability) Observe(x sim.State, t float64) {
	s.total++
	within := true
	for _, v := range x {
		mag := math.Abs(v)
		s.peak = max(s.peak, mag)
		if mag > s.bound {
			within = false
		}
	}
	if within {
		s.bounded++
	}
}

func (s *Stability) Value() float64 {
	if s.total == 0 {
		return 1.0
	}
	return float64(s.bounded) / float64(s.total)
}

func (s *Stability) Peak() float64 { return s.peak }

func (s *Stability) Reset() {
	*s = Stability{bound: s.bound}
}

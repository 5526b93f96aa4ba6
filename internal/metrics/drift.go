package metrics

import (
	"math"

	"github.com/san-kum/cosmosim/internal/sim"
)

// Drift reports the relative change of one state component between the
// first and the latest observation.
type Drift struct {
	name    string
	index   int
	initial float64
	current float64
	samples int
}

func NewDrift(index int, name string) *Drift {
	return &Drift{
		name:  name + "_drift",
		index: index,
	}
}

func (d *Drift) Name() string { return d.name }

func (d *Drift) Observe(x sim.State, t float64) {
	if d.index >= len(x) {
		return
	}
	if d.samples == 0 {
		d.initial = x[d.index]
	}
	d.current = x[d.index]
	d.samples++
}

func (d *Drift) Value() float64 {
	if d.samples == 0 {
		return 0
	}
	if d.initial == 0 {
		return math.Abs(d.current)
	}
	return (d.current - d.initial) / math.Abs(d.initial)
}

func (d *Drift) Reset() {
	d.initial = 0
	d.current = 0
	d.samples = 0
}

package result

import (
	"strconv"
	"strings"
)

// FieldNames lists the record fields in their fixed serialization order.
var FieldNames = [5]string{"time", "density", "energy", "expansion", "gravitation"}

// SimulationResult is the scalar output of one simulation run.
type SimulationResult struct {
	Time        float64 `json:"time" yaml:"time"`
	Density     float64 `json:"density" yaml:"density"`
	Energy      float64 `json:"energy" yaml:"energy"`
	Expansion   float64 `json:"expansion" yaml:"expansion"`
	Gravitation float64 `json:"gravitation" yaml:"gravitation"`
}

// Default returns the initial state handed to a routine when nothing else is configured.
func Default() SimulationResult {
	return SimulationResult{
		Time:        0.0,
		Density:     1.0,
		Energy:      1.0,
		Expansion:   1.0,
		Gravitation: 1.0,
	}
}

// FromFields is the inverse of Fields.
func FromFields(v [5]float64) SimulationResult {
	return SimulationResult{
		Time:        v[0],
		Density:     v[1],
		Energy:      v[2],
		Expansion:   v[3],
		Gravitation: v[4],
	}
}

func (r SimulationResult) Fields() [5]float64 {
	return [5]float64{r.Time, r.Density, r.Energy, r.Expansion, r.Gravitation}
}

// Field returns a value by its lowercase field name.
func (r SimulationResult) Field(name string) (float64, bool) {
	for i, n := range FieldNames {
		if n == name {
			return r.Fields()[i], true
		}
	}
	return 0, false
}

// WithField returns a copy of r with the named field replaced.
func (r SimulationResult) WithField(name string, v float64) (SimulationResult, bool) {
	fields := r.Fields()
	for i, n := range FieldNames {
		if n == name {
			fields[i] = v
			return FromFields(fields), true
		}
	}
	return r, false
}

// FormatValue renders v as the shortest decimal that round-trips, without
// an exponent.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (r SimulationResult) record() []string {
	fields := r.Fields()
	out := make([]string, len(fields))
	for i, v := range fields {
		out[i] = FormatValue(v)
	}
	return out
}

// CSVLine renders r as "time,density,energy,expansion,gravitation\n".
func (r SimulationResult) CSVLine() string {
	return strings.Join(r.record(), ",") + "\n"
}

func (r SimulationResult) String() string {
	var b strings.Builder
	for i, v := range r.Fields() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(FieldNames[i])
		b.WriteString("=")
		b.WriteString(FormatValue(v))
	}
	return b.String()
}

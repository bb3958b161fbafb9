package sim

import (
	"encoding/json"
	"fmt"
	"math"
)

// OptionalTime is a simulation time that may be absent. It replaces the
// "far future" and "-1" markers used for unscheduled departures and closed
// intervals.
type OptionalTime struct {
	at  float64
	set bool
}

// At returns a present OptionalTime holding t.
func At(t float64) OptionalTime {
	return OptionalTime{at: t, set: true}
}

// NoTime returns an absent OptionalTime.
func NoTime() OptionalTime {
	return OptionalTime{}
}

// Get returns the held time and whether it is present.
func (o OptionalTime) Get() (float64, bool) {
	return o.at, o.set
}

// IsSet reports whether a time is present.
func (o OptionalTime) IsSet() bool {
	return o.set
}

// Before reports whether o is present and strictly earlier than other.
// An absent time is later than every present time.
func (o OptionalTime) Before(other OptionalTime) bool {
	if !o.set {
		return false
	}
	if !other.set {
		return true
	}
	return o.at < other.at
}

func (o OptionalTime) String() string {
	if !o.set {
		return "none"
	}
	return fmt.Sprintf("%g", o.at)
}

// Metric is a derived statistic that is only meaningful when its
// denominator was non-zero. An undefined Metric never carries NaN or Inf.
type Metric struct {
	Value   float64
	Defined bool
}

// Undefined returns a Metric marked as undefined.
func Undefined() Metric {
	return Metric{}
}

// Ratio returns num/den, or an undefined Metric when den is zero or the
// quotient is not finite.
func Ratio(num, den float64) Metric {
	if den == 0 {
		return Undefined()
	}
	v := num / den
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Undefined()
	}
	return Metric{Value: v, Defined: true}
}

// Div divides two metrics; the result is undefined if either side is.
func (m Metric) Div(other Metric) Metric {
	if !m.Defined || !other.Defined {
		return Undefined()
	}
	return Ratio(m.Value, other.Value)
}

func (m Metric) String() string {
	if !m.Defined {
		return "undefined"
	}
	return fmt.Sprintf("%f", m.Value)
}

// MarshalJSON encodes an undefined Metric as null.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Defined {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// MarshalYAML encodes an undefined Metric as null.
func (m Metric) MarshalYAML() (any, error) {
	if !m.Defined {
		return nil, nil
	}
	return m.Value, nil
}

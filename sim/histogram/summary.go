package histogram

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes a ledger with moments and order statistics.
type Summary struct {
	Count  int     `json:"count" yaml:"count"`
	Total  float64 `json:"total" yaml:"total"`
	Mean   float64 `json:"mean" yaml:"mean"`
	StdDev float64 `json:"std_dev" yaml:"std_dev"`
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
	P50    float64 `json:"p50" yaml:"p50"`
	P90    float64 `json:"p90" yaml:"p90"`
	P99    float64 `json:"p99" yaml:"p99"`
}

// Summarize computes a Summary. Safe for an empty ledger (zero value).
// StdDev is the unbiased sample deviation and is 0 for a single sample.
func Summarize(samples []float64) Summary {
	if len(samples) == 0 {
		return Summary{}
	}
	sorted := sortedCopy(samples)
	s := Summary{
		Count: len(samples),
		Total: floats.Sum(samples),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
		P50:   stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P90:   stat.Quantile(0.90, stat.Empirical, sorted, nil),
		P99:   stat.Quantile(0.99, stat.Empirical, sorted, nil),
	}
	if len(samples) > 1 {
		s.Mean, s.StdDev = stat.MeanStdDev(samples, nil)
	} else {
		s.Mean = samples[0]
	}
	return s
}

// Package histogram turns duration ledgers into distribution reports.
// Every function here is pure: it reads a slice of samples and returns new values.
package histogram

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/inference-sim/mmcsim/sim"
)

// Default report thresholds, in simulation time units.
var (
	DefaultCoreThresholds    = []float64{2, 20, 600}
	DefaultPackageThresholds = []float64{10, 100, 1000}
)

// Bucket is the share of ledger time held by samples below Threshold.
// The final bucket of a report has Threshold = +Inf and covers every sample.
type Bucket struct {
	Label     string     `json:"label" yaml:"label"`
	Threshold float64    `json:"-" yaml:"-"`
	Sum       float64    `json:"sum" yaml:"sum"`
	Fraction  sim.Metric `json:"fraction" yaml:"fraction"`
}

// ThresholdFractions sums, for each ascending threshold t, every sample < t,
// and appends an "all" bucket with the sum of every sample. Buckets are not
// exclusive: a sample below the smallest threshold counts toward every
// bucket. Each fraction is bucket sum / denominator; a denominator <= 0
// selects the ledger total. Fractions are undefined when that divisor is 0.
func ThresholdFractions(samples, thresholds []float64, denominator float64) ([]Bucket, error) {
	if err := validateThresholds(thresholds); err != nil {
		return nil, err
	}

	buckets := make([]Bucket, len(thresholds)+1)
	for i, t := range thresholds {
		buckets[i] = Bucket{Label: "< " + strconv.FormatFloat(t, 'g', -1, 64), Threshold: t}
	}
	all := len(thresholds)
	buckets[all] = Bucket{Label: "all", Threshold: math.Inf(1)}

	for _, v := range samples {
		for i, t := range thresholds {
			if v < t {
				buckets[i].Sum += v
			}
		}
		buckets[all].Sum += v
	}

	if denominator <= 0 {
		denominator = buckets[all].Sum
	}
	for i := range buckets {
		buckets[i].Fraction = sim.Ratio(buckets[i].Sum, denominator)
	}
	return buckets, nil
}

func validateThresholds(thresholds []float64) error {
	for i, t := range thresholds {
		if math.IsNaN(t) || math.IsInf(t, 0) || t <= 0 {
			return fmt.Errorf("%w: threshold %d must be a positive finite number, got %v", sim.ErrConfiguration, i, t)
		}
		if i > 0 && t <= thresholds[i-1] {
			return fmt.Errorf("%w: thresholds must be strictly ascending, got %v", sim.ErrConfiguration, thresholds)
		}
	}
	return nil
}

// CDFOptions controls CumulativeDistribution.
type CDFOptions struct {
	// Width of each bucket; 0 means 1 time unit.
	Width float64
	// MaxBuckets caps the table length; 0 means unlimited.
	MaxBuckets int
	// ByCount weights each sample by 1 instead of by its duration.
	ByCount bool
}

// CumulativeDistribution assigns each sample v to bucket floor(v/width)+1 and
// returns, for bucket indices 0..max, the running sum of bucket weight over
// total weight. The table is non-decreasing and ends at ~1.0. An empty ledger
// or one with zero total weight yields an empty table.
func CumulativeDistribution(samples []float64, opts CDFOptions) ([]float64, error) {
	width := opts.Width
	if width == 0 {
		width = 1
	}
	if math.IsNaN(width) || math.IsInf(width, 0) || width < 0 {
		return nil, fmt.Errorf("%w: bucket width must be a positive finite number, got %v", sim.ErrConfiguration, opts.Width)
	}
	if len(samples) == 0 {
		return []float64{}, nil
	}

	// bucket indices are sized as floats first so a huge v/width cannot wrap
	maxPos := 0.0
	for _, v := range samples {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: ledger samples must be finite and non-negative, got %v", sim.ErrConfiguration, v)
		}
		maxPos = max(maxPos, bucketPosition(v, width))
	}
	if needed := maxPos + 1; needed >= float64(math.MaxInt) || (opts.MaxBuckets > 0 && needed > float64(opts.MaxBuckets)) {
		return nil, fmt.Errorf("%w: cumulative table needs %g buckets, limit is %d", sim.ErrAllocation, needed, opts.MaxBuckets)
	}
	maxIdx := int(maxPos)

	weights := make([]float64, maxIdx+1)
	total := 0.0
	for _, v := range samples {
		w := v
		if opts.ByCount {
			w = 1
		}
		weights[bucketIndex(v, width)] += w
		total += w
	}
	if total == 0 {
		return []float64{}, nil
	}

	cdf := make([]float64, maxIdx+1)
	running := 0.0
	for i, w := range weights {
		running += w / total
		cdf[i] = running
	}
	return cdf, nil
}

// bucketPosition is floor(v/width)+1, kept as a float64 so callers can range
// check it before converting.
func bucketPosition(v, width float64) float64 {
	return math.Floor(v/width) + 1
}

func bucketIndex(v, width float64) int {
	return int(bucketPosition(v, width))
}

// Point is one non-trivial step of a cumulative table.
type Point struct {
	Bucket     int     `json:"bucket" yaml:"bucket"`
	Cumulative float64 `json:"cumulative" yaml:"cumulative"`
}

// Steps compresses a cumulative table to the indices where it increases.
func Steps(cdf []float64) []Point {
	points := make([]Point, 0)
	prev := 0.0
	for i, c := range cdf {
		if c > prev {
			points = append(points, Point{Bucket: i, Cumulative: c})
			prev = c
		}
	}
	return points
}

// sortedCopy returns the samples in ascending order without touching the input.
func sortedCopy(samples []float64) []float64 {
	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)
	return sorted
}

package sim

import "slices"

// Ledger is an ordered record of duration samples collected during a run.
type Ledger struct {
	name    string
	samples []float64
	total   float64
	limit   int // 0 = unlimited
}

// NewLedger creates an empty ledger. A positive limit caps the number of samples.
func NewLedger(name string, limit int) *Ledger {
	return &Ledger{name: name, limit: limit}
}

// record appends a sample. It fails with ErrAllocation instead of dropping
// the sample once the ledger is full.
func (l *Ledger) record(d float64) error {
	if l.limit > 0 && len(l.samples) >= l.limit {
		return allocationErrorf("%s ledger reached its limit of %d samples", l.name, l.limit)
	}
	l.samples = append(l.samples, d)
	l.total += d
	return nil
}

// Name returns the ledger label.
func (l *Ledger) Name() string {
	return l.name
}

// Len returns the number of samples.
func (l *Ledger) Len() int {
	return len(l.samples)
}

// Total returns the sum of every sample.
func (l *Ledger) Total() float64 {
	return l.total
}

// Samples returns a copy of the recorded samples in recording order.
func (l *Ledger) Samples() []float64 {
	return slices.Clone(l.samples)
}

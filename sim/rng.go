package sim

import (
	"hash/fnv"
	"math"
	"math/rand"
)

// SimulationKey uniquely identifies a reproducible simulation run.
// Two runs with the same SimulationKey and identical configuration
// produce bit-for-bit identical results.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

const (
	// SubsystemArrival drives inter-arrival times. It uses the master seed directly.
	SubsystemArrival = "arrival"

	// SubsystemService drives service durations.
	SubsystemService = "service"

	// SubsystemAssignment drives randomized server selection.
	SubsystemAssignment = "assignment"
)

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
//
// Derivation formula:
//   - For SubsystemArrival: masterSeed
//   - For all other subsystems: masterSeed XOR fnv1a64(subsystemName)
//
// Isolation means a policy that draws more or fewer random numbers does not
// shift the arrival or service sequences.
//
// Thread-safety: NOT thread-safe. Must be called from a single goroutine.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same name always returns the same cached *rand.Rand. Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}

	derivedSeed := int64(p.key)
	if name != SubsystemArrival {
		derivedSeed ^= fnv1a64(name)
	}

	rng := rand.New(rand.NewSource(derivedSeed))
	p.subsystems[name] = rng
	return rng
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}

// DurationSampler produces strictly positive random durations.
type DurationSampler interface {
	Sample() float64
}

// ExponentialSampler draws exponentially distributed durations by inverse
// transform: -mean * ln(u) with u uniform on the open interval (0,1).
type ExponentialSampler struct {
	mean float64
	rng  *rand.Rand
}

// NewExponentialSampler binds a mean to a uniform stream. A mean that is not
// a positive finite number is a configuration error.
func NewExponentialSampler(mean float64, rng *rand.Rand) (*ExponentialSampler, error) {
	if !positiveFinite(mean) {
		return nil, configErrorf("exponential mean must be a positive finite number, got %v", mean)
	}
	if rng == nil {
		panic("NewExponentialSampler: rng must not be nil")
	}
	return &ExponentialSampler{mean: mean, rng: rng}, nil
}

// Mean returns the configured mean.
func (s *ExponentialSampler) Mean() float64 {
	return s.mean
}

// Sample returns the next duration.
func (s *ExponentialSampler) Sample() float64 {
	return -s.mean * math.Log(openUnit(s.rng))
}

// openUnit draws from (0,1). rand.Float64 covers [0,1), so zero is redrawn.
func openUnit(rng *rand.Rand) float64 {
	for {
		if u := rng.Float64(); u > 0 {
			return u
		}
	}
}

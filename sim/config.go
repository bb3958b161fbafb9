package sim

import (
	"math"

	"github.com/inference-sim/mmcsim/sim/trace"
)

// Defaults used by DefaultConfig and the CLI.
const (
	DefaultArrivalMean = 90.0  // mean time between arrivals
	DefaultServiceMean = 60.0  // mean service time
	DefaultHorizon     = 1.0e7 // total simulated time
	DefaultServers     = 2     // servers in the system
	DefaultSeed        = 42
)

// Config describes one simulation scenario. All times share one unit (seconds by convention).
type Config struct {
	ArrivalMean float64          // mean inter-arrival time (> 0)
	ServiceMean float64          // mean service time (> 0)
	Horizon     float64          // simulated duration (>= 0; 0 is an empty run)
	Servers     int              // number of identical servers c (>= 1)
	Seed        int64            // master seed for every random stream
	Policy      string           // server assignment policy, "" means "random"
	TraceLevel  trace.TraceLevel // event tracing verbosity, "" means none
	LedgerLimit int              // max samples per idle ledger, 0 = unlimited
}

// DefaultConfig returns the scenario run when no flags are given.
func DefaultConfig() Config {
	return Config{
		ArrivalMean: DefaultArrivalMean,
		ServiceMean: DefaultServiceMean,
		Horizon:     DefaultHorizon,
		Servers:     DefaultServers,
		Seed:        DefaultSeed,
		Policy:      PolicyRandom,
		TraceLevel:  trace.TraceLevelNone,
	}
}

// Validate rejects scenarios that cannot produce meaningful output.
// Every returned error wraps ErrConfiguration.
func (c Config) Validate() error {
	if c.Servers < 1 {
		return configErrorf("server count must be at least 1, got %d", c.Servers)
	}
	if !positiveFinite(c.ArrivalMean) {
		return configErrorf("arrival mean must be a positive finite number, got %v", c.ArrivalMean)
	}
	if !positiveFinite(c.ServiceMean) {
		return configErrorf("service mean must be a positive finite number, got %v", c.ServiceMean)
	}
	if math.IsNaN(c.Horizon) || math.IsInf(c.Horizon, 0) || c.Horizon < 0 {
		return configErrorf("horizon must be a non-negative finite number, got %v", c.Horizon)
	}
	if c.Policy != "" && !IsValidAssignmentPolicy(c.Policy) {
		return configErrorf("unknown assignment policy %q (available: %v)", c.Policy, AvailableAssignmentPolicies())
	}
	if !trace.IsValidTraceLevel(string(c.TraceLevel)) {
		return configErrorf("unknown trace level %q", c.TraceLevel)
	}
	if c.LedgerLimit < 0 {
		return configErrorf("ledger limit must be >= 0, got %d", c.LedgerLimit)
	}
	return nil
}

// OfferedLoad returns rho = lambda / (c * mu) for the scenario.
func (c Config) OfferedLoad() float64 {
	return c.ServiceMean / (c.ArrivalMean * float64(c.Servers))
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

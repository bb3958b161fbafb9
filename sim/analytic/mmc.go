// Package analytic computes closed-form steady-state values for the queueing
// models the simulator runs, so a simulated scenario can be checked against theory.
package analytic

import (
	"math"

	"github.com/inference-sim/mmcsim/sim"
)

// Model names the queueing discipline the formulas assume.
type Model string

const (
	// SharedQueue is the textbook M/M/c queue: one FIFO line feeding c servers.
	SharedQueue Model = "shared-queue"
	// RandomSplit is c independent M/M/1 queues, each fed λ/c by uniform random assignment.
	RandomSplit Model = "random-split"
)

// Values holds the steady-state predictions. Every metric is undefined when
// the system is unstable (rho >= 1).
type Values struct {
	Model       Model      `json:"model" yaml:"model"`
	Rho         float64    `json:"rho" yaml:"rho"`
	Stable      bool       `json:"stable" yaml:"stable"`
	Throughput  sim.Metric `json:"throughput" yaml:"throughput"`
	AllBusy     sim.Metric `json:"all_busy" yaml:"all_busy"`           // long-run fraction of time every server is busy
	Utilization sim.Metric `json:"utilization" yaml:"utilization"`     // per-server busy fraction
	AvgInSystem sim.Metric `json:"avg_in_system" yaml:"avg_in_system"` // L
	AvgInQueue  sim.Metric `json:"avg_in_queue" yaml:"avg_in_queue"`   // Lq
	AvgSojourn  sim.Metric `json:"avg_sojourn" yaml:"avg_sojourn"`     // W
	AvgWait     sim.Metric `json:"avg_wait" yaml:"avg_wait"`           // Wq
}

// ModelFor returns the model matching an assignment policy: uniform random
// assignment splits the Poisson stream into independent M/M/1 queues, every
// other policy is compared against the shared-queue M/M/c.
func ModelFor(policy string) Model {
	if policy == "" || policy == sim.PolicyRandom {
		return RandomSplit
	}
	return SharedQueue
}

// Solve evaluates model for the given means and server count.
func Solve(model Model, arrivalMean, serviceMean float64, c int) Values {
	lambda := 1 / arrivalMean
	mu := 1 / serviceMean
	rho := lambda / (float64(c) * mu)
	v := Values{Model: model, Rho: rho, Stable: rho < 1 && c >= 1}
	if !v.Stable {
		return v
	}

	v.Throughput = defined(lambda)
	v.Utilization = defined(rho)
	switch model {
	case RandomSplit:
		// each server: M/M/1 with arrival rate lambda/c
		perServerL := rho / (1 - rho)
		v.AllBusy = defined(math.Pow(rho, float64(c)))
		v.AvgInSystem = defined(float64(c) * perServerL)
		v.AvgInQueue = defined(float64(c) * rho * rho / (1 - rho))
		v.AvgSojourn = defined(1 / (mu - lambda/float64(c)))
		v.AvgWait = defined(rho / (mu - lambda/float64(c)))
	default:
		pWait := ErlangC(c, lambda/mu)
		lq := pWait * rho / (1 - rho)
		wq := lq / lambda
		v.AllBusy = defined(pWait)
		v.AvgInQueue = defined(lq)
		v.AvgWait = defined(wq)
		v.AvgSojourn = defined(wq + 1/mu)
		v.AvgInSystem = defined(lambda * (wq + 1/mu))
	}
	return v
}

// ErlangB returns the blocking probability of an M/M/c/c system with offered
// load a (in Erlangs), using the stable recursion B(k) = aB(k-1) / (k + aB(k-1)).
func ErlangB(c int, a float64) float64 {
	b := 1.0
	for k := 1; k <= c; k++ {
		b = a * b / (float64(k) + a*b)
	}
	return b
}

// ErlangC returns the probability that an arrival to an M/M/c queue with
// offered load a waits. Requires a < c.
func ErlangC(c int, a float64) float64 {
	rho := a / float64(c)
	b := ErlangB(c, a)
	return b / (1 - rho*(1-b))
}

func defined(v float64) sim.Metric {
	return sim.Metric{Value: v, Defined: true}
}

// sim/simulator.go
package sim

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/mmcsim/sim/trace"
)

// Simulator is the core object that holds simulation time, system state, and the event loop.
//
// The next event is found by comparing the precomputed next arrival with the
// earliest scheduled departure; there is no event heap because at most c+1
// events are ever pending.
type Simulator struct {
	Clock   float64
	Horizon float64
	Config  Config
	// Pool holds every server's busy state and FIFO queue.
	Pool *ServerPool
	// Metrics is mutated only by the event transitions below.
	Metrics *Metrics
	// Policy picks the server for each arrival. It may be replaced before Run.
	Policy AssignmentPolicy
	// Trace is nil unless Config.TraceLevel enables tracing.
	Trace *trace.SimulationTrace

	rng      *PartitionedRNG
	arrivals DurationSampler
	service  DurationSampler

	nextArrival float64
	// cached result of Pool.EarliestDeparture, refreshed after every transition
	departIndex int
	departAt    float64
	departOK    bool

	ran bool
}

// NewSimulator validates cfg and builds a simulator with every server idle
// and every accumulator at zero.
func NewSimulator(cfg Config) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := NewPartitionedRNG(NewSimulationKey(cfg.Seed))
	arrivals, err := NewExponentialSampler(cfg.ArrivalMean, rng.ForSubsystem(SubsystemArrival))
	if err != nil {
		return nil, fmt.Errorf("arrival sampler: %w", err)
	}
	service, err := NewExponentialSampler(cfg.ServiceMean, rng.ForSubsystem(SubsystemService))
	if err != nil {
		return nil, fmt.Errorf("service sampler: %w", err)
	}

	s := &Simulator{
		Clock:    0,
		Horizon:  cfg.Horizon,
		Config:   cfg,
		Pool:     NewServerPool(cfg.Servers, 0),
		Metrics:  NewMetrics(cfg.Servers, 0, cfg.LedgerLimit),
		Policy:   NewAssignmentPolicy(cfg.Policy, rng.ForSubsystem(SubsystemAssignment)),
		rng:      rng,
		arrivals: arrivals,
		service:  service,
		// the first customer arrives at time zero
		nextArrival: 0,
		departIndex: -1,
	}
	if cfg.TraceLevel.Enabled() {
		s.Trace = trace.NewSimulationTrace(cfg.TraceLevel)
	}
	return s, nil
}

// Run processes events until the clock reaches the horizon and returns the
// results snapshot. The event that crosses the horizon is still processed;
// jobs queued or in service afterwards are discarded without draining.
// A Simulator runs at most once.
func (sim *Simulator) Run() (*Results, error) {
	if sim.ran {
		return nil, errors.New("simulator has already run")
	}
	sim.ran = true

	if rho := sim.Config.OfferedLoad(); rho >= 1 {
		logrus.Warnf("offered load rho=%.4f >= 1: the queue is unstable and grows without bound", rho)
	}
	logrus.Infof("Starting M/M/%d simulation: arrival mean=%g, service mean=%g, horizon=%g, seed=%d, policy=%T",
		sim.Config.Servers, sim.Config.ArrivalMean, sim.Config.ServiceMean, sim.Horizon, sim.Config.Seed, sim.Policy)

	for sim.Clock < sim.Horizon {
		ev := sim.nextEvent()
		sim.Clock = ev.Timestamp()
		if logrus.IsLevelEnabled(logrus.TraceLevel) {
			logrus.Tracef("[t=%.6f] Executing %T (n=%d)", sim.Clock, ev, sim.Metrics.InSystem())
		}
		if err := ev.Execute(sim); err != nil {
			return nil, fmt.Errorf("simulation failed at t=%g: %w", sim.Clock, err)
		}
	}

	results := sim.Metrics.Snapshot(sim.Clock, sim.Pool)
	results.Config = sim.Config
	results.Trace = sim.Trace
	logrus.Infof("[t=%.6f] Simulation ended: %d arrivals, %d completed, %d left in system",
		sim.Clock, results.Arrivals, results.Completed, results.InSystem)
	logrus.Debugf("ledgers: %s=%d samples, %s=%d samples",
		results.CoreIdle.Name(), results.CoreIdle.Len(), results.PackageIdle.Name(), results.PackageIdle.Len())
	return results, nil
}

// nextEvent returns the arrival if it is strictly earlier than every
// scheduled departure; ties go to the departure.
func (sim *Simulator) nextEvent() Event {
	if !sim.departOK || sim.nextArrival < sim.departAt {
		return &ArrivalEvent{time: sim.nextArrival}
	}
	return &DepartureEvent{time: sim.departAt, Server: sim.departIndex}
}

func (sim *Simulator) arrive(now float64) error {
	sim.Metrics.Arrive(now)

	iat := sim.arrivals.Sample()
	sim.Metrics.InterarrivalDrawn(iat)
	sim.nextArrival = now + iat

	i := sim.Policy.Assign(sim.Pool)
	if i < 0 || i >= sim.Pool.Len() {
		panic(fmt.Sprintf("assignment policy returned server %d, want [0,%d)", i, sim.Pool.Len()))
	}
	sim.Metrics.Assigned(i)

	queuedBefore := sim.Pool.QueueLen(i)
	if sim.Pool.IsIdle(i) {
		if err := sim.startService(i, now, now); err != nil {
			return err
		}
	} else {
		sim.Pool.Enqueue(i, Job{EnqueuedAt: now})
	}

	if sim.Metrics.InSystem() >= sim.Pool.Len() && sim.Pool.AllBusy() {
		sim.Metrics.OpenSaturation(now)
	}
	if !sim.Pool.AllIdle() {
		if err := sim.Metrics.ClosePackageIdle(now); err != nil {
			return err
		}
	}

	sim.recordEvent(trace.KindArrival, now, i, queuedBefore)
	sim.refreshDeparture()
	return nil
}

func (sim *Simulator) depart(now float64, i int) error {
	queuedBefore := sim.Pool.QueueLen(i)
	sim.Metrics.Depart(now, i)

	if job, ok := sim.Pool.FinishService(i, now); ok {
		if err := sim.startService(i, now, job.EnqueuedAt); err != nil {
			return err
		}
	} else if sim.Pool.AllIdle() {
		sim.Metrics.OpenPackageIdle(now)
	}

	if sim.Metrics.Saturated() && !sim.Pool.AllBusy() {
		sim.Metrics.CloseSaturation(now)
	}

	sim.recordEvent(trace.KindDeparture, now, i, queuedBefore)
	sim.refreshDeparture()
	return nil
}

// startService draws a service duration and puts a job on server i.
func (sim *Simulator) startService(i int, now, enqueuedAt float64) error {
	d := sim.service.Sample()
	if idle, closed := sim.Pool.StartService(i, now, d); closed {
		if err := sim.Metrics.CoreIdleClosed(i, idle); err != nil {
			return err
		}
	}
	sim.Metrics.ServiceStarted(i, d)
	if sim.Trace != nil {
		sim.Trace.RecordService(trace.ServiceRecord{Clock: now, Server: i, EnqueuedAt: enqueuedAt, Duration: d})
	}
	return nil
}

func (sim *Simulator) refreshDeparture() {
	sim.departIndex, sim.departAt, sim.departOK = sim.Pool.EarliestDeparture()
}

func (sim *Simulator) recordEvent(kind trace.EventKind, now float64, i, queuedBefore int) {
	if sim.Trace == nil {
		return
	}
	sim.Trace.RecordEvent(trace.EventRecord{
		Kind:         kind,
		Clock:        now,
		Server:       i,
		InSystem:     sim.Metrics.InSystem(),
		Area:         sim.Metrics.Area(),
		QueuedBefore: queuedBefore,
		QueuedAfter:  sim.Pool.QueueLen(i),
		ServerIdle:   sim.Pool.IsIdle(i),
	})
}

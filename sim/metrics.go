// Tracks simulation-wide statistics: the area under the population curve,
// busy/idle totals and the idle-duration ledgers.

package sim

import (
	"github.com/inference-sim/mmcsim/sim/trace"
)

// Ledger names.
const (
	CoreIdleLedger    = "core-idle"
	PackageIdleLedger = "package-idle"
)

// ServerStats holds per-server counters. BusyTime and IdleTime are settled
// at the end of the run so that BusyTime + IdleTime equals the end time.
type ServerStats struct {
	Assigned  int64   `json:"assigned" yaml:"assigned"`
	Completed int64   `json:"completed" yaml:"completed"`
	BusyTime  float64 `json:"busy_time" yaml:"busy_time"`
	IdleTime  float64 `json:"idle_time" yaml:"idle_time"`
}

// Metrics accumulates statistics for one run. It is owned by the Simulator
// and changes only through its own methods, one call per state transition.
type Metrics struct {
	inSystem  int
	arrivals  int64
	completed int64
	lastEvent float64
	area      float64

	busyTimeFullySaturated float64
	busyTimeAll            float64 // service time credited when each service starts
	idleTimeAll            float64 // sum of closed per-server idle intervals

	saturatedSince   OptionalTime
	packageIdleSince OptionalTime

	coreIdle    *Ledger
	packageIdle *Ledger
	servers     []ServerStats

	interarrivalSum   float64
	interarrivalCount int64
	serviceSum        float64
	serviceCount      int64
}

// NewMetrics creates zeroed accumulators for c servers. The package is
// considered idle from start.
func NewMetrics(c int, start float64, ledgerLimit int) *Metrics {
	return &Metrics{
		lastEvent:        start,
		packageIdleSince: At(start),
		coreIdle:         NewLedger(CoreIdleLedger, ledgerLimit),
		packageIdle:      NewLedger(PackageIdleLedger, ledgerLimit),
		servers:          make([]ServerStats, c),
	}
}

// InSystem returns the current population n.
func (m *Metrics) InSystem() int {
	return m.inSystem
}

// Area returns the area under the population curve so far.
func (m *Metrics) Area() float64 {
	return m.area
}

// advance integrates n over (lastEvent, now].
func (m *Metrics) advance(now float64) {
	m.area += float64(m.inSystem) * (now - m.lastEvent)
	m.lastEvent = now
}

// Arrive records a customer entering the system at now.
func (m *Metrics) Arrive(now float64) {
	m.advance(now)
	m.inSystem++
	m.arrivals++
}

// Assigned records that server i received the latest arrival.
func (m *Metrics) Assigned(i int) {
	m.servers[i].Assigned++
}

// Depart records server i completing a customer at now.
func (m *Metrics) Depart(now float64, i int) {
	m.advance(now)
	if m.inSystem == 0 {
		panic("Metrics.Depart: departure with an empty system")
	}
	m.inSystem--
	m.completed++
	m.servers[i].Completed++
}

// InterarrivalDrawn records a sampled inter-arrival duration.
func (m *Metrics) InterarrivalDrawn(d float64) {
	m.interarrivalSum += d
	m.interarrivalCount++
}

// ServiceStarted credits a full service duration to server i.
func (m *Metrics) ServiceStarted(i int, d float64) {
	m.busyTimeAll += d
	m.servers[i].BusyTime += d
	m.serviceSum += d
	m.serviceCount++
}

// CoreIdleClosed records a completed idle interval of server i.
func (m *Metrics) CoreIdleClosed(i int, d float64) error {
	if err := m.coreIdle.record(d); err != nil {
		return err
	}
	m.idleTimeAll += d
	m.servers[i].IdleTime += d
	return nil
}

// OpenSaturation marks the start of a window with every server busy.
// It reports false, leaving the window untouched, if one is already open.
func (m *Metrics) OpenSaturation(now float64) bool {
	if m.saturatedSince.IsSet() {
		return false
	}
	m.saturatedSince = At(now)
	return true
}

// CloseSaturation ends the open saturated window, if any, at now.
func (m *Metrics) CloseSaturation(now float64) {
	if since, ok := m.saturatedSince.Get(); ok {
		m.busyTimeFullySaturated += now - since
		m.saturatedSince = NoTime()
	}
}

// Saturated reports whether a saturated window is open.
func (m *Metrics) Saturated() bool {
	return m.saturatedSince.IsSet()
}

// OpenPackageIdle marks the start of a period with every server idle.
func (m *Metrics) OpenPackageIdle(now float64) {
	if !m.packageIdleSince.IsSet() {
		m.packageIdleSince = At(now)
	}
}

// ClosePackageIdle ends the open package-idle period, if any, and records
// its duration.
func (m *Metrics) ClosePackageIdle(now float64) error {
	since, ok := m.packageIdleSince.Get()
	if !ok {
		return nil
	}
	m.packageIdleSince = NoTime()
	return m.packageIdle.record(now - since)
}

// Results is the immutable outcome of one run.
type Results struct {
	Config    Config  `json:"-" yaml:"-"`
	EndTime   float64 `json:"end_time" yaml:"end_time"`
	Arrivals  int64   `json:"arrivals" yaml:"arrivals"`
	Completed int64   `json:"completed" yaml:"completed"`
	InSystem  int     `json:"in_system_at_end" yaml:"in_system_at_end"`

	AreaUnderN             float64 `json:"area_under_n" yaml:"area_under_n"`
	BusyTimeFullySaturated float64 `json:"busy_time_fully_saturated" yaml:"busy_time_fully_saturated"`
	BusyTimeAllServers     float64 `json:"busy_time_all_servers" yaml:"busy_time_all_servers"`
	IdleTimeAllServers     float64 `json:"idle_time_all_servers" yaml:"idle_time_all_servers"`

	Throughput     Metric `json:"throughput" yaml:"throughput"`
	Utilization    Metric `json:"utilization" yaml:"utilization"`
	AvgInSystem    Metric `json:"avg_in_system" yaml:"avg_in_system"`
	AvgSojourn     Metric `json:"avg_sojourn" yaml:"avg_sojourn"`
	AltUtilization Metric `json:"alt_utilization" yaml:"alt_utilization"`

	MeanInterarrival Metric `json:"mean_interarrival" yaml:"mean_interarrival"`
	MeanService      Metric `json:"mean_service" yaml:"mean_service"`

	Servers []ServerStats `json:"servers" yaml:"servers"`

	CoreIdle    *Ledger                `json:"-" yaml:"-"`
	PackageIdle *Ledger                `json:"-" yaml:"-"`
	Trace       *trace.SimulationTrace `json:"-" yaml:"-"`
}

// Snapshot settles the accumulators at end and derives the final metrics.
// An open saturated window is credited up to end; per-server timelines are
// truncated to end. Ledgers keep only completed intervals. The collector
// itself is not modified.
func (m *Metrics) Snapshot(end float64, pool *ServerPool) *Results {
	saturated := m.busyTimeFullySaturated
	if since, ok := m.saturatedSince.Get(); ok {
		saturated += end - since
	}

	servers := make([]ServerStats, len(m.servers))
	copy(servers, m.servers)
	for i := range servers {
		s := pool.Server(i)
		if dep, busy := s.Departure().Get(); busy && dep > end {
			servers[i].BusyTime -= dep - end
		}
		if since, idle := s.IdleSince().Get(); idle {
			servers[i].IdleTime += end - since
		}
	}

	r := &Results{
		EndTime:                end,
		Arrivals:               m.arrivals,
		Completed:              m.completed,
		InSystem:               m.inSystem,
		AreaUnderN:             m.area,
		BusyTimeFullySaturated: saturated,
		BusyTimeAllServers:     m.busyTimeAll,
		IdleTimeAllServers:     m.idleTimeAll,
		Servers:                servers,
		CoreIdle:               m.coreIdle,
		PackageIdle:            m.packageIdle,
		MeanInterarrival:       Ratio(m.interarrivalSum, float64(m.interarrivalCount)),
		MeanService:            Ratio(m.serviceSum, float64(m.serviceCount)),
	}
	r.Throughput = Ratio(float64(m.completed), end)
	r.Utilization = Ratio(saturated, end)
	r.AvgInSystem = Ratio(m.area, end)
	r.AvgSojourn = r.AvgInSystem.Div(r.Throughput)
	r.AltUtilization = Ratio(m.busyTimeAll, m.busyTimeAll+m.idleTimeAll)
	return r
}

package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Area_IntegratesPopulation(t *testing.T) {
	// GIVEN arrivals at t=0 and t=2 and a departure at t=5
	m := NewMetrics(1, 0, 0)
	m.Arrive(0)
	m.Assigned(0)
	m.Arrive(2)
	m.Assigned(0)
	m.Depart(5, 0)

	// THEN area = 1*2 + 2*3 = 8 and one customer remains
	assert.Equal(t, 8.0, m.Area())
	assert.Equal(t, 1, m.InSystem())
}

func TestMetrics_Depart_EmptySystem_Panics(t *testing.T) {
	m := NewMetrics(1, 0, 0)
	assert.Panics(t, func() { m.Depart(1, 0) })
}

func TestMetrics_OpenSaturation_IsGuarded(t *testing.T) {
	// GIVEN a saturated window opened at t=10
	m := NewMetrics(2, 0, 0)
	require.True(t, m.OpenSaturation(10))

	// WHEN a later arrival tries to reopen it at t=15
	reopened := m.OpenSaturation(15)

	// THEN the original start is kept and closing at t=20 credits 10
	assert.False(t, reopened)
	m.CloseSaturation(20)
	assert.False(t, m.Saturated())
	r := m.Snapshot(20, NewServerPool(2, 0))
	assert.Equal(t, 10.0, r.BusyTimeFullySaturated)
}

func TestMetrics_CloseSaturation_WithoutOpenWindow_IsNoop(t *testing.T) {
	m := NewMetrics(1, 0, 0)
	m.CloseSaturation(5)
	assert.Equal(t, 0.0, m.Snapshot(5, NewServerPool(1, 0)).BusyTimeFullySaturated)
}

func TestMetrics_PackageIdle_OpenAtStart(t *testing.T) {
	// GIVEN a fresh collector (package idle since t=0)
	m := NewMetrics(1, 0, 0)

	// WHEN the package becomes busy at t=3, idle at t=7, busy at t=8
	require.NoError(t, m.ClosePackageIdle(3))
	m.OpenPackageIdle(7)
	m.OpenPackageIdle(7.5) // already open: ignored
	require.NoError(t, m.ClosePackageIdle(8))
	require.NoError(t, m.ClosePackageIdle(9)) // already closed: ignored

	// THEN the package ledger holds [3, 1]
	assert.Equal(t, []float64{3, 1}, m.packageIdle.Samples())
}

func TestMetrics_Snapshot_EmptyRun_AllDerivedUndefined(t *testing.T) {
	r := NewMetrics(2, 0, 0).Snapshot(0, NewServerPool(2, 0))

	for name, metric := range map[string]Metric{
		"throughput":      r.Throughput,
		"utilization":     r.Utilization,
		"avg in system":   r.AvgInSystem,
		"avg sojourn":     r.AvgSojourn,
		"alt utilization": r.AltUtilization,
		"mean service":    r.MeanService,
	} {
		assert.False(t, metric.Defined, name)
	}
}

func TestMetrics_Snapshot_NoCompletions_SojournUndefined(t *testing.T) {
	// GIVEN one customer that never leaves
	m := NewMetrics(1, 0, 0)
	m.Arrive(0)
	m.Assigned(0)

	r := m.Snapshot(10, NewServerPool(1, 0))

	assert.True(t, r.AvgInSystem.Defined)
	assert.Equal(t, 0.0, r.AvgInSystem.Value)
	assert.True(t, r.Throughput.Defined)
	assert.Equal(t, 0.0, r.Throughput.Value)
	assert.False(t, r.AvgSojourn.Defined, "W = L/X is undefined with zero throughput")
}

func TestMetrics_Snapshot_SettlesServerTimelines(t *testing.T) {
	// GIVEN server 0 idle [0,2), busy from 2 for 10 units; server 1 idle throughout
	pool := NewServerPool(2, 0)
	m := NewMetrics(2, 0, 0)
	idle, _ := pool.StartService(0, 2, 10)
	require.NoError(t, m.CoreIdleClosed(0, idle))
	m.ServiceStarted(0, 10)

	// WHEN the run ends at t=5
	r := m.Snapshot(5, pool)

	// THEN each server's busy + idle equals the end time
	assert.Equal(t, ServerStats{BusyTime: 3, IdleTime: 2}, r.Servers[0])
	assert.Equal(t, ServerStats{BusyTime: 0, IdleTime: 5}, r.Servers[1])
	// AND the raw all-servers accumulators keep their original meaning
	assert.Equal(t, 10.0, r.BusyTimeAllServers)
	assert.Equal(t, 2.0, r.IdleTimeAllServers)
}

func TestMetrics_Snapshot_CreditsOpenSaturatedWindow(t *testing.T) {
	m := NewMetrics(1, 0, 0)
	m.OpenSaturation(4)
	r := m.Snapshot(10, NewServerPool(1, 0))
	assert.Equal(t, 6.0, r.BusyTimeFullySaturated)
	assert.InDelta(t, 0.6, r.Utilization.Value, 1e-12)
	assert.True(t, m.Saturated(), "Snapshot must not mutate the collector")
}

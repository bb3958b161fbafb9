package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerPool_New_AllIdleWithOpenIdleIntervals(t *testing.T) {
	p := NewServerPool(3, 0)

	assert.Equal(t, 3, p.Len())
	assert.True(t, p.AllIdle())
	assert.False(t, p.AllBusy())
	for i := 0; i < 3; i++ {
		assert.True(t, p.IsIdle(i))
		since, ok := p.Server(i).IdleSince().Get()
		assert.True(t, ok)
		assert.Equal(t, 0.0, since)
	}
	_, _, ok := p.EarliestDeparture()
	assert.False(t, ok, "no departure is scheduled on an idle pool")
}

func TestServerPool_NewWithoutServers_Panics(t *testing.T) {
	assert.Panics(t, func() { NewServerPool(0, 0) })
}

func TestServerPool_StartService_ClosesIdleInterval(t *testing.T) {
	// GIVEN a server idle since t=0
	p := NewServerPool(1, 0)

	// WHEN service starts at t=5 for 3 time units
	idle, closed := p.StartService(0, 5, 3)

	// THEN the idle sample is 5 and the departure is scheduled at 8
	assert.True(t, closed)
	assert.Equal(t, 5.0, idle)
	assert.False(t, p.IsIdle(0))
	assert.True(t, p.AllBusy())
	dep, ok := p.Server(0).Departure().Get()
	assert.True(t, ok)
	assert.Equal(t, 8.0, dep)
	assert.False(t, p.Server(0).IdleSince().IsSet())
}

func TestServerPool_StartService_OnBusyServer_Panics(t *testing.T) {
	p := NewServerPool(1, 0)
	p.StartService(0, 0, 1)
	assert.Panics(t, func() { p.StartService(0, 0.5, 1) })
}

func TestServerPool_Enqueue_OnIdleServer_Panics(t *testing.T) {
	p := NewServerPool(2, 0)
	assert.Panics(t, func() { p.Enqueue(1, Job{EnqueuedAt: 1}) })
}

func TestServerPool_FinishService_ReturnsOldestQueuedJob(t *testing.T) {
	// GIVEN a busy server with jobs queued at t=1 and t=2
	p := NewServerPool(1, 0)
	p.StartService(0, 0, 10)
	p.Enqueue(0, Job{EnqueuedAt: 1})
	p.Enqueue(0, Job{EnqueuedAt: 2})

	// WHEN the job in service finishes
	j, ok := p.FinishService(0, 10)

	// THEN the t=1 job is handed back and the server stays available for it
	require.True(t, ok)
	assert.Equal(t, 1.0, j.EnqueuedAt)
	assert.True(t, p.IsIdle(0), "the caller restarts service explicitly")
	assert.False(t, p.Server(0).IdleSince().IsSet(), "no idle interval opens when work is waiting")
	assert.Equal(t, 1, p.QueueLen(0))
}

func TestServerPool_FinishService_EmptyQueue_OpensIdleInterval(t *testing.T) {
	p := NewServerPool(1, 0)
	p.StartService(0, 0, 4)

	_, ok := p.FinishService(0, 4)

	assert.False(t, ok)
	assert.True(t, p.IsIdle(0))
	since, open := p.Server(0).IdleSince().Get()
	assert.True(t, open)
	assert.Equal(t, 4.0, since)

	// the next start closes exactly that interval
	idle, closed := p.StartService(0, 6.5, 1)
	assert.True(t, closed)
	assert.Equal(t, 2.5, idle)
}

func TestServerPool_FinishService_OnIdleServer_Panics(t *testing.T) {
	p := NewServerPool(1, 0)
	assert.Panics(t, func() { p.FinishService(0, 1) })
}

func TestServerPool_EarliestDeparture_TiesGoToLowestIndex(t *testing.T) {
	p := NewServerPool(4, 0)
	p.StartService(3, 0, 5)
	p.StartService(1, 0, 5)
	p.StartService(2, 0, 7)

	i, at, ok := p.EarliestDeparture()

	assert.True(t, ok)
	assert.Equal(t, 1, i)
	assert.Equal(t, 5.0, at)
	assert.Equal(t, 3, p.BusyCount())
}

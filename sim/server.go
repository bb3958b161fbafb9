package sim

import "fmt"

// Server is one of the c identical servers. A server is idle iff it has no
// departure scheduled; its queue is only non-empty while it is busy.
type Server struct {
	departure OptionalTime // scheduled completion of the job in service
	idleSince OptionalTime // start of the open idle interval
	queue     JobQueue     // jobs waiting behind the one in service
}

// Departure returns the scheduled completion time, if any.
func (s Server) Departure() OptionalTime {
	return s.departure
}

// IdleSince returns the start of the open idle interval, if any.
func (s Server) IdleSince() OptionalTime {
	return s.idleSince
}

// ServerPool holds the state of every server for a single run.
type ServerPool struct {
	servers []Server
	busy    int
}

// NewServerPool creates c idle servers whose idle intervals open at start.
func NewServerPool(c int, start float64) *ServerPool {
	if c < 1 {
		panic(fmt.Sprintf("NewServerPool: server count must be >= 1, got %d", c))
	}
	p := &ServerPool{servers: make([]Server, c)}
	for i := range p.servers {
		p.servers[i].idleSince = At(start)
	}
	return p
}

// Len returns the number of servers c.
func (p *ServerPool) Len() int {
	return len(p.servers)
}

// Server returns a read-only copy of server i's scheduling state.
func (p *ServerPool) Server(i int) Server {
	return p.servers[i]
}

// IsIdle reports whether server i has no job in service.
func (p *ServerPool) IsIdle(i int) bool {
	return !p.servers[i].departure.IsSet()
}

// QueueLen returns the number of jobs waiting at server i.
func (p *ServerPool) QueueLen(i int) int {
	return p.servers[i].queue.Len()
}

// BusyCount returns the number of servers with a job in service.
func (p *ServerPool) BusyCount() int {
	return p.busy
}

// AllBusy reports whether every server has a job in service.
func (p *ServerPool) AllBusy() bool {
	return p.busy == len(p.servers)
}

// AllIdle reports whether no server has a job in service.
func (p *ServerPool) AllIdle() bool {
	return p.busy == 0
}

// StartService puts a job into service on server i until now+d. If an idle
// interval was open it is closed and its duration returned with ok=true.
func (p *ServerPool) StartService(i int, now, d float64) (idle float64, ok bool) {
	s := &p.servers[i]
	if s.departure.IsSet() {
		panic(fmt.Sprintf("StartService: server %d is already busy", i))
	}
	s.departure = At(now + d)
	p.busy++
	if since, open := s.idleSince.Get(); open {
		s.idleSince = NoTime()
		return now - since, true
	}
	return 0, false
}

// Enqueue appends a job to server i's queue. Only valid while i is busy.
func (p *ServerPool) Enqueue(i int, j Job) {
	s := &p.servers[i]
	if !s.departure.IsSet() {
		panic(fmt.Sprintf("Enqueue: server %d is idle", i))
	}
	s.queue.PushBack(j)
}

// FinishService completes the job in service on server i and marks the
// server idle. If jobs are waiting, the oldest is removed and returned so the
// caller can start it at once; otherwise an idle interval opens at now.
func (p *ServerPool) FinishService(i int, now float64) (Job, bool) {
	s := &p.servers[i]
	if !s.departure.IsSet() {
		panic(fmt.Sprintf("FinishService: server %d is idle", i))
	}
	s.departure = NoTime()
	p.busy--
	if j, ok := s.queue.PopFront(); ok {
		return j, true
	}
	s.idleSince = At(now)
	return Job{}, false
}

// EarliestDeparture scans every server for the soonest scheduled departure.
// Ties go to the lowest index; ok is false when every server is idle.
func (p *ServerPool) EarliestDeparture() (index int, at float64, ok bool) {
	index = -1
	for i := range p.servers {
		t, set := p.servers[i].departure.Get()
		if set && (!ok || t < at) {
			index, at, ok = i, t, true
		}
	}
	return index, at, ok
}

// Package trace provides event-trace recording for inspecting a simulation run.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// EventKind names the transition an EventRecord describes.
type EventKind string

const (
	KindArrival   EventKind = "arrival"
	KindDeparture EventKind = "departure"
)

// EventRecord captures the system right after one transition.
type EventRecord struct {
	Kind     EventKind
	Clock    float64
	Server   int     // server the arrival was assigned to, or the departing server
	InSystem int     // population n after the transition
	Area     float64 // area under n up to Clock
	// QueuedBefore is the server's queue length before the transition.
	QueuedBefore int
	// QueuedAfter is the server's queue length after the transition.
	QueuedAfter int
	// ServerIdle reports whether the server is idle after the transition.
	ServerIdle bool
}

// ServiceRecord captures a job entering service.
type ServiceRecord struct {
	Clock      float64
	Server     int
	EnqueuedAt float64
	Duration   float64
}

// Wait returns the time the job spent queued before service.
func (r ServiceRecord) Wait() float64 {
	return r.Clock - r.EnqueuedAt
}

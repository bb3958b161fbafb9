package sim

// Event defines the interface for the two simulation events.
// Each event has a Timestamp and an Execute method that performs the
// transition when the event is the next one due.
type Event interface {
	Timestamp() float64
	Execute(*Simulator) error
}

// ArrivalEvent is the arrival of a new customer.
type ArrivalEvent struct {
	time float64
}

// Timestamp returns the scheduled time of the ArrivalEvent.
func (e *ArrivalEvent) Timestamp() float64 {
	return e.time
}

// Execute admits the customer and assigns it to a server.
func (e *ArrivalEvent) Execute(sim *Simulator) error {
	return sim.arrive(e.time)
}

// DepartureEvent is the completion of the job in service on Server.
type DepartureEvent struct {
	time   float64
	Server int
}

// Timestamp returns the scheduled time of the DepartureEvent.
func (e *DepartureEvent) Timestamp() float64 {
	return e.time
}

// Execute releases the customer and starts the next queued job, if any.
func (e *DepartureEvent) Execute(sim *Simulator) error {
	return sim.depart(e.time, e.Server)
}

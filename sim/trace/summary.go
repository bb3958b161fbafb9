package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	Arrivals      int         `json:"arrivals" yaml:"arrivals"`
	Departures    int         `json:"departures" yaml:"departures"`
	ServiceStarts int         `json:"service_starts" yaml:"service_starts"`
	MaxInSystem   int         `json:"max_in_system" yaml:"max_in_system"`
	MeanWait      float64     `json:"mean_wait" yaml:"mean_wait"`
	MaxWait       float64     `json:"max_wait" yaml:"max_wait"`
	Immediate     int         `json:"immediate" yaml:"immediate"`         // jobs that started service without waiting
	ServerStarts  map[int]int `json:"server_starts" yaml:"server_starts"` // server index → jobs started there
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		ServerStarts: make(map[int]int),
	}
	if st == nil {
		return summary
	}

	for _, e := range st.Events {
		switch e.Kind {
		case KindArrival:
			summary.Arrivals++
		case KindDeparture:
			summary.Departures++
		}
		if e.InSystem > summary.MaxInSystem {
			summary.MaxInSystem = e.InSystem
		}
	}

	summary.ServiceStarts = len(st.Services)
	if len(st.Services) > 0 {
		totalWait := 0.0
		for _, s := range st.Services {
			summary.ServerStarts[s.Server]++
			w := s.Wait()
			totalWait += w
			if w > summary.MaxWait {
				summary.MaxWait = w
			}
			if w == 0 {
				summary.Immediate++
			}
		}
		summary.MeanWait = totalWait / float64(len(st.Services))
	}

	return summary
}

package trace

// TraceLevel controls the verbosity of event tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelService captures every job entering service.
	TraceLevelService TraceLevel = "service"
	// TraceLevelEvents captures service starts and every arrival/departure.
	TraceLevelEvents TraceLevel = "events"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:    true,
	TraceLevelService: true,
	TraceLevelEvents:  true,
	"":                true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// Enabled reports whether level records anything.
func (l TraceLevel) Enabled() bool {
	return l != "" && l != TraceLevelNone
}

// SimulationTrace collects records during a simulation run.
type SimulationTrace struct {
	Level    TraceLevel
	Events   []EventRecord
	Services []ServiceRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(level TraceLevel) *SimulationTrace {
	return &SimulationTrace{
		Level:    level,
		Events:   make([]EventRecord, 0),
		Services: make([]ServiceRecord, 0),
	}
}

// RecordEvent appends an event record when the level includes events.
func (st *SimulationTrace) RecordEvent(record EventRecord) {
	if st.Level == TraceLevelEvents {
		st.Events = append(st.Events, record)
	}
}

// RecordService appends a service record.
func (st *SimulationTrace) RecordService(record ServiceRecord) {
	st.Services = append(st.Services, record)
}

package trace

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions captures every state transition and access.
	TraceLevelDecisions TraceLevel = "decisions"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// Enabled reports whether the level records anything.
func (l TraceLevel) Enabled() bool {
	return l == TraceLevelDecisions
}

// SimulationTrace collects records during one policy evaluation.
type SimulationTrace struct {
	Level       TraceLevel
	Transitions []TransitionRecord
	Accesses    []AccessRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(level TraceLevel) *SimulationTrace {
	return &SimulationTrace{
		Level:       level,
		Transitions: make([]TransitionRecord, 0),
		Accesses:    make([]AccessRecord, 0),
	}
}

// RecordTransition appends a state transition record.
func (st *SimulationTrace) RecordTransition(record TransitionRecord) {
	st.Transitions = append(st.Transitions, record)
}

// RecordAccess appends an access record.
func (st *SimulationTrace) RecordAccess(record AccessRecord) {
	st.Accesses = append(st.Accesses, record)
}

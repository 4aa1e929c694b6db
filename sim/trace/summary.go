package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	Accesses      int
	Compressions  int // Keep -> Compress transitions
	Discards      int // transitions into Discard, from either Keep or Compress
	Recoveries    int // accesses that found the node compressed or discarded
	HoldCost      float64
	RecoveryCost  float64
	StateAtAccess map[string]int // node state -> number of accesses that found it
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		StateAtAccess: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	for _, tr := range st.Transitions {
		switch tr.To {
		case "compress":
			summary.Compressions++
		case "discard":
			summary.Discards++
		}
	}

	summary.Accesses = len(st.Accesses)
	for _, a := range st.Accesses {
		summary.StateAtAccess[a.State]++
		summary.HoldCost += a.HoldCost
		summary.RecoveryCost += a.RecoveryCost
		if a.State != "keep" {
			summary.Recoveries++
		}
	}

	return summary
}

// Merge adds other into s. A nil other is a no-op.
func (s *TraceSummary) Merge(other *TraceSummary) {
	if other == nil {
		return
	}
	if s.StateAtAccess == nil {
		s.StateAtAccess = make(map[string]int)
	}
	s.Accesses += other.Accesses
	s.Compressions += other.Compressions
	s.Discards += other.Discards
	s.Recoveries += other.Recoveries
	s.HoldCost += other.HoldCost
	s.RecoveryCost += other.RecoveryCost
	for state, n := range other.StateAtAccess {
		s.StateAtAccess[state] += n
	}
}

package sim

import (
	"fmt"
)

// InvalidCostModelError reports a cost parameter that breaks the model's
// ordering invariants. Construction-time and fatal.
type InvalidCostModelError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *InvalidCostModelError) Error() string {
	return fmt.Sprintf("invalid cost model: %s=%g %s", e.Field, e.Value, e.Reason)
}

// DegenerateSequenceError reports an access sequence that has no offline
// optimum to compare against. Callers skip the sequence rather than abort.
type DegenerateSequenceError struct {
	Length int
	Reason string
}

func (e *DegenerateSequenceError) Error() string {
	return fmt.Sprintf("degenerate access sequence (len=%d): %s", e.Length, e.Reason)
}

// Package trace records the state transitions a storage policy takes while it
// is replayed against an access sequence.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// TransitionRecord captures a single idle-tick state change.
// Ticks where the state stays the same are not recorded.
type TransitionRecord struct {
	Gap  int   // index of the idle interval (0 = between the first two accesses)
	Idle int64 // ticks since the last access
	From string
	To   string
	Cost float64 // cost charged on the tick of the transition
}

// AccessRecord captures an access event and the recovery it forced.
type AccessRecord struct {
	Time         int64
	State        string // node state when the access arrived
	RecoveryCost float64
	HoldCost     float64 // cost accrued over the idle interval that ended here
}

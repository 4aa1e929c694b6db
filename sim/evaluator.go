package sim

import (
	"fmt"

	"github.com/inference-sim/spinblock/sim/trace"
)

// AccessSequence lists the ticks at which the node is accessed, strictly
// increasing. Evaluation covers the idle intervals between consecutive accesses.
type AccessSequence []int64

// Validate checks that the sequence defines at least one idle interval and is
// strictly increasing and non-negative.
func (s AccessSequence) Validate() error {
	if len(s) < 2 {
		return &DegenerateSequenceError{Length: len(s), Reason: "need at least two accesses"}
	}
	if s[0] < 0 {
		return &DegenerateSequenceError{Length: len(s), Reason: fmt.Sprintf("negative timestamp %d", s[0])}
	}
	for i := 1; i < len(s); i++ {
		if s[i] <= s[i-1] {
			return &DegenerateSequenceError{Length: len(s),
				Reason: fmt.Sprintf("timestamps not strictly increasing at index %d (%d after %d)", i, s[i], s[i-1])}
		}
	}
	return nil
}

// Gaps returns the lengths of the idle intervals between consecutive accesses.
func (s AccessSequence) Gaps() []int64 {
	if len(s) < 2 {
		return nil
	}
	gaps := make([]int64, len(s)-1)
	for i := 1; i < len(s); i++ {
		gaps[i-1] = s[i] - s[i-1]
	}
	return gaps
}

// EvaluationResult is the outcome of replaying one policy against one sequence.
type EvaluationResult struct {
	PolicyCost  float64
	OfflineCost float64
	Ratio       float64 // PolicyCost / OfflineCost

	Trace   *trace.SimulationTrace // nil unless tracing is enabled
	Summary *trace.TraceSummary    // nil unless tracing is enabled
}

// OfflineCost returns the cost of the clairvoyant policy that knows every gap
// length in advance and picks the cheapest state for each gap.
func OfflineCost(model CostModel, seq AccessSequence) (float64, error) {
	if err := seq.Validate(); err != nil {
		return 0, err
	}
	total := 0.0
	for _, g := range seq.Gaps() {
		total += model.OfflineGapCost(g)
	}
	return total, nil
}

// Evaluator replays policies against access sequences for one cost model.
type Evaluator struct {
	model      CostModel
	traceLevel trace.TraceLevel
}

// NewEvaluator creates an Evaluator. Returns *InvalidCostModelError for an
// invalid model.
func NewEvaluator(model CostModel, level trace.TraceLevel) (*Evaluator, error) {
	if err := model.Validate(); err != nil {
		return nil, err
	}
	if !trace.IsValidTraceLevel(string(level)) {
		return nil, fmt.Errorf("unknown trace level %q", level)
	}
	return &Evaluator{model: model, traceLevel: level}, nil
}

// Evaluate replays seq against p and compares the result with the offline optimum.
// Returns *DegenerateSequenceError when seq has no offline optimum; errors from
// the policy (e.g. sampling failures) are returned unchanged.
func Evaluate(p Policy, seq AccessSequence, model CostModel) (EvaluationResult, error) {
	e, err := NewEvaluator(model, trace.TraceLevelNone)
	if err != nil {
		return EvaluationResult{}, err
	}
	return e.Evaluate(p, seq)
}

// Evaluate replays seq against p tick by tick. Each idle interval starts in
// Keep with a fresh policy cycle; the access that ends it pays the recovery
// cost of whatever state the node reached.
func (e *Evaluator) Evaluate(p Policy, seq AccessSequence) (EvaluationResult, error) {
	offline, err := OfflineCost(e.model, seq)
	if err != nil {
		return EvaluationResult{}, err
	}
	if offline <= 0 {
		return EvaluationResult{}, &DegenerateSequenceError{Length: len(seq), Reason: "offline optimal cost is zero"}
	}

	var st *trace.SimulationTrace
	if e.traceLevel.Enabled() {
		st = trace.NewSimulationTrace(e.traceLevel)
	}

	total := 0.0
	for i, gap := range seq.Gaps() {
		if err := p.Reset(); err != nil {
			return EvaluationResult{}, fmt.Errorf("policy %s, interval %d: %w", p.Kind(), i, err)
		}
		state := Keep
		held := 0.0
		for idle := int64(0); idle < gap; idle++ {
			d := p.Decide(idle, state)
			if st != nil && d.Next != state {
				st.RecordTransition(trace.TransitionRecord{
					Gap: i, Idle: idle, From: state.String(), To: d.Next.String(), Cost: d.Cost,
				})
			}
			held += d.Cost
			state = d.Next
		}
		recovery := e.model.RecoveryCost(state)
		if st != nil {
			st.RecordAccess(trace.AccessRecord{
				Time: seq[i+1], State: state.String(), RecoveryCost: recovery, HoldCost: held,
			})
		}
		total += held + recovery
	}

	res := EvaluationResult{
		PolicyCost:  total,
		OfflineCost: offline,
		Ratio:       total / offline,
	}
	if st != nil {
		res.Trace = st
		res.Summary = trace.Summarize(st)
	}
	return res, nil
}

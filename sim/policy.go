package sim

import (
	"fmt"
	"math"

	"github.com/inference-sim/spinblock/sim/karlin"
)

// PolicyKind names a storage policy variant.
type PolicyKind string

const (
	// PolicyDeterministic discards once idle time reaches D* = R/h.
	PolicyDeterministic PolicyKind = "deterministic"
	// PolicyRandomized discards once idle time reaches a threshold drawn from
	// the Karlin distribution, redrawn after every access.
	PolicyRandomized PolicyKind = "randomized"
	// PolicyThreeTierDeterministic compresses and discards at the break-even
	// points of the offline lower envelope.
	PolicyThreeTierDeterministic PolicyKind = "three-tier-deterministic"
	// PolicyThreeTierRandomized draws the compress and discard thresholds
	// independently from Karlin distributions fitted to each break-even interval.
	PolicyThreeTierRandomized PolicyKind = "three-tier-randomized"
)

// validPolicyKinds maps accepted policy kind strings.
var validPolicyKinds = map[PolicyKind]bool{
	PolicyDeterministic:          true,
	PolicyRandomized:             true,
	PolicyThreeTierDeterministic: true,
	PolicyThreeTierRandomized:    true,
}

// IsValidPolicyKind returns true if name is a recognized policy kind.
func IsValidPolicyKind(name string) bool {
	return validPolicyKinds[PolicyKind(name)]
}

// Randomized reports whether the kind consumes entropy.
func (k PolicyKind) Randomized() bool {
	return k == PolicyRandomized || k == PolicyThreeTierRandomized
}

// ThreeTier reports whether the kind uses the compressed state.
func (k PolicyKind) ThreeTier() bool {
	return k == PolicyThreeTierDeterministic || k == PolicyThreeTierRandomized
}

// Policy decides, tick by tick, which state an idle node should occupy.
//
// Implementations may carry per-cycle state (drawn thresholds) and are NOT
// safe for concurrent use; each trial owns its Policy.
type Policy interface {
	// Kind identifies the variant.
	Kind() PolicyKind
	// Reset starts a new idle cycle and must be called before the first
	// Decide. The evaluator calls it once before every idle interval, i.e.
	// after each access.
	Reset() error
	// Decide returns the state for the tick at which idle ticks have elapsed
	// since the last access, given the state of the previous tick.
	Decide(idle int64, current NodeState) Decision
}

// never is the threshold of a transition that does not happen.
var never = math.Inf(1)

// thresholdPolicy implements every PolicyKind. The kind selects how the
// compress and discard thresholds are chosen; the per-tick rule is shared.
type thresholdPolicy struct {
	kind       PolicyKind
	model      CostModel
	sampler    *karlin.Sampler // nil for deterministic kinds
	compressAt float64         // idle ticks before compressing
	discardAt  float64         // idle ticks before discarding
}

// NewPolicy builds the policy variant named by kind for model.
// Randomized kinds draw thresholds from src; deterministic kinds ignore it.
// No thresholds are set until the first Reset, so construction consumes no
// entropy.
// Returns *InvalidCostModelError if the model violates its invariants or a
// three-tier kind is paired with a two-tier model.
func NewPolicy(kind PolicyKind, model CostModel, src karlin.Source) (Policy, error) {
	if !validPolicyKinds[kind] {
		return nil, fmt.Errorf("unknown policy kind %q", kind)
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}
	if kind.ThreeTier() && !model.ThreeTier() {
		return nil, &InvalidCostModelError{Field: "compress_cost", Value: model.CompressCost,
			Reason: fmt.Sprintf("is required by policy %q", kind)}
	}
	p := &thresholdPolicy{kind: kind, model: model, compressAt: never, discardAt: never}
	if kind.Randomized() {
		if src == nil {
			return nil, fmt.Errorf("policy %q requires a random source", kind)
		}
		p.sampler = karlin.NewSampler(src)
	}
	return p, nil
}

func (p *thresholdPolicy) Kind() PolicyKind {
	return p.kind
}

// Thresholds returns the compress and discard thresholds of the current cycle.
// +Inf means the transition never happens.
func (p *thresholdPolicy) Thresholds() (compressAt, discardAt float64) {
	return p.compressAt, p.discardAt
}

func (p *thresholdPolicy) Reset() error {
	m := p.model
	switch p.kind {
	case PolicyDeterministic:
		p.compressAt, p.discardAt = never, tickThreshold(m.BreakEven())

	case PolicyThreeTierDeterministic:
		if !m.CompressUseful() {
			p.compressAt, p.discardAt = never, tickThreshold(m.BreakEven())
			return nil
		}
		p.compressAt, p.discardAt = tickThreshold(m.CompressBreakEven()), tickThreshold(m.DiscardBreakEven())

	case PolicyRandomized:
		d, err := p.sampler.Sample(WholeTicks(m.BreakEven()))
		if err != nil {
			return err
		}
		p.compressAt, p.discardAt = never, float64(d)

	case PolicyThreeTierRandomized:
		if !m.CompressUseful() {
			d, err := p.sampler.Sample(WholeTicks(m.BreakEven()))
			if err != nil {
				return err
			}
			p.compressAt, p.discardAt = never, float64(d)
			return nil
		}
		lo := WholeTicks(m.CompressBreakEven())
		c, err := p.sampler.Sample(lo)
		if err != nil {
			return err
		}
		p.compressAt, p.discardAt = float64(c), never
		if hi := m.DiscardBreakEven(); !math.IsInf(hi, 1) {
			d, err := p.sampler.SampleShifted(lo, max(WholeTicks(hi)-lo, 0))
			if err != nil {
				return err
			}
			p.discardAt = float64(d)
		}
	}
	return nil
}

// Decide moves the node down (Keep -> Compress -> Discard) once the idle time
// reaches the matching threshold. It never moves back up before an access.
func (p *thresholdPolicy) Decide(idle int64, current NodeState) Decision {
	t := float64(idle)
	next := Keep
	switch {
	case t >= p.discardAt:
		next = Discard
	case t >= p.compressAt:
		next = Compress
	}
	if current.level() > next.level() {
		next = current
	}
	cost := p.model.HoldingCost(next)
	if next == Compress && current != Compress {
		cost += p.model.CompressCost
	}
	return Decision{Next: next, Cost: cost}
}

// WholeTicks rounds a break-even time down to whole ticks, tolerating float
// noise such as 2.9999999999999996. Acting at floor(x) keeps the cost held
// before a transition at or below the break-even cost.
func WholeTicks(x float64) int64 {
	return int64(math.Floor(x + 1e-9))
}

// tickThreshold is WholeTicks for thresholds, keeping +Inf as never.
func tickThreshold(x float64) float64 {
	if math.IsInf(x, 1) {
		return never
	}
	return float64(WholeTicks(x))
}

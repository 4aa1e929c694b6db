package sim

import (
	"math"
)

// CostModel holds the cost parameters of one experiment.
//
// A two-tier model leaves all Compress* fields zero. A three-tier model sets
// CompressCost (the one-time cost of compressing) and CompressRecoverCost (the
// cost of restoring a compressed copy on access). CompressHoldCost is the
// per-tick cost of holding the compressed copy; zero by default.
//
// CostModel is a value type: callers pass copies and never mutate a model after
// Validate has accepted it.
type CostModel struct {
	HoldCost            float64 `yaml:"hold_cost"`
	RecoverCost         float64 `yaml:"recover_cost"`
	CompressCost        float64 `yaml:"compress_cost,omitempty"`
	CompressRecoverCost float64 `yaml:"compress_recover_cost,omitempty"`
	CompressHoldCost    float64 `yaml:"compress_hold_cost,omitempty"`
}

// NewCostModel returns a validated two-tier model.
func NewCostModel(holdCost, recoverCost float64) (CostModel, error) {
	m := CostModel{HoldCost: holdCost, RecoverCost: recoverCost}
	if err := m.Validate(); err != nil {
		return CostModel{}, err
	}
	return m, nil
}

// NewThreeTierCostModel returns a validated three-tier model with free
// compressed holding.
func NewThreeTierCostModel(holdCost, compressCost, compressRecoverCost, recoverCost float64) (CostModel, error) {
	m := CostModel{
		HoldCost:            holdCost,
		RecoverCost:         recoverCost,
		CompressCost:        compressCost,
		CompressRecoverCost: compressRecoverCost,
	}
	if err := m.Validate(); err != nil {
		return CostModel{}, err
	}
	return m, nil
}

// ThreeTier reports whether the model has a compressed state.
func (m CostModel) ThreeTier() bool {
	return m.CompressCost != 0
}

// Validate checks the ordering invariants:
//
//	0 < HoldCost < RecoverCost
//	three-tier: HoldCost <= CompressCost < RecoverCost,
//	            0 <= CompressRecoverCost < RecoverCost,
//	            0 <= CompressHoldCost < HoldCost
func (m CostModel) Validate() error {
	fields := []struct {
		name string
		val  float64
	}{
		{"hold_cost", m.HoldCost},
		{"recover_cost", m.RecoverCost},
		{"compress_cost", m.CompressCost},
		{"compress_recover_cost", m.CompressRecoverCost},
		{"compress_hold_cost", m.CompressHoldCost},
	}
	for _, f := range fields {
		if math.IsNaN(f.val) || math.IsInf(f.val, 0) {
			return &InvalidCostModelError{Field: f.name, Value: f.val, Reason: "must be a finite number"}
		}
	}
	if m.HoldCost <= 0 {
		return &InvalidCostModelError{Field: "hold_cost", Value: m.HoldCost, Reason: "must be positive"}
	}
	if m.RecoverCost <= m.HoldCost {
		return &InvalidCostModelError{Field: "recover_cost", Value: m.RecoverCost, Reason: "must exceed hold_cost"}
	}
	if !m.ThreeTier() {
		if m.CompressRecoverCost != 0 || m.CompressHoldCost != 0 {
			return &InvalidCostModelError{Field: "compress_cost", Value: m.CompressCost,
				Reason: "must be set when other compress costs are"}
		}
		return nil
	}
	if m.CompressCost < m.HoldCost || m.CompressCost >= m.RecoverCost {
		return &InvalidCostModelError{Field: "compress_cost", Value: m.CompressCost,
			Reason: "must be in [hold_cost, recover_cost)"}
	}
	if m.CompressRecoverCost < 0 || m.CompressRecoverCost >= m.RecoverCost {
		return &InvalidCostModelError{Field: "compress_recover_cost", Value: m.CompressRecoverCost,
			Reason: "must be in [0, recover_cost)"}
	}
	if m.CompressHoldCost < 0 || m.CompressHoldCost >= m.HoldCost {
		return &InvalidCostModelError{Field: "compress_hold_cost", Value: m.CompressHoldCost,
			Reason: "must be in [0, hold_cost)"}
	}
	return nil
}

// BreakEven returns D* = RecoverCost / HoldCost, the idle time after which
// keeping has cost as much as one recovery.
func (m CostModel) BreakEven() float64 {
	return m.RecoverCost / m.HoldCost
}

// CompressBreakEven returns the idle time at which keeping has cost as much as
// compressing and restoring: (C + Cr) / (h - hc).
func (m CostModel) CompressBreakEven() float64 {
	return (m.CompressCost + m.CompressRecoverCost) / (m.HoldCost - m.CompressHoldCost)
}

// DiscardBreakEven returns the idle time at which a compressed copy has cost as
// much as discarding outright: (R - C - Cr) / hc. +Inf when compressed holding is free.
func (m CostModel) DiscardBreakEven() float64 {
	if m.CompressHoldCost == 0 {
		return math.Inf(1)
	}
	return (m.RecoverCost - m.CompressCost - m.CompressRecoverCost) / m.CompressHoldCost
}

// CompressUseful reports whether compression lies on the offline lower
// envelope for some gap length. When it does not, three-tier policies fall
// back to discard-only behaviour.
func (m CostModel) CompressUseful() bool {
	if !m.ThreeTier() {
		return false
	}
	if m.CompressCost+m.CompressRecoverCost >= m.RecoverCost {
		return false
	}
	return m.CompressBreakEven() < m.DiscardBreakEven()
}

// HoldingCost returns the per-tick cost of sitting in state s.
func (m CostModel) HoldingCost(s NodeState) float64 {
	switch s {
	case Keep:
		return m.HoldCost
	case Compress:
		return m.CompressHoldCost
	default:
		return 0
	}
}

// RecoveryCost returns the cost paid when an access finds the node in state s.
func (m CostModel) RecoveryCost(s NodeState) float64 {
	switch s {
	case Discard:
		return m.RecoverCost
	case Compress:
		return m.CompressRecoverCost
	default:
		return 0
	}
}

// OfflineGapCost returns the cheapest cost of an idle gap of the given length
// when the gap length is known in advance.
func (m CostModel) OfflineGapCost(gap int64) float64 {
	g := float64(gap)
	best := math.Min(g*m.HoldCost, m.RecoverCost)
	if m.ThreeTier() {
		best = math.Min(best, m.CompressCost+m.CompressRecoverCost+g*m.CompressHoldCost)
	}
	return best
}

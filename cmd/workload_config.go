package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inference-sim/spinblock/sim"
	"github.com/inference-sim/spinblock/sim/trace"
	"github.com/inference-sim/spinblock/sim/workload"
)

// experimentOptions holds the flags shared by `run` and `three-tier`.
type experimentOptions struct {
	seed           int64  // Seed for workload generation and trial seeds
	trials         int    // Monte-Carlo trials per sequence for randomized policies
	parallelism    int    // Concurrent trials (0 = GOMAXPROCS)
	lists          int    // Number of built-in random access lists
	listLen        int    // Draws per random access list
	maxTime        int64  // Random access times are drawn from [1, max-time]
	adversarial    int    // Gaps in an extra adversarial list (0 = none)
	perList        bool   // Print per-list mean ratios
	traceLevel     string // Decision trace verbosity
	experimentPath string // YAML experiment file

	holdCost            float64
	recoverCost         float64
	compressCost        float64
	compressRecoverCost float64
	compressHoldCost    float64
}

func defaultExperimentOptions() *experimentOptions {
	return &experimentOptions{
		seed:        42,
		trials:      100,
		lists:       100,
		listLen:     10,
		maxTime:     100,
		traceLevel:  string(trace.TraceLevelNone),
		holdCost:    1,
		recoverCost: 3,
	}
}

func (o *experimentOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Int64Var(&o.seed, "seed", o.seed, "Seed for access-list generation and trial seeds")
	f.IntVar(&o.trials, "trials", o.trials, "Trials per access list for randomized policies")
	f.IntVar(&o.parallelism, "parallelism", o.parallelism, "Concurrent trials (0 = GOMAXPROCS)")
	f.IntVar(&o.lists, "lists", o.lists, "Number of random access lists")
	f.IntVar(&o.listLen, "list-len", o.listLen, "Accesses drawn per random list (before de-duplication)")
	f.Int64Var(&o.maxTime, "max-time", o.maxTime, "Random access times are drawn from [1, max-time]")
	f.IntVar(&o.adversarial, "adversarial", o.adversarial, "Append an adversarial list with this many gaps (0 = none)")
	f.BoolVar(&o.perList, "per-list", o.perList, "Print each list's mean ratio per policy")
	f.StringVar(&o.traceLevel, "trace-level", o.traceLevel, "Decision trace level (none, decisions); decisions prints a summary")
	f.StringVar(&o.experimentPath, "experiment", "", "YAML experiment file; explicitly set flags override its values")
	f.Float64Var(&o.holdCost, "hold-cost", o.holdCost, "Per-tick cost of keeping an idle node")
	f.Float64Var(&o.recoverCost, "recover-cost", o.recoverCost, "Cost of recovering a discarded node")
}

// costModel assembles the cost model from flags.
func (o *experimentOptions) costModel() sim.CostModel {
	return sim.CostModel{
		HoldCost:            o.holdCost,
		RecoverCost:         o.recoverCost,
		CompressCost:        o.compressCost,
		CompressRecoverCost: o.compressRecoverCost,
		CompressHoldCost:    o.compressHoldCost,
	}
}

// builtinSpec is the experiment the flags describe on their own.
func (o *experimentOptions) builtinSpec(kinds []sim.PolicyKind) *workload.ExperimentSpec {
	spec := &workload.ExperimentSpec{
		Version:     "1",
		Seed:        o.seed,
		Trials:      o.trials,
		Parallelism: o.parallelism,
		TraceLevel:  o.traceLevel,
		CostModel:   o.costModel(),
		Policies:    kinds,
	}
	if o.lists > 0 {
		spec.Random = &workload.RandomSpec{Count: o.lists, Length: o.listLen, MaxTime: o.maxTime}
	}
	if o.adversarial > 0 {
		spec.Adversarial = &workload.AdversarialSpec{Gaps: o.adversarial}
	}
	return spec
}

// experimentSpec returns the built-in spec, or the --experiment file with the
// explicitly set flags applied on top. kinds apply when the file names none.
func (o *experimentOptions) experimentSpec(cmd *cobra.Command, kinds []sim.PolicyKind) (*workload.ExperimentSpec, error) {
	if o.experimentPath == "" {
		spec := o.builtinSpec(kinds)
		if err := spec.Validate(); err != nil {
			return nil, fmt.Errorf("invalid flags: %w", err)
		}
		return spec, nil
	}
	spec, err := loadExperiment(o.experimentPath)
	if err != nil {
		return nil, err
	}
	o.applyOverrides(cmd, spec)
	if len(spec.Policies) == 0 {
		spec.Policies = kinds
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("experiment %s: %w", o.experimentPath, err)
	}
	return spec, nil
}

// applyOverrides copies flags the user set explicitly onto spec.
func (o *experimentOptions) applyOverrides(cmd *cobra.Command, spec *workload.ExperimentSpec) {
	f := cmd.Flags()
	if f.Changed("seed") {
		spec.Seed = o.seed
	}
	if f.Changed("trials") {
		spec.Trials = o.trials
	}
	if f.Changed("parallelism") {
		spec.Parallelism = o.parallelism
	}
	if f.Changed("trace-level") {
		spec.TraceLevel = o.traceLevel
	}
	if f.Changed("hold-cost") {
		spec.CostModel.HoldCost = o.holdCost
	}
	if f.Changed("recover-cost") {
		spec.CostModel.RecoverCost = o.recoverCost
	}
	if f.Changed("compress-cost") {
		spec.CostModel.CompressCost = o.compressCost
	}
	if f.Changed("compress-recover-cost") {
		spec.CostModel.CompressRecoverCost = o.compressRecoverCost
	}
	if f.Changed("compress-hold-cost") {
		spec.CostModel.CompressHoldCost = o.compressHoldCost
	}
	if f.Changed("lists") || f.Changed("list-len") || f.Changed("max-time") {
		spec.Random = &workload.RandomSpec{Count: o.lists, Length: o.listLen, MaxTime: o.maxTime}
	}
	if f.Changed("adversarial") {
		spec.Adversarial = nil
		if o.adversarial > 0 {
			spec.Adversarial = &workload.AdversarialSpec{Gaps: o.adversarial}
		}
	}
}

func traceLevel(spec *workload.ExperimentSpec) trace.TraceLevel {
	if spec.TraceLevel == "" {
		return trace.TraceLevelNone
	}
	return trace.TraceLevel(spec.TraceLevel)
}

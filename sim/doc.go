// Package sim provides the core of the spin-block simulator: cost models,
// online storage policies and the competitive-ratio evaluator.
//
// # Reading Guide
//
// Start with these three files:
//   - cost.go: CostModel, its invariants and the break-even points derived from it
//   - policy.go: the Policy variants (deterministic, randomized, three-tier)
//   - evaluator.go: tick-by-tick replay of an AccessSequence and the offline optimum
//
// # Architecture
//
// The sim package defines the model and the replay loop; supporting code lives
// in sub-packages:
//   - sim/karlin/: Karlin's threshold distribution and its rejection sampler
//   - sim/workload/: access-sequence generation and YAML experiment specs
//   - sim/experiment/: Monte-Carlo trials and aggregation across sequences
//   - sim/trace/: per-transition decision trace recording
//
// # Time model
//
// Time advances in integer ticks. Between two accesses the evaluator asks the
// policy for a Decision at idle ticks 0, 1, ..., gap-1; the access that ends the
// gap pays the recovery cost of the state the node ended in. A deterministic
// policy with threshold D* = R/h therefore pays D*·h + R on any gap longer than
// D*, twice the offline optimum whenever D* is a whole number of ticks.
//
// # Randomness
//
// No package-level random state is used. Randomized policies take a
// karlin.Source at construction; SimulationKey derives independent seeds for
// every trial so parallel runs stay reproducible.
package sim
